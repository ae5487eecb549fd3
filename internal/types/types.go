// Package types defines core data types and enums for the OMC translation pipeline.
package types

import (
	"fmt"
	"strconv"
)

// ContentKind identifies the kind of content an item holds.
type ContentKind string

const (
	// KindTask is a contest problem statement.
	KindTask ContentKind = "task"
	// KindEditorial is the official written solution to a task.
	KindEditorial ContentKind = "editorial"
	// KindUserEditorial is a solution written by a contest participant.
	KindUserEditorial ContentKind = "user_editorial"
)

// Valid reports whether k is one of the known content kinds.
func (k ContentKind) Valid() bool {
	switch k {
	case KindTask, KindEditorial, KindUserEditorial:
		return true
	}
	return false
}

// Subdir returns the artifact subdirectory for the kind.
func (k ContentKind) Subdir() string {
	switch k {
	case KindTask:
		return "tasks"
	case KindEditorial:
		return "editorial"
	case KindUserEditorial:
		return "user_editorial"
	}
	return string(k)
}

// Term returns the human-readable noun used in translation prompts.
func (k ContentKind) Term() string {
	if k == KindUserEditorial {
		return "user editorial"
	}
	return string(k)
}

// Selector returns the id of the page element that carries the content.
func (k ContentKind) Selector() string {
	if k == KindTask {
		return "#problem_content"
	}
	return "#editorial_content"
}

// ContentRef identifies one content item on the contest site.
// UserID is set only for user editorials.
type ContentRef struct {
	ContestID string
	ItemID    string
	UserID    string
}

// String renders the ref for logs and error messages.
func (r ContentRef) String() string {
	if r.UserID != "" {
		return r.ContestID + "/" + r.ItemID + "/" + r.UserID
	}
	return r.ContestID + "/" + r.ItemID
}

// FileStem returns the artifact file name without the .html extension.
// User editorials nest under their task id.
func (r ContentRef) FileStem() string {
	if r.UserID != "" {
		return r.ItemID + "/" + r.UserID
	}
	return r.ItemID
}

// ContestStatus is the status label shown on the site homepage.
type ContestStatus string

const (
	// StatusRunning corresponds to the 開催中 label.
	StatusRunning ContestStatus = "running"
	// StatusEnded corresponds to the 終了済 label.
	StatusEnded ContestStatus = "ended"
	// StatusUpcoming is any contest that has not started yet.
	StatusUpcoming ContestStatus = "upcoming"
)

// ContestInfo describes a contest as discovered on the site.
type ContestInfo struct {
	ID          string        `json:"id"`
	Status      ContestStatus `json:"status"`
	DurationMin int           `json:"duration_min"`
	TaskIDs     []string      `json:"task_ids,omitempty"`
}

// TranslationStatus tracks one (item, language) pair. The status only
// moves forward: absent → in-progress → published.
type TranslationStatus string

const (
	StatusAbsent     TranslationStatus = "absent"
	StatusInProgress TranslationStatus = "in_progress"
	StatusPublished  TranslationStatus = "published"
)

// SortTaskIDs orders numeric task id strings numerically, leaving
// non-numeric ids (which the site does not produce) at the end.
func SortTaskIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && taskIDLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func taskIDLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	if errA == nil {
		return true
	}
	if errB == nil {
		return false
	}
	return a < b
}

// ErrorCode classifies pipeline failures.
type ErrorCode string

const (
	ErrFetch       ErrorCode = "FETCH_ERROR"
	ErrTranslation ErrorCode = "TRANSLATION_ERROR"
	ErrRender      ErrorCode = "RENDER_ERROR"
	ErrPublish     ErrorCode = "PUBLISH_ERROR"
	ErrNetwork     ErrorCode = "NETWORK_ERROR"
	ErrConfig      ErrorCode = "CONFIG_ERROR"
	ErrInternal    ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error type carried across pipeline boundaries.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError.
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause.
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// NewAppErrorWithDetails creates a new AppError with a details string.
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Details: details, Cause: cause}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal when err is not
// an AppError.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrInternal
}

// Errorf builds an AppError from a format string, keeping the code.
func Errorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}
