// Package browser wraps a headless Chromium session. The contest site
// injects problem and editorial bodies with page JavaScript, and KaTeX
// typesetting is itself a browser-side pass, so both the fetch side and
// the render side of the pipeline share one session per batch.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Session is a live headless-browser instance. One Session serves a whole
// batch; Close tears the browser down.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
	timeout     time.Duration
}

// NewSession launches headless Chromium. The timeout bounds each
// individual page operation, not the session lifetime.
func NewSession(ctx context.Context, timeout time.Duration) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, types.NewAppError(types.ErrRender, "failed to launch headless browser", err)
	}
	logger.Debug("headless browser session started", logger.Duration("opTimeout", timeout))
	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		cancel:      cancel,
		timeout:     timeout,
	}, nil
}

// Close tears down the browser.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// run executes actions in a fresh tab with the per-operation timeout.
func (s *Session) run(actions ...chromedp.Action) error {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	opCtx, cancelOp := context.WithTimeout(tabCtx, s.timeout)
	defer cancelOp()
	return chromedp.Run(opCtx, actions...)
}

// InnerHTML navigates to url and returns the innerHTML of the first
// element matching the CSS selector once it appears. A selector that
// never appears within the operation timeout yields a FETCH_ERROR.
func (s *Session) InnerHTML(url, selector string) (string, error) {
	var out string
	err := s.run(
		chromedp.Navigate(url),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.InnerHTML(selector, &out, chromedp.ByQuery),
	)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrFetch,
			"element did not appear", url+" "+selector, err)
	}
	return out, nil
}

// GlobalContent navigates to url and reads the page's global `content`
// JavaScript variable, which carries the raw statement markup before the
// page renders it. The pipeline falls back to it when the content
// element is present but empty.
func (s *Session) GlobalContent(url string) (string, error) {
	var out string
	err := s.run(
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`typeof content === "string" ? content : ""`, &out),
	)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrFetch, "content variable not readable", url, err)
	}
	return out, nil
}

// RenderedBody navigates to url (typically a file:// URL of a wrapped
// document), waits for the doneExpr JavaScript expression to become
// true, and returns the body's innerHTML after typesetting.
func (s *Session) RenderedBody(url, doneExpr string) (string, error) {
	var out string
	err := s.run(
		chromedp.Navigate(url),
		chromedp.Poll(doneExpr, nil, chromedp.WithPollingInterval(100*time.Millisecond)),
		chromedp.InnerHTML("body", &out, chromedp.ByQuery),
	)
	if err != nil {
		return "", types.NewAppError(types.ErrRender, "render did not complete", err)
	}
	return out, nil
}
