// Package site is the HTTP client for the contest site: contest and task
// discovery, editorial indexes, and contest registration. Dynamic page
// bodies (problem and editorial content injected by page JavaScript) are
// fetched through the browser session instead; see internal/browser.
package site

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// userAgent mirrors a desktop browser; the site serves the same markup
// either way but rejects obviously botlike agents.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Client talks to the contest site. The cookie jar carries the login
// session across registration calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
}

// NewClient builds a Client from the run configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create cookie jar", err)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
			Jar:     jar,
		},
		baseURL:    strings.TrimRight(cfg.SiteBaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// BaseURL returns the site root.
func (c *Client) BaseURL() string { return c.baseURL }

// TaskURL returns the page URL for a task.
func (c *Client) TaskURL(ref types.ContentRef) string {
	return c.baseURL + "/contests/" + ref.ContestID + "/tasks/" + ref.ItemID
}

// EditorialURL returns the page URL for an official editorial.
func (c *Client) EditorialURL(ref types.ContentRef) string {
	return c.baseURL + "/contests/" + ref.ContestID + "/editorial/" + ref.ItemID
}

// UserEditorialURL returns the page URL for a user editorial.
func (c *Client) UserEditorialURL(ref types.ContentRef) string {
	return c.EditorialURL(ref) + "/" + ref.UserID
}

// ContentURL dispatches on kind.
func (c *Client) ContentURL(kind types.ContentKind, ref types.ContentRef) string {
	switch kind {
	case types.KindTask:
		return c.TaskURL(ref)
	case types.KindUserEditorial:
		return c.UserEditorialURL(ref)
	default:
		return c.EditorialURL(ref)
	}
}

// get fetches a page with bounded retries and linear backoff. Transport
// errors and 5xx responses retry; 4xx responses fail immediately.
func (c *Client) get(ctx context.Context, pageURL string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, retryable, err := c.getOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
		logger.Warn("page fetch failed, retrying",
			logger.String("url", pageURL),
			logger.Int("attempt", attempt),
			logger.Err(err))
		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
			}
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrFetch, "page fetch failed", pageURL, lastErr)
}

func (c *Client) getOnce(ctx context.Context, pageURL string) (body string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false, types.NewAppError(types.ErrInternal, "failed to build request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, types.NewAppError(types.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500
		return "", retryable, types.Errorf(types.ErrFetch, "unexpected status %d for %s", resp.StatusCode, pageURL)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, types.NewAppError(types.ErrNetwork, "failed to read response body", err)
	}
	return string(data), false, nil
}

// postForm submits a form and returns the final response URL after
// redirects, which is how the site signals login and join outcomes.
func (c *Client) postForm(ctx context.Context, action string, values url.Values) (finalURL string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(values.Encode()))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to build form request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "form post failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return "", types.Errorf(types.ErrFetch, "form post returned status %d", resp.StatusCode)
	}
	return resp.Request.URL.String(), nil
}

// LatestEndedContest finds the newest contest the homepage marks ended.
// Empty result means the homepage currently lists none.
func (c *Client) LatestEndedContest(ctx context.Context) (string, error) {
	html, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return "", err
	}
	return parseContestByStatus(html, statusEnded)
}

// RunningContests lists the contests the homepage marks as in progress.
func (c *Client) RunningContests(ctx context.Context) ([]string, error) {
	html, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return nil, err
	}
	return parseContestsByStatus(html, statusRunning), nil
}

// TaskIDs lists the numeric task ids of a contest, ascending.
func (c *Client) TaskIDs(ctx context.Context, contestID string) ([]string, error) {
	html, err := c.get(ctx, c.baseURL+"/contests/"+contestID)
	if err != nil {
		return nil, err
	}
	return parseTaskIDs(html, contestID), nil
}

// ContestInfo fetches a contest page and extracts its metadata. A page
// that does not advertise a duration falls back to 60 minutes, matching
// the shortest round the site runs.
func (c *Client) ContestInfo(ctx context.Context, contestID string) (*types.ContestInfo, error) {
	html, err := c.get(ctx, c.baseURL+"/contests/"+contestID)
	if err != nil {
		return nil, err
	}
	return &types.ContestInfo{
		ID:          contestID,
		DurationMin: parseDurationMinutes(html),
		TaskIDs:     parseTaskIDs(html, contestID),
	}, nil
}

// AllContests walks the paginated full contest listing, newest first.
func (c *Client) AllContests(ctx context.Context) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for page := 1; ; page++ {
		html, err := c.get(ctx, c.baseURL+"/contests/all?page="+strconv.Itoa(page))
		if err != nil {
			// The listing ends with a page that 404s or loses its table.
			if page > 1 {
				break
			}
			return nil, err
		}
		names := parseContestList(html)
		if len(names) == 0 {
			break
		}
		added := 0
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
				added++
			}
		}
		if added == 0 {
			break
		}
	}
	return out, nil
}

// UserEditorialRefs lists the user editorials of a contest from its
// editorial index, excluding official entries.
func (c *Client) UserEditorialRefs(ctx context.Context, contestID string) ([]types.ContentRef, error) {
	html, err := c.get(ctx, c.baseURL+"/contests/"+contestID+"/editorial")
	if err != nil {
		return nil, err
	}
	return parseUserEditorialLinks(html, contestID), nil
}

