package site

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Login signs the client's session in. The login form carries a CSRF
// token in a hidden _token input; a post that bounces back to /login
// means the credentials were rejected.
func (c *Client) Login(ctx context.Context, username, password string) error {
	loginURL := c.baseURL + "/login"
	html, err := c.get(ctx, loginURL)
	if err != nil {
		return err
	}
	doc, err := parseDocument(html)
	if err != nil {
		return types.NewAppError(types.ErrFetch, "login page is not parseable", err)
	}
	token, ok := parseHiddenInput(doc.Selection, "_token")
	if !ok {
		return types.NewAppError(types.ErrFetch, "login page has no CSRF token", nil)
	}

	values := url.Values{
		"_token":       {token},
		"display_name": {username},
		"password":     {password},
	}
	finalURL, err := c.postForm(ctx, loginURL, values)
	if err != nil {
		return err
	}
	if strings.HasSuffix(finalURL, "/login") {
		return types.NewAppError(types.ErrFetch, "login rejected", nil)
	}
	logger.Info("logged in", logger.String("user", username))
	return nil
}

// Join registers the logged-in session for a contest by submitting the
// contest page's join form. It returns false when the page shows no join
// form, which covers both "already joined" and "registration closed".
func (c *Client) Join(ctx context.Context, contestID string) (bool, error) {
	contestURL := c.baseURL + "/contests/" + strings.ToLower(contestID)
	html, err := c.get(ctx, contestURL)
	if err != nil {
		return false, err
	}
	doc, err := parseDocument(html)
	if err != nil {
		return false, types.NewAppError(types.ErrFetch, "contest page is not parseable", err)
	}

	form := doc.Find("form#join_form").First()
	if form.Length() == 0 {
		return false, nil
	}
	action, ok := form.Attr("action")
	if !ok || action == "" {
		return false, types.NewAppError(types.ErrFetch, "join form has no action", nil)
	}
	if strings.HasPrefix(action, "/") {
		action = c.baseURL + action
	}

	values := url.Values{}
	form.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := input.Attr("value")
		values.Set(name, value)
	})

	finalURL, err := c.postForm(ctx, action, values)
	if err != nil {
		return false, err
	}
	joined := strings.HasSuffix(strings.TrimRight(finalURL, "/"), "/contests/"+strings.ToLower(contestID))
	logger.Info("contest registration attempted",
		logger.String("contest", contestID),
		logger.Bool("joined", joined))
	return joined, nil
}
