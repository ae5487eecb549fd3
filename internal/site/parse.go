package site

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Status labels as they appear on the homepage contest cards.
const (
	statusEnded   = "終了済"
	statusRunning = "開催中"
)

func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// parseContestByStatus returns the first contest id whose homepage card
// carries the given status label, or "" when none does. Cards are a
// contest-header div followed (as a later sibling) by the contest-name
// anchor that links to the contest.
func parseContestByStatus(html, status string) (string, error) {
	ids := parseContestsByStatus(html, status)
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func parseContestsByStatus(html, status string) []string {
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("div.contest-header").Each(func(_ int, header *goquery.Selection) {
		label := header.Find("div.contest-status").Text()
		if !strings.Contains(label, status) {
			return
		}
		name := header.NextAllFiltered("a.contest-name").First()
		href, ok := name.Attr("href")
		if !ok {
			return
		}
		if id := contestIDFromHref(href); id != "" {
			out = append(out, id)
		}
	})
	return out
}

func contestIDFromHref(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	idx := strings.LastIndex(href, "/")
	if idx < 0 {
		return href
	}
	return href[idx+1:]
}

// parseTaskIDs extracts the numeric task ids linked from a contest page,
// sorted ascending.
func parseTaskIDs(html, contestID string) []string {
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}
	marker := "/contests/" + contestID + "/tasks/"
	seen := map[string]bool{}
	var ids []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, marker) {
			return
		}
		parts := strings.Split(strings.TrimRight(strings.TrimSpace(href), "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] != "tasks" {
			return
		}
		id := parts[len(parts)-1]
		if _, err := strconv.Atoi(id); err != nil {
			return
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	})
	return types.SortTaskIDs(ids)
}

// parseContestList extracts contest ids from one page of the full
// listing table.
func parseContestList(html string) []string {
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("div.table-responsive a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "/contests/") {
			return
		}
		name := strings.TrimSpace(strings.SplitN(href, "/contests/", 2)[1])
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimRight(name, "/")
		if name != "" && name != "all" {
			out = append(out, name)
		}
	})
	return out
}

// userEditorialHref matches /contests/<contest>/editorial/<task>/<user>.
func userEditorialHref(contestID string) *regexp.Regexp {
	return regexp.MustCompile(`^/contests/` + regexp.QuoteMeta(contestID) + `/editorial/(\d+)/(\d+)$`)
}

// officialLabel marks official editorial entries in the index.
const officialLabel = "公式解説"

// parseUserEditorialLinks extracts user-editorial refs from a contest's
// editorial index page, skipping official entries.
func parseUserEditorialLinks(html, contestID string) []types.ContentRef {
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}
	container := doc.Find("#editorials")
	if container.Length() == 0 {
		return nil
	}
	pattern := userEditorialHref(contestID)
	var refs []types.ContentRef
	seen := map[string]bool{}
	container.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if strings.Contains(a.Text(), officialLabel) {
			return
		}
		href, _ := a.Attr("href")
		m := pattern.FindStringSubmatch(strings.TrimSpace(href))
		if m == nil {
			return
		}
		key := m[1] + "/" + m[2]
		if seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, types.ContentRef{ContestID: contestID, ItemID: m[1], UserID: m[2]})
	})
	return refs
}

var durationPattern = regexp.MustCompile(`(\d+)\s*分`)

// parseDurationMinutes pulls the contest duration off the contest page.
// The page states it as "N分"; 60 is the fallback when absent.
func parseDurationMinutes(html string) int {
	doc, err := parseDocument(html)
	if err != nil {
		return 60
	}
	text := doc.Text()
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 60
}

// parseHiddenInput returns the value of a named hidden input.
func parseHiddenInput(doc *goquery.Selection, name string) (string, bool) {
	return doc.Find(`input[name="` + name + `"]`).First().Attr("value")
}
