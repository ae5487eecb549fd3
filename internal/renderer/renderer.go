// Package renderer typesets the math in translated HTML. The document is
// wrapped with the KaTeX assets, loaded in the shared headless-browser
// session so auto-render replaces every $...$ span with rendered markup,
// and snapshotted back to a static document that needs only the KaTeX
// stylesheet.
package renderer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/markup"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

const katexVersion = "0.16.0"

// renderHeader wires KaTeX auto-render over the body and raises a flag
// the render wait polls for.
const renderHeader = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <link rel="stylesheet"
        href="https://cdn.jsdelivr.net/npm/katex@` + katexVersion + `/dist/katex.min.css">
  <script defer
          src="https://cdn.jsdelivr.net/npm/katex@` + katexVersion + `/dist/katex.min.js"></script>
  <script defer
          src="https://cdn.jsdelivr.net/npm/katex@` + katexVersion + `/dist/contrib/auto-render.min.js"
          onload="renderMathInElement(document.body, {
                    delimiters: [
                      {left: '$$', right: '$$', display: true},
                      {left: '$',  right: '$',  display: false}
                    ]
                  }); window.__typesetDone = true;"></script>
</head>
<body>
`

const renderFooter = "\n</body></html>"

// doneExpr is polled in the page until typesetting has run.
const doneExpr = `window.__typesetDone === true`

// PageRenderer is the browser capability the renderer depends on.
type PageRenderer interface {
	RenderedBody(url, doneExpr string) (string, error)
}

// Renderer converts translated HTML into its typeset snapshot.
type Renderer struct {
	session PageRenderer
	workDir string
}

// New creates a Renderer over an existing browser session. Temp documents
// are staged under workDir ("" uses the system temp directory).
func New(session PageRenderer, workDir string) *Renderer {
	return &Renderer{session: session, workDir: workDir}
}

// Render typesets the math in fragment and returns the final static
// document. The input is never written to the artifact tree here: a
// failed or timed-out render leaves any previously published artifact
// untouched because the caller only persists on success.
func (r *Renderer) Render(fragment string) (string, error) {
	tmp, err := os.CreateTemp(r.workDir, "omc-render-*.html")
	if err != nil {
		return "", types.NewAppError(types.ErrRender, "failed to stage render document", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(renderHeader + fragment + renderFooter); err != nil {
		tmp.Close()
		return "", types.NewAppError(types.ErrRender, "failed to write render document", err)
	}
	if err := tmp.Close(); err != nil {
		return "", types.NewAppError(types.ErrRender, "failed to close render document", err)
	}

	abs, err := filepath.Abs(tmpPath)
	if err != nil {
		return "", types.NewAppError(types.ErrRender, "failed to resolve render document path", err)
	}
	body, err := r.session.RenderedBody("file://"+abs, doneExpr)
	if err != nil {
		return "", err
	}

	final, err := Finalize(body)
	if err != nil {
		return "", err
	}
	logger.Debug("render complete", logger.Int("bytes", len(final)))
	return final, nil
}

// Finalize turns a typeset body into the published document: scripts are
// stripped, display formulas centered, and the result is checked for
// leftover raw delimiters.
func Finalize(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", types.NewAppError(types.ErrRender, "rendered body is not parseable", err)
	}
	doc.Find("script").Remove()
	doc.Find("span.katex-display").WrapHtml(`<div style="text-align:center;"></div>`)

	inner, err := doc.Find("body").Html()
	if err != nil {
		return "", types.NewAppError(types.ErrRender, "failed to serialize rendered body", err)
	}
	if markup.HasRawDollars(inner) {
		return "", types.NewAppError(types.ErrRender, "rendered output still contains raw math delimiters", nil)
	}
	return Document(inner), nil
}

// Document wraps a rendered body in the static published page shell.
func Document(body string) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <link rel="stylesheet"
        href="https://cdn.jsdelivr.net/npm/katex@` + katexVersion + `/dist/katex.min.css">
</head>
<body>
`)
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
