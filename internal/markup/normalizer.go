// Package markup normalizes the lightweight markdown-like syntax the
// contest site allows in problem statements and editorials, and handles
// the KaTeX delimiter bookkeeping the rest of the pipeline relies on.
package markup

import (
	"regexp"
	"strings"
)

var (
	hrLine     = regexp.MustCompile(`^\s*\*{3}\s*$`)
	boldSpan   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicSpan = regexp.MustCompile(`\*([^*\n]+)\*`)
)

// ApplyMarkdown converts the site's emphasis syntax to HTML: a standalone
// line of *** becomes <hr>, **bold** becomes <strong>, *italic* becomes
// <em>. Math spans pass through byte-for-byte; asterisks inside $...$
// are TeX, not emphasis. Already-converted HTML contains no paired
// asterisks, so the conversion is idempotent.
func ApplyMarkdown(s string) string {
	segs, _ := SplitMath(s)
	var sb strings.Builder
	for _, seg := range segs {
		if seg.Math {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(applyToPlain(seg.Text))
	}
	return sb.String()
}

func applyToPlain(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if hrLine.MatchString(line) {
			lines[i] = "<hr>"
		}
	}
	s = strings.Join(lines, "\n")
	s = boldSpan.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicSpan.ReplaceAllString(s, "<em>$1</em>")
	return s
}

// Result is the output of Normalize.
type Result struct {
	// HTML is the normalized content.
	HTML string
	// Unbalanced is set when the input contained an unclosed math
	// delimiter. The content is then returned with math extracted but
	// without emphasis conversion, so nothing is guessed at.
	Unbalanced bool
}

// Normalize prepares raw site content for translation: rendered KaTeX
// spans are folded back to $...$ source and emphasis syntax becomes HTML.
// Unbalanced delimiters are flagged and the risky emphasis pass skipped.
func Normalize(raw string) (Result, error) {
	extracted, err := ExtractMathSource(raw)
	if err != nil {
		return Result{}, err
	}
	if !Balanced(extracted) {
		return Result{HTML: extracted, Unbalanced: true}, nil
	}
	return Result{HTML: ApplyMarkdown(extracted)}, nil
}
