package markup

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Segment is one run of content: either plain text/HTML or a math span
// including its delimiters.
type Segment struct {
	Text string
	Math bool
}

// SplitMath splits s into alternating plain and math segments. Math
// segments keep their delimiters verbatim ($...$ or $$...$$). Escaped
// dollars (\$) never open a span. The second return value reports whether
// every opened span was closed; on unbalanced input the trailing text
// after the last unclosed delimiter is returned as plain text.
func SplitMath(s string) ([]Segment, bool) {
	var segs []Segment
	var plain strings.Builder
	i := 0
	balanced := true

	flushPlain := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '$' {
			plain.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if c != '$' {
			plain.WriteByte(c)
			i++
			continue
		}

		delim := "$"
		if i+1 < len(s) && s[i+1] == '$' {
			delim = "$$"
		}
		end := findClose(s, i+len(delim), delim)
		if end < 0 {
			// Unclosed delimiter: fail safe, keep the rest as plain text.
			balanced = false
			plain.WriteString(s[i:])
			i = len(s)
			break
		}
		flushPlain()
		segs = append(segs, Segment{Text: s[i : end+len(delim)], Math: true})
		i = end + len(delim)
	}
	flushPlain()
	return segs, balanced
}

// findClose returns the index of the closing delimiter at or after start,
// skipping escaped dollars, or -1.
func findClose(s string, start int, delim string) int {
	for i := start; i+len(delim) <= len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i:i+len(delim)] == delim {
			// A $$ closer must not be matched by the first $ of a $$.
			if delim == "$" && i+1 < len(s) && s[i+1] == '$' && i == start {
				continue
			}
			return i
		}
	}
	return -1
}

// Balanced reports whether every math delimiter in s is closed.
func Balanced(s string) bool {
	_, ok := SplitMath(s)
	return ok
}

// MathSpans returns the math segments of s in order, delimiters included.
func MathSpans(s string) []string {
	segs, _ := SplitMath(s)
	var out []string
	for _, seg := range segs {
		if seg.Math {
			out = append(out, seg.Text)
		}
	}
	return out
}

// ExtractMathSource replaces rendered KaTeX spans with their TeX source
// wrapped in $...$, so a later pass sees plain delimiters. The TeX source
// is taken from the annotation node KaTeX embeds. Spans without an
// annotation are left untouched.
func ExtractMathSource(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	doc.Find("span.katex").Each(func(_ int, sel *goquery.Selection) {
		ann := sel.Find(`annotation[encoding="application/x-tex"]`)
		if ann.Length() == 0 {
			return
		}
		tex := ann.First().Text()
		sel.ReplaceWithHtml("$" + html.EscapeString(tex) + "$")
	})
	return doc.Find("body").Html()
}

// HasRawDollars reports whether the document still contains an unescaped
// dollar outside rendered KaTeX markup. Rendered artifacts must come back
// false; a true result marks a file the repair utilities should revisit.
func HasRawDollars(fragment string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// Unparseable content is treated as suspect.
		return true
	}
	doc.Find("span.katex, script, style").Remove()
	text := doc.Find("body").Text()
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if text[i] == '$' {
			return true
		}
	}
	return false
}

// RepairStrayDollars fixes dollar signs that an earlier broken conversion
// left HTML-escaped, which splits what should be one math span. It never
// guesses: if the result is still unbalanced the input is returned
// unchanged and repaired is false.
func RepairStrayDollars(s string) (out string, repaired bool) {
	if Balanced(s) {
		return s, false
	}
	fixed := strings.NewReplacer("&#36;", "$", "&#x24;", "$", "&dollar;", "$").Replace(s)
	if fixed != s && Balanced(fixed) {
		return fixed, true
	}
	return s, false
}
