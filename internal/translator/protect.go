package translator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/markup"
)

// Math spans are opaque to the language model: they are swapped for
// placeholders before the call and restored afterwards, so the model can
// neither translate nor mangle TeX source.

const mathPlaceholderFormat = "<<<KATEX_MATH_%d>>>"

var mathPlaceholderPattern = regexp.MustCompile(`<<<KATEX_MATH_\d+>>>`)

// ProtectMathSpans replaces every $...$ / $$...$$ span in content with a
// numbered placeholder. The returned map restores them.
func ProtectMathSpans(content string) (string, map[string]string) {
	segs, _ := markup.SplitMath(content)
	placeholders := make(map[string]string)
	var sb strings.Builder
	n := 0
	for _, seg := range segs {
		if !seg.Math {
			sb.WriteString(seg.Text)
			continue
		}
		key := fmt.Sprintf(mathPlaceholderFormat, n)
		placeholders[key] = seg.Text
		sb.WriteString(key)
		n++
	}
	return sb.String(), placeholders
}

// RestoreMathSpans swaps placeholders back for their original math spans.
func RestoreMathSpans(content string, placeholders map[string]string) string {
	for key, original := range placeholders {
		content = strings.ReplaceAll(content, key, original)
	}
	return content
}

// missingPlaceholders returns the placeholder keys absent from content.
func missingPlaceholders(content string, placeholders map[string]string) []string {
	var missing []string
	for key := range placeholders {
		if !strings.Contains(content, key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// strayPlaceholders reports placeholders the model invented or duplicated.
func strayPlaceholders(content string, placeholders map[string]string) []string {
	var stray []string
	seen := map[string]int{}
	for _, m := range mathPlaceholderPattern.FindAllString(content, -1) {
		seen[m]++
		if _, ok := placeholders[m]; !ok {
			stray = append(stray, m)
		}
	}
	for key, count := range seen {
		if count > 1 {
			stray = append(stray, key)
		}
	}
	return stray
}
