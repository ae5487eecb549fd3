package translator

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)[^>]*?(/?)>`)

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// tagStructureBalanced reports whether every opened tag in fragment is
// closed in order. It is a cheap structural check on model output, not a
// full HTML parse; browsers are forgiving, the artifact tree should not
// have to be.
func tagStructureBalanced(fragment string) bool {
	var stack []string
	for _, m := range tagPattern.FindAllStringSubmatch(fragment, -1) {
		closing := m[1] == "/"
		name := strings.ToLower(m[2])
		selfClosing := m[3] == "/"
		if voidElements[name] || selfClosing {
			continue
		}
		if !closing {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != name {
			return false
		}
		stack = stack[:len(stack)-1]
	}
	return len(stack) == 0
}
