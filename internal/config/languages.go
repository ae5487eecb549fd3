package config

import (
	"encoding/json"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// SourceLanguage is the language the site publishes in.
const SourceLanguage = "ja"

// Languages is the ordered set of target language codes. Insertion order
// defines translation interleaving priority; English always comes first.
type Languages []string

// languagesFile mirrors languages/config.json.
type languagesFile struct {
	Languages []string `json:"languages"`
}

// LoadLanguages reads the ordered language list from path. The list must
// contain "en"; the returned order is en-first with the remaining codes
// in file order, duplicates removed.
func LoadLanguages(path string) (Languages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "language config not readable", path, err)
	}
	var f languagesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "language config is not valid JSON", path, err)
	}
	return OrderLanguages(f.Languages)
}

// OrderLanguages validates codes and applies the en-first ordering.
func OrderLanguages(codes []string) (Languages, error) {
	seen := map[string]bool{}
	ordered := Languages{"en"}
	hasEN := false
	for _, code := range codes {
		if code == "en" {
			hasEN = true
			continue
		}
		if code == SourceLanguage || seen[code] {
			continue
		}
		if _, err := language.Parse(code); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown language code", code, err)
		}
		seen[code] = true
		ordered = append(ordered, code)
	}
	if !hasEN {
		return nil, types.NewAppError(types.ErrConfig, `language list must contain "en"`, nil)
	}
	return ordered, nil
}

// Rest returns the configured languages after English, in priority order.
func (l Languages) Rest() []string {
	if len(l) <= 1 {
		return nil
	}
	return l[1:]
}

// DisplayName returns the English name of a language code for use in
// translation prompts ("French", "Simplified Chinese", ...).
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}
