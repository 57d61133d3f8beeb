package dictapi

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/peredict/internal/dict"
)

// languagesFromCodes builds named languages for codes, naming them in
// uiLocale when possible and in English otherwise.
func languagesFromCodes(codes []string, uiLocale string) []dict.Language {
	var namer display.Namer
	if tag, err := language.Parse(uiLocale); err == nil {
		namer = display.Tags(tag)
	}
	fallback := display.English.Tags()

	langs := make([]dict.Language, 0, len(codes))
	for _, code := range codes {
		langs = append(langs, dict.Language{
			Code: code,
			Name: languageName(code, namer, fallback),
		})
	}
	return langs
}

func languageName(code string, namers ...display.Namer) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	for _, n := range namers {
		if n == nil {
			continue
		}
		if name := n.Name(tag); name != "" {
			return name
		}
	}
	return code
}
