// Package i18n translates the user-facing messages of peredict and
// detects the user's locale.
//
// Catalogs are embedded from locales/{lang}/LC_MESSAGES/peredict.po and
// loaded once by Init. Before Init, T returns its argument unchanged.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "peredict"

var po *gotext.Locale

// Init loads the catalog for lang, or for the environment locale when
// lang is empty.
func Init(lang string) {
	if lang == "" {
		lang = DetectLocale()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid, returning it unchanged when no translation exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// DetectLocale reads LANGUAGE, LC_ALL, LC_MESSAGES and LANG in gettext
// order and returns the first usable locale without its encoding suffix,
// or "en".
func DetectLocale() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val = strings.SplitN(val, ":", 2)[0]
		}
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}

// BaseLanguage reduces a locale such as "fr_FR" or "pt-BR" to its base
// language code ("fr", "pt"). Unparseable input yields "en".
func BaseLanguage(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}
