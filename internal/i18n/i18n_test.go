package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLocale(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "uk_UA.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := DetectLocale(); got != "uk_UA" {
			t.Fatalf("DetectLocale() = %q, want %q", got, "uk_UA")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LC_ALL", "C")
		t.Setenv("LC_MESSAGES", "POSIX")
		t.Setenv("LANG", "fr_FR.UTF-8")

		if got := DetectLocale(); got != "fr_FR" {
			t.Fatalf("DetectLocale() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := DetectLocale(); got != "en" {
			t.Fatalf("DetectLocale() = %q, want %q", got, "en")
		}
	})
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"fr_FR": "fr",
		"pt-BR": "pt",
		"uk":    "uk",
		"":      "en",
		"!!":    "en",
	}
	for in, want := range tests {
		if got := BaseLanguage(in); got != want {
			t.Errorf("BaseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestT(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	po = nil
	if got := T("Nothing found"); got != "Nothing found" {
		t.Fatalf("T fallback = %q", got)
	}

	Init("uk")
	if got := T("Nothing found"); got != "Нічого не знайдено" {
		t.Errorf("T(uk) = %q", got)
	}
	if got := T("untranslated message"); got != "untranslated message" {
		t.Errorf("T passthrough = %q", got)
	}

	Init("en_US")
	if got := T("No connection"); got != "No connection" {
		t.Errorf("T(en) = %q", got)
	}
}
