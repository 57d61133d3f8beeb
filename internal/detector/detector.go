// Package detector guesses the language of a lookup phrase so the CLI can
// pick a source language automatically.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/peredict/internal/dict"
)

// Detector wraps a lingua detector. Building one is expensive; reuse it.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// DetectISO returns the ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Guess returns the code of text's language when it is one of candidates.
func (d *Detector) Guess(text string, candidates []dict.Language) (string, bool) {
	code, ok := d.DetectISO(text)
	if !ok {
		return "", false
	}
	if dict.IndexOf(candidates, code) < 0 {
		return "", false
	}
	return code, true
}
