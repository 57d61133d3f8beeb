// Package sanitize cleans raw user input before it is sent to the dictionary.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// disallowedRe matches every rune that is not a letter, a word character,
// a space, a hyphen or an apostrophe.
var disallowedRe = regexp.MustCompile(`[^\p{L}\w '\-]`)

// Input normalizes text to NFC, strips disallowed characters and trims the
// edges. An empty return value means there is nothing to look up.
//
// NFC runs first so that decomposed accents are folded into their base
// letter instead of being stripped as separate marks.
func Input(text string) string {
	text = norm.NFC.String(text)
	text = disallowedRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
