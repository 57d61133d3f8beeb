package orchestrator

import (
	"context"
	"errors"

	"github.com/valpere/peredict/internal/dictapi"
)

var (
	ErrLanguagesNotLoaded = errors.New("languages are not loaded")
	ErrIndexOutOfRange    = errors.New("language index out of range")
	ErrUnknownLanguage    = errors.New("unknown language")

	errNoLanguages = errors.New("backend returned no languages")
)

// ErrorCategory is the user-facing class of a failed lookup.
type ErrorCategory int

const (
	CategoryConnectivity ErrorCategory = iota + 1
	CategoryUnsupportedLanguagePair
	CategoryRequestTooLarge
	// CategoryRateLimitedOrUnauthorized covers key, quota and gateway
	// failures. It is shown as a generic error.
	CategoryRateLimitedOrUnauthorized
	CategoryServerGeneric
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConnectivity:
		return "connectivity"
	case CategoryUnsupportedLanguagePair:
		return "unsupported-language-pair"
	case CategoryRequestTooLarge:
		return "request-too-large"
	case CategoryRateLimitedOrUnauthorized:
		return "rate-limited-or-unauthorized"
	case CategoryServerGeneric:
		return "server-generic"
	default:
		return "unknown"
	}
}

// Categorize maps a lookup error to the category shown to the user.
func Categorize(err error) ErrorCategory {
	var serr *dictapi.ServerError
	if errors.As(err, &serr) {
		switch serr.Code {
		case 400, 501:
			return CategoryUnsupportedLanguagePair
		case 401, 402, 403, 502:
			return CategoryRateLimitedOrUnauthorized
		case 413:
			return CategoryRequestTooLarge
		default:
			return CategoryServerGeneric
		}
	}

	var terr *dictapi.TransportError
	if errors.As(err, &terr) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryConnectivity
	}
	return CategoryServerGeneric
}
