// Package dictapi talks to remote dictionary backends: it lists the
// supported languages and looks up words for a language pair.
package dictapi

import (
	"context"
	"fmt"

	"github.com/valpere/peredict/internal/dict"
)

// LookupRequest is a single dictionary lookup.
type LookupRequest struct {
	Source string
	Dest   string
	Text   string
	// UI is the locale the backend should use for labels, when supported.
	UI    string
	Flags dict.LookupFlags
}

// Pair returns the language pair in "source-dest" form.
func (r LookupRequest) Pair() string {
	return r.Source + "-" + r.Dest
}

// Reverse returns a copy of r with source and destination exchanged.
func (r LookupRequest) Reverse() LookupRequest {
	r.Source, r.Dest = r.Dest, r.Source
	return r
}

// Client is a dictionary backend. An empty definition list from Lookup
// means "nothing found" and is not an error.
type Client interface {
	Name() string
	GetLanguages(ctx context.Context, apiKey, uiLocale string) ([]dict.Language, error)
	Lookup(ctx context.Context, apiKey string, req LookupRequest) ([]dict.Definition, error)
}

// TransportError reports that the backend could not be reached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a structured error answered by the backend.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.Code)
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}
