package dictapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	translate "cloud.google.com/go/translate"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/valpere/peredict/internal/dict"
)

// GoogleClient implements Client over Google Cloud Translation. It has no
// dictionary articles, so a lookup yields at most one definition holding a
// single translation.
type GoogleClient struct {
	credentials string
	logger      *logrus.Logger
}

// NewGoogleClient creates a client. credentials may be empty to use the
// application default credentials; an API key passed to the Client methods
// takes precedence over both.
func NewGoogleClient(credentials string, logger *logrus.Logger) *GoogleClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &GoogleClient{
		credentials: credentials,
		logger:      logger,
	}
}

func (c *GoogleClient) Name() string {
	return "google"
}

func (c *GoogleClient) newClient(ctx context.Context, apiKey string) (*translate.Client, error) {
	var opts []option.ClientOption
	switch {
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	case c.credentials != "":
		opts = append(opts, option.WithCredentialsFile(c.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// GetLanguages returns the languages supported by the service, named in uiLocale.
func (c *GoogleClient) GetLanguages(ctx context.Context, apiKey, uiLocale string) (langs []dict.Language, err error) {
	start := time.Now()
	defer func() { observeRequest(c.Name(), "languages", start, err) }()

	target := language.English
	if t, perr := language.Parse(uiLocale); perr == nil {
		target = t
	}

	client, err := c.newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	supported, err := client.SupportedLanguages(ctx, target)
	if err != nil {
		return nil, c.wrapError("languages", err)
	}

	langs = make([]dict.Language, 0, len(supported))
	for _, l := range supported {
		langs = append(langs, dict.Language{Code: l.Tag.String(), Name: l.Name})
	}
	return langs, nil
}

// Lookup translates req.Text. A translation identical to the input is
// reported as no result.
func (c *GoogleClient) Lookup(ctx context.Context, apiKey string, req LookupRequest) (defs []dict.Definition, err error) {
	start := time.Now()
	defer func() { observeRequest(c.Name(), "lookup", start, err) }()

	source, err := language.Parse(req.Source)
	if err != nil {
		return nil, &ServerError{Code: 400, Message: fmt.Sprintf("invalid source language %q", req.Source)}
	}
	target, err := language.Parse(req.Dest)
	if err != nil {
		return nil, &ServerError{Code: 400, Message: fmt.Sprintf("invalid target language %q", req.Dest)}
	}

	client, err := c.newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	c.logger.WithFields(logrus.Fields{
		"lang":        req.Pair(),
		"text_length": len(req.Text),
	}).Debug("Translating text with Google")

	translations, err := client.Translate(ctx, []string{req.Text}, target, &translate.Options{
		Source: source,
		Format: translate.Text,
	})
	if err != nil {
		return nil, c.wrapError("lookup", err)
	}

	if len(translations) == 0 {
		return nil, nil
	}
	text := strings.TrimSpace(translations[0].Text)
	if text == "" || strings.EqualFold(text, req.Text) {
		return nil, nil
	}

	return []dict.Definition{{
		Text: req.Text,
		Tr:   []dict.Translation{{Text: text}},
	}}, nil
}

func (c *GoogleClient) wrapError(op string, err error) error {
	c.logger.WithError(err).WithField("op", op).Debug("Google Translation request failed")

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &ServerError{Code: apiErr.Code, Message: apiErr.Message}
	}
	return &TransportError{Op: op, Err: err}
}
