package dictapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/valpere/peredict/internal/dict"
)

const (
	// DefaultYandexURL is the base URL of the Yandex Dictionary JSON API.
	DefaultYandexURL = "https://dictionary.yandex.net/api/v1/dicservice.json"
	// DefaultYandexTimeout bounds a single HTTP exchange.
	DefaultYandexTimeout = 30 * time.Second

	maxErrorBody = 4 << 10
)

// YandexClient implements Client over the Yandex Dictionary REST API.
type YandexClient struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewYandexClient creates a client for baseURL (DefaultYandexURL when empty).
func NewYandexClient(baseURL string, logger *logrus.Logger) *YandexClient {
	if baseURL == "" {
		baseURL = DefaultYandexURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &YandexClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultYandexTimeout},
		logger:  logger,
	}
}

func (c *YandexClient) Name() string {
	return "yandex"
}

// GetLanguages returns every language that appears on either side of a
// supported pair, in first-seen order.
func (c *YandexClient) GetLanguages(ctx context.Context, apiKey, uiLocale string) ([]dict.Language, error) {
	params := url.Values{}
	params.Set("key", apiKey)

	var pairs []string
	if err := c.get(ctx, "getLangs", params, &pairs); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var codes []string
	for _, pair := range pairs {
		for _, code := range strings.SplitN(pair, "-", 2) {
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			codes = append(codes, code)
		}
	}

	return languagesFromCodes(codes, uiLocale), nil
}

// Lookup queries the dictionary for req.Text in the req.Pair() direction.
func (c *YandexClient) Lookup(ctx context.Context, apiKey string, req LookupRequest) ([]dict.Definition, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("lang", req.Pair())
	params.Set("text", req.Text)
	if req.UI != "" {
		params.Set("ui", req.UI)
	}
	if req.Flags != 0 {
		params.Set("flags", strconv.Itoa(int(req.Flags)))
	}

	var resp struct {
		Def []dict.Definition `json:"def"`
	}
	if err := c.get(ctx, "lookup", params, &resp); err != nil {
		return nil, err
	}
	return resp.Def, nil
}

func (c *YandexClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() { observeRequest(c.Name(), endpoint, start, err) }()

	apiURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"lang":     params.Get("lang"),
	}).Debug("Sending dictionary request")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Dictionary request completed")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serverErr := &ServerError{Code: resp.StatusCode}

		var errResp struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if errResp.Code != 0 {
				serverErr.Code = errResp.Code
			}
			serverErr.Message = errResp.Message
		}

		c.logger.WithFields(logrus.Fields{
			"endpoint":    endpoint,
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Debug("Dictionary API returned an error")
		return serverErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &TransportError{Op: endpoint, Err: err}
		}
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
