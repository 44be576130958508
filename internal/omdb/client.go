package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinehub/pkg/models"
)

// Client performs lookups against the OMDb API and decodes responses into
// the normalized internal record. Retry and caching are deliberately not
// handled here.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LookupError is a provider-reported failure: the HTTP call succeeded but
// OMDb answered Response:"False" with an error text such as
// "Movie not found!".
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("omdb lookup failed: %s", e.Message)
}

// Lookup fetches and decodes one title. The query must already be built
// (title whitespace escaped at construction).
func (c *Client) Lookup(ctx context.Context, q models.LookupQuery) (*models.Audiovisual, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("omdb: api key not configured")
	}

	reqURL := fmt.Sprintf("%s/?apikey=%s", c.baseURL, url.QueryEscape(c.apiKey))
	if params := q.QueryString(); params != "" {
		reqURL += "&" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("omdb: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("omdb: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: status %d: %s", resp.StatusCode, string(body))
	}

	var av models.Audiovisual
	if err := json.Unmarshal(body, &av); err != nil {
		return nil, fmt.Errorf("omdb: decode: %w", err)
	}

	if !av.Response {
		return nil, &LookupError{Message: providerError(body)}
	}

	return &av, nil
}

// providerError pulls the free-text "Error" field out of a failed response.
// It is not part of the response shape, so it is read separately here.
func providerError(body []byte) string {
	var raw struct {
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &raw); err == nil && raw.Error != "" {
		return raw.Error
	}
	return "provider reported failure"
}
