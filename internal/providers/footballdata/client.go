package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
)

// Config controls how the football-data.org client reaches the upstream API.
type Config struct {
	BaseURL     string
	APIKey      string
	Competition string // empty hits the global /transfers listing
	HTTPClient  *http.Client
}

// Client fetches transfers for one competition from football-data.org.
type Client struct {
	baseURL     string
	apiKey      string
	competition string
	httpClient  httpDoer
}

// NewClient constructs a football-data.org client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:     normalizeBaseURL(cfg.BaseURL),
		apiKey:      cfg.APIKey,
		competition: strings.ToUpper(strings.TrimSpace(cfg.Competition)),
		httpClient:  resolveHTTPClient(cfg.HTTPClient),
	}
}

// Name identifies the client in logs and metrics.
func (c *Client) Name() string {
	if c.competition == "" {
		return providerName
	}
	return providerName + ":" + c.competition
}

// FetchTransfers issues a single request and maps the response. There is no
// pagination and no retry.
func (c *Client) FetchTransfers(ctx context.Context) (transfers.RecordSet, error) {
	req, err := c.buildRequest(ctx)
	if err != nil {
		return transfers.RecordSet{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transfers.RecordSet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return transfers.RecordSet{}, &providers.RateLimitError{
			Source:     c.Name(),
			StatusCode: resp.StatusCode,
			RetryAfter: providers.ParseRetryAfter(resp.Header.Get(resetHeader), time.Now()),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return transfers.RecordSet{}, fmt.Errorf("football-data: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload transfersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return transfers.RecordSet{}, fmt.Errorf("football-data: decode: %w", err)
	}
	return mapTransfers(payload, c.competition), nil
}

func (c *Client) buildRequest(ctx context.Context) (*http.Request, error) {
	endpoint := c.baseURL + "/transfers"
	if c.competition != "" {
		endpoint = fmt.Sprintf("%s/competitions/%s/transfers", c.baseURL, c.competition)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(authHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
