// Package polygon implements the market.Feed contract against the
// Polygon.io REST API.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rustyeddy/desk/market"
)

// BaseURL is the production Polygon API endpoint.
const BaseURL = "https://api.polygon.io"

// Client is a Polygon.io REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Polygon API client.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// marketStatusResponse represents the /v1/marketstatus/now response.
type marketStatusResponse struct {
	Market string `json:"market"` // "open", "closed", "extended-hours"
}

// aggBar represents a single aggregate bar in grouped and previous-close
// responses.
type aggBar struct {
	Ticker string  `json:"T"`
	Close  float64 `json:"c"`
	Time   int64   `json:"t"` // bar end, unix milliseconds
}

// aggsResponse represents aggregate endpoints' common envelope.
type aggsResponse struct {
	Results []aggBar `json:"results"`
}

// tickerSnapshotResponse represents the single-ticker snapshot response.
type tickerSnapshotResponse struct {
	Ticker struct {
		Min struct {
			Close float64 `json:"c"`
		} `json:"min"`
	} `json:"ticker"`
}

// IsOpen reports whether the US equities market is currently open.
func (c *Client) IsOpen(ctx context.Context) (bool, error) {
	var status marketStatusResponse
	if err := c.get(ctx, "/v1/marketstatus/now", &status); err != nil {
		return false, err
	}
	return status.Market == "open", nil
}

// EndOfDay fetches the whole market's most recent end-of-day close table.
// The trading date is probed via SPY's previous close, so weekends and
// holidays resolve to the last session.
func (c *Client) EndOfDay(ctx context.Context) (market.Snapshot, error) {
	var prev aggsResponse
	if err := c.get(ctx, "/v2/aggs/ticker/SPY/prev?adjusted=true", &prev); err != nil {
		return nil, fmt.Errorf("probe previous close: %w", err)
	}
	if len(prev.Results) == 0 {
		return nil, fmt.Errorf("probe previous close: empty result")
	}

	date := time.UnixMilli(prev.Results[0].Time).UTC().Format("2006-01-02")

	var grouped aggsResponse
	path := fmt.Sprintf("/v2/aggs/grouped/locale/us/market/stocks/%s?adjusted=true&include_otc=false", date)
	if err := c.get(ctx, path, &grouped); err != nil {
		return nil, fmt.Errorf("grouped daily for %s: %w", date, err)
	}

	snap := make(market.Snapshot, len(grouped.Results))
	for _, bar := range grouped.Results {
		snap[bar.Ticker] = bar.Close
	}
	return snap, nil
}

// Intraday fetches the latest minute-bar close for a single symbol.
func (c *Client) Intraday(ctx context.Context, symbol string) (float64, error) {
	var snap tickerSnapshotResponse
	path := fmt.Sprintf("/v2/snapshot/locale/us/markets/stocks/tickers/%s", symbol)
	if err := c.get(ctx, path, &snap); err != nil {
		return 0, err
	}
	return snap.Ticker.Min.Close, nil
}

// get executes an authenticated GET against path and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
