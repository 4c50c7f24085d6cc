// Package feed hosts clients for the autotrader backend REST API and live price sources.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"botwatch-go/internal/market"
)

const defaultTimeout = 10 * time.Second

// Client polls the backend dashboard endpoints for trade history, status, and
// the sentiment/price timeline.
type Client struct {
	baseURL    string
	tradesPath string
	statusPath string
	seriesPath string
	apiKey     string
	http       *http.Client
	log        zerolog.Logger
}

// Option configures Client construction parameters.
type Option func(*Client)

// WithPaths overrides the default endpoint paths.
func WithPaths(trades, status, series string) Option {
	return func(c *Client) {
		if trades != "" {
			c.tradesPath = trades
		}
		if status != "" {
			c.statusPath = status
		}
		if series != "" {
			c.seriesPath = series
		}
	}
}

// WithAPIKey attaches an API key header to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient swaps the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tradesPath: "/api/trades",
		statusPath: "/api/status",
		seriesPath: "/api/sentiment_price",
		http:       &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trades fetches the chronological trade history. The backend serves either a
// bare array or an {items: [...]} envelope; both are accepted.
func (c *Client) Trades(ctx context.Context) ([]market.Trade, error) {
	var payload tradesResponse
	if err := c.getJSON(ctx, c.tradesPath, &payload); err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	trades := make([]market.Trade, 0, len(payload.rows))
	for _, row := range payload.rows {
		trades = append(trades, row.toTrade())
	}
	return trades, nil
}

// Status fetches the current backend state snapshot.
func (c *Client) Status(ctx context.Context) (market.Status, error) {
	var row statusRow
	if err := c.getJSON(ctx, c.statusPath, &row); err != nil {
		return market.Status{}, fmt.Errorf("fetch status: %w", err)
	}
	position := strings.ToUpper(strings.TrimSpace(row.Position))
	return market.Status{
		Price:      float64(row.Price),
		Position:   position,
		InPosition: row.InPosition || position == "LONG",
		Ts:         time.Now().UTC(),
	}, nil
}

// SentimentTimeline fetches the bucketed sentiment/price series, oldest first.
func (c *Client) SentimentTimeline(ctx context.Context) ([]market.SeriesPoint, error) {
	var payload seriesResponse
	if err := c.getJSON(ctx, c.seriesPath, &payload); err != nil {
		return nil, fmt.Errorf("fetch sentiment timeline: %w", err)
	}
	points := make([]market.SeriesPoint, 0, len(payload.rows))
	for _, row := range payload.rows {
		points = append(points, market.SeriesPoint{
			Ts:        row.timestamp(),
			Price:     float64(row.Price),
			Sentiment: float64(row.Sentiment),
		})
	}
	return points, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "botwatch-go/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
