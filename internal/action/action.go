// Package action forwards manual dashboard actions to the autotrader backend.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"botwatch-go/internal/metrics"
)

// Client submits manual buy/sell orders, parameter updates, and mode toggles.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds an action client rooted at baseURL.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Buy submits a manual market buy sized in quote currency (USDT).
func (c *Client) Buy(ctx context.Context, usdt float64) error {
	if usdt <= 0 {
		return fmt.Errorf("buy size must be positive")
	}
	if err := c.post(ctx, "/api/manual/buy", map[string]any{"usdt": usdt}); err != nil {
		return fmt.Errorf("manual buy: %w", err)
	}
	metrics.ActionsTotal.WithLabelValues("buy").Inc()
	c.log.Info().Float64("usdt", usdt).Msg("manual buy submitted")
	return nil
}

// Sell submits a manual market sell for the given quantity.
func (c *Client) Sell(ctx context.Context, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("sell quantity must be positive")
	}
	if err := c.post(ctx, "/api/manual/sell", map[string]any{"qty": qty}); err != nil {
		return fmt.Errorf("manual sell: %w", err)
	}
	metrics.ActionsTotal.WithLabelValues("sell").Inc()
	c.log.Info().Float64("qty", qty).Msg("manual sell submitted")
	return nil
}

// SellAll liquidates the whole open position.
func (c *Client) SellAll(ctx context.Context) error {
	if err := c.post(ctx, "/api/manual/sell", map[string]any{"all": true}); err != nil {
		return fmt.Errorf("manual sell all: %w", err)
	}
	metrics.ActionsTotal.WithLabelValues("sell").Inc()
	c.log.Info().Msg("manual sell-all submitted")
	return nil
}

// UpdateParams pushes edited strategy parameters to the backend.
func (c *Client) UpdateParams(ctx context.Context, params map[string]any) error {
	if len(params) == 0 {
		return fmt.Errorf("no parameters to update")
	}
	if err := c.post(ctx, "/api/params/update", params); err != nil {
		return fmt.Errorf("update params: %w", err)
	}
	metrics.ActionsTotal.WithLabelValues("params").Inc()
	c.log.Info().Int("fields", len(params)).Msg("params update submitted")
	return nil
}

// ToggleAutotrade flips the backend's autotrade mode.
func (c *Client) ToggleAutotrade(ctx context.Context) error {
	if err := c.post(ctx, "/api/autotrade/toggle", map[string]any{}); err != nil {
		return fmt.Errorf("toggle autotrade: %w", err)
	}
	metrics.ActionsTotal.WithLabelValues("toggle").Inc()
	c.log.Info().Msg("autotrade toggle submitted")
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
