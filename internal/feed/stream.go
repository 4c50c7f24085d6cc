package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"botwatch-go/internal/metrics"
)

const defaultStreamURL = "wss://stream.binance.com:9443/stream?streams=%s"

// PriceUpdate is one live mark-price observation from the stream.
type PriceUpdate struct {
	Symbol string
	Price  float64
	Ts     time.Time
}

// Stream keeps the mark price fresh between status polls by consuming the
// exchange's public trade websocket for the symbol the backend trades.
type Stream struct {
	symbol  string
	baseURL string
	log     zerolog.Logger
}

// NewStream builds a price stream for one symbol. baseURL may be empty to use
// the default exchange endpoint; tests point it at a local server.
func NewStream(symbol, baseURL string, log zerolog.Logger) *Stream {
	if baseURL == "" {
		baseURL = defaultStreamURL
	}
	return &Stream{symbol: strings.ToUpper(strings.TrimSpace(symbol)), baseURL: baseURL, log: log}
}

type streamEnvelope struct {
	Stream string      `json:"stream"`
	Data   streamTrade `json:"data"`
}

type streamTrade struct {
	Price     string `json:"p"`
	TradeTime int64  `json:"T"`
}

// Run pushes price updates onto out until the context is canceled, reconnecting
// with exponential backoff on stream errors.
func (s *Stream) Run(ctx context.Context, out chan<- PriceUpdate) error {
	if s.symbol == "" {
		return fmt.Errorf("price stream requires a symbol")
	}

	url := s.baseURL
	if strings.Contains(url, "%s") {
		url = fmt.Sprintf(url, strings.ToLower(s.symbol)+"@trade")
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.consume(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Msg("price stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (s *Stream) consume(ctx context.Context, url string, out chan<- PriceUpdate) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info().Str("symbol", s.symbol).Msg("connected price stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		// unblock the read loop when the context goes away
		<-pingCtx.Done()
		conn.Close()
	}()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.log.Warn().Err(err).Msg("price stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env streamEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.log.Warn().Err(err).Msg("failed to decode stream message")
			continue
		}
		px, err := strconv.ParseFloat(env.Data.Price, 64)
		if err != nil || px <= 0 {
			continue
		}
		update := PriceUpdate{Symbol: s.symbol, Price: px, Ts: time.UnixMilli(env.Data.TradeTime)}

		select {
		case out <- update:
			metrics.MarkPrice.Set(px)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
