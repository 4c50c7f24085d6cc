// Package monitor runs the refresh loops that poll the backend and publish computed KPIs.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"botwatch-go/internal/alert"
	"botwatch-go/internal/feed"
	"botwatch-go/internal/history"
	"botwatch-go/internal/journal"
	"botwatch-go/internal/ledger"
	"botwatch-go/internal/market"
	"botwatch-go/internal/metrics"
	"botwatch-go/internal/sim"
	"botwatch-go/internal/stats"
)

// Snapshot is the latest set of computed dashboard figures.
type Snapshot struct {
	KPIs        ledger.KPIs
	Correlation stats.Result
	Projection  sim.Projection
	MarkPrice   float64
	UpdatedAt   time.Time
}

// Params bundles the collaborators and knobs an Engine needs.
type Params struct {
	Client         *feed.Client
	History        *history.Buffer
	Simulator      *sim.Simulator
	Journal        *journal.Writer // nil disables persistence
	Limits         alert.Limits
	Lag            int
	SimDays        int
	SimPaths       int
	TradesInterval time.Duration
	SeriesInterval time.Duration
	SimInterval    time.Duration
	Log            zerolog.Logger
}

// Engine owns the periodic fetch-compute-publish cycle. Every computation it
// invokes is stateless, so overlapping refreshes only contend on the snapshot
// cell and the history buffer.
type Engine struct {
	client    *feed.Client
	hist      *history.Buffer
	simulator *sim.Simulator
	journal   *journal.Writer
	limits    alert.Limits
	lag       int
	simDays   int
	simPaths  int

	tradesInterval time.Duration
	seriesInterval time.Duration
	simInterval    time.Duration

	log zerolog.Logger

	mu        sync.Mutex
	last      Snapshot
	mark      float64
	lastPoint time.Time
}

// New wires an Engine from params, clamping simulation shape to at least one
// day and one path.
func New(p Params) *Engine {
	if p.SimDays < 1 {
		p.SimDays = 1
	}
	if p.SimPaths < 1 {
		p.SimPaths = 1
	}
	if p.Lag < 0 {
		p.Lag = 0
	}
	if p.TradesInterval <= 0 {
		p.TradesInterval = 20 * time.Second
	}
	if p.SeriesInterval <= 0 {
		p.SeriesInterval = 30 * time.Second
	}
	if p.SimInterval <= 0 {
		p.SimInterval = 60 * time.Second
	}
	return &Engine{
		client:         p.Client,
		hist:           p.History,
		simulator:      p.Simulator,
		journal:        p.Journal,
		limits:         p.Limits,
		lag:            p.Lag,
		simDays:        p.SimDays,
		simPaths:       p.SimPaths,
		tradesInterval: p.TradesInterval,
		seriesInterval: p.SeriesInterval,
		simInterval:    p.SimInterval,
		log:            p.Log,
	}
}

// Run drives all refresh loops until the context is canceled. Fetch failures
// are logged and counted, never fatal.
func (e *Engine) Run(ctx context.Context) error {
	e.refresh(ctx, "trades", e.RefreshTrades)
	e.refresh(ctx, "series", e.RefreshSeries)
	e.refresh(ctx, "sim", e.RefreshSim)

	tradesTicker := time.NewTicker(e.tradesInterval)
	defer tradesTicker.Stop()
	seriesTicker := time.NewTicker(e.seriesInterval)
	defer seriesTicker.Stop()
	simTicker := time.NewTicker(e.simInterval)
	defer simTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tradesTicker.C:
			e.refresh(ctx, "trades", e.RefreshTrades)
		case <-seriesTicker.C:
			e.refresh(ctx, "series", e.RefreshSeries)
		case <-simTicker.C:
			e.refresh(ctx, "sim", e.RefreshSim)
		}
	}
}

func (e *Engine) refresh(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.FetchErrorsTotal.WithLabelValues(name).Inc()
		e.log.Warn().Err(err).Str("feed", name).Msg("refresh failed")
		return
	}
	metrics.RefreshesTotal.WithLabelValues(name).Inc()
}

// RefreshTrades fetches the trade history plus status snapshot, recomputes the
// ledger KPIs, and publishes them.
func (e *Engine) RefreshTrades(ctx context.Context) error {
	trades, err := e.client.Trades(ctx)
	if err != nil {
		return err
	}

	mark := e.MarkPrice()
	if status, err := e.client.Status(ctx); err == nil && status.Price > 0 {
		mark = status.Price
		e.SetMarkPrice(status.Price)
	} else if err != nil {
		e.log.Warn().Err(err).Msg("status fetch failed, using last mark")
	}

	kpis := ledger.Compute(trades, mark)

	if e.journal != nil {
		for _, t := range trades {
			e.journal.Record(t)
		}
	}

	metrics.RealizedPnl.Set(kpis.Realized)
	metrics.UnrealizedPnl.Set(kpis.Unrealized)
	metrics.NetPosition.Set(kpis.NetPosition)
	metrics.MaxDrawdown.Set(kpis.MaxDrawdown)
	metrics.Fills.WithLabelValues("win").Set(float64(kpis.Wins))
	metrics.Fills.WithLabelValues("loss").Set(float64(kpis.Losses))

	if e.limits.Breached(kpis.MaxDrawdown) {
		metrics.DrawdownAlertsTotal.Inc()
		e.log.Warn().
			Float64("drawdown", kpis.MaxDrawdown).
			Float64("limit", e.limits.MaxDrawdown).
			Msg("drawdown limit breached")
	}

	e.mu.Lock()
	e.last.KPIs = kpis
	e.last.MarkPrice = mark
	e.last.UpdatedAt = time.Now().UTC()
	e.mu.Unlock()

	e.log.Info().
		Int("trades", len(trades)).
		Float64("realized", kpis.Realized).
		Float64("unrealized", kpis.Unrealized).
		Str("position", string(kpis.Position)).
		Float64("qty", kpis.NetPosition).
		Float64("drawdown", kpis.MaxDrawdown).
		Int("wins", kpis.Wins).
		Int("losses", kpis.Losses).
		Msg("ledger refreshed")
	return nil
}

// RefreshSeries fetches the sentiment/price timeline, folds it into the
// bounded history window, and recomputes the correlation.
func (e *Engine) RefreshSeries(ctx context.Context) error {
	points, err := e.client.SentimentTimeline(ctx)
	if err != nil {
		return err
	}
	e.appendNewPoints(points)

	result := stats.Correlate(e.hist.Snapshot(), e.lag)

	metrics.Correlation.Set(result.Correlation)
	metrics.CorrelationPairs.Set(float64(result.PairCount))

	e.mu.Lock()
	e.last.Correlation = result
	e.last.UpdatedAt = time.Now().UTC()
	e.mu.Unlock()

	e.log.Info().
		Float64("correlation", result.Correlation).
		Int("pairs", result.PairCount).
		Int("lag", e.lag).
		Msg("correlation refreshed")
	return nil
}

// appendNewPoints folds polled timeline points into the history window. Only
// points newer than the buffered tail are added, so repeated polls of an
// overlapping window do not duplicate buckets. Timestamp-less payloads cannot
// be deduplicated and replace the window wholesale.
func (e *Engine) appendNewPoints(points []market.SeriesPoint) {
	if len(points) == 0 {
		return
	}
	if points[len(points)-1].Ts.IsZero() {
		e.hist.Reset()
		e.hist.Append(points...)
		return
	}

	e.mu.Lock()
	cutoff := e.lastPoint
	e.mu.Unlock()

	fresh := make([]market.SeriesPoint, 0, len(points))
	for _, p := range points {
		if p.Ts.After(cutoff) {
			fresh = append(fresh, p)
			cutoff = p.Ts
		}
	}
	if len(fresh) == 0 {
		return
	}
	e.hist.Append(fresh...)

	e.mu.Lock()
	if cutoff.After(e.lastPoint) {
		e.lastPoint = cutoff
	}
	e.mu.Unlock()
}

// RefreshSim reprojects the terminal price distribution from the latest mark.
func (e *Engine) RefreshSim(ctx context.Context) error {
	mark := e.MarkPrice()
	if mark <= 0 {
		if status, err := e.client.Status(ctx); err == nil && status.Price > 0 {
			mark = status.Price
			e.SetMarkPrice(status.Price)
		} else if err != nil {
			return fmt.Errorf("no mark price for simulation: %w", err)
		}
	}
	if mark <= 0 {
		e.log.Debug().Msg("skipping simulation, no mark price yet")
		return nil
	}

	projection := e.simulator.Project(mark, e.simDays, e.simPaths)

	for q, v := range map[int]float64{10: projection.P10, 50: projection.P50, 90: projection.P90} {
		metrics.SimPercentile.WithLabelValues("p" + strconv.Itoa(q)).Set(v)
	}

	e.mu.Lock()
	e.last.Projection = projection
	e.last.UpdatedAt = time.Now().UTC()
	e.mu.Unlock()

	e.log.Info().
		Float64("start", mark).
		Int("days", e.simDays).
		Int("paths", e.simPaths).
		Float64("p10", projection.P10).
		Float64("p50", projection.P50).
		Float64("p90", projection.P90).
		Msg("simulation refreshed")
	return nil
}

// SetMarkPrice records a fresh mark price (status poll or live stream).
func (e *Engine) SetMarkPrice(px float64) {
	if px <= 0 {
		return
	}
	e.mu.Lock()
	e.mark = px
	e.mu.Unlock()
	metrics.MarkPrice.Set(px)
}

// MarkPrice returns the last observed mark price, zero if none yet.
func (e *Engine) MarkPrice() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mark
}

// Snapshot returns a copy of the latest computed figures.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}
