// Package metrics exposes the computed dashboard KPIs over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RealizedPnl = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "ledger_realized_pnl", Help: "Realized PnL over the fetched trade history"},
	)
	UnrealizedPnl = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "ledger_unrealized_pnl", Help: "Unrealized PnL of the open position at the current mark"},
	)
	NetPosition = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "ledger_net_position", Help: "Open position quantity from FIFO lot matching"},
	)
	MaxDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "ledger_max_drawdown", Help: "Distance from peak realized equity to current realized equity"},
	)
	Fills = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "ledger_fills", Help: "Closed fills by outcome"},
		[]string{"outcome"},
	)
	Correlation = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sentiment_correlation", Help: "Lag-adjusted Pearson correlation of returns vs sentiment"},
	)
	CorrelationPairs = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sentiment_correlation_pairs", Help: "Number of paired points behind the correlation figure"},
	)
	SimPercentile = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "sim_terminal_price", Help: "Simulated terminal price percentiles"},
		[]string{"quantile"},
	)
	MarkPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "mark_price", Help: "Latest mark price from the backend or stream"},
	)
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "refreshes_total", Help: "Completed refresh cycles per feed"},
		[]string{"feed"},
	)
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_errors_total", Help: "Failed backend fetches per feed"},
		[]string{"feed"},
	)
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "actions_total", Help: "Manual actions forwarded to the backend"},
		[]string{"kind"},
	)
	DrawdownAlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "drawdown_alerts_total", Help: "Drawdown limit breaches observed"},
	)
)

func init() {
	prometheus.MustRegister(
		RealizedPnl, UnrealizedPnl, NetPosition, MaxDrawdown, Fills,
		Correlation, CorrelationPairs, SimPercentile, MarkPrice,
		RefreshesTotal, FetchErrorsTotal, ActionsTotal, DrawdownAlertsTotal,
	)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
