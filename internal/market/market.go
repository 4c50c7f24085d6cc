// Package market standardizes payloads shared between data ingestion and analytics layers.
package market

import "time"

// Side enumerates trade directions as reported by the backend.
type Side string

const (
	// Buy indicates an executed purchase.
	Buy Side = "BUY"
	// Sell indicates an executed disposal.
	Sell Side = "SELL"
)

// Trade models one executed fill from the backend trade history.
type Trade struct {
	ID    string
	Side  Side
	Qty   float64
	Price float64
	Fee   float64
	Ts    time.Time
}

// Status carries the latest backend state snapshot (mark price and position flag).
type Status struct {
	Price      float64
	Position   string
	InPosition bool
	Ts         time.Time
}

// SeriesPoint is one bucket of the sentiment/price timeline.
type SeriesPoint struct {
	Ts        time.Time
	Price     float64
	Sentiment float64
}
