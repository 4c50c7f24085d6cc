// Package sim projects terminal price distributions with a geometric random-walk Monte-Carlo.
package sim

import (
	"math"
	"math/rand"
	"sort"
)

const (
	// DefaultDrift is the daily drift applied when none is configured.
	DefaultDrift = 0.0
	// DefaultVolatility is the daily volatility applied when none is configured.
	DefaultVolatility = 0.04
)

// Projection summarizes the simulated terminal price distribution.
type Projection struct {
	P10 float64
	P50 float64
	P90 float64
}

// Simulator runs repeated geometric price paths from a shared drift/volatility
// parameterization. The per-step noise is uniform on [-1, 1) scaled by
// sqrt(dt), not a Gaussian draw.
type Simulator struct {
	drift      float64
	volatility float64
	rng        *rand.Rand
}

// New builds a simulator. A volatility of zero falls back to the default; the
// seed makes runs reproducible.
func New(drift, volatility float64, seed int64) *Simulator {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	return &Simulator{
		drift:      drift,
		volatility: volatility,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Project simulates paths independent trajectories of days steps each from
// startPrice and reports the 10th/50th/90th percentile terminal prices.
// Callers clamp days and paths to at least 1 before invoking.
func (s *Simulator) Project(startPrice float64, days, paths int) Projection {
	const dt = 1.0
	finals := make([]float64, 0, paths)
	for p := 0; p < paths; p++ {
		px := startPrice
		for d := 0; d < days; d++ {
			z := math.Sqrt(dt) * (s.rng.Float64()*2 - 1)
			px *= math.Exp((s.drift-0.5*s.volatility*s.volatility)*dt + s.volatility*z)
		}
		finals = append(finals, px)
	}
	sort.Float64s(finals)
	return Projection{
		P10: percentile(finals, 10),
		P50: percentile(finals, 50),
		P90: percentile(finals, 90),
	}
}

// percentile applies nearest-rank indexing over an ascending-sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(q / 100 * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
