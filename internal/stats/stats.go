// Package stats derives return series and lag-adjusted correlation figures from the sentiment/price timeline.
package stats

import (
	"math"

	"botwatch-go/internal/market"
)

// displayFloor snaps near-zero coefficients to exactly zero for stable rendering.
const displayFloor = 1e-6

// Result carries the correlation figure alongside its supporting series.
type Result struct {
	Correlation float64
	PairCount   int
	Returns     []float64
}

// Correlate computes the Pearson correlation between price returns and the
// lag-shifted sentiment series. Series shorter than 3 points or with zero
// variance yield a zero result. It never fails.
func Correlate(series []market.SeriesPoint, lag int) Result {
	if len(series) < 3 {
		return Result{}
	}
	if lag < 0 {
		lag = 0
	}

	prices := make([]float64, len(series))
	sentiments := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
		// shift sentiment back by lag, clamping the head to the first value
		j := i - lag
		if j < 0 {
			j = 0
		}
		sentiments[i] = series[j].Sentiment
	}

	returns := Returns(prices)

	// index 0 carries no meaningful return
	n := min(len(returns), len(sentiments))
	a := returns[1:n]
	b := sentiments[1:n]

	return Result{
		Correlation: pearson(a, b),
		PairCount:   len(a),
		Returns:     returns,
	}
}

// Returns computes simple returns with return[0] = 0. A zero previous price is
// treated as divisor 1 rather than producing NaN.
func Returns(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			prev = 1
		}
		out[i] = (prices[i] - prices[i-1]) / prev
	}
	return out
}

func pearson(a, b []float64) float64 {
	ma := mean(a)
	mb := mean(b)

	var cov, va, vb float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	div := float64(len(a) - 1)
	if div < 1 {
		div = 1
	}
	cov /= div
	sa := math.Sqrt(va / div)
	sb := math.Sqrt(vb / div)
	if sa == 0 || sb == 0 {
		return 0
	}
	corr := cov / (sa * sb)
	if math.Abs(corr) < displayFloor {
		return 0
	}
	return corr
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	div := float64(len(vals))
	if div < 1 {
		div = 1
	}
	return sum / div
}
