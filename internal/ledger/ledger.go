// Package ledger computes realized/unrealized PnL KPIs from a chronological trade stream.
package ledger

import "botwatch-go/internal/market"

const epsilon = 1e-12

// Position labels the net exposure implied by the remaining open lots.
type Position string

const (
	// Flat means no open quantity remains.
	Flat Position = "FLAT"
	// Long means unconsumed buy lots remain.
	Long Position = "LONG"
)

// lot is an unconsumed portion of a prior buy, held in FIFO order.
type lot struct {
	qty  float64
	cost float64
	fee  float64
}

// KPIs aggregates the per-refresh dashboard figures for one trade history pass.
type KPIs struct {
	Realized    float64
	Unrealized  float64
	NetPosition float64
	AvgCost     float64
	Position    Position
	MaxDrawdown float64
	Wins        int
	Losses      int
}

// Compute runs one FIFO matching pass over trades (oldest first) and marks the
// remaining position against currentPrice. Malformed trades are skipped, sells
// beyond the available lot quantity are ignored, and empty input yields zero
// KPIs with a flat position. It never fails.
func Compute(trades []market.Trade, currentPrice float64) KPIs {
	var (
		inv       []lot
		realized  float64
		equity    float64
		maxEquity float64
		wins      int
		losses    int
	)

	for _, t := range trades {
		if t.Qty <= 0 || t.Price <= 0 {
			continue
		}
		switch t.Side {
		case market.Buy:
			inv = append(inv, lot{qty: t.Qty, cost: t.Price, fee: t.Fee})
		case market.Sell:
			remaining := t.Qty
			for remaining > epsilon && len(inv) > 0 {
				front := &inv[0]
				dq := remaining
				if front.qty < dq {
					dq = front.qty
				}
				// apportion the sell fee by matched share
				pnl := (t.Price-front.cost)*dq - t.Fee*(dq/t.Qty)
				realized += pnl
				equity = realized
				if equity > maxEquity {
					maxEquity = equity
				}
				// only full-quantity fills count toward the win/loss tally
				if dq == t.Qty {
					if pnl >= 0 {
						wins++
					} else {
						losses++
					}
				}
				front.qty -= dq
				remaining -= dq
				if front.qty <= epsilon {
					inv = inv[1:]
				}
			}
		}
	}

	var netPosition, costNotional float64
	for _, l := range inv {
		netPosition += l.qty
		costNotional += l.qty * l.cost
	}

	kpis := KPIs{
		Realized:    realized,
		NetPosition: netPosition,
		Position:    Flat,
		MaxDrawdown: maxEquity - equity,
		Wins:        wins,
		Losses:      losses,
	}
	if netPosition > epsilon {
		kpis.Position = Long
		kpis.AvgCost = costNotional / netPosition
		if currentPrice > 0 {
			kpis.Unrealized = (currentPrice - kpis.AvgCost) * netPosition
		}
	} else {
		kpis.NetPosition = 0
	}
	return kpis
}

// Total returns realized plus unrealized PnL.
func (k KPIs) Total() float64 { return k.Realized + k.Unrealized }

// WinRate reports the share of winning fills, or 0 when nothing closed yet.
func (k KPIs) WinRate() float64 {
	total := k.Wins + k.Losses
	if total == 0 {
		return 0
	}
	return float64(k.Wins) / float64(total)
}
