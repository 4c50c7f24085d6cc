package ledger

import (
	"math"
	"testing"
	"time"

	"botwatch-go/internal/market"
)

func trade(side market.Side, qty, price, fee float64) market.Trade {
	return market.Trade{Side: side, Qty: qty, Price: price, Fee: fee, Ts: time.Now()}
}

func TestComputeEmptyInput(t *testing.T) {
	kpis := Compute(nil, 100)
	if kpis.Realized != 0 || kpis.Unrealized != 0 || kpis.NetPosition != 0 {
		t.Fatalf("expected zero KPIs, got %+v", kpis)
	}
	if kpis.Position != Flat {
		t.Fatalf("expected flat position, got %s", kpis.Position)
	}
}

func TestComputeRoundTripZero(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1.5, 100, 0),
		trade(market.Sell, 1.5, 100, 0),
	}
	kpis := Compute(trades, 100)
	if math.Abs(kpis.Realized) > 1e-9 {
		t.Fatalf("expected zero realized, got %.6f", kpis.Realized)
	}
	if kpis.NetPosition != 0 || kpis.Position != Flat {
		t.Fatalf("expected flat zero position, got %+v", kpis)
	}
}

func TestComputeWinningFill(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 1, 110, 0),
	}
	kpis := Compute(trades, 110)
	if math.Abs(kpis.Realized-10) > 1e-9 {
		t.Fatalf("expected realized 10, got %.6f", kpis.Realized)
	}
	if kpis.Wins != 1 || kpis.Losses != 0 {
		t.Fatalf("expected 1 win 0 losses, got %d/%d", kpis.Wins, kpis.Losses)
	}
	if kpis.NetPosition != 0 {
		t.Fatalf("expected zero net position, got %.6f", kpis.NetPosition)
	}
}

func TestComputePartialSellLeavesLot(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 2, 100, 0),
		trade(market.Sell, 1, 90, 0),
	}
	kpis := Compute(trades, 100)
	if math.Abs(kpis.Realized+10) > 1e-9 {
		t.Fatalf("expected realized -10, got %.6f", kpis.Realized)
	}
	if math.Abs(kpis.NetPosition-1) > 1e-9 {
		t.Fatalf("expected net position 1, got %.6f", kpis.NetPosition)
	}
	if math.Abs(kpis.Unrealized) > 1e-9 {
		t.Fatalf("expected zero unrealized at cost price, got %.6f", kpis.Unrealized)
	}
	if kpis.Position != Long {
		t.Fatalf("expected long position")
	}
}

func TestComputeFIFOOrdering(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1, 100, 0),
		trade(market.Buy, 1, 200, 0),
		trade(market.Sell, 1, 150, 0),
	}
	kpis := Compute(trades, 150)
	// oldest lot (cost 100) consumed first
	if math.Abs(kpis.Realized-50) > 1e-9 {
		t.Fatalf("expected realized 50 from oldest lot, got %.6f", kpis.Realized)
	}
	if math.Abs(kpis.AvgCost-200) > 1e-9 {
		t.Fatalf("expected remaining avg cost 200, got %.6f", kpis.AvgCost)
	}
}

func TestComputeSellFeeApportioned(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1, 100, 0),
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 2, 110, 4),
	}
	kpis := Compute(trades, 110)
	// 2 units * 10 gain minus the whole 4 fee split across matches
	if math.Abs(kpis.Realized-16) > 1e-9 {
		t.Fatalf("expected realized 16, got %.6f", kpis.Realized)
	}
	// sell spans two lots, no match equals the full sell quantity
	if kpis.Wins != 0 || kpis.Losses != 0 {
		t.Fatalf("expected no fill-level tally, got %d/%d", kpis.Wins, kpis.Losses)
	}
}

func TestComputeExcessSellIgnored(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 3, 120, 0),
	}
	kpis := Compute(trades, 120)
	if math.Abs(kpis.Realized-20) > 1e-9 {
		t.Fatalf("expected realized 20 for the matched unit, got %.6f", kpis.Realized)
	}
	if kpis.NetPosition != 0 || kpis.Position != Flat {
		t.Fatalf("expected position clamped flat, got %+v", kpis)
	}
}

func TestComputeSkipsMalformedTrades(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 0, 100, 0),
		trade(market.Buy, 1, -5, 0),
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 1, 110, 0),
	}
	kpis := Compute(trades, 110)
	if math.Abs(kpis.Realized-10) > 1e-9 {
		t.Fatalf("expected malformed trades skipped, realized %.6f", kpis.Realized)
	}
}

func TestComputeDrawdownFromPeak(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 1, 130, 0), // realized +30, peak
		trade(market.Buy, 1, 100, 0),
		trade(market.Sell, 1, 80, 0), // realized +10 overall
	}
	kpis := Compute(trades, 100)
	if math.Abs(kpis.Realized-10) > 1e-9 {
		t.Fatalf("expected realized 10, got %.6f", kpis.Realized)
	}
	if math.Abs(kpis.MaxDrawdown-20) > 1e-9 {
		t.Fatalf("expected drawdown 20 from peak 30, got %.6f", kpis.MaxDrawdown)
	}
	if kpis.Wins != 1 || kpis.Losses != 1 {
		t.Fatalf("expected 1 win 1 loss, got %d/%d", kpis.Wins, kpis.Losses)
	}
}

func TestComputeUnrealizedNeedsPositivePrice(t *testing.T) {
	trades := []market.Trade{trade(market.Buy, 1, 100, 0)}
	kpis := Compute(trades, 0)
	if kpis.Unrealized != 0 {
		t.Fatalf("expected zero unrealized without a mark price, got %.6f", kpis.Unrealized)
	}
}

func TestComputeIdempotent(t *testing.T) {
	trades := []market.Trade{
		trade(market.Buy, 2, 100, 1),
		trade(market.Sell, 1, 105, 0.5),
		trade(market.Buy, 0.5, 95, 0.2),
	}
	a := Compute(trades, 102)
	b := Compute(trades, 102)
	if a != b {
		t.Fatalf("expected identical KPIs, got %+v vs %+v", a, b)
	}
}

func TestWinRate(t *testing.T) {
	k := KPIs{Wins: 3, Losses: 1}
	if math.Abs(k.WinRate()-0.75) > 1e-9 {
		t.Fatalf("expected win rate 0.75, got %.4f", k.WinRate())
	}
	if (KPIs{}).WinRate() != 0 {
		t.Fatalf("expected zero win rate with no fills")
	}
}
