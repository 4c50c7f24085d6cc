package main

import (
	"flag"
	"fmt"
	"os"

	"botwatch-go/internal/journal"
	"botwatch-go/internal/ledger"
)

func main() {
	file := flag.String("file", "data/trades.jsonl", "trades journal to analyze")
	price := flag.Float64("price", 0, "current mark price for unrealized PnL (0 skips marking)")
	flag.Parse()

	trades, err := journal.Read(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read journal: %v\n", err)
		os.Exit(1)
	}

	kpis := ledger.Compute(trades, *price)

	fmt.Printf("trades analyzed: %d\n", len(trades))
	fmt.Printf("realized pnl:    %.2f\n", kpis.Realized)
	if *price > 0 {
		fmt.Printf("unrealized pnl:  %.2f (mark %.2f)\n", kpis.Unrealized, *price)
		fmt.Printf("total pnl:       %.2f\n", kpis.Total())
	}
	fmt.Printf("position:        %s", kpis.Position)
	if kpis.Position == ledger.Long {
		fmt.Printf(" %.6f @ avg cost %.2f", kpis.NetPosition, kpis.AvgCost)
	}
	fmt.Println()
	fmt.Printf("max drawdown:    %.2f\n", kpis.MaxDrawdown)
	closed := kpis.Wins + kpis.Losses
	if closed > 0 {
		fmt.Printf("win/loss:        %d / %d (%.0f%%)\n", kpis.Wins, kpis.Losses, kpis.WinRate()*100)
	} else {
		fmt.Printf("win/loss:        —\n")
	}
}
