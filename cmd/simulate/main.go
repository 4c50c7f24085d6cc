package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"botwatch-go/internal/feed"
	"botwatch-go/internal/sim"
	"botwatch-go/internal/util"
)

func main() {
	price := flag.Float64("price", 0, "start price (0 fetches the backend status)")
	backend := flag.String("backend", "http://127.0.0.1:5000", "backend base url for price lookup")
	days := flag.Int("days", 7, "projection horizon in days")
	paths := flag.Int("paths", 100, "number of simulated paths")
	drift := flag.Float64("drift", 0, "daily drift")
	vol := flag.Float64("vol", sim.DefaultVolatility, "daily volatility")
	seed := flag.Int64("seed", 0, "rng seed (0 uses the clock)")
	flag.Parse()

	_ = godotenv.Load()
	log := util.NewLogger("info")

	// the simulator assumes positive shape, clamp user input up front
	if *days < 1 {
		*days = 1
	}
	if *paths < 1 {
		*paths = 1
	}

	start := *price
	if start <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		status, err := feed.NewClient(*backend, log).Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch start price: %v\n", err)
			os.Exit(1)
		}
		start = status.Price
	}
	if start <= 0 {
		fmt.Fprintln(os.Stderr, "no start price available")
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	projection := sim.New(*drift, *vol, s).Project(start, *days, *paths)
	fmt.Printf("price now=%.2f · D+%d -> P10=%.2f / P50=%.2f / P90=%.2f (N=%d)\n",
		start, *days, projection.P10, projection.P50, projection.P90, *paths)
}
