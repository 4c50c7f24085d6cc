package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"botwatch-go/internal/action"
	"botwatch-go/internal/util"
)

const usage = `usage: trade [-backend URL] <command> [args]

commands:
  buy <usdt>      manual market buy sized in USDT
  sell <qty>      manual market sell
  sell all        liquidate the whole position
  toggle          flip autotrade mode
`

func main() {
	backend := flag.String("backend", "http://127.0.0.1:5000", "backend base url")
	flag.Parse()

	_ = godotenv.Load()
	if v := os.Getenv("BOTWATCH_BACKEND_URL"); v != "" && *backend == "http://127.0.0.1:5000" {
		*backend = v
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log := util.NewLogger("info")
	client := action.NewClient(*backend, os.Getenv("BOTWATCH_API_KEY"), log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch args[0] {
	case "buy":
		var usdt float64
		if len(args) < 2 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if _, scanErr := fmt.Sscanf(args[1], "%f", &usdt); scanErr != nil {
			fmt.Fprintf(os.Stderr, "invalid buy size %q\n", args[1])
			os.Exit(2)
		}
		err = client.Buy(ctx, usdt)
	case "sell":
		if len(args) < 2 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if args[1] == "all" {
			err = client.SellAll(ctx)
		} else {
			var qty float64
			if _, scanErr := fmt.Sscanf(args[1], "%f", &qty); scanErr != nil {
				fmt.Fprintf(os.Stderr, "invalid sell quantity %q\n", args[1])
				os.Exit(2)
			}
			err = client.Sell(ctx, qty)
		}
	case "toggle":
		err = client.ToggleAutotrade(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("action failed")
	}
}
