package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"botwatch-go/internal/alert"
	"botwatch-go/internal/config"
	"botwatch-go/internal/feed"
	"botwatch-go/internal/history"
	"botwatch-go/internal/journal"
	"botwatch-go/internal/metrics"
	"botwatch-go/internal/monitor"
	"botwatch-go/internal/sim"
	"botwatch-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to yaml config")
	flag.Parse()

	_ = godotenv.Load()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	cfg.ApplyEnvOverrides()

	log = util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := feed.NewClient(
		cfg.Backend.BaseURL,
		log,
		feed.WithPaths(cfg.Backend.TradesPath, cfg.Backend.StatusPath, cfg.Backend.SeriesPath),
		feed.WithAPIKey(cfg.Backend.APIKey),
	)

	var writer *journal.Writer
	if cfg.Journal.Enabled {
		writer, err = journal.NewWriter(cfg.Journal.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("open trade journal")
		}
		defer writer.Close()
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine := monitor.New(monitor.Params{
		Client:         client,
		History:        history.NewBuffer(cfg.Correlation.HistoryCap),
		Simulator:      sim.New(cfg.Sim.Drift, cfg.Sim.Volatility, seed),
		Journal:        writer,
		Limits:         alert.Limits{MaxDrawdown: cfg.Alert.MaxDrawdown},
		Lag:            cfg.Correlation.Lag,
		SimDays:        cfg.Sim.Days,
		SimPaths:       cfg.Sim.Paths,
		TradesInterval: time.Duration(cfg.Backend.TradesIntervalSecs) * time.Second,
		SeriesInterval: time.Duration(cfg.Backend.SeriesIntervalSecs) * time.Second,
		SimInterval:    time.Duration(cfg.Backend.SimIntervalSecs) * time.Second,
		Log:            log,
	})

	if cfg.Stream.Enabled {
		stream := feed.NewStream(cfg.Stream.Symbol, cfg.Stream.URL, log)
		updates := make(chan feed.PriceUpdate, 256)
		go func() {
			if err := stream.Run(ctx, updates); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("price stream stopped")
			}
		}()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case update := <-updates:
					engine.SetMarkPrice(update.Price)
				}
			}
		}()
	}

	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("monitor started")
	if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("monitor stopped")
		os.Exit(1)
	}
	log.Info().Msg("shutting down")
}
