// Package main provides a command-line tool that prints content suggestions
// without starting the HTTP server. Useful for cron-driven posting scripts
// and for inspecting what the engine would pick right now.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/Monear/rental-village-social-bot/internal/config"
	"github.com/Monear/rental-village-social-bot/internal/di"
	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
	"github.com/Monear/rental-village-social-bot/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	count := flag.Int("n", 1, "number of suggestions to generate")
	seed := flag.Int64("seed", 0, "random seed (0 uses the current time)")
	asJSON := flag.Bool("json", false, "print results as JSON")
	record := flag.Bool("record", false, "record suggestions in selection history")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Keep structured logs out of the way of the printed suggestions
	log := logger.New(logger.Config{Level: "error", Pretty: true})

	container, err := di.Wire(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to wire dependencies: %v\n", err)
		os.Exit(1)
	}
	defer container.Close()

	service := container.SelectionService
	if *seed != 0 || !*record {
		// A custom seed or a dry run needs its own engine: the default one
		// is time-seeded and always persists to history.
		service = buildService(container, cfg, *seed, *record, log)
	}

	results, err := service.Suggest(*count, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "suggestion failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode results: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for i, r := range results {
		degraded := ""
		if r.Degraded {
			degraded = " (degraded scoring)"
		}
		fmt.Printf("%d. [%s] %s%s\n   %s\n", i+1, r.Pillar, r.ItemName, degraded, r.Rationale)
	}
}

// buildService assembles a suggestion service around a custom sampler and an
// optional history sink, reusing the container's repositories.
func buildService(container *di.Container, cfg *config.Config, seed int64, record bool, log zerolog.Logger) *selection.Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sampler := selection.NewSampler(rand.New(rand.NewSource(seed)))

	var history selection.HistorySink
	if record {
		history = container.HistoryRepo
	}

	engine := selection.NewEngine(sampler, container.RecencyTracker, history, cfg.ReliabilityThreshold, log)

	return selection.NewService(
		engine,
		container.StrategyRepo,
		container.SeasonalRepo,
		container.CatalogRepo,
		container.SnapshotCache,
		container.PerformanceRepo,
		container.RecencyTracker,
		log,
	)
}
