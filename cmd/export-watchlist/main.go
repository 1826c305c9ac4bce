// Export the stored watchlist into a CSV file for ClickHouse imports.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/env"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/store"
)

var csvHeader = []string{"id", "symbol", "name", "created_at"}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// writeWatchlist writes one CSV row per item, stamped with createdAt.
func writeWatchlist(out io.Writer, items []model.WatchlistItem, createdAt time.Time) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	stamp := formatTime(createdAt)

	for _, item := range items {
		if err := writer.Write([]string{item.ID, item.Symbol, item.Name, stamp}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

func exitWithError(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s error: %s\n", action, err)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "nexus.yaml", "path to the YAML config file")
	output := flag.String("output", "nexus_watchlist.csv", "CSV file to write")
	flag.Parse()

	env.LoadEnvironmentVariables()

	cfg, err := config.Load(*configPath)

	if err != nil {
		exitWithError("Config", err)
	}

	ctx := context.Background()
	stores, err := store.Open(ctx, cfg)

	if err != nil {
		exitWithError("Storage", err)
	}

	defer func() {
		_ = stores.Close()
	}()

	items, err := stores.Watchlist.List(ctx)

	if err != nil {
		exitWithError("Export watchlist", err)
	}

	file, err := os.Create(*output)

	if err != nil {
		exitWithError("Create CSV", err)
	}

	defer file.Close()

	if err := writeWatchlist(file, items, time.Now()); err != nil {
		exitWithError("Write CSV", err)
	}

	fmt.Printf("Exported %d watchlist items to %s\n", len(items), *output)
}
