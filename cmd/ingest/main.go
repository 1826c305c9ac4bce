// Read cryptocurrency market data into the database
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/database"
	"github.com/dense-analysis/nexus/internal/env"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/store"
	"github.com/shopspring/decimal"
)

var VerySmallAmount = decimal.New(1, -20)

// parseMarkets reads a CoinGecko /coins/markets response.
func parseMarkets(content []byte) ([]model.Asset, error) {
	var assets []model.Asset

	if err := json.Unmarshal(content, &assets); err == nil {
		return assets, nil
	}

	var apiError struct {
		Status struct {
			ErrorCode    int    `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
		Error string `json:"error"`
	}

	if err := json.Unmarshal(content, &apiError); err == nil {
		if apiError.Status.ErrorMessage != "" {
			return nil, fmt.Errorf("coingecko api error: %d %s", apiError.Status.ErrorCode, apiError.Status.ErrorMessage)
		}

		if apiError.Error != "" {
			return nil, fmt.Errorf("coingecko api error: %s", apiError.Error)
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var payload map[string]any

	if err := decoder.Decode(&payload); err == nil {
		return nil, fmt.Errorf("coingecko api returned unexpected payload: %v", payload)
	}

	return nil, fmt.Errorf("coingecko api returned unexpected response: %s", string(content))
}

func readMarkets(ctx context.Context, client *http.Client, url string) ([]model.Asset, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)

	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return nil, err
	}

	return parseMarkets(content)
}

// cleanAssets drops entries without an id and normalises the rest.
func cleanAssets(assets []model.Asset) []model.Asset {
	cleaned := make([]model.Asset, 0, len(assets))

	for _, asset := range assets {
		if asset.ID == "" {
			continue
		}

		asset.Symbol = strings.ToLower(asset.Symbol)

		// Hack a very small amount for 0 or negative prices.
		if asset.CurrentPrice.LessThanOrEqual(decimal.Zero) {
			asset.CurrentPrice = VerySmallAmount
		}

		if asset.MarketCap.IsNegative() {
			asset.MarketCap = decimal.Zero
		}

		cleaned = append(cleaned, asset)
	}

	return cleaned
}

func main() {
	configPath := flag.String("config", "nexus.yaml", "path to the YAML config file")
	flag.Parse()

	env.LoadEnvironmentVariables()

	cfg, err := config.Load(*configPath)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := database.Connect(ctx, cfg.Storage.ClickHouse)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	if err := store.EnsureClickHouseSchema(ctx, conn); err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}

	assets, err := readMarkets(ctx, &http.Client{Timeout: cfg.API.Timeout}, cfg.Ingest.UpstreamURL)

	if err != nil {
		fmt.Fprintf(os.Stderr, "HTTP error: %s\n", err)
		os.Exit(1)
	}

	if err := store.NewClickHouseMarket(conn).Save(ctx, cleanAssets(assets)); err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}
}
