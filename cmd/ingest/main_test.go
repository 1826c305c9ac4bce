package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dense-analysis/nexus/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsJSON = `[
	{
		"id": "bitcoin",
		"symbol": "BTC",
		"name": "Bitcoin",
		"image": "https://example.com/btc.png",
		"current_price": 64000.5,
		"market_cap": 1250000000000,
		"price_change_percentage_24h": 2.4,
		"sparkline_in_7d": {"price": [63000, 64000.5]}
	},
	{
		"id": "",
		"symbol": "x",
		"name": "Broken"
	},
	{
		"id": "deadcoin",
		"symbol": "dead",
		"name": "Dead Coin",
		"current_price": null,
		"market_cap": null,
		"price_change_percentage_24h": null
	}
]`

func TestParseMarkets(t *testing.T) {
	assets, err := parseMarkets([]byte(marketsJSON))

	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, []float64{63000, 64000.5}, assets[0].Sparkline7d.Price)
	assert.True(t, assets[0].CurrentPrice.Equal(decimal.RequireFromString("64000.5")))
}

func TestParseMarketsErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		message string
	}{
		{"rate limited", `{"status": {"error_code": 429, "error_message": "Too many requests"}}`, "429 Too many requests"},
		{"plain error", `{"error": "coin not found"}`, "coin not found"},
		{"unexpected object", `{"data": []}`, "unexpected payload"},
		{"not json", `<html>`, "unexpected response"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := parseMarkets([]byte(testCase.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.message)
		})
	}
}

func TestCleanAssets(t *testing.T) {
	assets, err := parseMarkets([]byte(marketsJSON))
	require.NoError(t, err)

	cleaned := cleanAssets(assets)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "btc", cleaned[0].Symbol)
	assert.Equal(t, "deadcoin", cleaned[1].ID)
	assert.True(t, cleaned[1].CurrentPrice.Equal(VerySmallAmount))
}

func TestReadMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "usd", request.URL.Query().Get("vs_currency"))
		fmt.Fprint(writer, marketsJSON)
	}))
	defer server.Close()

	assets, err := readMarkets(context.Background(), &http.Client{Timeout: time.Second}, server.URL+"/coins/markets?vs_currency=usd")

	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "", "deadcoin"}, []string{assets[0].ID, assets[1].ID, assets[2].ID})
	assert.Equal(t, model.Sparkline{}, assets[2].Sparkline7d)
}
