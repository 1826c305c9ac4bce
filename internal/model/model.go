// Package model defines the records shared between the Nexus API, its
// stores and its clients.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard API speaks plain JSON numbers for prices.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sparkline holds the 7 day price samples for an asset, oldest first.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// Asset represents a tradable market instrument
type Asset struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	Symbol                   string          `json:"symbol"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	Sparkline7d              Sparkline       `json:"sparkline_in_7d"`
}

// IsEmpty reports if the Asset is the empty "no selection" sentinel.
func (asset Asset) IsEmpty() bool {
	return asset.ID == ""
}

// Positive reports if the 24h change should be shown as a gain.
func (asset Asset) Positive() bool {
	return !asset.PriceChangePercentage24h.IsNegative()
}

// WatchlistItem is an asset the user has starred.
//
// The symbol and name are copied from the Asset when the item is added.
type WatchlistItem struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// WatchlistItemFromAsset copies the watchlist fields from an Asset.
func WatchlistItemFromAsset(asset Asset) WatchlistItem {
	return WatchlistItem{ID: asset.ID, Symbol: asset.Symbol, Name: asset.Name}
}

// StatCard is a headline figure shown above a view.
type StatCard struct {
	Title  string          `json:"title"`
	Value  string          `json:"value"`
	Change decimal.Decimal `json:"change"`
}

// Transaction is an on-chain transaction shown in the activity view.
type Transaction struct {
	ID       string `json:"id"`
	Hash     string `json:"hash"`
	Method   string `json:"method"`
	Status   string `json:"status"`
	Time     string `json:"time"`
	Value    string `json:"value"`
	USDValue string `json:"usd_value"`
}

// Transaction methods
const (
	MethodSwap    = "Swap"
	MethodSend    = "Send"
	MethodMint    = "Mint"
	MethodBurn    = "Burn"
	MethodApprove = "Approve"
)

// TransactionMethods lists every method a Transaction can have.
var TransactionMethods = []string{MethodSwap, MethodSend, MethodMint, MethodBurn, MethodApprove}

// Transaction statuses
const (
	StatusSuccess = "Success"
	StatusPending = "Pending"
	StatusFailed  = "Failed"
)

// TransactionStatuses lists every status a Transaction can have.
var TransactionStatuses = []string{StatusSuccess, StatusPending, StatusFailed}

// FeedBlock is a mined block shown in the live network feed.
type FeedBlock struct {
	ID          string    `json:"id"`
	BlockNumber int64     `json:"block_number"`
	Miner       string    `json:"miner"`
	Txns        int       `json:"txns"`
	MinedAt     time.Time `json:"mined_at"`
	TimeAgo     string    `json:"time_ago"`
	Reward      string    `json:"reward"`
}

// GainerLoser is a row in the top gainers or losers lists.
type GainerLoser struct {
	ID     string          `json:"id"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
}

// Sector is a market sector in the heatmap.
type Sector struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	MarketCap decimal.Decimal `json:"market_cap"`
	Change    decimal.Decimal `json:"change"`
}

// TrendingToken is a token ranked by volume momentum and sentiment.
type TrendingToken struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	VolChange decimal.Decimal `json:"vol_change"`
	Sentiment int             `json:"sentiment"`
	Sparkline []float64       `json:"sparkline"`
}

// Settings are the user preferences shown on the settings tab.
type Settings struct {
	Currency        string `json:"currency"`
	RefreshInterval string `json:"refresh_interval"`
	PriceAlerts     bool   `json:"price_alerts"`
	CompactMode     bool   `json:"compact_mode"`
}

// Currencies that can be picked in Settings.
var Currencies = []string{"USD", "EUR", "GBP", "BTC"}

// RefreshIntervals that can be picked in Settings.
var RefreshIntervals = []string{"30s", "1m", "5m", "Manual"}

// DefaultSettings returns the settings for a new session.
func DefaultSettings() Settings {
	return Settings{
		Currency:        "USD",
		RefreshInterval: "5m",
		PriceAlerts:     true,
	}
}
