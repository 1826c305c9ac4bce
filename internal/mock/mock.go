// Package mock generates the locally made up data shown next to the real
// market data.
package mock

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dense-analysis/nexus/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Trend is the drift of a generated sparkline.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

const (
	coinSamples  = 50
	trendSamples = 20
	trendStart   = 100.0
	trendNoise   = 10.0
	trendDrift   = 2.0
	// GenesisBlock is the number of the newest seeded feed block.
	GenesisBlock = 18472931
)

var transactionCoins = []string{"ETH", "USDC", "WBTC", "LINK", "UNI"}

var usd = message.NewPrinter(language.English)

// Generator makes mock data from a seeded source, so a seed always produces
// the same data. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) samples(n int, lo, hi float64) []float64 {
	out := make([]float64, n)

	for i := range out {
		out[i] = g.uniform(lo, hi)
	}

	return out
}

func (g *Generator) hex(n int) string {
	var builder strings.Builder

	for range n {
		fmt.Fprintf(&builder, "%x", g.rng.Intn(16))
	}

	return builder.String()
}

// Coins returns the two default assets with fresh 7 day sparklines.
func (g *Generator) Coins() []model.Asset {
	g.mu.Lock()
	defer g.mu.Unlock()

	return []model.Asset{
		{
			ID:                       "bitcoin",
			Name:                     "Bitcoin",
			Symbol:                   "btc",
			CurrentPrice:             decimal.NewFromInt(64000),
			PriceChangePercentage24h: decimal.RequireFromString("2.4"),
			MarketCap:                decimal.NewFromInt(1250000000000),
			Sparkline7d:              model.Sparkline{Price: g.samples(coinSamples, 60000, 65000)},
		},
		{
			ID:                       "ethereum",
			Name:                     "Ethereum",
			Symbol:                   "eth",
			CurrentPrice:             decimal.NewFromInt(3200),
			PriceChangePercentage24h: decimal.RequireFromString("-1.2"),
			MarketCap:                decimal.NewFromInt(420000000000),
			Sparkline7d:              model.Sparkline{Price: g.samples(coinSamples, 3000, 3300)},
		},
	}
}

func (g *Generator) sparkline(trend Trend) []float64 {
	drift := 0.0

	switch trend {
	case TrendUp:
		drift = trendDrift
	case TrendDown:
		drift = -trendDrift
	}

	current := trendStart
	out := make([]float64, trendSamples)

	for i := range out {
		current += (g.rng.Float64()-0.5)*trendNoise + drift
		out[i] = math.Max(0, current)
	}

	return out
}

// Sparkline returns a random walk of 20 samples drifting in the trend's
// direction. Samples never go below zero.
func (g *Generator) Sparkline(trend Trend) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.sparkline(trend)
}

// Transactions returns n random transactions.
func (g *Generator) Transactions(n int) []model.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]model.Transaction, n)

	for i := range out {
		id, err := uuid.NewRandomFromReader(g.rng)

		if err != nil {
			// The reader is a math/rand source, which never fails.
			panic(err)
		}

		amount := decimal.NewFromFloat(g.rng.Float64() * 10).Round(4)
		coin := transactionCoins[g.rng.Intn(len(transactionCoins))]
		usdValue, _ := amount.Mul(decimal.NewFromInt(2000)).Float64()

		out[i] = model.Transaction{
			ID:       id.String(),
			Hash:     "0x" + g.hex(64),
			Method:   model.TransactionMethods[g.rng.Intn(len(model.TransactionMethods))],
			Status:   model.TransactionStatuses[g.rng.Intn(len(model.TransactionStatuses))],
			Time:     fmt.Sprintf("%d mins ago", g.rng.Intn(60)),
			Value:    amount.StringFixed(4) + " " + coin,
			USDValue: usd.Sprintf("$%.2f", usdValue),
		}
	}

	return out
}

// Block returns a newly mined block with the given number.
func (g *Generator) Block(number int64, minedAt time.Time) model.FeedBlock {
	g.mu.Lock()
	defer g.mu.Unlock()

	return model.FeedBlock{
		ID:          fmt.Sprintf("b%d", number),
		BlockNumber: number,
		Miner:       "0x" + g.hex(4) + "..." + g.hex(4),
		Txns:        50 + g.rng.Intn(200),
		MinedAt:     minedAt,
		Reward:      "0.05 ETH",
	}
}

// Blocks returns the blocks the live feed starts with, newest first.
func Blocks(now time.Time) []model.FeedBlock {
	seeds := []struct {
		miner string
		txns  int
		age   time.Duration
	}{
		{"0x9522...7a3f", 142, 12 * time.Second},
		{"0x1a3b...9c2d", 98, 24 * time.Second},
		{"0x5f6e...4b1c", 156, 36 * time.Second},
		{"0x8d2c...7e9a", 87, 48 * time.Second},
		{"0x3b4a...1f8d", 203, 60 * time.Second},
	}

	out := make([]model.FeedBlock, len(seeds))

	for i, seed := range seeds {
		number := int64(GenesisBlock - i)
		out[i] = model.FeedBlock{
			ID:          fmt.Sprintf("b%d", number),
			BlockNumber: number,
			Miner:       seed.miner,
			Txns:        seed.txns,
			MinedAt:     now.Add(-seed.age),
			Reward:      "0.05 ETH",
		}
	}

	return out
}

// TimeAgo renders the age of something in the feed's short style.
func TimeAgo(then, now time.Time) string {
	age := now.Sub(then)

	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", max(0, int(age/time.Second)))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age/time.Minute))
	default:
		return fmt.Sprintf("%dh ago", int(age/time.Hour))
	}
}

func mover(id, symbol, name, price, change string) model.GainerLoser {
	return model.GainerLoser{
		ID:     id,
		Symbol: symbol,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
	}
}

// Movers returns the tokens with the largest 24h moves either way.
func Movers() []model.GainerLoser {
	return []model.GainerLoser{
		mover("g1", "PEPE", "Pepe", "0.00001234", "45.2"),
		mover("g2", "WIF", "dogwifhat", "2.34", "32.1"),
		mover("g3", "BONK", "Bonk", "0.000028", "28.5"),
		mover("g4", "FLOKI", "Floki", "0.00018", "22.3"),
		mover("g5", "MEME", "Memecoin", "0.025", "18.7"),
		mover("l1", "APT", "Aptos", "8.45", "-12.4"),
		mover("l2", "ARB", "Arbitrum", "1.02", "-9.8"),
		mover("l3", "OP", "Optimism", "2.15", "-8.2"),
		mover("l4", "SUI", "Sui", "3.45", "-7.1"),
		mover("l5", "SEI", "Sei", "0.52", "-5.9"),
	}
}

func sector(id, name string, billions int64, change string) model.Sector {
	return model.Sector{
		ID:        id,
		Name:      name,
		MarketCap: decimal.NewFromInt(billions).Shift(9),
		Change:    decimal.RequireFromString(change),
	}
}

func Sectors() []model.Sector {
	return []model.Sector{
		sector("s1", "DeFi", 45, "5.2"),
		sector("s2", "Layer 2", 28, "-2.1"),
		sector("s3", "Meme", 22, "18.4"),
		sector("s4", "AI", 15, "8.7"),
		sector("s5", "Gaming", 12, "-1.3"),
		sector("s6", "Infrastructure", 8, "3.2"),
	}
}

// TrendingTokens returns the trending table with freshly drawn sparklines.
func (g *Generator) TrendingTokens() []model.TrendingToken {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := func(id, symbol, name, price, volChange string, sentiment int, trend Trend) model.TrendingToken {
		return model.TrendingToken{
			ID:        id,
			Symbol:    symbol,
			Name:      name,
			Price:     decimal.RequireFromString(price),
			VolChange: decimal.RequireFromString(volChange),
			Sentiment: sentiment,
			Sparkline: g.sparkline(trend),
		}
	}

	return []model.TrendingToken{
		token("t1", "SOL", "Solana", "145.20", "45.2", 88, TrendUp),
		token("t2", "DOGE", "Dogecoin", "0.154", "124.5", 92, TrendUp),
		token("t3", "LINK", "Chainlink", "18.40", "12.4", 65, TrendFlat),
		token("t4", "ARB", "Arbitrum", "1.15", "-15.4", 45, TrendDown),
		token("t5", "AVAX", "Avalanche", "38.50", "5.2", 58, TrendUp),
		token("t6", "TON", "Toncoin", "6.80", "84.1", 75, TrendUp),
	}
}

func stat(title, value, change string) model.StatCard {
	return model.StatCard{Title: title, Value: value, Change: decimal.RequireFromString(change)}
}

// DashboardStats are the headline figures of the dashboard tab.
func DashboardStats() []model.StatCard {
	return []model.StatCard{
		stat("Global Market Cap", "$2.48T", "2.4"),
		stat("24h Volume", "$84.2B", "-1.2"),
		stat("BTC Dominance", "52.4%", "0.8"),
	}
}

// ActivityStats are the headline figures of the activity tab.
func ActivityStats() []model.StatCard {
	return []model.StatCard{
		stat("Network Load", "48 Gwei", "-12.4"),
		stat("24h Transactions", "1.2M", "5.2"),
		stat("Active Contracts", "42,891", "1.2"),
	}
}
