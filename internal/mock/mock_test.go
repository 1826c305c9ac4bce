package mock

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dense-analysis/nexus/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoins(t *testing.T) {
	coins := NewGenerator(1).Coins()

	require.Len(t, coins, 2)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.Equal(t, "ethereum", coins[1].ID)
	require.Len(t, coins[0].Sparkline7d.Price, 50)
	require.Len(t, coins[1].Sparkline7d.Price, 50)

	for _, price := range coins[0].Sparkline7d.Price {
		assert.GreaterOrEqual(t, price, 60000.0)
		assert.Less(t, price, 65000.0)
	}

	for _, price := range coins[1].Sparkline7d.Price {
		assert.GreaterOrEqual(t, price, 3000.0)
		assert.Less(t, price, 3300.0)
	}
}

func TestSameSeedSameData(t *testing.T) {
	assert.Equal(t, NewGenerator(42).Transactions(5), NewGenerator(42).Transactions(5))
	assert.NotEqual(t, NewGenerator(42).Transactions(5), NewGenerator(43).Transactions(5))
}

func TestSparkline(t *testing.T) {
	generator := NewGenerator(7)

	for _, trend := range []Trend{TrendUp, TrendDown, TrendFlat} {
		samples := generator.Sparkline(trend)

		require.Len(t, samples, 20)

		for _, sample := range samples {
			assert.GreaterOrEqual(t, sample, 0.0)
		}
	}

	// The drift dominates the noise over many draws.
	up, down := 0.0, 0.0

	for range 50 {
		ups := generator.Sparkline(TrendUp)
		downs := generator.Sparkline(TrendDown)
		up += ups[len(ups)-1]
		down += downs[len(downs)-1]
	}

	assert.Greater(t, up, down)
}

var hashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestTransactions(t *testing.T) {
	transactions := NewGenerator(3).Transactions(15)

	require.Len(t, transactions, 15)

	seen := map[string]bool{}

	for _, transaction := range transactions {
		_, err := uuid.Parse(transaction.ID)

		assert.NoError(t, err)
		assert.False(t, seen[transaction.ID])
		seen[transaction.ID] = true
		assert.Regexp(t, hashPattern, transaction.Hash)
		assert.Contains(t, model.TransactionMethods, transaction.Method)
		assert.Contains(t, model.TransactionStatuses, transaction.Status)
		assert.Regexp(t, `^\$[0-9,]+\.[0-9]{2}$`, transaction.USDValue)
	}
}

func TestGeneratorIsSafeForConcurrentUse(t *testing.T) {
	generator := NewGenerator(9)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			generator.Coins()
			generator.Transactions(3)
			generator.TrendingTokens()
		}()
	}

	wg.Wait()
}

func TestBlocks(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	blocks := Blocks(now)

	require.Len(t, blocks, 5)
	assert.Equal(t, int64(GenesisBlock), blocks[0].BlockNumber)
	assert.Equal(t, int64(GenesisBlock-4), blocks[4].BlockNumber)
	assert.Equal(t, "12s ago", TimeAgo(blocks[0].MinedAt, now))
	assert.Equal(t, "1m ago", TimeAgo(blocks[4].MinedAt, now))

	block := NewGenerator(1).Block(GenesisBlock+1, now)

	assert.Equal(t, "b18472932", block.ID)
	assert.Regexp(t, `^0x[0-9a-f]{4}\.\.\.[0-9a-f]{4}$`, block.Miner)
	assert.GreaterOrEqual(t, block.Txns, 50)
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "0s ago", TimeAgo(now.Add(time.Second), now))
	assert.Equal(t, "59s ago", TimeAgo(now.Add(-59*time.Second), now))
	assert.Equal(t, "5m ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h ago", TimeAgo(now.Add(-2*time.Hour), now))
}

func TestStaticData(t *testing.T) {
	assert.Len(t, Movers(), 10)
	assert.Len(t, Sectors(), 6)
	assert.Equal(t, "45000000000", Sectors()[0].MarketCap.String())
	assert.Len(t, NewGenerator(1).TrendingTokens(), 6)
	assert.Len(t, DashboardStats(), 3)
	assert.Len(t, ActivityStats(), 3)
}
