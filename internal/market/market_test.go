package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/remote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketJSON = `[
	{
		"id": "bitcoin",
		"name": "Bitcoin",
		"symbol": "btc",
		"current_price": 64000,
		"price_change_percentage_24h": 2.4,
		"market_cap": 1250000000000,
		"sparkline_in_7d": {"price": [60000.5, 61000, 62000]}
	},
	{
		"id": "ethereum",
		"name": "Ethereum",
		"symbol": "eth",
		"current_price": 3200,
		"price_change_percentage_24h": -1.2,
		"market_cap": 420000000000
	}
]`

func newMarketServer(t *testing.T, status *atomic.Int32, body *atomic.Value) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/market", request.URL.Path)
		writer.WriteHeader(int(status.Load()))
		fmt.Fprint(writer, body.Load().(string))
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestProvider_FetchDecodesAssets(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	status.Store(http.StatusOK)
	body.Store(marketJSON)
	server, _ := newMarketServer(t, &status, &body)

	provider := NewProvider(NewHTTPFetcher(remote.NewClient(server.URL, time.Second)), DefaultWindow)
	assets, err := provider.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "bitcoin", assets[0].ID)
	assert.True(t, assets[0].CurrentPrice.Equal(decimal.NewFromInt(64000)))
	assert.True(t, assets[1].PriceChangePercentage24h.Equal(decimal.RequireFromString("-1.2")))
	assert.Equal(t, []float64{60000.5, 61000, 62000}, assets[0].Sparkline7d.Price)
	assert.Empty(t, assets[1].Sparkline7d.Price)
}

func TestProvider_CachesWithinWindow(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	status.Store(http.StatusOK)
	body.Store(marketJSON)
	server, calls := newMarketServer(t, &status, &body)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider := NewProvider(NewHTTPFetcher(remote.NewClient(server.URL, time.Second)), DefaultWindow)
	provider.SetClock(func() time.Time { return now })

	for range 3 {
		_, err := provider.Fetch(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load(), "reads inside the window must not refetch")

	now = now.Add(DefaultWindow)
	_, err := provider.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a stale entry must be refetched")
}

func TestProvider_InvalidateForcesFetch(t *testing.T) {
	var calls int

	provider := NewProvider(FetcherFunc(func(ctx context.Context) ([]model.Asset, error) {
		calls++

		return []model.Asset{{ID: "bitcoin"}}, nil
	}), DefaultWindow)

	_, _ = provider.Fetch(context.Background())
	provider.Invalidate()
	_, _ = provider.Fetch(context.Background())

	assert.Equal(t, 2, calls)
}

func TestProvider_TransportErrorPropagates(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	status.Store(http.StatusBadGateway)
	body.Store("upstream down")
	server, _ := newMarketServer(t, &status, &body)

	provider := NewProvider(NewHTTPFetcher(remote.NewClient(server.URL, time.Second)), DefaultWindow)
	assets, err := provider.Fetch(context.Background())

	var transportErr *remote.TransportError

	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadGateway, transportErr.Status)
	assert.Nil(t, assets, "a failure must not be replaced with an empty list")
}

func TestProvider_ErrorIsNotCached(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	status.Store(http.StatusInternalServerError)
	body.Store("")
	server, calls := newMarketServer(t, &status, &body)

	provider := NewProvider(NewHTTPFetcher(remote.NewClient(server.URL, time.Second)), DefaultWindow)

	_, err := provider.Fetch(context.Background())
	require.Error(t, err)

	status.Store(http.StatusOK)
	body.Store(marketJSON)

	assets, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, assets, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProvider_MalformedResponseIsEmpty(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	status.Store(http.StatusOK)
	body.Store(`{"error": "rate limited"}`)
	server, _ := newMarketServer(t, &status, &body)

	provider := NewProvider(NewHTTPFetcher(remote.NewClient(server.URL, time.Second)), DefaultWindow)
	assets, err := provider.Fetch(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestProvider_SlowFetchDoesNotOverwriteNewer(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	provider := NewProvider(FetcherFunc(func(ctx context.Context) ([]model.Asset, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release

			return []model.Asset{{ID: "old"}}, nil
		}

		return []model.Asset{{ID: "new"}}, nil
	}), DefaultWindow)

	done := make(chan []model.Asset)

	go func() {
		assets, _ := provider.Fetch(context.Background())
		done <- assets
	}()

	<-started
	provider.Invalidate()

	fresh, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", fresh[0].ID)

	close(release)
	slow := <-done

	assert.Equal(t, "new", slow[0].ID, "the slow caller gets the fresher cached list")

	cached, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", cached[0].ID)
}

func TestProvider_SuppressedFetchOverExpiredEntry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	firstStarted := make(chan struct{})
	secondStarted := make(chan struct{})
	releaseSecond := make(chan struct{})
	var calls atomic.Int32

	provider := NewProvider(FetcherFunc(func(ctx context.Context) ([]model.Asset, error) {
		switch calls.Add(1) {
		case 1:
			return []model.Asset{{ID: "old"}}, nil
		case 2:
			close(firstStarted)
			<-secondStarted

			return []model.Asset{{ID: "fresh-a"}}, nil
		default:
			close(secondStarted)
			<-releaseSecond

			return []model.Asset{{ID: "fresh-b"}}, nil
		}
	}), DefaultWindow)
	provider.SetClock(func() time.Time { return now })

	_, err := provider.Fetch(context.Background())
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)

	first := make(chan []model.Asset)
	second := make(chan []model.Asset)

	go func() {
		assets, _ := provider.Fetch(context.Background())
		first <- assets
	}()

	<-firstStarted

	go func() {
		assets, _ := provider.Fetch(context.Background())
		second <- assets
	}()

	assert.Equal(t, "fresh-a", (<-first)[0].ID, "an expired entry must not replace the caller's own result")

	close(releaseSecond)
	assert.Equal(t, "fresh-b", (<-second)[0].ID)
}

func TestWithFallback(t *testing.T) {
	empty := FetcherFunc(func(ctx context.Context) ([]model.Asset, error) { return nil, nil })
	stored := FetcherFunc(func(ctx context.Context) ([]model.Asset, error) { return []model.Asset{{ID: "stored"}}, nil })
	failing := FetcherFunc(func(ctx context.Context) ([]model.Asset, error) { return nil, errors.New("down") })
	fallback := FetcherFunc(func(ctx context.Context) ([]model.Asset, error) { return []model.Asset{{ID: "fallback"}}, nil })

	assets, err := WithFallback(empty, fallback).FetchAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", assets[0].ID)

	assets, err = WithFallback(stored, fallback).FetchAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored", assets[0].ID)

	_, err = WithFallback(failing, fallback).FetchAssets(context.Background())
	assert.Error(t, err)
}
