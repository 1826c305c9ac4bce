// Package market provides the cached asset list for the dashboard.
package market

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dense-analysis/nexus/internal/cache"
	"github.com/dense-analysis/nexus/internal/metrics"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/remote"
)

var logger = log.New(log.Writer(), "[market] ", log.LstdFlags)

// DefaultWindow is how long a fetched asset list stays fresh.
const DefaultWindow = 5 * time.Minute

const cacheKey = "marketData"

// Fetcher loads the full asset list from a source.
type Fetcher interface {
	FetchAssets(ctx context.Context) ([]model.Asset, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.Asset, error)

func (f FetcherFunc) FetchAssets(ctx context.Context) ([]model.Asset, error) {
	return f(ctx)
}

// Provider caches the asset list from a Fetcher.
//
// Reads inside the window never refetch, no matter how often they happen.
type Provider struct {
	fetcher Fetcher
	cache   *cache.Cache[[]model.Asset]
}

func NewProvider(fetcher Fetcher, window time.Duration) *Provider {
	return &Provider{
		fetcher: fetcher,
		cache:   cache.New[[]model.Asset]("market", window),
	}
}

// SetClock replaces the time source, for tests.
func (p *Provider) SetClock(now func() time.Time) {
	p.cache.SetClock(now)
}

// Fetch returns the cached asset list, fetching it if missing or stale.
//
// A response of the wrong shape is treated as an empty list. Other errors
// from the source are returned as is, without substituting a cached or empty
// list.
func (p *Provider) Fetch(ctx context.Context) ([]model.Asset, error) {
	if assets, ok := p.cache.Get(cacheKey); ok {
		return assets, nil
	}

	seq := p.cache.Begin(cacheKey)
	assets, err := p.fetcher.FetchAssets(ctx)

	if errors.Is(err, remote.ErrMalformedResponse) {
		logger.Printf("treating malformed market data as empty: %s", err)
		metrics.MalformedResponses.WithLabelValues("market").Inc()
		assets, err = []model.Asset{}, nil
	}

	if err != nil {
		metrics.FetchErrors.WithLabelValues("market").Inc()

		return nil, err
	}

	if assets == nil {
		assets = []model.Asset{}
	}

	if !p.cache.Commit(cacheKey, seq, assets) {
		// A fetch begun after this one landed first, so prefer its result.
		if newer, ok := p.cache.Newer(cacheKey, seq); ok {
			return newer, nil
		}
	}

	return assets, nil
}

// Invalidate forces the next Fetch to go to the source.
func (p *Provider) Invalidate() {
	p.cache.Invalidate(cacheKey)
}

// HTTPFetcher loads assets from GET /api/market.
type HTTPFetcher struct {
	client *remote.Client
}

func NewHTTPFetcher(client *remote.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) FetchAssets(ctx context.Context) ([]model.Asset, error) {
	assets, err := remote.GetList[model.Asset](ctx, f.client, "/api/market")

	if err != nil {
		logger.Printf("fetch failed: %s", err)
	}

	return assets, err
}

// WithFallback returns a Fetcher that uses fallback while primary has no
// assets, such as before the first ingest. Errors from primary are returned.
func WithFallback(primary, fallback Fetcher) Fetcher {
	return FetcherFunc(func(ctx context.Context) ([]model.Asset, error) {
		assets, err := primary.FetchAssets(ctx)

		if err != nil {
			return nil, err
		}

		if len(assets) == 0 {
			logger.Printf("no stored assets, using fallback data")

			return fallback.FetchAssets(ctx)
		}

		return assets, nil
	})
}
