// Package dashboard puts the market data, the watchlist and the mock data
// together into the projections for each tab.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dense-analysis/nexus/internal/feed"
	"github.com/dense-analysis/nexus/internal/mock"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/view"
)

// ErrUnknownAsset is returned when starring an id that is not in the market.
var ErrUnknownAsset = errors.New("unknown asset")

// TransactionCount is how many transactions the activity tab shows.
const TransactionCount = 15

// MarketSource supplies the current asset list.
type MarketSource interface {
	Fetch(ctx context.Context) ([]model.Asset, error)
}

// WatchlistSource reads and changes the watchlist.
type WatchlistSource interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Add(ctx context.Context, item model.WatchlistItem) error
	Remove(ctx context.Context, id string) error
}

type Service struct {
	market       MarketSource
	watchlist    WatchlistSource
	feed         *feed.Feed
	transactions []model.Transaction
	tokens       []model.TrendingToken
}

// NewService builds the service. The activity and trending data are drawn
// from generator once, so they stay put between requests.
func NewService(market MarketSource, watchlist WatchlistSource, generator *mock.Generator, blocks *feed.Feed) *Service {
	return &Service{
		market:       market,
		watchlist:    watchlist,
		feed:         blocks,
		transactions: generator.Transactions(TransactionCount),
		tokens:       generator.TrendingTokens(),
	}
}

// Dashboard fetches the assets and watchlist and projects the dashboard tab.
//
// The returned state has its selection seeded from the fetched assets.
func (s *Service) Dashboard(ctx context.Context, state view.State) (view.Dashboard, view.State, error) {
	assets, err := s.market.Fetch(ctx)

	if err != nil {
		return view.Dashboard{}, state, fmt.Errorf("fetch market data: %w", err)
	}

	items, err := s.watchlist.List(ctx)

	if err != nil {
		return view.Dashboard{}, state, fmt.Errorf("fetch watchlist: %w", err)
	}

	state = view.SeedSelection(state, assets)
	dashboard := view.ProjectDashboard(assets, items, state)
	dashboard.Stats = mock.DashboardStats()

	return dashboard, state, nil
}

// Activity projects the activity tab. Without a feed the block list is empty.
func (s *Service) Activity(state view.State) view.Activity {
	var blocks []model.FeedBlock

	if s.feed != nil {
		blocks = s.feed.Recent()
	}

	return view.ProjectActivity(mock.ActivityStats(), s.transactions, blocks, state)
}

func (s *Service) Trending(state view.State) view.Trending {
	return view.ProjectTrending(mock.Movers(), mock.Sectors(), s.tokens, state)
}

func (s *Service) Settings(state view.State) view.SettingsView {
	return view.ProjectSettings(state)
}

// Project returns the projection of the given tab.
func (s *Service) Project(ctx context.Context, tab view.Tab, state view.State) (any, view.State, error) {
	switch tab {
	case view.TabDashboard:
		return s.Dashboard(ctx, state)
	case view.TabActivity:
		return s.Activity(state), state, nil
	case view.TabTrending:
		return s.Trending(state), state, nil
	case view.TabSettings:
		return s.Settings(state), state, nil
	default:
		return nil, state, fmt.Errorf("unknown tab: %v", tab)
	}
}

// Star adds the asset with the given id to the watchlist.
func (s *Service) Star(ctx context.Context, id string) (model.WatchlistItem, error) {
	assets, err := s.market.Fetch(ctx)

	if err != nil {
		return model.WatchlistItem{}, fmt.Errorf("fetch market data: %w", err)
	}

	for _, asset := range assets {
		if asset.ID == id {
			item := model.WatchlistItemFromAsset(asset)

			if err := s.watchlist.Add(ctx, item); err != nil {
				return model.WatchlistItem{}, fmt.Errorf("add %s to watchlist: %w", id, err)
			}

			return item, nil
		}
	}

	return model.WatchlistItem{}, fmt.Errorf("%w: %q", ErrUnknownAsset, id)
}

// Unstar removes an id from the watchlist. Unstarring an id that is not
// starred succeeds.
func (s *Service) Unstar(ctx context.Context, id string) error {
	if err := s.watchlist.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove %s from watchlist: %w", id, err)
	}

	return nil
}
