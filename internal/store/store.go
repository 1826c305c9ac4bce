// Package store persists the watchlist and market snapshots behind the
// Nexus API.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/database"
	"github.com/dense-analysis/nexus/internal/model"
)

// Watchlist is a set of starred assets keyed by id.
//
// Add of an id already present and Remove of an absent id both succeed
// without changing the set.
type Watchlist interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Add(ctx context.Context, item model.WatchlistItem) error
	Remove(ctx context.Context, id string) error
}

// Stores bundles the stores opened for a configuration.
type Stores struct {
	Watchlist Watchlist
	// Market is nil unless ClickHouse is configured.
	Market  *ClickHouseMarket
	closers []io.Closer
}

// Close closes any database connections held by the stores.
func (s *Stores) Close() error {
	var firstErr error

	for _, closer := range s.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Open opens the stores for the configured driver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return &Stores{Watchlist: NewMemoryWatchlist()}, nil
	case config.StorageClickHouse:
		conn, err := database.Connect(ctx, cfg.Storage.ClickHouse)

		if err != nil {
			return nil, fmt.Errorf("connect to clickhouse: %w", err)
		}

		if err := EnsureClickHouseSchema(ctx, conn); err != nil {
			_ = conn.Close()

			return nil, fmt.Errorf("create clickhouse schema: %w", err)
		}

		return &Stores{
			Watchlist: NewClickHouseWatchlist(conn),
			Market:    NewClickHouseMarket(conn),
			closers:   []io.Closer{conn},
		}, nil
	case config.StoragePostgres:
		conn, err := database.ConnectPostgres(ctx, cfg.Storage.Postgres)

		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		return &Stores{
			Watchlist: NewPostgresWatchlist(conn),
			closers:   []io.Closer{conn},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

func scanWatchlistItem(row database.Row, item *model.WatchlistItem) error {
	return row.Scan(&item.ID, &item.Symbol, &item.Name)
}
