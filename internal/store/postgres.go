package store

import (
	"context"

	"github.com/dense-analysis/nexus/internal/database"
	"github.com/dense-analysis/nexus/internal/model"
)

// PostgresWatchlist stores the watchlist in the nexus_watchlist table.
//
// The table is created by cmd/migrate.
type PostgresWatchlist struct {
	conn database.Queryable
}

func NewPostgresWatchlist(conn database.Queryable) *PostgresWatchlist {
	return &PostgresWatchlist{conn: conn}
}

func (w *PostgresWatchlist) List(ctx context.Context) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem

	err := model.LoadList(
		ctx,
		w.conn,
		&items,
		20,
		scanWatchlistItem,
		"select id, symbol, name from nexus_watchlist order by created_at",
	)

	return items, err
}

func (w *PostgresWatchlist) Add(ctx context.Context, item model.WatchlistItem) error {
	return w.conn.Exec(
		ctx,
		`
		insert into nexus_watchlist (id, symbol, name, created_at)
		values ($1, $2, $3, NOW())
		on conflict (id) do nothing
		`,
		item.ID,
		item.Symbol,
		item.Name,
	)
}

func (w *PostgresWatchlist) Remove(ctx context.Context, id string) error {
	return w.conn.Exec(ctx, "delete from nexus_watchlist where id = $1", id)
}
