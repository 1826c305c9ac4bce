package store

import (
	"context"
	"time"

	"github.com/dense-analysis/nexus/internal/database"
	"github.com/dense-analysis/nexus/internal/model"
)

var clickHouseSchema = []string{
	`
	create table if not exists nexus_watchlist (
		id String,
		symbol String,
		name String,
		removed UInt8,
		updated_at DateTime64(9)
	)
	engine = MergeTree
	order by (id, updated_at)
	`,
	`
	create table if not exists nexus_market (
		time DateTime64(9),
		id String,
		name String,
		symbol String,
		current_price Decimal(38, 18),
		price_change_percentage_24h Decimal(38, 18),
		market_cap Decimal(38, 18),
		sparkline Array(Float64)
	)
	engine = MergeTree
	partition by toYYYYMM(time)
	order by (id, time)
	`,
}

// EnsureClickHouseSchema creates the Nexus tables if they are missing.
func EnsureClickHouseSchema(ctx context.Context, conn database.Queryable) error {
	for _, statement := range clickHouseSchema {
		if err := conn.Exec(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}

// ClickHouseWatchlist stores the watchlist as versioned rows.
//
// Every add or remove inserts a new row, and the latest row per id decides if
// the id is in the set.
type ClickHouseWatchlist struct {
	conn database.Queryable
}

func NewClickHouseWatchlist(conn database.Queryable) *ClickHouseWatchlist {
	return &ClickHouseWatchlist{conn: conn}
}

var watchlistListQuery = `
select id, symbol, name
from (
	select id, symbol, name, removed, updated_at
	from nexus_watchlist
	order by updated_at desc
	limit 1 by id
)
where removed = 0
order by updated_at
`

func (w *ClickHouseWatchlist) List(ctx context.Context) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem

	err := model.LoadList(ctx, w.conn, &items, 20, scanWatchlistItem, watchlistListQuery)

	return items, err
}

var watchlistUpdateQuery = `
insert into nexus_watchlist
	(id, symbol, name, removed, updated_at)
values (?, ?, ?, ?, now64(9))
`

func (w *ClickHouseWatchlist) Add(ctx context.Context, item model.WatchlistItem) error {
	return w.conn.Exec(ctx, watchlistUpdateQuery, item.ID, item.Symbol, item.Name, uint8(0))
}

func (w *ClickHouseWatchlist) Remove(ctx context.Context, id string) error {
	return w.conn.Exec(ctx, watchlistUpdateQuery, id, "", "", uint8(1))
}

// ClickHouseMarket stores snapshots of the market list.
type ClickHouseMarket struct {
	conn *database.Conn
}

func NewClickHouseMarket(conn *database.Conn) *ClickHouseMarket {
	return &ClickHouseMarket{conn: conn}
}

func scanAsset(row database.Row, asset *model.Asset) error {
	return row.Scan(
		&asset.ID,
		&asset.Name,
		&asset.Symbol,
		&asset.CurrentPrice,
		&asset.PriceChangePercentage24h,
		&asset.MarketCap,
		&asset.Sparkline7d.Price,
	)
}

// Latest loads the most recent snapshot row for every asset.
func (m *ClickHouseMarket) Latest(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset

	err := model.LoadList(
		ctx,
		m.conn,
		&assets,
		100,
		scanAsset,
		`
		select
			id,
			name,
			symbol,
			current_price,
			price_change_percentage_24h,
			market_cap,
			sparkline
		from nexus_market
		-- Only look at the last week so dead coins drop off the dashboard.
		where time >= now64(9) - interval 7 day
		order by time desc
		limit 1 by id
		`,
	)

	return assets, err
}

// Save writes a snapshot of assets with a shared timestamp.
func (m *ClickHouseMarket) Save(ctx context.Context, assets []model.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	batch, err := m.conn.PrepareBatch(
		ctx,
		`insert into nexus_market
			(time, id, name, symbol, current_price,
			 price_change_percentage_24h, market_cap, sparkline)`,
	)

	if err != nil {
		return err
	}

	timestamp := time.Now()

	for _, asset := range assets {
		sparkline := asset.Sparkline7d.Price

		if sparkline == nil {
			sparkline = []float64{}
		}

		if err := batch.Append(
			timestamp,
			asset.ID,
			asset.Name,
			asset.Symbol,
			asset.CurrentPrice,
			asset.PriceChangePercentage24h,
			asset.MarketCap,
			sparkline,
		); err != nil {
			return err
		}
	}

	return batch.Send()
}
