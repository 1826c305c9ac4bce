package view

import (
	"slices"

	"github.com/dense-analysis/nexus/internal/model"
)

// Row is one line of the market table.
type Row struct {
	Asset    model.Asset `json:"asset"`
	Starred  bool        `json:"starred"`
	Selected bool        `json:"selected"`
	Positive bool        `json:"positive"`
}

// Dashboard is the render-ready projection of the dashboard tab.
type Dashboard struct {
	Stats           []model.StatCard      `json:"stats"`
	Query           string                `json:"query"`
	Sort            SortDirective         `json:"sort"`
	Rows            []Row                 `json:"rows"`
	Selected        model.Asset           `json:"selected"`
	SelectedStarred bool                  `json:"selected_starred"`
	Chart           []ChartPoint          `json:"chart"`
	ChartPositive   bool                  `json:"chart_positive"`
	Watchlist       []model.WatchlistItem `json:"watchlist"`
}

// ProjectDashboard computes the dashboard tab.
//
// assets and items are used as fetched. The selection is resolved against
// the unfiltered list, so a selected asset hidden by the search stays in the
// chart panel.
func ProjectDashboard(assets []model.Asset, items []model.WatchlistItem, state State) Dashboard {
	watched := NewWatchSet(items)
	selected, _ := ResolveSelected(assets, state.SelectedID)
	visible := Sort(Filter(assets, state.Query), state.Sort)
	rows := make([]Row, len(visible))

	for i, asset := range visible {
		rows[i] = Row{
			Asset:    asset,
			Starred:  watched.Has(asset.ID),
			Selected: !selected.IsEmpty() && asset.ID == selected.ID,
			Positive: asset.Positive(),
		}
	}

	if items == nil {
		items = []model.WatchlistItem{}
	}

	return Dashboard{
		Stats:           []model.StatCard{},
		Query:           state.Query,
		Sort:            state.Sort,
		Rows:            rows,
		Selected:        selected,
		SelectedStarred: !selected.IsEmpty() && watched.Has(selected.ID),
		Chart:           ChartSeries(selected.Sparkline7d.Price),
		ChartPositive:   selected.Positive(),
		Watchlist:       items,
	}
}

// FilterTransactions keeps the transactions with the given method.
// MethodAll keeps everything.
func FilterTransactions(transactions []model.Transaction, method string) []model.Transaction {
	out := make([]model.Transaction, 0, len(transactions))

	for _, transaction := range transactions {
		if method == MethodAll || transaction.Method == method {
			out = append(out, transaction)
		}
	}

	return out
}

// Activity is the render-ready projection of the activity tab.
type Activity struct {
	Stats        []model.StatCard    `json:"stats"`
	Method       string              `json:"method"`
	Methods      []string            `json:"methods"`
	Transactions []model.Transaction `json:"transactions"`
	Blocks       []model.FeedBlock   `json:"blocks"`
}

func ProjectActivity(
	stats []model.StatCard,
	transactions []model.Transaction,
	blocks []model.FeedBlock,
	state State,
) Activity {
	if blocks == nil {
		blocks = []model.FeedBlock{}
	}

	return Activity{
		Stats:        stats,
		Method:       state.ActivityMethod,
		Methods:      ActivityMethods,
		Transactions: FilterTransactions(transactions, state.ActivityMethod),
		Blocks:       blocks,
	}
}

// Sentiment is the band a sentiment score falls in.
type Sentiment string

const (
	SentimentHigh   Sentiment = "high"
	SentimentMedium Sentiment = "medium"
	SentimentLow    Sentiment = "low"
)

// SentimentBand buckets a 0-100 sentiment score.
func SentimentBand(score int) Sentiment {
	switch {
	case score > 70:
		return SentimentHigh
	case score > 40:
		return SentimentMedium
	default:
		return SentimentLow
	}
}

// SortTrending returns a copy of tokens ordered by field, largest first.
func SortTrending(tokens []model.TrendingToken, field TrendingField) []model.TrendingToken {
	out := slices.Clone(tokens)

	slices.SortStableFunc(out, func(a, b model.TrendingToken) int {
		if field == TrendingBySentiment {
			return b.Sentiment - a.Sentiment
		}

		return b.VolChange.Cmp(a.VolChange)
	})

	return out
}

// TopMovers splits movers into the n largest gains and the n largest losses.
func TopMovers(movers []model.GainerLoser, n int) (gainers, losers []model.GainerLoser) {
	gainers = []model.GainerLoser{}
	losers = []model.GainerLoser{}

	byChange := slices.Clone(movers)
	slices.SortStableFunc(byChange, func(a, b model.GainerLoser) int {
		return b.Change.Cmp(a.Change)
	})

	for _, mover := range byChange {
		if len(gainers) < n && mover.Change.IsPositive() {
			gainers = append(gainers, mover)
		}
	}

	for i := len(byChange) - 1; i >= 0; i-- {
		if len(losers) < n && byChange[i].Change.IsNegative() {
			losers = append(losers, byChange[i])
		}
	}

	return gainers, losers
}

// TrendingRow is one line of the trending table.
type TrendingRow struct {
	Token     model.TrendingToken `json:"token"`
	Positive  bool                `json:"positive"`
	Sentiment Sentiment           `json:"sentiment_band"`
}

// Trending is the render-ready projection of the trending tab.
type Trending struct {
	Sort    TrendingField       `json:"sort"`
	Gainers []model.GainerLoser `json:"gainers"`
	Losers  []model.GainerLoser `json:"losers"`
	Sectors []model.Sector      `json:"sectors"`
	Tokens  []TrendingRow       `json:"tokens"`
}

// MoverCount is how many gainers and losers the trending tab lists.
const MoverCount = 5

func ProjectTrending(
	movers []model.GainerLoser,
	sectors []model.Sector,
	tokens []model.TrendingToken,
	state State,
) Trending {
	gainers, losers := TopMovers(movers, MoverCount)
	sorted := SortTrending(tokens, state.TrendingSort)
	rows := make([]TrendingRow, len(sorted))

	for i, token := range sorted {
		rows[i] = TrendingRow{
			Token:     token,
			Positive:  TrendPositive(token.Sparkline),
			Sentiment: SentimentBand(token.Sentiment),
		}
	}

	if sectors == nil {
		sectors = []model.Sector{}
	}

	return Trending{
		Sort:    state.TrendingSort,
		Gainers: gainers,
		Losers:  losers,
		Sectors: sectors,
		Tokens:  rows,
	}
}

// SettingsView is the render-ready projection of the settings tab.
type SettingsView struct {
	Settings         model.Settings `json:"settings"`
	Currencies       []string       `json:"currencies"`
	RefreshIntervals []string       `json:"refresh_intervals"`
}

func ProjectSettings(state State) SettingsView {
	return SettingsView{
		Settings:         state.Settings,
		Currencies:       model.Currencies,
		RefreshIntervals: model.RefreshIntervals,
	}
}

// ValidateSettings lists the problems with a settings change.
func ValidateSettings(settings model.Settings) []string {
	var issues []string

	if !slices.Contains(model.Currencies, settings.Currency) {
		issues = append(issues, "unknown currency: "+settings.Currency)
	}

	if !slices.Contains(model.RefreshIntervals, settings.RefreshInterval) {
		issues = append(issues, "unknown refresh interval: "+settings.RefreshInterval)
	}

	return issues
}
