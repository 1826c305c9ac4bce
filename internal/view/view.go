// Package view computes what the dashboard shows from the fetched data and
// the session state.
//
// Every function here is pure. Inputs are never modified, so the functions
// are safe to call on every request.
package view

import (
	"slices"
	"strings"

	"github.com/dense-analysis/nexus/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Empty is the selected asset when there is nothing to select.
var Empty = model.Asset{}

// Filter keeps the assets whose name or symbol contains query, ignoring case.
func Filter(assets []model.Asset, query string) []model.Asset {
	needle := strings.ToLower(query)
	out := make([]model.Asset, 0, len(assets))

	for _, asset := range assets {
		if strings.Contains(strings.ToLower(asset.Name), needle) ||
			strings.Contains(strings.ToLower(asset.Symbol), needle) {
			out = append(out, asset)
		}
	}

	return out
}

func compareAssets(collator *collate.Collator, field SortField, a, b model.Asset) int {
	switch field {
	case SortByName:
		return collator.CompareString(a.Name, b.Name)
	case SortBySymbol:
		return collator.CompareString(a.Symbol, b.Symbol)
	case SortByPrice:
		return a.CurrentPrice.Cmp(b.CurrentPrice)
	case SortByChange24h:
		return a.PriceChangePercentage24h.Cmp(b.PriceChangePercentage24h)
	case SortByMarketCap:
		return a.MarketCap.Cmp(b.MarketCap)
	default:
		return 0
	}
}

// Sort returns a copy of assets ordered by the directive.
//
// Text fields use English collation, numbers compare numerically. The sort is
// stable, so assets with equal keys keep their relative order.
func Sort(assets []model.Asset, directive SortDirective) []model.Asset {
	out := slices.Clone(assets)

	var collator *collate.Collator

	if directive.Field.isString() {
		// Collators are not safe for concurrent use, so make one per call.
		collator = collate.New(language.English)
	}

	sign := 1

	if directive.Direction == Descending {
		sign = -1
	}

	slices.SortStableFunc(out, func(a, b model.Asset) int {
		return sign * compareAssets(collator, directive.Field, a, b)
	})

	return out
}

// SeedSelection selects the first fetched asset when nothing is selected.
//
// assets must be the list in fetch order, before filtering or sorting.
func SeedSelection(state State, assets []model.Asset) State {
	if state.SelectedID == "" && len(assets) > 0 {
		return state.WithSelection(assets[0].ID)
	}

	return state
}

// ResolveSelected finds the selected asset in the unfiltered list.
//
// An id that is not in the list falls back to the first asset, and an empty
// list gives Empty. The bool reports if id itself was found.
func ResolveSelected(assets []model.Asset, id string) (model.Asset, bool) {
	for _, asset := range assets {
		if asset.ID == id {
			return asset, true
		}
	}

	if len(assets) > 0 {
		return assets[0], false
	}

	return Empty, false
}

// WatchSet is the set of starred asset ids.
type WatchSet map[string]struct{}

// NewWatchSet collects the ids of the watchlist items.
func NewWatchSet(items []model.WatchlistItem) WatchSet {
	set := make(WatchSet, len(items))

	for _, item := range items {
		set[item.ID] = struct{}{}
	}

	return set
}

// Has reports if id is starred.
func (s WatchSet) Has(id string) bool {
	_, ok := s[id]

	return ok
}

// ChartPoint is one sample of a price chart.
type ChartPoint struct {
	Time  int     `json:"time"`
	Price float64 `json:"price"`
}

// ChartSeries turns sparkline samples into chart points indexed by step.
func ChartSeries(samples []float64) []ChartPoint {
	points := make([]ChartPoint, len(samples))

	for i, price := range samples {
		points[i] = ChartPoint{Time: i, Price: price}
	}

	return points
}

// TrendPositive reports if a series ended at or above where it started.
func TrendPositive(samples []float64) bool {
	if len(samples) == 0 {
		return false
	}

	return samples[len(samples)-1] >= samples[0]
}
