package main

import (
	"bytes"
	"flag"
	"testing"

	"github.com/dense-analysis/nexus/internal/mock"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortFlags(t *testing.T) {
	var sorts sortFlags

	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.Var(&sorts, "sort", "")

	require.NoError(t, flags.Parse([]string{"-sort", "name", "-sort", "name", "-sort", "current_price"}))
	assert.Equal(t, sortFlags{view.SortByName, view.SortByName, view.SortByPrice}, sorts)
	assert.Equal(t, "name,name,current_price", sorts.String())

	assert.Error(t, flags.Parse([]string{"-sort", "volume"}))
}

func TestApplySorts(t *testing.T) {
	state := applySorts(view.NewState(), []view.SortField{view.SortByName, view.SortByName})

	assert.Equal(t, view.SortDirective{Field: view.SortByName, Direction: view.Ascending}, state.Sort)

	state = applySorts(state, []view.SortField{view.SortByPrice})

	assert.Equal(t, view.SortDirective{Field: view.SortByPrice, Direction: view.Descending}, state.Sort)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$64,000.00", formatMoney(decimal.NewFromInt(64000)))
	assert.Equal(t, "$0.00001234", formatMoney(decimal.RequireFromString("0.00001234")))
	assert.Equal(t, "+2.40%", formatChange(decimal.RequireFromString("2.4"), false))
	assert.Equal(t, "-1.20%", formatChange(decimal.RequireFromString("-1.2"), false))
	assert.Equal(t, colorRed+"-1.20%"+colorReset, formatChange(decimal.RequireFromString("-1.2"), true))
}

func TestRender(t *testing.T) {
	assets := mock.NewGenerator(1).Coins()
	items := []model.WatchlistItem{model.WatchlistItemFromAsset(assets[1])}
	projection := view.ProjectDashboard(assets, items, view.NewState().WithSelection("ethereum"))
	projection.Stats = mock.DashboardStats()

	var out bytes.Buffer

	require.NoError(t, render(&out, projection, false))

	text := out.String()

	assert.Contains(t, text, "Global Market Cap")
	assert.Contains(t, text, "Market Cap v")
	assert.Contains(t, text, "$64,000.00")
	assert.Contains(t, text, "Selected: Ethereum (ETH), 50 chart points")
	assert.Contains(t, text, "ETH")
	assert.NotContains(t, text, "\033[")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Bitcoin")), bytes.Index(out.Bytes(), []byte("Ethereum")))
}

func TestRenderEmpty(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, render(&out, view.ProjectDashboard(nil, nil, view.NewState().WithQuery("zzz")), false))

	assert.Contains(t, out.String(), "No assets match.")
	assert.Contains(t, out.String(), "(empty)")
	assert.NotContains(t, out.String(), "Selected:")
}
