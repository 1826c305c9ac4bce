// Print the Nexus dashboard in a terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/env"
	"github.com/dense-analysis/nexus/internal/market"
	"github.com/dense-analysis/nexus/internal/mock"
	"github.com/dense-analysis/nexus/internal/remote"
	"github.com/dense-analysis/nexus/internal/view"
	"github.com/dense-analysis/nexus/internal/watchlist"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// sortFlags collects every -sort flag, in order.
type sortFlags []view.SortField

func (s *sortFlags) String() string {
	parts := make([]string, len(*s))

	for i, field := range *s {
		parts[i] = string(field)
	}

	return strings.Join(parts, ",")
}

func (s *sortFlags) Set(value string) error {
	field, err := view.ParseSortField(value)

	if err != nil {
		return err
	}

	*s = append(*s, field)

	return nil
}

// applySorts replays -sort flags as if each were a click on a column header.
func applySorts(state view.State, fields []view.SortField) view.State {
	for _, field := range fields {
		state = state.WithSortRequest(field)
	}

	return state
}

var printer = message.NewPrinter(language.English)

func formatMoney(value decimal.Decimal) string {
	number, _ := value.Float64()

	if number >= 1 {
		return printer.Sprintf("$%.2f", number)
	}

	return "$" + value.String()
}

func formatChange(change decimal.Decimal, color bool) string {
	text := change.StringFixed(2) + "%"

	if !change.IsNegative() {
		text = "+" + text
	}

	if !color {
		return text
	}

	if change.IsNegative() {
		return colorRed + text + colorReset
	}

	return colorGreen + text + colorReset
}

func sortMarker(directive view.SortDirective, field view.SortField) string {
	if directive.Field != field {
		return ""
	}

	if directive.Direction == view.Ascending {
		return " ^"
	}

	return " v"
}

// render writes the dashboard as plain text tables.
func render(out io.Writer, projection view.Dashboard, color bool) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, stat := range projection.Stats {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", stat.Title, stat.Value, formatChange(stat.Change, color))
	}

	fmt.Fprintln(writer)

	if projection.Query != "" {
		fmt.Fprintf(writer, "Search: %q\n\n", projection.Query)
	}

	fmt.Fprintf(
		writer,
		"\t\tName%s\tSymbol%s\tPrice%s\t24h%s\tMarket Cap%s\n",
		sortMarker(projection.Sort, view.SortByName),
		sortMarker(projection.Sort, view.SortBySymbol),
		sortMarker(projection.Sort, view.SortByPrice),
		sortMarker(projection.Sort, view.SortByChange24h),
		sortMarker(projection.Sort, view.SortByMarketCap),
	)

	for _, row := range projection.Rows {
		selected, starred := "", ""

		if row.Selected {
			selected = ">"
		}

		if row.Starred {
			starred = "*"
		}

		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			selected,
			starred,
			row.Asset.Name,
			strings.ToUpper(row.Asset.Symbol),
			formatMoney(row.Asset.CurrentPrice),
			formatChange(row.Asset.PriceChangePercentage24h, color),
			formatMoney(row.Asset.MarketCap),
		)
	}

	if len(projection.Rows) == 0 {
		fmt.Fprintln(writer, "No assets match.")
	}

	if !projection.Selected.IsEmpty() {
		trend := "down"

		if projection.ChartPositive {
			trend = "up"
		}

		fmt.Fprintf(
			writer,
			"\nSelected: %s (%s), %d chart points, trending %s\n",
			projection.Selected.Name,
			strings.ToUpper(projection.Selected.Symbol),
			len(projection.Chart),
			trend,
		)
	}

	fmt.Fprintln(writer, "\nWatchlist:")

	for _, item := range projection.Watchlist {
		fmt.Fprintf(writer, "  %s\t%s\n", strings.ToUpper(item.Symbol), item.Name)
	}

	if len(projection.Watchlist) == 0 {
		fmt.Fprintln(writer, "  (empty)")
	}

	return writer.Flush()
}

func main() {
	var sorts sortFlags

	configPath := flag.String("config", "nexus.yaml", "path to the YAML config file")
	apiURL := flag.String("api", "", "base URL of the Nexus API, overriding the config")
	search := flag.String("search", "", "only show assets whose name or symbol contains this")
	selectID := flag.String("select", "", "id of the asset to show details for")
	star := flag.String("star", "", "id of an asset to add to the watchlist")
	unstar := flag.String("unstar", "", "id of an asset to remove from the watchlist")
	flag.Var(&sorts, "sort", "column to sort by, repeat to toggle the direction")
	flag.Parse()

	env.LoadEnvironmentVariables()

	cfg, err := config.Load(*configPath)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", err)
		os.Exit(1)
	}

	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}

	ctx := context.Background()
	client := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	provider := market.NewProvider(market.NewHTTPFetcher(client), cfg.API.MarketWindow)
	items := watchlist.NewClient(watchlist.NewHTTPRemote(client), cfg.API.WatchlistWindow)
	service := dashboard.NewService(provider, items, mock.NewGenerator(cfg.Mock.Seed), nil)

	if *star != "" {
		if _, err := service.Star(ctx, *star); err != nil {
			fmt.Fprintf(os.Stderr, "Star error: %s\n", err)
			os.Exit(1)
		}
	}

	if *unstar != "" {
		if err := service.Unstar(ctx, *unstar); err != nil {
			fmt.Fprintf(os.Stderr, "Unstar error: %s\n", err)
			os.Exit(1)
		}
	}

	state := applySorts(view.NewState().WithQuery(*search), sorts)

	if *selectID != "" {
		state = state.WithSelection(*selectID)
	}

	projection, _, err := service.Dashboard(ctx, state)

	if err != nil {
		fmt.Fprintf(os.Stderr, "API error: %s\n", err)
		os.Exit(1)
	}

	if err := render(os.Stdout, projection, term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %s\n", err)
		os.Exit(1)
	}
}
