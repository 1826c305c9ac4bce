package view

import (
	"fmt"

	"github.com/dense-analysis/nexus/internal/model"
)

// Tab is one of the dashboard's top level views.
type Tab int

const (
	TabDashboard Tab = iota
	TabActivity
	TabTrending
	TabSettings
)

// Tabs lists every Tab in sidebar order.
var Tabs = []Tab{TabDashboard, TabActivity, TabTrending, TabSettings}

func (t Tab) String() string {
	switch t {
	case TabDashboard:
		return "dashboard"
	case TabActivity:
		return "activity"
	case TabTrending:
		return "trending"
	case TabSettings:
		return "settings"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// Label is the name shown in the sidebar.
func (t Tab) Label() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabActivity:
		return "Activity"
	case TabTrending:
		return "Trending"
	case TabSettings:
		return "Settings"
	default:
		return ""
	}
}

// ParseTab parses the text form of a Tab.
func ParseTab(text string) (Tab, error) {
	for _, tab := range Tabs {
		if tab.String() == text {
			return tab, nil
		}
	}

	return TabDashboard, fmt.Errorf("unknown tab: %q", text)
}

func (t Tab) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tab) UnmarshalText(text []byte) error {
	tab, err := ParseTab(string(text))

	if err != nil {
		return err
	}

	*t = tab

	return nil
}

// SortField is an Asset attribute the market table can be ordered by.
type SortField string

const (
	SortByPrice     SortField = "current_price"
	SortByChange24h SortField = "price_change_percentage_24h"
	SortByMarketCap SortField = "market_cap"
	SortByName      SortField = "name"
	SortBySymbol    SortField = "symbol"
)

// SortFields lists every SortField.
var SortFields = []SortField{SortByPrice, SortByChange24h, SortByMarketCap, SortByName, SortBySymbol}

// ParseSortField validates the text form of a SortField.
func ParseSortField(text string) (SortField, error) {
	for _, field := range SortFields {
		if string(field) == text {
			return field, nil
		}
	}

	return "", fmt.Errorf("unknown sort field: %q", text)
}

func (f SortField) isString() bool {
	return f == SortByName || f == SortBySymbol
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortDirective is the active ordering of the market table.
type SortDirective struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by market cap, largest first.
var DefaultSort = SortDirective{Field: SortByMarketCap, Direction: Descending}

// Toggle returns the directive after the user asks to sort by field.
//
// Asking for the active field while it is descending flips it to ascending.
// Anything else sorts by field descending.
func (d SortDirective) Toggle(field SortField) SortDirective {
	if d.Field == field && d.Direction == Descending {
		return SortDirective{Field: field, Direction: Ascending}
	}

	return SortDirective{Field: field, Direction: Descending}
}

// TrendingField is the ordering of the trending table.
type TrendingField string

const (
	TrendingByVolume    TrendingField = "vol_change"
	TrendingBySentiment TrendingField = "sentiment"
)

// ParseTrendingField validates the text form of a TrendingField.
func ParseTrendingField(text string) (TrendingField, error) {
	switch TrendingField(text) {
	case TrendingByVolume, TrendingBySentiment:
		return TrendingField(text), nil
	default:
		return "", fmt.Errorf("unknown trending sort field: %q", text)
	}
}

// MethodAll matches every transaction method.
const MethodAll = "All"

// ActivityMethods are the choices for the activity filter.
var ActivityMethods = []string{MethodAll, model.MethodSwap, model.MethodSend, model.MethodMint}

// ParseActivityMethod validates an activity filter choice.
func ParseActivityMethod(text string) (string, error) {
	if text == MethodAll {
		return text, nil
	}

	for _, method := range model.TransactionMethods {
		if method == text {
			return text, nil
		}
	}

	return "", fmt.Errorf("unknown transaction method: %q", text)
}

// State is the transient UI state of one view session.
//
// It is a value: every change returns a new State.
type State struct {
	Tab            Tab            `json:"tab"`
	Query          string         `json:"query"`
	Sort           SortDirective  `json:"sort"`
	SelectedID     string         `json:"selected_id"`
	ActivityMethod string         `json:"activity_method"`
	TrendingSort   TrendingField  `json:"trending_sort"`
	Settings       model.Settings `json:"settings"`
}

// NewState returns the state of a fresh session.
func NewState() State {
	return State{
		Tab:            TabDashboard,
		Sort:           DefaultSort,
		ActivityMethod: MethodAll,
		TrendingSort:   TrendingByVolume,
		Settings:       model.DefaultSettings(),
	}
}

func (s State) WithTab(tab Tab) State {
	s.Tab = tab

	return s
}

func (s State) WithQuery(query string) State {
	s.Query = query

	return s
}

// WithSortRequest applies the toggle rule for a request to sort by field.
func (s State) WithSortRequest(field SortField) State {
	s.Sort = s.Sort.Toggle(field)

	return s
}

// WithSelection records a user selection, which seeding never overrides.
func (s State) WithSelection(id string) State {
	s.SelectedID = id

	return s
}

func (s State) WithActivityMethod(method string) State {
	s.ActivityMethod = method

	return s
}

func (s State) WithTrendingSort(field TrendingField) State {
	s.TrendingSort = field

	return s
}

func (s State) WithSettings(settings model.Settings) State {
	s.Settings = settings

	return s
}
