// Package view serves the tab projections and the requests that change the
// session's view state.
package view

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/route/util"
	"github.com/dense-analysis/nexus/internal/session"
	"github.com/dense-analysis/nexus/internal/view"
	"github.com/dense-analysis/nexus/pkg/lax"
	"github.com/gorilla/mux"
)

// Response is the body of every view endpoint.
type Response struct {
	Tab   view.Tab   `json:"tab"`
	State view.State `json:"state"`
	View  any        `json:"view"`
}

func saveState(request *lax.Request, state view.State) {
	if err := session.SaveState(request.Writer, request.Request, state); err != nil {
		log.Printf("session save failed: %+v\n", err)
	}
}

func project(request *lax.Request, service *dashboard.Service, tab view.Tab) any {
	state := session.LoadState(request.Request)
	projection, state, err := service.Project(request.Context(), tab, state)

	if err != nil {
		return util.RespondError(err)
	}

	saveState(request, state)

	return Response{Tab: tab, State: state, View: projection}
}

// ActiveView serves GET /api/view, the projection of the session's tab.
func ActiveView(service *dashboard.Service) lax.View {
	return lax.View{
		Get: func(request *lax.Request) any {
			return project(request, service, session.LoadState(request.Request).Tab)
		},
	}
}

// TabView serves GET /api/view/{tab} without changing the session's tab.
func TabView(service *dashboard.Service) lax.View {
	return lax.View{
		Get: func(request *lax.Request) any {
			tab, err := view.ParseTab(mux.Vars(request.Request)["tab"])

			if err != nil {
				return lax.MakeNotFoundResponse(err.Error())
			}

			return project(request, service, tab)
		},
	}
}

// update builds a POST view that decodes a body of type T, applies it to the
// session state, and returns the new state.
func update[T any](apply func(state view.State, body T) (view.State, any)) lax.View {
	return lax.View{
		Post: func(request *lax.Request) any {
			var body T

			if err := request.JSON(&body); err != nil {
				return lax.MakeBadRequestResponse(err)
			}

			state, problem := apply(session.LoadState(request.Request), body)

			if problem != nil {
				return problem
			}

			saveState(request, state)

			return lax.MakeResponse(http.StatusOK, state)
		},
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type fieldRequest struct {
	Field string `json:"field"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type tabRequest struct {
	Tab string `json:"tab"`
}

type methodRequest struct {
	Method string `json:"method"`
}

// SearchView serves POST /api/view/search.
func SearchView() lax.View {
	return update(func(state view.State, body searchRequest) (view.State, any) {
		return state.WithQuery(body.Query), nil
	})
}

// SortView serves POST /api/view/sort, toggling the sort like a column
// header click.
func SortView() lax.View {
	return update(func(state view.State, body fieldRequest) (view.State, any) {
		field, err := view.ParseSortField(body.Field)

		if err != nil {
			return state, util.RespondValidationError("field", err)
		}

		return state.WithSortRequest(field), nil
	})
}

// SelectView serves POST /api/view/select.
func SelectView() lax.View {
	return update(func(state view.State, body selectRequest) (view.State, any) {
		if strings.TrimSpace(body.ID) == "" {
			return state, util.RespondValidationError("id", errors.New("an id is required"))
		}

		return state.WithSelection(body.ID), nil
	})
}

// SwitchTabView serves POST /api/view/tab.
func SwitchTabView() lax.View {
	return update(func(state view.State, body tabRequest) (view.State, any) {
		tab, err := view.ParseTab(body.Tab)

		if err != nil {
			return state, util.RespondValidationError("tab", err)
		}

		return state.WithTab(tab), nil
	})
}

// ActivityFilterView serves POST /api/view/activity.
func ActivityFilterView() lax.View {
	return update(func(state view.State, body methodRequest) (view.State, any) {
		method, err := view.ParseActivityMethod(body.Method)

		if err != nil {
			return state, util.RespondValidationError("method", err)
		}

		return state.WithActivityMethod(method), nil
	})
}

// TrendingSortView serves POST /api/view/trending.
func TrendingSortView() lax.View {
	return update(func(state view.State, body fieldRequest) (view.State, any) {
		field, err := view.ParseTrendingField(body.Field)

		if err != nil {
			return state, util.RespondValidationError("field", err)
		}

		return state.WithTrendingSort(field), nil
	})
}

// SettingsView serves POST /api/view/settings.
func SettingsView() lax.View {
	return update(func(state view.State, body model.Settings) (view.State, any) {
		if problems := view.ValidateSettings(body); len(problems) > 0 {
			issues := make([]lax.IssueDescription, len(problems))

			for i, problem := range problems {
				issues[i] = lax.Issue("settings", problem)
			}

			return state, lax.MakeErrorListResponse(issues...)
		}

		return state.WithSettings(body), nil
	})
}
