package watchlist

import (
	"net/http"

	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/route/util"
	"github.com/dense-analysis/nexus/internal/watchlist"
	"github.com/dense-analysis/nexus/pkg/lax"
	"github.com/gorilla/mux"
)

// ListView serves GET and POST /api/watchlist.
func ListView(source dashboard.WatchlistSource) lax.View {
	return lax.View{
		Get: func(request *lax.Request) any {
			items, err := source.List(request.Context())

			if err != nil {
				return util.RespondError(err)
			}

			return items
		},
		Post: func(request *lax.Request) any {
			var body watchlist.AddRequest

			if err := request.JSON(&body); err != nil {
				return lax.MakeBadRequestResponse(err)
			}

			if err := watchlist.ValidateID(body.Item.ID); err != nil {
				return util.RespondValidationError("item.id", err)
			}

			if err := source.Add(request.Context(), body.Item); err != nil {
				return util.RespondError(err)
			}

			return body.Item
		},
	}
}

// ItemView serves DELETE /api/watchlist/{id}.
//
// Deleting an id that is not in the watchlist still returns 204.
func ItemView(source dashboard.WatchlistSource) lax.View {
	return lax.View{
		Delete: func(request *lax.Request) any {
			id := mux.Vars(request.Request)["id"]

			if err := source.Remove(request.Context(), id); err != nil {
				return util.RespondError(err)
			}

			return lax.MakeResponse(http.StatusNoContent, nil)
		},
	}
}
