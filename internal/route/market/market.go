package market

import (
	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/route/util"
	"github.com/dense-analysis/nexus/pkg/lax"
)

// View serves GET /api/market.
func View(source dashboard.MarketSource) lax.View {
	return lax.View{
		Get: func(request *lax.Request) any {
			assets, err := source.Fetch(request.Context())

			if err != nil {
				return util.RespondError(err)
			}

			return assets
		},
	}
}
