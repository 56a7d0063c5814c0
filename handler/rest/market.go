package rest

import (
	"context"
	"net/http"

	"moneymarket/core"
	"moneymarket/handler/render"
	"moneymarket/handler/views"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
)

func allMarketsHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, err := e.Markets(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		marketViews := make([]*views.Market, 0, len(markets))
		for _, m := range markets {
			marketViews = append(marketViews, getMarketView(ctx, e, m))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, err := e.Market(ctx, chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, getMarketView(ctx, e, market))
	}
}

func getMarketView(ctx context.Context, e Engine, market *core.Market) *views.Market {
	view := &views.Market{Market: *market}

	rates, err := e.MarketRates(ctx, market.ID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("market", market.ID).Infoln("MarketRates")
		return view
	}

	view.SupplyAPY = rates.SupplyRate
	view.BorrowAPY = rates.BorrowRate
	view.UtilizationRate = rates.UtilizationRate
	view.ExchangeRate = rates.ExchangeRate
	return view
}
