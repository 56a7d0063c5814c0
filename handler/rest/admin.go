package rest

import (
	"context"
	"net/http"

	"moneymarket/core"
	"moneymarket/handler/param"
	"moneymarket/handler/render"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type valueParams struct {
	Value decimal.Decimal `json:"value"`
}

// marketValueHandler set one decimal parameter of the market in the path
func marketValueHandler(set func(ctx context.Context, marketID string, value decimal.Decimal) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params valueParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		marketID := chi.URLParam(r, "id")
		if err := set(r.Context(), marketID, params.Value); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"market_id": marketID,
			"value":     params.Value,
		})
	}
}

// valueHandler set one decimal risk parameter
func valueHandler(set func(ctx context.Context, value decimal.Decimal) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params valueParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := set(r.Context(), params.Value); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"value": params.Value})
	}
}

func rateModelHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var model core.RateModel
		if err := param.Binding(r, &model); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := e.SetInterestRateModel(r.Context(), chi.URLParam(r, "id"), &model); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, model)
	}
}

func reduceReservesHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Amount decimal.Decimal `json:"amount"`
			To     string          `json:"to" valid:"required"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := e.ReduceReserves(r.Context(), chi.URLParam(r, "id"), params.Amount, params.To); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"amount": params.Amount,
			"to":     params.To,
		})
	}
}

func depositHandler(faucet Faucet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AssetID string          `json:"asset_id" valid:"required"`
			Account string          `json:"account" valid:"required"`
			Amount  decimal.Decimal `json:"amount"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := faucet.Deposit(r.Context(), params.AssetID, params.Account, params.Amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, params)
	}
}
