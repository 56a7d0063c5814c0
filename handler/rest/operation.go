package rest

import (
	"net/http"

	"moneymarket/handler/param"
	"moneymarket/handler/render"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type amountParams struct {
	UserID string          `json:"user_id" valid:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func accrueHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		marketID := chi.URLParam(r, "id")

		if err := e.AccrueInterest(ctx, marketID); err != nil {
			render.Error(w, err)
			return
		}

		market, err := e.Market(ctx, marketID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, getMarketView(ctx, e, market))
	}
}

func mintHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		ctokens, err := e.Mint(r.Context(), params.UserID, chi.URLParam(r, "id"), params.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"amount":  params.Amount,
			"ctokens": ctokens,
		})
	}
}

func redeemHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID  string          `json:"user_id" valid:"required"`
			CTokens decimal.Decimal `json:"ctokens"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := e.Redeem(r.Context(), params.UserID, chi.URLParam(r, "id"), params.CTokens)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"amount":  amount,
			"ctokens": params.CTokens,
		})
	}
}

func borrowHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := e.Borrow(r.Context(), params.UserID, chi.URLParam(r, "id"), params.Amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"amount": params.Amount})
	}
}

// repay the payer's own debt, or the borrower's when borrower_id is set
func repayHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID     string          `json:"user_id" valid:"required"`
			BorrowerID string          `json:"borrower_id,omitempty"`
			Amount     decimal.Decimal `json:"amount"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		borrowerID := params.BorrowerID
		if borrowerID == "" {
			borrowerID = params.UserID
		}

		if err := e.RepayBorrowBehalf(r.Context(), params.UserID, borrowerID, chi.URLParam(r, "id"), params.Amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"borrower_id": borrowerID,
			"amount":      params.Amount,
		})
	}
}

func liquidateHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID             string          `json:"user_id" valid:"required"`
			BorrowerID         string          `json:"borrower_id" valid:"required"`
			CollateralMarketID string          `json:"collateral_market_id" valid:"required"`
			RepayAmount        decimal.Decimal `json:"repay_amount"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		result, err := e.LiquidateBorrow(r.Context(), params.UserID, params.BorrowerID, chi.URLParam(r, "id"), params.RepayAmount, params.CollateralMarketID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, result)
	}
}

func enterMarketsHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "address")

		var params struct {
			MarketIDs []string `json:"market_ids" valid:"required"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := e.EnterMarkets(ctx, userID, params.MarketIDs...); err != nil {
			render.Error(w, err)
			return
		}

		account, err := e.Account(ctx, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"markets": account.Markets})
	}
}

func exitMarketHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "address")

		if err := e.ExitMarket(ctx, userID, chi.URLParam(r, "id")); err != nil {
			render.Error(w, err)
			return
		}

		account, err := e.Account(ctx, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"markets": account.Markets})
	}
}
