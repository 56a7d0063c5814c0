package rest

import (
	"errors"
	"net/http"

	"moneymarket/handler/render"
	"moneymarket/handler/views"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

var errShortfallOnly = errors.New("only shortfall=true is supported")

// accounts in shortfall, ?shortfall=true is the only supported listing
func accountsHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cast.ToBool(r.URL.Query().Get("shortfall")) {
			render.BadRequest(w, errShortfallOnly)
			return
		}

		accounts, err := e.AccountsInShortfall(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		accountViews := make([]*views.Account, 0, len(accounts))
		for _, account := range accounts {
			accountViews = append(accountViews, &views.Account{Account: account, Shortfall: true})
		}

		render.JSON(w, accountViews)
	}
}

func accountHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := e.Account(r.Context(), chi.URLParam(r, "address"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, &views.Account{
			Account:   account,
			Shortfall: account.Liquidity.Shortfall.IsPositive(),
		})
	}
}

// response liquidity by address
func liquidityHandler(e Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		liquidity, err := e.AccountLiquidity(r.Context(), chi.URLParam(r, "address"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, liquidity)
	}
}
