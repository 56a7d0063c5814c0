package rest

import (
	"context"
	"errors"
	"net/http"

	"moneymarket/core"
	"moneymarket/engine"
	"moneymarket/handler/render"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

// Engine engine operations served over rest
type Engine interface {
	Markets(ctx context.Context) ([]*core.Market, error)
	Market(ctx context.Context, marketID string) (*core.Market, error)
	MarketRates(ctx context.Context, marketID string) (*engine.Rates, error)
	Account(ctx context.Context, userID string) (*core.Account, error)
	AccountLiquidity(ctx context.Context, userID string) (*core.AccountLiquidity, error)
	AccountsInShortfall(ctx context.Context) ([]*core.Account, error)

	AccrueInterest(ctx context.Context, marketID string) error
	Mint(ctx context.Context, userID, marketID string, amount decimal.Decimal) (decimal.Decimal, error)
	Redeem(ctx context.Context, userID, marketID string, ctokens decimal.Decimal) (decimal.Decimal, error)
	Borrow(ctx context.Context, userID, marketID string, amount decimal.Decimal) error
	RepayBorrowBehalf(ctx context.Context, payerID, borrowerID, marketID string, amount decimal.Decimal) error
	LiquidateBorrow(ctx context.Context, liquidatorID, borrowerID, borrowMarketID string, repayAmount decimal.Decimal, collateralMarketID string) (*engine.Liquidation, error)
	EnterMarkets(ctx context.Context, userID string, marketIDs ...string) error
	ExitMarket(ctx context.Context, userID, marketID string) error

	SetCollateralFactor(ctx context.Context, marketID string, factor decimal.Decimal) error
	SetReserveFactor(ctx context.Context, marketID string, reserveFactor decimal.Decimal) error
	SetMarketBorrowCap(ctx context.Context, marketID string, borrowCap decimal.Decimal) error
	SetInterestRateModel(ctx context.Context, marketID string, model *core.RateModel) error
	SetCloseFactor(ctx context.Context, factor decimal.Decimal) error
	SetLiquidationIncentive(ctx context.Context, incentive decimal.Decimal) error
	SetProtocolSeizeShare(ctx context.Context, share decimal.Decimal) error
	ReduceReserves(ctx context.Context, marketID string, amount decimal.Decimal, to string) error
	PostPrice(ctx context.Context, marketID string, price decimal.Decimal) error
}

// Faucet credits funds to an account and lets the custody pull them
type Faucet interface {
	Deposit(ctx context.Context, assetID, account string, amount decimal.Decimal) error
}

// Handle handle rest api request, events may be nil
func Handle(e Engine, events core.EventStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets", allMarketsHandler(e))
	router.Get("/markets/{id}", marketHandler(e))
	router.Get("/accounts", accountsHandler(e))
	router.Get("/accounts/{address}", accountHandler(e))
	router.Get("/accounts/{address}/liquidity", liquidityHandler(e))

	router.Post("/markets/{id}/accrue", accrueHandler(e))
	router.Post("/markets/{id}/mint", mintHandler(e))
	router.Post("/markets/{id}/redeem", redeemHandler(e))
	router.Post("/markets/{id}/borrow", borrowHandler(e))
	router.Post("/markets/{id}/repay", repayHandler(e))
	router.Post("/markets/{id}/liquidate", liquidateHandler(e))
	router.Post("/accounts/{address}/markets", enterMarketsHandler(e))
	router.Delete("/accounts/{address}/markets/{id}", exitMarketHandler(e))

	if events != nil {
		router.Get("/events", eventsHandler(events))
	}

	return router
}

// HandleAdmin handle admin api request, faucet may be nil
func HandleAdmin(e Engine, faucet Faucet) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Post("/markets/{id}/collateral-factor", marketValueHandler(e.SetCollateralFactor))
	router.Post("/markets/{id}/reserve-factor", marketValueHandler(e.SetReserveFactor))
	router.Post("/markets/{id}/borrow-cap", marketValueHandler(e.SetMarketBorrowCap))
	router.Post("/markets/{id}/price", marketValueHandler(e.PostPrice))
	router.Post("/markets/{id}/interest-rate-model", rateModelHandler(e))
	router.Post("/markets/{id}/reduce-reserves", reduceReservesHandler(e))
	router.Post("/close-factor", valueHandler(e.SetCloseFactor))
	router.Post("/liquidation-incentive", valueHandler(e.SetLiquidationIncentive))
	router.Post("/protocol-seize-share", valueHandler(e.SetProtocolSeizeShare))

	if faucet != nil {
		router.Post("/deposits", depositHandler(faucet))
	}

	return router
}
