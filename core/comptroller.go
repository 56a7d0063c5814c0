package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// RiskParams global risk parameters
type RiskParams struct {
	// (0, 1]
	CloseFactor decimal.Decimal `json:"close_factor"`
	// >= 1
	LiquidationIncentive decimal.Decimal `json:"liquidation_incentive"`
	// [0, 1)
	ProtocolSeizeShare decimal.Decimal `json:"protocol_seize_share"`
}

// Hypothetical pending change applied to an account before computing its liquidity
type Hypothetical struct {
	MarketID     string
	RedeemTokens decimal.Decimal
	BorrowAmount decimal.Decimal
}

// IComptroller risk controller interface
type IComptroller interface {
	ID() string
	Params() RiskParams
	Oracle() PriceOracle

	ListMarket(ctx context.Context, market *Market) (bool, error)
	EnterMarket(ctx context.Context, userID, marketID string) (bool, error)
	ExitMarket(ctx context.Context, userID, marketID string) (bool, error)

	SetCollateralFactor(ctx context.Context, marketID string, factor decimal.Decimal) (decimal.Decimal, error)
	SetCloseFactor(ctx context.Context, factor decimal.Decimal) (decimal.Decimal, error)
	SetLiquidationIncentive(ctx context.Context, incentive decimal.Decimal) (decimal.Decimal, error)
	SetProtocolSeizeShare(ctx context.Context, share decimal.Decimal) (decimal.Decimal, error)
	SetPriceOracle(ctx context.Context, oracle PriceOracle) PriceOracle
	SetMarketBorrowCap(ctx context.Context, marketID string, borrowCap decimal.Decimal) (decimal.Decimal, error)

	AccountLiquidity(ctx context.Context, userID string) (*AccountLiquidity, error)
	HypotheticalAccountLiquidity(ctx context.Context, userID string, change *Hypothetical) (*AccountLiquidity, error)

	MintAllowed(ctx context.Context, market *Market, userID string, amount decimal.Decimal) error
	RedeemAllowed(ctx context.Context, market *Market, userID string, ctokens decimal.Decimal) error
	BorrowAllowed(ctx context.Context, market *Market, userID string, amount decimal.Decimal) error
	RepayBorrowAllowed(ctx context.Context, market *Market, payerID, borrowerID string, amount decimal.Decimal) error
	LiquidateBorrowAllowed(ctx context.Context, borrowMarket, collateralMarket *Market, liquidatorID, borrowerID string, repayAmount decimal.Decimal) error
	SeizeAllowed(ctx context.Context, collateralMarket, borrowMarket *Market, liquidatorID, borrowerID string, seizeTokens decimal.Decimal) error
	LiquidateCalculateSeizeTokens(ctx context.Context, borrowMarket, collateralMarket *Market, repayAmount decimal.Decimal) (decimal.Decimal, error)
}
