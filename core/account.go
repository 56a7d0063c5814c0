package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AccountLiquidity risk adjusted position of an account, at most one of Liquidity and Shortfall is positive
type AccountLiquidity struct {
	Liquidity       decimal.Decimal `json:"liquidity"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	BorrowValue     decimal.Decimal `json:"borrow_value"`
}

// Position one market slot of an account
type Position struct {
	MarketID           string          `json:"market_id"`
	Entered            bool            `json:"entered"`
	CTokens            decimal.Decimal `json:"ctokens"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
	UnderlyingBalance  decimal.Decimal `json:"underlying_balance"`
	BorrowPrincipal    decimal.Decimal `json:"borrow_principal"`
	BorrowIndex        decimal.Decimal `json:"borrow_index"`
	BorrowBalance      decimal.Decimal `json:"borrow_balance"`
	CollateralFactor   decimal.Decimal `json:"collateral_factor"`
	MarketBorrowIndex  decimal.Decimal `json:"market_borrow_index"`
	MarketAccrualBlock int64           `json:"market_accrual_block"`
}

// Account positions and liquidity of one account
type Account struct {
	UserID    string           `json:"user_id"`
	Markets   []string         `json:"markets"`
	Positions []*Position      `json:"positions"`
	Liquidity AccountLiquidity `json:"liquidity"`
}

// Membership market entered as collateral by an account
type Membership struct {
	ID        int64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	UserID    string    `sql:"size:64;unique_index:idx_memberships_user_market" json:"user_id"`
	MarketID  string    `sql:"size:64;unique_index:idx_memberships_user_market" json:"market_id"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IMembershipStore set of markets entered as collateral per account
type IMembershipStore interface {
	Markets(ctx context.Context, userID string) ([]string, error)
	Has(ctx context.Context, userID, marketID string) (bool, error)
	Add(ctx context.Context, userID, marketID string) error
	Remove(ctx context.Context, userID, marketID string) error
}

// IAccountService account views for health monitoring
type IAccountService interface {
	Find(ctx context.Context, userID string) (*Account, error)
	// ShortfallAccounts accounts currently eligible for liquidation
	ShortfallAccounts(ctx context.Context) ([]*Account, error)
}
