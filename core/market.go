package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Market lending pool of a single underlying asset
type Market struct {
	// market identifier, the share token id
	ID      string `sql:"size:64;PRIMARY_KEY" json:"id"`
	AssetID string `sql:"size:64" json:"asset_id"`
	Symbol  string `sql:"size:20" json:"symbol"`
	// risk controller instance the market was listed by
	Comptroller  string          `sql:"size:64" json:"comptroller"`
	TotalCash    decimal.Decimal `sql:"type:varchar(64)" json:"total_cash"`
	TotalBorrows decimal.Decimal `sql:"type:varchar(64)" json:"total_borrows"`
	Reserves     decimal.Decimal `sql:"type:varchar(64)" json:"reserves"`
	// shares issued in total
	CTokens          decimal.Decimal `sql:"type:varchar(64)" json:"ctokens"`
	InitExchangeRate decimal.Decimal `sql:"type:varchar(64)" json:"init_exchange_rate"`
	// [0, 1)
	ReserveFactor decimal.Decimal `sql:"type:varchar(64)" json:"reserve_factor"`
	// [0, 1)
	CollateralFactor decimal.Decimal `sql:"type:varchar(64)" json:"collateral_factor"`
	// zero means unlimited
	BorrowCap decimal.Decimal `sql:"type:varchar(64)" json:"borrow_cap"`
	// per year
	BaseRate decimal.Decimal `sql:"type:varchar(64)" json:"base_rate"`
	// The multiplier of utilization rate that gives the slope of the interest rate. per year
	Multiplier decimal.Decimal `sql:"type:varchar(64)" json:"multiplier"`
	// The multiplier after hitting the kink. per year
	JumpMultiplier decimal.Decimal `sql:"type:varchar(64)" json:"jump_multiplier"`
	// utilization point where the jump multiplier applies, zero disables it
	Kink decimal.Decimal `sql:"type:varchar(64)" json:"kink"`
	// last accrual checkpoint
	BlockNumber        int64           `sql:"default:0" json:"block_number"`
	BorrowIndex        decimal.Decimal `sql:"type:varchar(64)" json:"borrow_index"`
	UtilizationRate    decimal.Decimal `sql:"type:varchar(64)" json:"utilization_rate"`
	ExchangeRate       decimal.Decimal `sql:"type:varchar(64)" json:"exchange_rate"`
	SupplyRatePerBlock decimal.Decimal `sql:"type:varchar(64)" json:"supply_rate_per_block"`
	BorrowRatePerBlock decimal.Decimal `sql:"type:varchar(64)" json:"borrow_rate_per_block"`
	Listed             bool            `json:"listed"`
	Version            int64           `sql:"default:0" json:"version"`
	CreatedAt          time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IsListed the market exists and accepts operations
func (m *Market) IsListed() bool {
	return m != nil && m.ID != "" && m.Listed
}

// CurExchangeRate exchange rate cached by the last accrual
func (m *Market) CurExchangeRate() decimal.Decimal {
	if m.ExchangeRate.IsPositive() {
		return m.ExchangeRate
	}

	return m.InitExchangeRate
}

// Format market as json
func (m *Market) Format() []byte {
	bs, err := json.Marshal(m)
	if err != nil {
		return []byte("{}")
	}

	return bs
}

// IMarketStore market store interface
type IMarketStore interface {
	Save(ctx context.Context, market *Market) error
	// Find returns an empty market (ID == "") when not found
	Find(ctx context.Context, id string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
}

// IMarketService market ledger interface
type IMarketService interface {
	CurUtilizationRate(ctx context.Context, market *Market) decimal.Decimal
	CurExchangeRate(ctx context.Context, market *Market) decimal.Decimal
	CurBorrowRatePerBlock(ctx context.Context, market *Market) decimal.Decimal
	CurSupplyRatePerBlock(ctx context.Context, market *Market) decimal.Decimal
	CurBorrowRate(ctx context.Context, market *Market) decimal.Decimal
	CurSupplyRate(ctx context.Context, market *Market) decimal.Decimal
	// AccrueInterest brings the market up to the current checkpoint, zero interest when already there
	AccrueInterest(ctx context.Context, market *Market) (*Accrual, error)
	BorrowBalance(ctx context.Context, market *Market, userID string) (decimal.Decimal, error)
	Mint(ctx context.Context, market *Market, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	Redeem(ctx context.Context, market *Market, userID string, ctokens decimal.Decimal) (decimal.Decimal, error)
	Borrow(ctx context.Context, market *Market, userID string, amount decimal.Decimal) (*Borrow, error)
	RepayBorrow(ctx context.Context, market *Market, borrowerID string, amount decimal.Decimal) (*Borrow, error)
	Seize(ctx context.Context, market *Market, liquidatorID, borrowerID string, seizeTokens, protocolSeizeShare decimal.Decimal) (*Seizure, error)
	ReduceReserves(ctx context.Context, market *Market, amount decimal.Decimal) error
	SetReserveFactor(ctx context.Context, market *Market, reserveFactor decimal.Decimal) (decimal.Decimal, error)
	SetInterestRateModel(ctx context.Context, market *Market, model *RateModel) (*RateModel, error)
}

// RateModel interest rate model parameters, per year
type RateModel struct {
	BaseRate       decimal.Decimal `json:"base_rate"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	JumpMultiplier decimal.Decimal `json:"jump_multiplier"`
	Kink           decimal.Decimal `json:"kink"`
}

// RateModel interest rate model parameters of the market
func (m *Market) RateModel() *RateModel {
	return &RateModel{
		BaseRate:       m.BaseRate,
		Multiplier:     m.Multiplier,
		JumpMultiplier: m.JumpMultiplier,
		Kink:           m.Kink,
	}
}

// Accrual result of one interest accrual
type Accrual struct {
	CashPrior           decimal.Decimal `json:"cash_prior"`
	InterestAccumulated decimal.Decimal `json:"interest_accumulated"`
	BorrowIndex         decimal.Decimal `json:"borrow_index"`
	TotalBorrows        decimal.Decimal `json:"total_borrows"`
	Blocks              int64           `json:"blocks"`
}

// Seizure split of seized collateral shares
type Seizure struct {
	SeizeTokens      decimal.Decimal `json:"seize_tokens"`
	LiquidatorTokens decimal.Decimal `json:"liquidator_tokens"`
	ProtocolTokens   decimal.Decimal `json:"protocol_tokens"`
	ProtocolAmount   decimal.Decimal `json:"protocol_amount"`
}
