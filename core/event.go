package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// EventType event type
type EventType string

const (
	EventMarketListed                EventType = "MarketListed"
	EventCollateralFactorChanged     EventType = "CollateralFactorChanged"
	EventCloseFactorChanged          EventType = "CloseFactorChanged"
	EventLiquidationIncentiveChanged EventType = "LiquidationIncentiveChanged"
	EventPriceOracleChanged          EventType = "PriceOracleChanged"
	EventProtocolSeizeShareChanged   EventType = "ProtocolSeizeShareChanged"
	EventReserveFactorChanged        EventType = "ReserveFactorChanged"
	EventBorrowCapChanged            EventType = "BorrowCapChanged"
	EventInterestRateModelChanged    EventType = "InterestRateModelChanged"
	EventMembershipAdded             EventType = "MembershipAdded"
	EventMembershipRemoved           EventType = "MembershipRemoved"
	EventAccrueInterest              EventType = "AccrueInterest"
	EventMint                        EventType = "Mint"
	EventRedeem                      EventType = "Redeem"
	EventBorrow                      EventType = "Borrow"
	EventRepayBorrow                 EventType = "RepayBorrow"
	EventLiquidateBorrow             EventType = "LiquidateBorrow"
	EventReservesAdded               EventType = "ReservesAdded"
	EventReservesReduced             EventType = "ReservesReduced"
	EventPricePosted                 EventType = "PricePosted"
)

const (
	// EventKeyOld value before a parameter change
	EventKeyOld = "old"
	// EventKeyNew value after a parameter change
	EventKeyNew = "new"
	// EventKeyAmount underlying amount
	EventKeyAmount = "amount"
	// EventKeyCTokens shares minted or redeemed
	EventKeyCTokens = "ctokens"
	// EventKeyPayer payer of a repay
	EventKeyPayer = "payer"
	// EventKeyBorrowBalance borrow balance after the action
	EventKeyBorrowBalance = "account_borrows"
	// EventKeyTotalBorrows market total borrows after the action
	EventKeyTotalBorrows = "total_borrows"
	// EventKeyTotalReserves market reserves after the action
	EventKeyTotalReserves = "total_reserves"
	// EventKeyCashPrior cash before accrual
	EventKeyCashPrior = "cash_prior"
	// EventKeyInterest interest accumulated
	EventKeyInterest = "interest_accumulated"
	// EventKeyBorrowIndex borrow index after accrual
	EventKeyBorrowIndex = "borrow_index"
	// EventKeyLiquidator liquidator account
	EventKeyLiquidator = "liquidator"
	// EventKeyCollateralMarket collateral market of a liquidation
	EventKeyCollateralMarket = "collateral_market"
	// EventKeyRepayAmount repay amount of a liquidation
	EventKeyRepayAmount = "repay_amount"
	// EventKeySeizeTokens seized shares
	EventKeySeizeTokens = "seize_tokens"
	// EventKeyProtocolTokens seized shares kept as reserves
	EventKeyProtocolTokens = "protocol_tokens"
	// EventKeyTo receiver of reduced reserves
	EventKeyTo = "to"
)

// EventData event payload
type EventData map[string]interface{}

// NewEventData new event data instance
func NewEventData() EventData {
	return make(EventData)
}

// Put put data
func (d EventData) Put(key string, value interface{}) EventData {
	d[key] = value
	return d
}

// Format format as []byte by default
func (d EventData) Format() []byte {
	bs, e := json.Marshal(d)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Event observable state change, published after the operation commits
type Event struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string         `sql:"size:36;unique_index:idx_events_trace_id" json:"trace_id,omitempty"`
	Type      EventType      `sql:"size:64;index:idx_events_type" json:"type,omitempty"`
	MarketID  string         `sql:"size:64;index:idx_events_market_id" json:"market_id,omitempty"`
	UserID    string         `sql:"size:64;index:idx_events_user_id" json:"user_id,omitempty"`
	Block     int64          `json:"block,omitempty"`
	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP;index:idx_events_created_at" json:"created_at,omitempty"`
}

// SetData set event payload
func (e *Event) SetData(data EventData) {
	bs := []byte("{}")
	if data != nil {
		bs = data.Format()
	}

	e.Data = bs
}

// UnmarshalData decode event payload
func (e *Event) UnmarshalData() (EventData, error) {
	data := NewEventData()
	if len(e.Data) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}

	return data, nil
}

// EventStore event journal interface
type EventStore interface {
	Create(ctx context.Context, events []*Event) error
	List(ctx context.Context, from int64, limit int) ([]*Event, error)
}
