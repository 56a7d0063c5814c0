package views

import (
	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	core.Market
	SupplyAPY decimal.Decimal `json:"supply_apy"`
	BorrowAPY decimal.Decimal `json:"borrow_apy"`
}

// Account account view
type Account struct {
	*core.Account
	Shortfall bool `json:"shortfall"`
}

// Event event view with the payload decoded
type Event struct {
	ID       int64          `json:"id"`
	TraceID  string         `json:"trace_id"`
	Type     core.EventType `json:"type"`
	MarketID string         `json:"market_id,omitempty"`
	UserID   string         `json:"user_id,omitempty"`
	Block    int64          `json:"block"`
	Data     core.EventData `json:"data"`
}

// EventOf render event
func EventOf(event *core.Event) *Event {
	data, err := event.UnmarshalData()
	if err != nil {
		data = core.NewEventData()
	}

	return &Event{
		ID:       event.ID,
		TraceID:  event.TraceID,
		Type:     event.Type,
		MarketID: event.MarketID,
		UserID:   event.UserID,
		Block:    event.Block,
		Data:     data,
	}
}
