package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Supply share balance of one account in one market
type Supply struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	UserID    string          `sql:"size:64;unique_index:idx_supplies_user_market" json:"user_id"`
	MarketID  string          `sql:"size:64;unique_index:idx_supplies_user_market" json:"market_id"`
	CTokens   decimal.Decimal `sql:"type:varchar(64)" json:"ctokens"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ISupplyStore supply store interface
//
// Positions are never deleted, a drained position stays at zero.
type ISupplyStore interface {
	Save(ctx context.Context, supply *Supply) error
	// Find returns a zero supply when the account never held shares
	Find(ctx context.Context, userID, marketID string) (*Supply, error)
	FindByUser(ctx context.Context, userID string) ([]*Supply, error)
	FindByMarket(ctx context.Context, marketID string) ([]*Supply, error)
}
