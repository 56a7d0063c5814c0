package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Borrow user borrow model
//
// balance = principal * market.borrow_index / interest_index
type Borrow struct {
	ID            int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"-"`
	UserID        string          `sql:"size:64;unique_index:idx_borrows_user_market" json:"user_id"`
	MarketID      string          `sql:"size:64;unique_index:idx_borrows_user_market" json:"market_id"`
	Principal     decimal.Decimal `sql:"type:varchar(64)" json:"principal"`
	InterestIndex decimal.Decimal `sql:"type:varchar(64)" json:"interest_index"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IBorrowStore borrow store interface
type IBorrowStore interface {
	Save(ctx context.Context, borrow *Borrow) error
	// Find returns a zero borrow when the account never borrowed
	Find(ctx context.Context, userID, marketID string) (*Borrow, error)
	FindByUser(ctx context.Context, userID string) ([]*Borrow, error)
	FindByMarket(ctx context.Context, marketID string) ([]*Borrow, error)
	// Users accounts that ever borrowed
	Users(ctx context.Context) ([]string, error)
}
