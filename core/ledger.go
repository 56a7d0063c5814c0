package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenLedger fungible token ledger collaborator
//
// TransferFrom moves amount of asset from the account into the engine custody,
// Transfer moves it from custody to the account.
type TokenLedger interface {
	TransferFrom(ctx context.Context, assetID, from string, amount decimal.Decimal) error
	Transfer(ctx context.Context, assetID, to string, amount decimal.Decimal) error
}
