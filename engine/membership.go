package engine

import (
	"context"

	"moneymarket/core"
)

// EnterMarkets add the markets to the account's collateral set, all or none
func (e *Engine) EnterMarkets(ctx context.Context, userID string, marketIDs ...string) error {
	return e.run(ctx, "EnterMarkets", func(ctx context.Context, op *operation) error {
		if userID == "" {
			return core.NewError(core.ErrInvalidAccount)
		}

		for _, marketID := range marketIDs {
			added, err := e.comptroller.EnterMarket(ctx, userID, marketID)
			if err != nil {
				return err
			}

			if added {
				op.emit(core.EventMembershipAdded, marketID, userID, nil)
			}
		}

		return nil
	})
}

// ExitMarket remove the market from the account's collateral set
func (e *Engine) ExitMarket(ctx context.Context, userID, marketID string) error {
	return e.run(ctx, "ExitMarket", func(ctx context.Context, op *operation) error {
		removed, err := e.comptroller.ExitMarket(ctx, userID, marketID)
		if err != nil {
			return err
		}

		if removed {
			op.emit(core.EventMembershipRemoved, marketID, userID, nil)
		}

		return nil
	})
}
