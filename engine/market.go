package engine

import (
	"context"

	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// AccrueInterest accrue interest of the market up to the current block
func (e *Engine) AccrueInterest(ctx context.Context, marketID string) error {
	return e.run(ctx, "AccrueInterest", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		return e.accrue(ctx, op, market)
	})
}

// Mint supply amount of underlying pulled from the user, returns the shares minted
func (e *Engine) Mint(ctx context.Context, userID, marketID string, amount decimal.Decimal) (ctokens decimal.Decimal, err error) {
	err = e.run(ctx, "Mint", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		if err := e.comptroller.MintAllowed(ctx, market, userID, amount); err != nil {
			return err
		}

		if ctokens, err = e.marketSrv.Mint(ctx, market, userID, amount); err != nil {
			return err
		}

		if err := e.ledger.TransferFrom(ctx, market.AssetID, userID, amount); err != nil {
			return transferFailed(err)
		}

		op.emit(core.EventMint, marketID, userID, core.NewEventData().
			Put(core.EventKeyAmount, amount).
			Put(core.EventKeyCTokens, ctokens))
		return nil
	})

	return
}

// Redeem burn shares and pay the underlying to the user, returns the amount paid
func (e *Engine) Redeem(ctx context.Context, userID, marketID string, ctokens decimal.Decimal) (amount decimal.Decimal, err error) {
	err = e.run(ctx, "Redeem", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		if err := e.comptroller.RedeemAllowed(ctx, market, userID, ctokens); err != nil {
			return err
		}

		if amount, err = e.marketSrv.Redeem(ctx, market, userID, ctokens); err != nil {
			return err
		}

		if amount.IsPositive() {
			if err := e.ledger.Transfer(ctx, market.AssetID, userID, amount); err != nil {
				return transferFailed(err)
			}
		}

		op.emit(core.EventRedeem, marketID, userID, core.NewEventData().
			Put(core.EventKeyAmount, amount).
			Put(core.EventKeyCTokens, ctokens))
		return nil
	})

	return
}

// Borrow lend amount of the market's cash to the user, entering the market when needed
func (e *Engine) Borrow(ctx context.Context, userID, marketID string, amount decimal.Decimal) error {
	return e.run(ctx, "Borrow", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		// a rejected borrow rolls the membership back with the rest
		entered, err := e.comptroller.EnterMarket(ctx, userID, marketID)
		if err != nil {
			return err
		}

		if err := e.comptroller.BorrowAllowed(ctx, market, userID, amount); err != nil {
			return err
		}

		if entered {
			op.emit(core.EventMembershipAdded, marketID, userID, nil)
		}

		borrow, err := e.marketSrv.Borrow(ctx, market, userID, amount)
		if err != nil {
			return err
		}

		if err := e.ledger.Transfer(ctx, market.AssetID, userID, amount); err != nil {
			return transferFailed(err)
		}

		op.emit(core.EventBorrow, marketID, userID, core.NewEventData().
			Put(core.EventKeyAmount, amount).
			Put(core.EventKeyBorrowBalance, borrow.Principal).
			Put(core.EventKeyTotalBorrows, market.TotalBorrows))
		return nil
	})
}

// RepayBorrow repay the user's own debt
func (e *Engine) RepayBorrow(ctx context.Context, userID, marketID string, amount decimal.Decimal) error {
	return e.RepayBorrowBehalf(ctx, userID, userID, marketID, amount)
}

// RepayBorrowBehalf payer repays amount of the borrower's debt, amounts over the debt are rejected
func (e *Engine) RepayBorrowBehalf(ctx context.Context, payerID, borrowerID, marketID string, amount decimal.Decimal) error {
	return e.run(ctx, "RepayBorrow", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		if err := e.repay(ctx, op, market, payerID, borrowerID, amount); err != nil {
			return err
		}

		if err := e.ledger.TransferFrom(ctx, market.AssetID, payerID, amount); err != nil {
			return transferFailed(err)
		}

		return nil
	})
}

// repay books the repayment, the caller pulls the funds from the payer
func (e *Engine) repay(ctx context.Context, op *operation, market *core.Market, payerID, borrowerID string, amount decimal.Decimal) error {
	if err := e.comptroller.RepayBorrowAllowed(ctx, market, payerID, borrowerID, amount); err != nil {
		return err
	}

	borrow, err := e.marketSrv.RepayBorrow(ctx, market, borrowerID, amount)
	if err != nil {
		return err
	}

	op.emit(core.EventRepayBorrow, market.ID, borrowerID, core.NewEventData().
		Put(core.EventKeyPayer, payerID).
		Put(core.EventKeyAmount, amount).
		Put(core.EventKeyBorrowBalance, borrow.Principal).
		Put(core.EventKeyTotalBorrows, market.TotalBorrows))
	return nil
}

// ReduceReserves withdraw amount of the market's reserves to the receiver
func (e *Engine) ReduceReserves(ctx context.Context, marketID string, amount decimal.Decimal, to string) error {
	return e.run(ctx, "ReduceReserves", func(ctx context.Context, op *operation) error {
		if to == "" {
			return core.NewError(core.ErrInvalidAccount)
		}

		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		if err := e.marketSrv.ReduceReserves(ctx, market, amount); err != nil {
			return err
		}

		if err := e.ledger.Transfer(ctx, market.AssetID, to, amount); err != nil {
			return transferFailed(err)
		}

		op.emit(core.EventReservesReduced, marketID, "", core.NewEventData().
			Put(core.EventKeyTo, to).
			Put(core.EventKeyAmount, amount).
			Put(core.EventKeyTotalReserves, market.Reserves))
		return nil
	})
}
