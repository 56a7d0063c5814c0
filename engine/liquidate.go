package engine

import (
	"context"

	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// Liquidation result of a liquidation
type Liquidation struct {
	RepayAmount      decimal.Decimal `json:"repay_amount"`
	SeizeTokens      decimal.Decimal `json:"seize_tokens"`
	LiquidatorTokens decimal.Decimal `json:"liquidator_tokens"`
	ProtocolTokens   decimal.Decimal `json:"protocol_tokens"`
}

// LiquidateBorrow the liquidator repays repayAmount of the borrower's debt in the
// borrowed market and seizes collateral shares of the borrower in the collateral market.
//
// seize_tokens = repay * incentive * price_borrowed / (price_collateral * exchange_rate_collateral)
//
// protocol_seize_share of the seized shares is burned into the collateral market's
// reserves, the rest goes to the liquidator.
func (e *Engine) LiquidateBorrow(ctx context.Context, liquidatorID, borrowerID, borrowMarketID string, repayAmount decimal.Decimal, collateralMarketID string) (*Liquidation, error) {
	var result *Liquidation

	err := e.run(ctx, "LiquidateBorrow", func(ctx context.Context, op *operation) error {
		borrowMarket, err := e.listedMarket(ctx, borrowMarketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, borrowMarket); err != nil {
			return err
		}

		collateralMarket, err := e.listedMarket(ctx, collateralMarketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, collateralMarket); err != nil {
			return err
		}

		if err := e.comptroller.LiquidateBorrowAllowed(ctx, borrowMarket, collateralMarket, liquidatorID, borrowerID, repayAmount); err != nil {
			return err
		}

		if err := e.repay(ctx, op, borrowMarket, liquidatorID, borrowerID, repayAmount); err != nil {
			return err
		}

		// the collateral market may be the borrowed one
		if collateralMarket, err = e.listedMarket(ctx, collateralMarketID); err != nil {
			return err
		}

		seizeTokens, err := e.comptroller.LiquidateCalculateSeizeTokens(ctx, borrowMarket, collateralMarket, repayAmount)
		if err != nil {
			return err
		}

		if err := e.comptroller.SeizeAllowed(ctx, collateralMarket, borrowMarket, liquidatorID, borrowerID, seizeTokens); err != nil {
			return err
		}

		seizure, err := e.marketSrv.Seize(ctx, collateralMarket, liquidatorID, borrowerID, seizeTokens, e.comptroller.Params().ProtocolSeizeShare)
		if err != nil {
			return err
		}

		if err := e.ledger.TransferFrom(ctx, borrowMarket.AssetID, liquidatorID, repayAmount); err != nil {
			return transferFailed(err)
		}

		op.emit(core.EventLiquidateBorrow, borrowMarketID, borrowerID, core.NewEventData().
			Put(core.EventKeyLiquidator, liquidatorID).
			Put(core.EventKeyRepayAmount, repayAmount).
			Put(core.EventKeyCollateralMarket, collateralMarketID).
			Put(core.EventKeySeizeTokens, seizure.SeizeTokens).
			Put(core.EventKeyProtocolTokens, seizure.ProtocolTokens))

		if seizure.ProtocolAmount.IsPositive() {
			op.emit(core.EventReservesAdded, collateralMarketID, "", core.NewEventData().
				Put(core.EventKeyAmount, seizure.ProtocolAmount).
				Put(core.EventKeyTotalReserves, collateralMarket.Reserves))
		}

		result = &Liquidation{
			RepayAmount:      repayAmount,
			SeizeTokens:      seizure.SeizeTokens,
			LiquidatorTokens: seizure.LiquidatorTokens,
			ProtocolTokens:   seizure.ProtocolTokens,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
