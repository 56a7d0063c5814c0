package engine

import (
	"context"
	"fmt"

	"moneymarket/core"

	"github.com/shopspring/decimal"
)

// ListMarket list a market, listing an already listed market is a no-op
func (e *Engine) ListMarket(ctx context.Context, market *core.Market) (listed bool, err error) {
	err = e.run(ctx, "ListMarket", func(ctx context.Context, op *operation) error {
		if market.BlockNumber == 0 {
			market.BlockNumber = op.block
		}

		if listed, err = e.comptroller.ListMarket(ctx, market); err != nil || !listed {
			return err
		}

		op.emit(core.EventMarketListed, market.ID, "", core.NewEventData().
			Put("asset_id", market.AssetID).
			Put("symbol", market.Symbol))
		return nil
	})

	return
}

func (e *Engine) SetCollateralFactor(ctx context.Context, marketID string, factor decimal.Decimal) error {
	return e.run(ctx, "SetCollateralFactor", func(ctx context.Context, op *operation) error {
		old, err := e.comptroller.SetCollateralFactor(ctx, marketID, factor)
		if err != nil {
			return err
		}

		op.emit(core.EventCollateralFactorChanged, marketID, "", changed(old, factor))
		return nil
	})
}

func (e *Engine) SetCloseFactor(ctx context.Context, factor decimal.Decimal) error {
	return e.run(ctx, "SetCloseFactor", func(ctx context.Context, op *operation) error {
		old, err := e.comptroller.SetCloseFactor(ctx, factor)
		if err != nil {
			return err
		}

		op.emit(core.EventCloseFactorChanged, "", "", changed(old, factor))
		return nil
	})
}

func (e *Engine) SetLiquidationIncentive(ctx context.Context, incentive decimal.Decimal) error {
	return e.run(ctx, "SetLiquidationIncentive", func(ctx context.Context, op *operation) error {
		old, err := e.comptroller.SetLiquidationIncentive(ctx, incentive)
		if err != nil {
			return err
		}

		op.emit(core.EventLiquidationIncentiveChanged, "", "", changed(old, incentive))
		return nil
	})
}

func (e *Engine) SetProtocolSeizeShare(ctx context.Context, share decimal.Decimal) error {
	return e.run(ctx, "SetProtocolSeizeShare", func(ctx context.Context, op *operation) error {
		old, err := e.comptroller.SetProtocolSeizeShare(ctx, share)
		if err != nil {
			return err
		}

		op.emit(core.EventProtocolSeizeShareChanged, "", "", changed(old, share))
		return nil
	})
}

func (e *Engine) SetPriceOracle(ctx context.Context, oracle core.PriceOracle) error {
	return e.run(ctx, "SetPriceOracle", func(ctx context.Context, op *operation) error {
		if oracle == nil {
			return core.NewError(core.ErrInvalidParameter).WithReason("nil price oracle")
		}

		old := e.comptroller.SetPriceOracle(ctx, oracle)
		op.emit(core.EventPriceOracleChanged, "", "", core.NewEventData().
			Put(core.EventKeyOld, fmt.Sprintf("%T", old)).
			Put(core.EventKeyNew, fmt.Sprintf("%T", oracle)))
		return nil
	})
}

// SetMarketBorrowCap zero means unlimited
func (e *Engine) SetMarketBorrowCap(ctx context.Context, marketID string, borrowCap decimal.Decimal) error {
	return e.run(ctx, "SetMarketBorrowCap", func(ctx context.Context, op *operation) error {
		old, err := e.comptroller.SetMarketBorrowCap(ctx, marketID, borrowCap)
		if err != nil {
			return err
		}

		op.emit(core.EventBorrowCapChanged, marketID, "", changed(old, borrowCap))
		return nil
	})
}

// SetReserveFactor interest up to now accrues with the old factor
func (e *Engine) SetReserveFactor(ctx context.Context, marketID string, reserveFactor decimal.Decimal) error {
	return e.run(ctx, "SetReserveFactor", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		old, err := e.marketSrv.SetReserveFactor(ctx, market, reserveFactor)
		if err != nil {
			return err
		}

		op.emit(core.EventReserveFactorChanged, marketID, "", changed(old, reserveFactor))
		return nil
	})
}

// SetInterestRateModel interest up to now accrues with the old model
func (e *Engine) SetInterestRateModel(ctx context.Context, marketID string, model *core.RateModel) error {
	return e.run(ctx, "SetInterestRateModel", func(ctx context.Context, op *operation) error {
		market, err := e.listedMarket(ctx, marketID)
		if err != nil {
			return err
		}

		if err := e.accrue(ctx, op, market); err != nil {
			return err
		}

		old, err := e.marketSrv.SetInterestRateModel(ctx, market, model)
		if err != nil {
			return err
		}

		op.emit(core.EventInterestRateModelChanged, marketID, "", core.NewEventData().
			Put(core.EventKeyOld, old).
			Put(core.EventKeyNew, model))
		return nil
	})
}

// PostPrice post a price to an oracle that accepts posted prices
func (e *Engine) PostPrice(ctx context.Context, marketID string, price decimal.Decimal) error {
	return e.run(ctx, "PostPrice", func(ctx context.Context, op *operation) error {
		setter, ok := e.comptroller.Oracle().(core.PriceSetter)
		if !ok {
			return core.NewError(core.ErrInvalidParameter).
				WithMarket(marketID).
				WithReason("price oracle does not accept posted prices")
		}

		old, err := setter.SetUnderlyingPrice(ctx, marketID, price)
		if err != nil {
			return err
		}

		op.emit(core.EventPricePosted, marketID, "", changed(old, price))
		return nil
	})
}

func changed(old, cur interface{}) core.EventData {
	return core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, cur)
}
