package market

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type service struct {
	marketStore core.IMarketStore
	supplyStore core.ISupplyStore
	borrowStore core.IBorrowStore
	blockSrv    core.IBlockService
}

// New new market service
func New(
	marketStr core.IMarketStore,
	supplyStr core.ISupplyStore,
	borrowStr core.IBorrowStore,
	blockSrv core.IBlockService,
) core.IMarketService {
	return &service{
		marketStore: marketStr,
		supplyStore: supplyStr,
		borrowStore: borrowStr,
		blockSrv:    blockSrv,
	}
}

func (s *service) CurUtilizationRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.UtilizationRate(market.TotalCash, market.TotalBorrows, market.Reserves)
}

func (s *service) CurExchangeRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.CurExchangeRate(market)
}

func (s *service) CurBorrowRatePerBlock(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.CurBorrowRatePerBlock(market)
}

func (s *service) CurSupplyRatePerBlock(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.CurSupplyRatePerBlock(market)
}

// CurBorrowRate current borrow APY
func (s *service) CurBorrowRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.CurBorrowRate(market)
}

// CurSupplyRate current supply APY
func (s *service) CurSupplyRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return compound.CurSupplyRate(market)
}

// AccrueInterest accrue interest of the market up to the current block
//
// The market is saved only when at least one block elapsed, calling it again at
// the same block leaves the market untouched.
func (s *service) AccrueInterest(ctx context.Context, market *core.Market) (*core.Accrual, error) {
	blockNum, err := s.blockSrv.CurrentBlock(ctx)
	if err != nil {
		return nil, err
	}

	accrual := compound.AccrueInterest(market, blockNum)
	if accrual.Blocks > 0 {
		if err := s.marketStore.Save(ctx, market); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("markets.Save")
			return nil, err
		}
	}

	return accrual, nil
}

func (s *service) BorrowBalance(ctx context.Context, market *core.Market, userID string) (decimal.Decimal, error) {
	borrow, err := s.borrowStore.Find(ctx, userID, market.ID)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.BorrowBalance(borrow, market), nil
}

// Mint supply amount of underlying, returns the shares minted
func (s *service) Mint(ctx context.Context, market *core.Market, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrZeroAmount).WithMarket(market.ID).WithAccount(userID)
	}

	ctokens := compound.Div(amount, compound.CurExchangeRate(market))
	if !ctokens.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrZeroAmount).
			WithMarket(market.ID).
			WithAccount(userID).
			WithReason("amount %s mints no shares", amount)
	}

	supply, err := s.supplyStore.Find(ctx, userID, market.ID)
	if err != nil {
		return decimal.Zero, err
	}

	supply.CTokens = supply.CTokens.Add(ctokens)
	market.TotalCash = market.TotalCash.Add(amount)
	market.CTokens = market.CTokens.Add(ctokens)

	if err := s.save(ctx, market, supply, nil); err != nil {
		return decimal.Zero, err
	}

	return ctokens, nil
}

// Redeem burn shares, returns the underlying amount paid out
func (s *service) Redeem(ctx context.Context, market *core.Market, userID string, ctokens decimal.Decimal) (decimal.Decimal, error) {
	if !ctokens.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrZeroAmount).WithMarket(market.ID).WithAccount(userID)
	}

	supply, err := s.supplyStore.Find(ctx, userID, market.ID)
	if err != nil {
		return decimal.Zero, err
	}

	if supply.CTokens.LessThan(ctokens) {
		return decimal.Zero, core.NewError(core.ErrInsufficientShares).
			WithMarket(market.ID).
			WithAccount(userID).
			WithAmounts(ctokens, supply.CTokens)
	}

	amount := compound.Mul(ctokens, compound.CurExchangeRate(market))
	if market.TotalCash.LessThan(amount) {
		return decimal.Zero, core.NewError(core.ErrInsufficientCash).
			WithMarket(market.ID).
			WithAccount(userID).
			WithAmounts(amount, market.TotalCash)
	}

	supply.CTokens = supply.CTokens.Sub(ctokens)
	market.TotalCash = market.TotalCash.Sub(amount)
	market.CTokens = market.CTokens.Sub(ctokens)

	if err := s.save(ctx, market, supply, nil); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// Borrow lend amount of cash to the user
func (s *service) Borrow(ctx context.Context, market *core.Market, userID string, amount decimal.Decimal) (*core.Borrow, error) {
	if !amount.IsPositive() {
		return nil, core.NewError(core.ErrZeroAmount).WithMarket(market.ID).WithAccount(userID)
	}

	if market.TotalCash.LessThan(amount) {
		return nil, core.NewError(core.ErrInsufficientCash).
			WithMarket(market.ID).
			WithAccount(userID).
			WithAmounts(amount, market.TotalCash)
	}

	borrow, err := s.borrowStore.Find(ctx, userID, market.ID)
	if err != nil {
		return nil, err
	}

	balance := compound.BorrowBalance(borrow, market)
	borrow.Principal = balance.Add(amount)
	borrow.InterestIndex = market.BorrowIndex
	market.TotalBorrows = market.TotalBorrows.Add(amount)
	market.TotalCash = market.TotalCash.Sub(amount)

	if err := s.save(ctx, market, nil, borrow); err != nil {
		return nil, err
	}

	return borrow, nil
}

// RepayBorrow repay amount of the borrower's debt, amounts over the balance are rejected
func (s *service) RepayBorrow(ctx context.Context, market *core.Market, borrowerID string, amount decimal.Decimal) (*core.Borrow, error) {
	if !amount.IsPositive() {
		return nil, core.NewError(core.ErrZeroAmount).WithMarket(market.ID).WithAccount(borrowerID)
	}

	borrow, err := s.borrowStore.Find(ctx, borrowerID, market.ID)
	if err != nil {
		return nil, err
	}

	balance := compound.BorrowBalance(borrow, market)
	if amount.GreaterThan(balance) {
		return nil, core.NewError(core.ErrRepayExceedsDebt).
			WithMarket(market.ID).
			WithAccount(borrowerID).
			WithAmounts(amount, balance)
	}

	borrow.Principal = balance.Sub(amount)
	borrow.InterestIndex = market.BorrowIndex

	// balances round up, the sum of them may exceed total borrows by a few units
	market.TotalBorrows = decimal.Max(market.TotalBorrows.Sub(amount), decimal.Zero)
	market.TotalCash = market.TotalCash.Add(amount)

	if err := s.save(ctx, market, nil, borrow); err != nil {
		return nil, err
	}

	return borrow, nil
}

// Seize move seizeTokens of the borrower's shares: the liquidator's part is
// credited to the liquidator, the protocol's part is burned into reserves.
func (s *service) Seize(ctx context.Context, market *core.Market, liquidatorID, borrowerID string, seizeTokens, protocolSeizeShare decimal.Decimal) (*core.Seizure, error) {
	borrower, err := s.supplyStore.Find(ctx, borrowerID, market.ID)
	if err != nil {
		return nil, err
	}

	if borrower.CTokens.LessThan(seizeTokens) {
		return nil, core.NewError(core.ErrInsufficientCollateralToSeize).
			WithMarket(market.ID).
			WithAccount(borrowerID).
			WithAmounts(seizeTokens, borrower.CTokens)
	}

	liquidatorTokens, protocolTokens := compound.SplitSeizeTokens(seizeTokens, protocolSeizeShare)
	protocolAmount := compound.Mul(protocolTokens, compound.CurExchangeRate(market))

	borrower.CTokens = borrower.CTokens.Sub(seizeTokens)
	if err := s.supplyStore.Save(ctx, borrower); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("supplies.Save")
		return nil, err
	}

	liquidator, err := s.supplyStore.Find(ctx, liquidatorID, market.ID)
	if err != nil {
		return nil, err
	}

	liquidator.CTokens = liquidator.CTokens.Add(liquidatorTokens)
	market.CTokens = market.CTokens.Sub(protocolTokens)
	market.Reserves = market.Reserves.Add(protocolAmount)

	if err := s.save(ctx, market, liquidator, nil); err != nil {
		return nil, err
	}

	return &core.Seizure{
		SeizeTokens:      seizeTokens,
		LiquidatorTokens: liquidatorTokens,
		ProtocolTokens:   protocolTokens,
		ProtocolAmount:   protocolAmount,
	}, nil
}

// ReduceReserves withdraw amount of reserves out of the market's cash
func (s *service) ReduceReserves(ctx context.Context, market *core.Market, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.NewError(core.ErrZeroAmount).WithMarket(market.ID)
	}

	if market.TotalCash.LessThan(amount) {
		return core.NewError(core.ErrInsufficientCash).WithMarket(market.ID).WithAmounts(amount, market.TotalCash)
	}

	if market.Reserves.LessThan(amount) {
		return core.NewError(core.ErrInvalidParameter).
			WithMarket(market.ID).
			WithAmounts(amount, market.Reserves).
			WithReason("reduce more than reserves")
	}

	market.Reserves = market.Reserves.Sub(amount)
	market.TotalCash = market.TotalCash.Sub(amount)
	return s.save(ctx, market, nil, nil)
}

func (s *service) save(ctx context.Context, market *core.Market, supply *core.Supply, borrow *core.Borrow) error {
	log := logger.FromContext(ctx).WithField("market", market.ID)

	if supply != nil {
		if err := s.supplyStore.Save(ctx, supply); err != nil {
			log.WithError(err).Errorln("supplies.Save")
			return err
		}
	}

	if borrow != nil {
		if err := s.borrowStore.Save(ctx, borrow); err != nil {
			log.WithError(err).Errorln("borrows.Save")
			return err
		}
	}

	compound.UpdateMarketRates(market)
	if err := s.marketStore.Save(ctx, market); err != nil {
		log.WithError(err).Errorln("markets.Save")
		return err
	}

	return nil
}

// SetReserveFactor returns the previous reserve factor, the market must be accrued first
func (s *service) SetReserveFactor(ctx context.Context, market *core.Market, reserveFactor decimal.Decimal) (decimal.Decimal, error) {
	if !compound.ValidReserveFactor(reserveFactor) {
		return decimal.Zero, core.NewError(core.ErrInvalidParameter).
			WithMarket(market.ID).
			WithReason("reserve factor %s out of [0, 1)", reserveFactor)
	}

	old := market.ReserveFactor
	market.ReserveFactor = reserveFactor
	if err := s.save(ctx, market, nil, nil); err != nil {
		return decimal.Zero, err
	}

	return old, nil
}

// SetInterestRateModel returns the previous model, the market must be accrued first
func (s *service) SetInterestRateModel(ctx context.Context, market *core.Market, model *core.RateModel) (*core.RateModel, error) {
	if model == nil || !compound.ValidInterestRateModel(model.BaseRate, model.Multiplier, model.JumpMultiplier, model.Kink) {
		return nil, core.NewError(core.ErrInvalidParameter).
			WithMarket(market.ID).
			WithReason("invalid interest rate model")
	}

	old := market.RateModel()
	market.BaseRate = model.BaseRate
	market.Multiplier = model.Multiplier
	market.JumpMultiplier = model.JumpMultiplier
	market.Kink = model.Kink
	if err := s.save(ctx, market, nil, nil); err != nil {
		return nil, err
	}

	return old, nil
}
