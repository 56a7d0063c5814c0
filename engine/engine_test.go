package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"moneymarket/core"
	"moneymarket/pkg/compound"
	"moneymarket/service/account"
	"moneymarket/service/comptroller"
	"moneymarket/service/ledger"
	marketsrv "moneymarket/service/market"
	"moneymarket/service/oracle"
	"moneymarket/store/borrow"
	marketstore "moneymarket/store/market"
	"moneymarket/store/membership"
	"moneymarket/store/storetest"
	"moneymarket/store/supply"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	custody    = "custody"
	lender     = "lender"
	alice      = "alice"
	liquidator = "liquidator"

	// collateral market, priced at 100
	cETH = "cETH"
	// debt market, priced at 1
	cUSD = "cUSD"
)

type blocks struct {
	n int64
}

func (b *blocks) CurrentBlock(ctx context.Context) (int64, error) {
	return atomic.LoadInt64(&b.n), nil
}

func (b *blocks) GetBlock(ctx context.Context, t time.Time) (int64, error) {
	return b.CurrentBlock(ctx)
}

func (b *blocks) advance(n int64) {
	atomic.AddInt64(&b.n, n)
}

type recorder struct {
	mu     sync.Mutex
	events []*core.Event
}

func (r *recorder) Create(ctx context.Context, events []*core.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx, event := range events {
		event.ID = int64(len(r.events) + idx + 1)
	}
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) List(ctx context.Context, from int64, limit int) ([]*core.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*core.Event
	for _, event := range r.events {
		if event.ID > from && len(events) < limit {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *recorder) types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]core.EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type harness struct {
	*Engine

	blocks  *blocks
	oracle  *oracle.SimplePriceOracle
	ledger  *ledger.Ledger
	events  *recorder
	markets core.IMarketStore
	supply  core.ISupplyStore
}

func newHarness(t *testing.T, tokenLedger core.TokenLedger) *harness {
	h := &harness{
		blocks: &blocks{n: 100},
		oracle: oracle.NewSimple(),
		ledger: ledger.New(custody),
		events: &recorder{},
	}

	if tokenLedger == nil {
		tokenLedger = h.ledger
	}

	database := storetest.Open(t)
	h.markets = marketstore.New(database)
	h.supply = supply.New(database)
	borrows := borrow.New(database)
	memberships := membership.New(database)

	params := core.RiskParams{
		CloseFactor:          compound.DefaultCloseFactor,
		LiquidationIncentive: compound.DefaultLiquidationIncentive,
		ProtocolSeizeShare:   compound.DefaultProtocolSeizeShare,
	}

	ctr := comptroller.New("unitroller", params, h.oracle, h.markets, h.supply, borrows, memberships)
	h.Engine = New(
		database,
		h.markets,
		borrows,
		marketsrv.New(h.markets, h.supply, borrows, h.blocks),
		ctr,
		account.New(h.markets, h.supply, borrows, memberships, ctr),
		tokenLedger,
		h.blocks,
		h.events,
	)

	return h
}

func newMarket(id string, collateralFactor float64) *core.Market {
	return &core.Market{
		ID:               id,
		AssetID:          id + "-asset",
		Symbol:           id,
		InitExchangeRate: decimal.New(1, 0),
		CollateralFactor: decimal.NewFromFloat(collateralFactor),
		ReserveFactor:    decimal.NewFromFloat(0.1),
		BaseRate:         decimal.NewFromFloat(0.02),
		Multiplier:       decimal.NewFromFloat(0.2),
		JumpMultiplier:   decimal.NewFromFloat(2),
		Kink:             decimal.NewFromFloat(0.8),
	}
}

// fund give the account amount of the market's asset and approve the custody to pull it
func (h *harness) fund(marketID, account string, amount decimal.Decimal) {
	ctx := context.Background()
	asset := marketID + "-asset"
	h.ledger.Mint(ctx, asset, account, amount)
	h.ledger.Approve(ctx, asset, account, h.ledger.Allowance(ctx, asset, account).Add(amount))
}

func (h *harness) shares(t *testing.T, account, marketID string) decimal.Decimal {
	s, err := h.supply.Find(context.Background(), account, marketID)
	require.Nil(t, err)
	return s.CTokens
}

func (h *harness) market(t *testing.T, marketID string) *core.Market {
	m, err := h.markets.Find(context.Background(), marketID)
	require.Nil(t, err)
	return m
}

// setup lists cETH (price 100, cf 0.5) and cUSD (price 1, cf 0.8), the lender
// supplies 1000 USD, alice supplies 1 ETH as collateral and borrows 50 USD.
func setup(t *testing.T) *harness {
	ctx := context.Background()
	h := newHarness(t, nil)

	for _, m := range []*core.Market{newMarket(cETH, 0.5), newMarket(cUSD, 0.8)} {
		listed, err := h.ListMarket(ctx, m)
		require.Nil(t, err)
		require.True(t, listed)
	}

	_, err := h.oracle.SetUnderlyingPrice(ctx, cETH, decimal.NewFromInt(100))
	require.Nil(t, err)
	_, err = h.oracle.SetUnderlyingPrice(ctx, cUSD, decimal.NewFromInt(1))
	require.Nil(t, err)

	h.fund(cUSD, lender, decimal.NewFromInt(1000))
	_, err = h.Mint(ctx, lender, cUSD, decimal.NewFromInt(1000))
	require.Nil(t, err)

	h.fund(cETH, alice, decimal.NewFromInt(1))
	_, err = h.Mint(ctx, alice, cETH, decimal.NewFromInt(1))
	require.Nil(t, err)
	require.Nil(t, h.EnterMarkets(ctx, alice, cETH))
	require.Nil(t, h.Borrow(ctx, alice, cUSD, decimal.NewFromInt(50)))

	h.events.reset()
	return h
}

func assertCode(t *testing.T, code core.ErrorCode, err error) {
	t.Helper()
	require.NotNil(t, err)
	assert.Equal(t, code, core.CodeOf(err), err.Error())
}

func TestEngine_MintRedeem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	_, err := h.ListMarket(ctx, newMarket(cETH, 0.5))
	require.Nil(t, err)

	h.fund(cETH, alice, decimal.NewFromInt(10))
	ctokens, err := h.Mint(ctx, alice, cETH, decimal.NewFromInt(10))
	require.Nil(t, err)
	assert.Equal(t, "10", ctokens.String())
	assert.Equal(t, "10", h.ledger.BalanceOf(ctx, cETH+"-asset", custody).String())

	amount, err := h.Redeem(ctx, alice, cETH, decimal.NewFromInt(4))
	require.Nil(t, err)
	assert.Equal(t, "4", amount.String())
	assert.Equal(t, "4", h.ledger.BalanceOf(ctx, cETH+"-asset", alice).String())
	assert.Equal(t, "6", h.shares(t, alice, cETH).String())

	_, err = h.Redeem(ctx, alice, cETH, decimal.NewFromInt(7))
	assertCode(t, core.ErrInsufficientShares, err)

	_, err = h.Mint(ctx, alice, cETH, decimal.Zero)
	assertCode(t, core.ErrZeroAmount, err)

	_, err = h.Mint(ctx, alice, "cBTC", decimal.NewFromInt(1))
	assertCode(t, core.ErrMarketNotListed, err)

	assert.Equal(t, []core.EventType{core.EventMarketListed, core.EventMint, core.EventRedeem}, h.events.types())
}

func TestEngine_Borrow(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	assert.Equal(t, "50", h.ledger.BalanceOf(ctx, cUSD+"-asset", alice).String())

	balance, err := h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "50", balance.String())

	liquidity, err := h.AccountLiquidity(ctx, alice)
	require.Nil(t, err)
	assert.True(t, liquidity.Liquidity.IsZero())
	assert.True(t, liquidity.Shortfall.IsZero())

	// collateral is used up
	err = h.Borrow(ctx, alice, cUSD, decimal.New(1, -18))
	assertCode(t, core.ErrInsufficientCollateral, err)

	// borrowing entered the debt market
	account, err := h.Account(ctx, alice)
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{cETH, cUSD}, account.Markets)

	// the collateral backs a borrow
	_, err = h.Redeem(ctx, alice, cETH, decimal.New(1, -2))
	assertCode(t, core.ErrInsufficientLiquidity, err)

	err = h.ExitMarket(ctx, alice, cUSD)
	assertCode(t, core.ErrMembershipRequiredForBorrow, err)

	err = h.RepayBorrow(ctx, alice, cUSD, decimal.NewFromInt(51))
	assertCode(t, core.ErrRepayExceedsDebt, err)

	// repaying pulls the funds, nothing moves without an allowance
	err = h.RepayBorrow(ctx, alice, cUSD, decimal.NewFromInt(50))
	assertCode(t, core.ErrTransferFailed, err)
	balance, err = h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "50", balance.String())

	h.ledger.Approve(ctx, cUSD+"-asset", alice, decimal.NewFromInt(50))
	require.Nil(t, h.RepayBorrow(ctx, alice, cUSD, decimal.NewFromInt(50)))

	balance, err = h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.True(t, balance.IsZero())
	assert.True(t, h.market(t, cUSD).TotalBorrows.IsZero())
	assert.True(t, h.ledger.BalanceOf(ctx, cUSD+"-asset", alice).IsZero())
	assert.Equal(t, "1000", h.ledger.BalanceOf(ctx, cUSD+"-asset", custody).String())
	assert.Equal(t, "1000", h.market(t, cUSD).TotalCash.String())

	require.Nil(t, h.ExitMarket(ctx, alice, cUSD))
	_, err = h.Redeem(ctx, alice, cETH, decimal.NewFromInt(1))
	require.Nil(t, err)
}

func TestEngine_RepayBorrowBehalf(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	h.fund(cUSD, "bob", decimal.NewFromInt(20))
	require.Nil(t, h.RepayBorrowBehalf(ctx, "bob", alice, cUSD, decimal.NewFromInt(20)))

	balance, err := h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "30", balance.String())
	assert.True(t, h.ledger.BalanceOf(ctx, cUSD+"-asset", "bob").IsZero())
	assert.Equal(t, "50", h.ledger.BalanceOf(ctx, cUSD+"-asset", alice).String(), "the borrower keeps the borrowed funds")
	assert.Equal(t, "970", h.ledger.BalanceOf(ctx, cUSD+"-asset", custody).String())
	assert.Equal(t, "970", h.market(t, cUSD).TotalCash.String())

	events, err := h.events.List(ctx, 0, 10)
	require.Nil(t, err)
	require.Len(t, events, 1)
	data, err := events[0].UnmarshalData()
	require.Nil(t, err)
	assert.Equal(t, "bob", data[core.EventKeyPayer])
	assert.Equal(t, alice, events[0].UserID)

	// bob's allowance is used up
	err = h.RepayBorrowBehalf(ctx, "bob", alice, cUSD, decimal.NewFromInt(1))
	assertCode(t, core.ErrTransferFailed, err)
	balance, err = h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "30", balance.String())
}

func TestEngine_BorrowRejectedLeavesMembership(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	// bob has no collateral, the rejected borrow does not enter the market
	err := h.Borrow(ctx, "bob", cUSD, decimal.NewFromInt(1))
	assertCode(t, core.ErrInsufficientCollateral, err)

	account, err := h.Account(ctx, "bob")
	require.Nil(t, err)
	assert.Empty(t, account.Markets)
	assert.Empty(t, h.events.types())
}

func TestEngine_BorrowCap(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	require.Nil(t, h.SetMarketBorrowCap(ctx, cUSD, decimal.NewFromInt(60)))
	require.Nil(t, h.SetCollateralFactor(ctx, cETH, decimal.NewFromFloat(0.9)))

	err := h.Borrow(ctx, alice, cUSD, decimal.NewFromInt(11))
	assertCode(t, core.ErrBorrowCapReached, err)
	require.Nil(t, h.Borrow(ctx, alice, cUSD, decimal.NewFromInt(10)))
}

func TestEngine_LiquidateAfterCollateralFactorDrop(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	require.Nil(t, h.SetCollateralFactor(ctx, cETH, decimal.NewFromFloat(0.2)))

	liquidity, err := h.AccountLiquidity(ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "30", liquidity.Shortfall.String())

	h.fund(cUSD, liquidator, decimal.NewFromInt(25))
	h.events.reset()

	result, err := h.LiquidateBorrow(ctx, liquidator, alice, cUSD, decimal.NewFromInt(25), cETH)
	require.Nil(t, err)
	assert.Equal(t, "0.27", result.SeizeTokens.String())
	assert.Equal(t, "0.26244", result.LiquidatorTokens.String())
	assert.Equal(t, "0.00756", result.ProtocolTokens.String())

	assert.Equal(t, "0.26244", h.shares(t, liquidator, cETH).String())
	assert.Equal(t, "0.73", h.shares(t, alice, cETH).String())

	eth := h.market(t, cETH)
	assert.Equal(t, "0.99244", eth.CTokens.String())
	assert.Equal(t, "0.00756", eth.Reserves.String())

	balance, err := h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "25", balance.String())
	assert.True(t, h.ledger.BalanceOf(ctx, cUSD+"-asset", liquidator).IsZero())

	assert.Equal(t, []core.EventType{
		core.EventRepayBorrow,
		core.EventLiquidateBorrow,
		core.EventReservesAdded,
	}, h.events.types())
}

func TestEngine_LiquidateAfterPriceMove(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	require.Nil(t, h.PostPrice(ctx, cETH, decimal.NewFromInt(50)))

	h.fund(cUSD, liquidator, decimal.NewFromInt(25))
	result, err := h.LiquidateBorrow(ctx, liquidator, alice, cUSD, decimal.NewFromInt(25), cETH)
	require.Nil(t, err)
	assert.Equal(t, "0.54", result.SeizeTokens.String())
	assert.Equal(t, "0.52488", result.LiquidatorTokens.String())
	assert.Equal(t, "0.52488", h.shares(t, liquidator, cETH).String())
}

func TestEngine_LiquidateHealthyAccount(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	h.fund(cUSD, liquidator, decimal.NewFromInt(25))
	for _, repay := range []int64{1, 10, 25} {
		_, err := h.LiquidateBorrow(ctx, liquidator, alice, cUSD, decimal.NewFromInt(repay), cETH)
		assertCode(t, core.ErrNotEligibleForLiquidation, err)
	}

	assert.Empty(t, h.events.types())
}

func TestEngine_LiquidateCloseFactorBoundary(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	require.Nil(t, h.SetCollateralFactor(ctx, cETH, decimal.NewFromFloat(0.2)))
	h.fund(cUSD, liquidator, decimal.NewFromInt(30))

	over := decimal.NewFromInt(25).Add(decimal.New(1, -18))
	_, err := h.LiquidateBorrow(ctx, liquidator, alice, cUSD, over, cETH)
	assertCode(t, core.ErrRepayExceedsCloseFactorLimit, err)

	_, err = h.LiquidateBorrow(ctx, alice, alice, cUSD, decimal.NewFromInt(1), cETH)
	assertCode(t, core.ErrLiquidateSelf, err)

	_, err = h.LiquidateBorrow(ctx, liquidator, alice, cUSD, decimal.NewFromInt(25), cETH)
	require.Nil(t, err)
}

func TestEngine_LiquidateSeizeMoreThanCollateral(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	// price crash, 25 USD buys more ETH than alice holds
	require.Nil(t, h.PostPrice(ctx, cETH, decimal.NewFromInt(20)))
	h.fund(cUSD, liquidator, decimal.NewFromInt(25))

	_, err := h.LiquidateBorrow(ctx, liquidator, alice, cUSD, decimal.NewFromInt(25), cETH)
	assertCode(t, core.ErrInsufficientCollateralToSeize, err)

	// nothing moved
	balance, err := h.BorrowBalanceStored(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "50", balance.String())
	assert.Equal(t, "25", h.ledger.BalanceOf(ctx, cUSD+"-asset", liquidator).String())
}

func TestEngine_RollbackOnTransferFailure(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	before := h.market(t, cETH)

	// no allowance granted
	h.ledger.Mint(ctx, cETH+"-asset", lender, decimal.NewFromInt(5))
	_, err := h.Mint(ctx, lender, cETH, decimal.NewFromInt(5))
	assertCode(t, core.ErrTransferFailed, err)

	after := h.market(t, cETH)
	assert.Equal(t, before.TotalCash.String(), after.TotalCash.String())
	assert.Equal(t, before.CTokens.String(), after.CTokens.String())
	assert.Equal(t, before.Version, after.Version)
	assert.True(t, h.shares(t, lender, cETH).IsZero())
	assert.Empty(t, h.events.types())
}

type reentrantLedger struct {
	core.TokenLedger
	engine *Engine

	reentryErr error
	viewErr    error
}

func (l *reentrantLedger) TransferFrom(ctx context.Context, assetID, from string, amount decimal.Decimal) error {
	_, l.reentryErr = l.engine.Mint(ctx, from, cETH, amount)
	_, l.viewErr = l.engine.Market(ctx, cETH)
	return l.TokenLedger.TransferFrom(ctx, assetID, from, amount)
}

func TestEngine_Reentrancy(t *testing.T) {
	ctx := context.Background()
	inner := ledger.New(custody)
	tokenLedger := &reentrantLedger{TokenLedger: inner}
	h := newHarness(t, tokenLedger)
	h.ledger = inner
	tokenLedger.engine = h.Engine

	_, err := h.ListMarket(ctx, newMarket(cETH, 0.5))
	require.Nil(t, err)

	h.fund(cETH, alice, decimal.NewFromInt(10))
	_, err = h.Mint(ctx, alice, cETH, decimal.NewFromInt(10))
	require.Nil(t, err)

	assertCode(t, core.ErrReentrantCall, tokenLedger.reentryErr)
	assert.Nil(t, tokenLedger.viewErr, "views are allowed during an operation")
	assert.Equal(t, "10", h.shares(t, alice, cETH).String())
}

func TestEngine_IdempotentAccrual(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	h.blocks.advance(1000)
	require.Nil(t, h.AccrueInterest(ctx, cUSD))
	once := h.market(t, cUSD)

	require.Nil(t, h.AccrueInterest(ctx, cUSD))
	twice := h.market(t, cUSD)

	assert.Equal(t, once.Format(), twice.Format())
	assert.Equal(t, once.Version, twice.Version)
	assert.True(t, once.TotalBorrows.GreaterThan(decimal.NewFromInt(50)))
	assert.Equal(t, []core.EventType{core.EventAccrueInterest}, h.events.types())

	current, err := h.BorrowBalanceCurrent(ctx, alice, cUSD)
	require.Nil(t, err)
	assert.True(t, current.GreaterThan(decimal.NewFromInt(50)))
}

func TestEngine_ReduceReserves(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	h.blocks.advance(100000)
	require.Nil(t, h.AccrueInterest(ctx, cUSD))

	reserves := h.market(t, cUSD).Reserves
	require.True(t, reserves.IsPositive())

	err := h.ReduceReserves(ctx, cUSD, reserves.Add(decimal.New(1, -18)), "treasury")
	assertCode(t, core.ErrInvalidParameter, err)

	require.Nil(t, h.ReduceReserves(ctx, cUSD, reserves, "treasury"))
	assert.True(t, h.market(t, cUSD).Reserves.IsZero())
	assert.Equal(t, reserves.String(), h.ledger.BalanceOf(ctx, cUSD+"-asset", "treasury").String())
}

func TestEngine_AdminEvents(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	require.Nil(t, h.SetCloseFactor(ctx, decimal.NewFromFloat(0.6)))
	assertCode(t, core.ErrInvalidParameter, h.SetCloseFactor(ctx, decimal.Zero))
	require.Nil(t, h.SetLiquidationIncentive(ctx, decimal.NewFromFloat(1.1)))
	assertCode(t, core.ErrInvalidParameter, h.SetLiquidationIncentive(ctx, decimal.NewFromFloat(0.9)))
	require.Nil(t, h.SetProtocolSeizeShare(ctx, decimal.NewFromFloat(0.05)))
	require.Nil(t, h.SetReserveFactor(ctx, cUSD, decimal.NewFromFloat(0.2)))
	assertCode(t, core.ErrInvalidParameter, h.SetCollateralFactor(ctx, cETH, decimal.NewFromInt(1)))
	assertCode(t, core.ErrInvalidParameter, h.SetPriceOracle(ctx, nil))
	require.Nil(t, h.SetPriceOracle(ctx, h.oracle))

	assert.Equal(t, []core.EventType{
		core.EventCloseFactorChanged,
		core.EventLiquidationIncentiveChanged,
		core.EventProtocolSeizeShareChanged,
		core.EventReserveFactorChanged,
		core.EventPriceOracleChanged,
	}, h.events.types())

	params := h.Params()
	assert.Equal(t, "0.6", params.CloseFactor.String())
	assert.Equal(t, "1.1", params.LiquidationIncentive.String())

	events, err := h.events.List(ctx, 0, 1)
	require.Nil(t, err)
	require.Len(t, events, 1)

	data, err := events[0].UnmarshalData()
	require.Nil(t, err)
	assert.Equal(t, "0.5", data[core.EventKeyOld])
	assert.Equal(t, "0.6", data[core.EventKeyNew])

	listed, err := h.ListMarket(ctx, newMarket(cETH, 0.1))
	require.Nil(t, err)
	assert.False(t, listed, "listing twice is a no-op")
	assert.Equal(t, "0.5", h.market(t, cETH).CollateralFactor.String())
}

// conserved the accounts' shares add up to the market's shares, which are
// worth the market's cash plus borrows minus reserves up to exchange rate
// rounding, and custody holds exactly the market's cash
func (h *harness) conserved(t *testing.T, marketID string, step int) {
	ctx := context.Background()
	m := h.market(t, marketID)

	supplies, err := h.supply.FindByMarket(ctx, marketID)
	require.Nil(t, err)

	shares := decimal.Zero
	for _, s := range supplies {
		shares = shares.Add(s.CTokens)
	}
	require.Equal(t, m.CTokens.String(), shares.String(), "step %d: shares of %s", step, marketID)

	underlying := m.TotalCash.Add(m.TotalBorrows).Sub(m.Reserves)
	value := shares.Mul(compound.CurExchangeRate(m))
	require.True(t, value.LessThanOrEqual(underlying), "step %d: %s shares worth %s over %s", step, marketID, value, underlying)
	require.True(t, underlying.Sub(value).LessThanOrEqual(shares.Mul(decimal.New(1, -18))), "step %d: %s shares worth %s under %s", step, marketID, value, underlying)

	custodyCash := h.ledger.BalanceOf(ctx, m.AssetID, custody)
	require.Equal(t, custodyCash.String(), m.TotalCash.String(), "step %d: custody of %s", step, marketID)
}

func TestEngine_ExchangeRateMonotonic(t *testing.T) {
	ctx := context.Background()
	h := setup(t)
	r := rand.New(rand.NewSource(42))

	users := []string{lender, alice, "bob", "carol"}
	for _, u := range users {
		h.fund(cUSD, u, decimal.NewFromInt(1000000))
		h.fund(cETH, u, decimal.NewFromInt(100))
		_, err := h.Mint(ctx, u, cETH, decimal.NewFromInt(100))
		require.Nil(t, err)
		require.Nil(t, h.EnterMarkets(ctx, u, cETH))
	}

	var liquidations int
	rate := compound.CurExchangeRate(h.market(t, cUSD))
	for i := 0; i < 400; i++ {
		u := users[r.Intn(len(users))]
		amount := decimal.New(r.Int63n(1000000)+1, -3)

		switch r.Intn(8) {
		case 0:
			_, _ = h.Mint(ctx, u, cUSD, amount)
		case 1:
			// the lender never leaves, keeping the share supply positive
			if u == lender {
				continue
			}
			shares := h.shares(t, u, cUSD)
			_, _ = h.Redeem(ctx, u, cUSD, decimal.Min(shares, amount))
		case 2:
			_ = h.Borrow(ctx, u, cUSD, amount)
		case 3:
			balance, err := h.BorrowBalanceCurrent(ctx, u, cUSD)
			require.Nil(t, err)
			if balance.IsPositive() {
				require.Nil(t, h.RepayBorrow(ctx, u, cUSD, decimal.Min(balance, amount)))
			}
		case 4:
			h.blocks.advance(r.Int63n(10000))
			require.Nil(t, h.AccrueInterest(ctx, cUSD))
		case 5:
			require.Nil(t, h.PostPrice(ctx, cETH, decimal.NewFromInt(r.Int63n(100)+5)))
		case 6:
			borrower := users[r.Intn(len(users))]
			if borrower == u {
				continue
			}

			balance, err := h.BorrowBalanceCurrent(ctx, borrower, cUSD)
			require.Nil(t, err)
			repay := decimal.Min(amount, balance.Mul(compound.DefaultCloseFactor).Truncate(18))
			if !repay.IsPositive() {
				continue
			}

			if _, err := h.LiquidateBorrow(ctx, u, borrower, cUSD, repay, cETH); err == nil {
				liquidations++
			}
		case 7:
			m := h.market(t, cUSD)
			if reduce := decimal.Min(m.Reserves, amount, m.TotalCash); reduce.IsPositive() {
				require.Nil(t, h.ReduceReserves(ctx, cUSD, reduce, "treasury"))
			}
		}

		m := h.market(t, cUSD)
		next := compound.CurExchangeRate(m)
		require.True(t, next.GreaterThanOrEqual(rate), "step %d: exchange rate %s dropped below %s", i, next, rate)
		rate = next

		h.conserved(t, cUSD, i)
		h.conserved(t, cETH, i)
	}

	assert.Positive(t, liquidations, "the price moves open accounts to liquidation")
}

func TestEngine_LiquidityGate(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		h := setup(t)

		cf := decimal.New(r.Int63n(95), -2)
		price := decimal.NewFromInt(r.Int63n(300) + 1)
		amount := decimal.NewFromInt(r.Int63n(120) + 1)

		require.Nil(t, h.SetCollateralFactor(ctx, cETH, cf))
		require.Nil(t, h.PostPrice(ctx, cETH, price))

		err := h.Borrow(ctx, alice, cUSD, amount)
		liquidity, lerr := h.AccountLiquidity(ctx, alice)
		require.Nil(t, lerr)

		if err == nil {
			assert.True(t, liquidity.Shortfall.IsZero(), "cf %s price %s amount %s", cf, price, amount)
			continue
		}

		assertCode(t, core.ErrInsufficientCollateral, err)
		hypo, herr := h.HypotheticalAccountLiquidity(ctx, alice, &core.Hypothetical{MarketID: cUSD, BorrowAmount: amount})
		require.Nil(t, herr)
		assert.True(t, hypo.Shortfall.IsPositive(), "cf %s price %s amount %s", cf, price, amount)
	}
}

func TestEngine_Views(t *testing.T) {
	ctx := context.Background()
	h := setup(t)

	markets, err := h.Markets(ctx)
	require.Nil(t, err)
	assert.Len(t, markets, 2)

	rates, err := h.MarketRates(ctx, cUSD)
	require.Nil(t, err)
	assert.Equal(t, "0.05", rates.UtilizationRate.String())
	assert.True(t, rates.BorrowRatePerBlock.IsPositive())

	tokens, err := h.LiquidateCalculateSeizeTokens(ctx, cUSD, cETH, decimal.NewFromInt(25))
	require.Nil(t, err)
	assert.Equal(t, "0.27", tokens.String())

	underlying, err := h.BalanceOfUnderlying(ctx, alice, cETH)
	require.Nil(t, err)
	assert.Equal(t, "1", underlying.String())

	shortfall, err := h.AccountsInShortfall(ctx)
	require.Nil(t, err)
	assert.Empty(t, shortfall)

	require.Nil(t, h.SetCollateralFactor(ctx, cETH, decimal.NewFromFloat(0.2)))
	shortfall, err = h.AccountsInShortfall(ctx)
	require.Nil(t, err)
	require.Len(t, shortfall, 1)
	assert.Equal(t, alice, shortfall[0].UserID)
}
