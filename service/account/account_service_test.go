package account

import (
	"context"
	"testing"

	"moneymarket/core"
	"moneymarket/service/comptroller"
	"moneymarket/service/oracle"
	"moneymarket/store/borrow"
	"moneymarket/store/market"
	"moneymarket/store/membership"
	"moneymarket/store/storetest"
	"moneymarket/store/supply"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	database := storetest.Open(t)
	markets := market.New(database)
	supplies := supply.New(database)
	borrows := borrow.New(database)
	memberships := membership.New(database)
	prices := oracle.NewSimple()

	ctr := comptroller.New("unitroller", core.RiskParams{CloseFactor: decimal.NewFromFloat(0.5)}, prices, markets, supplies, borrows, memberships)
	s := New(markets, supplies, borrows, memberships, ctr)

	for _, id := range []string{"cETH", "cUSD", "cBTC"} {
		_, err := ctr.ListMarket(ctx, &core.Market{
			ID:               id,
			InitExchangeRate: decimal.New(1, 0),
			CollateralFactor: decimal.NewFromFloat(0.5),
		})
		require.Nil(t, err)
		_, _ = prices.SetUnderlyingPrice(ctx, id, decimal.NewFromInt(1))
	}

	require.Nil(t, supplies.Save(ctx, &core.Supply{UserID: "alice", MarketID: "cETH", CTokens: decimal.NewFromInt(100)}))
	require.Nil(t, borrows.Save(ctx, &core.Borrow{UserID: "alice", MarketID: "cUSD", Principal: decimal.NewFromInt(40), InterestIndex: decimal.New(1, 0)}))
	require.Nil(t, borrows.Save(ctx, &core.Borrow{UserID: "bob", MarketID: "cUSD", Principal: decimal.NewFromInt(10), InterestIndex: decimal.New(1, 0)}))
	require.Nil(t, memberships.Add(ctx, "alice", "cETH"))

	account, err := s.Find(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, []string{"cETH"}, account.Markets)
	require.Len(t, account.Positions, 2, "cBTC is never touched")
	assert.Equal(t, "cETH", account.Positions[0].MarketID)
	assert.True(t, account.Positions[0].Entered)
	assert.Equal(t, "100", account.Positions[0].UnderlyingBalance.String())
	assert.Equal(t, "40", account.Positions[1].BorrowBalance.String())
	assert.Equal(t, "10", account.Liquidity.Liquidity.String())

	// bob borrows without collateral
	accounts, err := s.ShortfallAccounts(ctx)
	require.Nil(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob", accounts[0].UserID)
	assert.Equal(t, "10", accounts[0].Liquidity.Shortfall.String())

	// accounts that can't be priced are skipped
	_, _ = prices.SetUnderlyingPrice(ctx, "cUSD", decimal.Zero)
	accounts, err = s.ShortfallAccounts(ctx)
	require.Nil(t, err)
	assert.Empty(t, accounts)
}
