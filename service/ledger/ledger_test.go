package ledger

import (
	"context"
	"testing"

	"moneymarket/core"
	"moneymarket/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l := New("custody")

	l.Mint(ctx, "usd", "alice", number.Decimal("100"))

	err := l.TransferFrom(ctx, "usd", "alice", number.Decimal("10"))
	assert.Equal(t, core.ErrTransferFailed, core.CodeOf(err), "no allowance")

	l.Approve(ctx, "usd", "alice", number.Decimal("60"))
	require.Nil(t, l.TransferFrom(ctx, "usd", "alice", number.Decimal("40")))
	assert.Equal(t, "60", l.BalanceOf(ctx, "usd", "alice").String())
	assert.Equal(t, "40", l.BalanceOf(ctx, "usd", l.Custody()).String())
	assert.Equal(t, "20", l.Allowance(ctx, "usd", "alice").String())

	err = l.TransferFrom(ctx, "usd", "alice", number.Decimal("30"))
	assert.Equal(t, core.ErrTransferFailed, core.CodeOf(err), "allowance exhausted")

	require.Nil(t, l.Transfer(ctx, "usd", "bob", number.Decimal("15")))
	assert.Equal(t, "15", l.BalanceOf(ctx, "usd", "bob").String())
	assert.Equal(t, "25", l.BalanceOf(ctx, "usd", l.Custody()).String())

	err = l.Transfer(ctx, "usd", "bob", number.Decimal("26"))
	assert.Equal(t, core.ErrTransferFailed, core.CodeOf(err), "custody short")
	assert.Equal(t, "15", l.BalanceOf(ctx, "usd", "bob").String())
}

func TestLedger_Deposit(t *testing.T) {
	ctx := context.Background()
	l := New("custody")

	err := l.Deposit(ctx, "usd", "alice", number.Decimal("0"))
	assert.Equal(t, core.ErrZeroAmount, core.CodeOf(err))

	l.Approve(ctx, "usd", "alice", number.Decimal("5"))
	require.Nil(t, l.Deposit(ctx, "usd", "alice", number.Decimal("10")))
	assert.Equal(t, "10", l.BalanceOf(ctx, "usd", "alice").String())
	assert.Equal(t, "15", l.Allowance(ctx, "usd", "alice").String())

	require.Nil(t, l.TransferFrom(ctx, "usd", "alice", number.Decimal("10")))
	assert.True(t, l.BalanceOf(ctx, "usd", "alice").IsZero())
}
