package oracle

import (
	"context"
	"errors"
	"testing"

	"moneymarket/core"
	"moneymarket/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplePriceOracle(t *testing.T) {
	ctx := context.Background()
	o := NewSimple()

	_, err := o.Price(ctx, "cETH")
	assert.True(t, errors.Is(err, core.ErrPriceUnavailable))

	prev, err := o.SetUnderlyingPrice(ctx, "cETH", number.Decimal("100"))
	require.Nil(t, err)
	assert.True(t, prev.IsZero())

	prev, err = o.SetUnderlyingPrice(ctx, "cETH", number.Decimal("50"))
	require.Nil(t, err)
	assert.Equal(t, "100", prev.String())

	price, err := o.Price(ctx, "cETH")
	require.Nil(t, err)
	assert.Equal(t, "50", price.String())

	_, err = o.SetUnderlyingPrice(ctx, "cETH", number.Decimal("-1"))
	assert.Equal(t, core.ErrInvalidParameter, core.CodeOf(err))

	_, _ = o.SetUnderlyingPrice(ctx, "cETH", number.Decimal("0"))
	_, err = o.Price(ctx, "cETH")
	assert.Equal(t, core.ErrPriceUnavailable, core.CodeOf(err))
}
