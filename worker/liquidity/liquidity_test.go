package liquidity

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneymarket/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	accounts []*core.Account
	err      error
}

func (s *source) AccountsInShortfall(ctx context.Context) ([]*core.Account, error) {
	return s.accounts, s.err
}

func TestWorker(t *testing.T) {
	log, hook := test.NewNullLogger()
	src := &source{
		accounts: []*core.Account{
			{UserID: "alice", Liquidity: core.AccountLiquidity{Shortfall: decimal.NewFromInt(30)}},
		},
	}

	w, err := New(core.Monitor{Interval: time.Second}, src, logrus.NewEntry(log))
	require.Nil(t, err)

	ctx := logger.WithContext(context.Background(), logrus.NewEntry(log))
	require.Nil(t, w.onWork(ctx))

	require.Len(t, w.Shortfalls(), 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "alice", hook.LastEntry().Data["account"])

	src.err = errors.New("boom")
	assert.NotNil(t, w.onWork(ctx))
	assert.Len(t, w.Shortfalls(), 1, "a failed tick keeps the last result")

	// the job wrapper swallows the error
	w.Run()
	assert.False(t, w.IsRunning())
}
