package liquidity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneymarket/core"
	"moneymarket/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Source accounts eligible for liquidation
type Source interface {
	AccountsInShortfall(ctx context.Context) ([]*core.Account, error)
}

// Worker read-only health monitor, logs every account in shortfall on each tick
type Worker struct {
	worker.BaseJob
	source Source
	log    *logrus.Entry

	mu   sync.RWMutex
	last []*core.Account
}

// New new liquidity worker ticking every interval
func New(cfg core.Monitor, source Source, log *logrus.Entry) (*Worker, error) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	job := &Worker{
		source: source,
		log:    log.WithField("worker", "liquidity"),
	}

	job.Cron = cron.New()
	if _, err := job.Cron.AddFunc(fmt.Sprintf("@every %s", interval), job.Run); err != nil {
		return nil, err
	}

	job.OnWork = func() error {
		return job.onWork(logger.WithContext(context.Background(), job.log))
	}

	return job, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	accounts, err := w.source.AccountsInShortfall(ctx)
	if err != nil {
		log.WithError(err).Errorln("AccountsInShortfall")
		return err
	}

	for _, account := range accounts {
		log.WithFields(logrus.Fields{
			"account":          account.UserID,
			"shortfall":        account.Liquidity.Shortfall,
			"borrow_value":     account.Liquidity.BorrowValue,
			"collateral_value": account.Liquidity.CollateralValue,
		}).Warnln("account in shortfall")
	}

	log.WithField("count", len(accounts)).Debugln("liquidity checked")

	w.mu.Lock()
	w.last = accounts
	w.mu.Unlock()
	return nil
}

// Shortfalls accounts found in shortfall by the last tick
func (w *Worker) Shortfalls() []*core.Account {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.last
}
