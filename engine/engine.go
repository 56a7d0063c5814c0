package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"moneymarket/core"
	"moneymarket/pkg/id"
	"moneymarket/store"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/sirupsen/logrus"
)

type inflightKey struct{}

// Engine single writer facade over the markets and the risk controller
//
// Every operation runs to completion under one lock inside a store transaction:
// checks first, then state effects, then calls into the token ledger. Any
// failure rolls the whole operation back. Events are published after commit.
//
// Collaborators called during an operation receive a context marked as in
// flight. Calling a state changing operation with that context fails with
// ErrReentrantCall, views called with it read the current state without
// waiting for the lock.
type Engine struct {
	mu sync.Mutex

	db          *db.DB
	marketStore core.IMarketStore
	borrowStore core.IBorrowStore
	marketSrv   core.IMarketService
	comptroller core.IComptroller
	accountSrv  core.IAccountService
	ledger      core.TokenLedger
	blockSrv    core.IBlockService
	events      core.EventStore
}

// New new engine, events may be nil
func New(
	database *db.DB,
	marketStore core.IMarketStore,
	borrowStore core.IBorrowStore,
	marketSrv core.IMarketService,
	comptroller core.IComptroller,
	accountSrv core.IAccountService,
	ledger core.TokenLedger,
	blockSrv core.IBlockService,
	events core.EventStore,
) *Engine {
	return &Engine{
		db:          database,
		marketStore: marketStore,
		borrowStore: borrowStore,
		marketSrv:   marketSrv,
		comptroller: comptroller,
		accountSrv:  accountSrv,
		ledger:      ledger,
		blockSrv:    blockSrv,
		events:      events,
	}
}

type operation struct {
	name   string
	trace  string
	block  int64
	events []*core.Event
}

func (op *operation) emit(typ core.EventType, marketID, userID string, data core.EventData) {
	event := &core.Event{
		TraceID:   foxuuid.Modify(op.trace, strconv.Itoa(len(op.events))),
		Type:      typ,
		MarketID:  marketID,
		UserID:    userID,
		Block:     op.block,
		CreatedAt: time.Now(),
	}
	event.SetData(data)
	op.events = append(op.events, event)
}

func inflight(ctx context.Context) bool {
	v, _ := ctx.Value(inflightKey{}).(bool)
	return v
}

func (e *Engine) run(ctx context.Context, name string, fn func(ctx context.Context, op *operation) error) error {
	if inflight(ctx) {
		return core.NewError(core.ErrReentrantCall).WithReason("%s called during another operation", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	op := &operation{
		name:  name,
		trace: id.GenTraceID(),
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":    name,
		"trace": op.trace,
	})
	ctx = logger.WithContext(ctx, log)
	ctx = context.WithValue(ctx, inflightKey{}, true)

	if block, err := e.blockSrv.CurrentBlock(ctx); err == nil {
		op.block = block
	}

	if err := store.Tx(ctx, e.db, func(ctx context.Context) error {
		return fn(ctx, op)
	}); err != nil {
		if code := core.CodeOf(err); code != core.ErrUnknown {
			log.WithError(err).Infoln("rejected")
		} else {
			log.WithError(err).Errorln("failed")
		}

		return err
	}

	e.publish(ctx, op)
	log.Debugln("done")
	return nil
}

func (e *Engine) view(ctx context.Context, fn func(ctx context.Context) error) error {
	if !inflight(ctx) {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	return fn(ctx)
}

func (e *Engine) publish(ctx context.Context, op *operation) {
	if e.events == nil || len(op.events) == 0 {
		return
	}

	if err := e.events.Create(ctx, op.events); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("events.Create")
	}
}

func (e *Engine) listedMarket(ctx context.Context, marketID string) (*core.Market, error) {
	market, err := e.marketStore.Find(ctx, marketID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("markets.Find")
		return nil, err
	}

	if !market.IsListed() {
		return nil, core.NewError(core.ErrMarketNotListed).WithMarket(marketID)
	}

	return market, nil
}

func (e *Engine) accrue(ctx context.Context, op *operation, market *core.Market) error {
	accrual, err := e.marketSrv.AccrueInterest(ctx, market)
	if err != nil {
		return err
	}

	if accrual.Blocks > 0 {
		op.emit(core.EventAccrueInterest, market.ID, "", core.NewEventData().
			Put(core.EventKeyCashPrior, accrual.CashPrior).
			Put(core.EventKeyInterest, accrual.InterestAccumulated).
			Put(core.EventKeyBorrowIndex, accrual.BorrowIndex).
			Put(core.EventKeyTotalBorrows, accrual.TotalBorrows))
	}

	return nil
}

// transfer errors keep their code when the ledger reports a typed failure
func transferFailed(err error) error {
	if core.CodeOf(err) != core.ErrUnknown {
		return err
	}

	return core.NewError(core.ErrTransferFailed).WithReason("%v", err)
}
