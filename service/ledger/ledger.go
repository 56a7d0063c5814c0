package ledger

import (
	"context"
	"sync"

	"moneymarket/core"

	"github.com/shopspring/decimal"
)

type key struct {
	assetID, account string
}

// Ledger in-memory fungible token ledger
//
// The engine's cash lives in the custody account. TransferFrom pulls from an
// account into custody against an allowance granted with Approve, Transfer pays
// out of custody.
type Ledger struct {
	custody string

	mu         sync.Mutex
	balances   map[key]decimal.Decimal
	allowances map[key]decimal.Decimal
}

// New new ledger
func New(custody string) *Ledger {
	return &Ledger{
		custody:    custody,
		balances:   make(map[key]decimal.Decimal),
		allowances: make(map[key]decimal.Decimal),
	}
}

// Custody account holding the engine's cash
func (l *Ledger) Custody() string {
	return l.custody
}

// Mint credit amount of asset to account
func (l *Ledger) Mint(ctx context.Context, assetID, account string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{assetID, account}
	l.balances[k] = l.balances[k].Add(amount)
}

// Approve allow custody to pull up to amount of asset from owner
func (l *Ledger) Approve(ctx context.Context, assetID, owner string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.allowances[key{assetID, owner}] = amount
}

// Deposit credit amount of asset to account and raise the custody's allowance
// by the same amount, so the funds can be supplied or repaid right away
func (l *Ledger) Deposit(ctx context.Context, assetID, account string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.NewError(core.ErrZeroAmount).WithAccount(account)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{assetID, account}
	l.balances[k] = l.balances[k].Add(amount)
	l.allowances[k] = l.allowances[k].Add(amount)
	return nil
}

// BalanceOf balance of account
func (l *Ledger) BalanceOf(ctx context.Context, assetID, account string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[key{assetID, account}]
}

// Allowance remaining allowance of owner
func (l *Ledger) Allowance(ctx context.Context, assetID, owner string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.allowances[key{assetID, owner}]
}

// TransferFrom pull amount of asset from account into custody
func (l *Ledger) TransferFrom(ctx context.Context, assetID, from string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{assetID, from}
	if allowance := l.allowances[k]; allowance.LessThan(amount) {
		return core.NewError(core.ErrTransferFailed).
			WithAccount(from).
			WithAmounts(amount, allowance).
			WithReason("allowance of %s too low", assetID)
	}

	if err := l.move(assetID, from, l.custody, amount); err != nil {
		return err
	}

	l.allowances[k] = l.allowances[k].Sub(amount)
	return nil
}

// Transfer pay amount of asset from custody to account
func (l *Ledger) Transfer(ctx context.Context, assetID, to string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.move(assetID, l.custody, to, amount)
}

func (l *Ledger) move(assetID, from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.NewError(core.ErrTransferFailed).WithAccount(from).WithReason("negative amount %s", amount)
	}

	src, dst := key{assetID, from}, key{assetID, to}
	if balance := l.balances[src]; balance.LessThan(amount) {
		return core.NewError(core.ErrTransferFailed).
			WithAccount(from).
			WithAmounts(amount, balance).
			WithReason("balance of %s too low", assetID)
	}

	l.balances[src] = l.balances[src].Sub(amount)
	l.balances[dst] = l.balances[dst].Add(amount)
	return nil
}
