package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidParameter parameter out of its allowed range
	ErrInvalidParameter ErrorCode = 100001
	// ErrReentrantCall collaborator called back into the engine
	ErrReentrantCall ErrorCode = 100002
	// ErrTransferFailed token ledger refused a transfer
	ErrTransferFailed ErrorCode = 100003
	// ErrInvalidAccount empty account id
	ErrInvalidAccount ErrorCode = 100004

	// ErrMarketNotListed market not listed
	ErrMarketNotListed ErrorCode = 100100
	// ErrZeroAmount amount must be positive
	ErrZeroAmount ErrorCode = 100101
	// ErrInsufficientCash market cash can't cover the amount
	ErrInsufficientCash ErrorCode = 100102
	// ErrInsufficientShares account holds fewer shares than requested
	ErrInsufficientShares ErrorCode = 100103
	// ErrInsufficientCollateral borrow would leave the account in shortfall
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrInsufficientLiquidity redeem would leave the account in shortfall
	ErrInsufficientLiquidity ErrorCode = 100105
	// ErrRepayExceedsDebt repay amount greater than the borrow balance
	ErrRepayExceedsDebt ErrorCode = 100106
	// ErrMembershipRequiredForBorrow market membership still backs a borrow
	ErrMembershipRequiredForBorrow ErrorCode = 100107
	// ErrBorrowCapReached borrow over market borrow cap
	ErrBorrowCapReached ErrorCode = 100108

	// ErrNotEligibleForLiquidation borrower has no shortfall
	ErrNotEligibleForLiquidation ErrorCode = 100200
	// ErrRepayExceedsCloseFactorLimit liquidation repay above close factor * borrow balance
	ErrRepayExceedsCloseFactorLimit ErrorCode = 100201
	// ErrInsufficientCollateralToSeize borrower holds fewer collateral shares than seized
	ErrInsufficientCollateralToSeize ErrorCode = 100202
	// ErrLiquidateSelf liquidator and borrower are the same account
	ErrLiquidateSelf ErrorCode = 100203
	// ErrSeizeNotAllowed markets don't share the risk controller
	ErrSeizeNotAllowed ErrorCode = 100204

	// ErrPriceUnavailable oracle has no usable price
	ErrPriceUnavailable ErrorCode = 100300
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                       "Unknown",
	ErrInvalidParameter:              "InvalidParameter",
	ErrReentrantCall:                 "ReentrantCall",
	ErrTransferFailed:                "TransferFailed",
	ErrInvalidAccount:                "InvalidAccount",
	ErrMarketNotListed:               "MarketNotListed",
	ErrZeroAmount:                    "ZeroAmount",
	ErrInsufficientCash:              "InsufficientCash",
	ErrInsufficientShares:            "InsufficientShares",
	ErrInsufficientCollateral:        "InsufficientCollateral",
	ErrInsufficientLiquidity:         "InsufficientLiquidity",
	ErrRepayExceedsDebt:              "RepayExceedsDebt",
	ErrMembershipRequiredForBorrow:   "MembershipRequiredForBorrow",
	ErrBorrowCapReached:              "BorrowCapReached",
	ErrNotEligibleForLiquidation:     "NotEligibleForLiquidation",
	ErrRepayExceedsCloseFactorLimit:  "RepayExceedsCloseFactorLimit",
	ErrInsufficientCollateralToSeize: "InsufficientCollateralToSeize",
	ErrLiquidateSelf:                 "LiquidateSelf",
	ErrSeizeNotAllowed:               "SeizeNotAllowed",
	ErrPriceUnavailable:              "PriceUnavailable",
}

// Name readable error kind
func (e ErrorCode) Name() string {
	if name, ok := errorNames[e]; ok {
		return name
	}

	return errorNames[ErrUnknown]
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.Name()
}

// Error a typed failure with the operands needed to diagnose it
type Error struct {
	Code      ErrorCode
	Market    string
	Account   string
	Required  decimal.Decimal
	Available decimal.Decimal
	Reason    string
}

// NewError new error with code
func NewError(code ErrorCode) *Error {
	return &Error{Code: code}
}

// WithMarket set market
func (e *Error) WithMarket(market string) *Error {
	e.Market = market
	return e
}

// WithAccount set account
func (e *Error) WithAccount(account string) *Error {
	e.Account = account
	return e
}

// WithAmounts set required and available amounts
func (e *Error) WithAmounts(required, available decimal.Decimal) *Error {
	e.Required = required
	e.Available = available
	return e
}

// WithReason set a free text reason
func (e *Error) WithReason(format string, args ...interface{}) *Error {
	e.Reason = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.Name())
	if e.Market != "" {
		fmt.Fprintf(&b, " market=%s", e.Market)
	}
	if e.Account != "" {
		fmt.Fprintf(&b, " account=%s", e.Account)
	}
	if !e.Required.IsZero() || !e.Available.IsZero() {
		fmt.Fprintf(&b, " required=%s available=%s", e.Required, e.Available)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	return b.String()
}

// Is errors.Is(err, core.ErrInsufficientCash) matches by code
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}

	return false
}

// Unwrap exposes the code
func (e *Error) Unwrap() error {
	return e.Code
}

// CodeOf extract the error code, ErrUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if err == nil {
		return 0
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}

	return ErrUnknown
}
