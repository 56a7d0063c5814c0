package codes

import (
	"errors"
	"strconv"

	"moneymarket/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

// From convert err into a twirp error, engine errors keep their code as custom code
func From(err error) twirp.Error {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr
	}

	code := core.CodeOf(err)
	switch code {
	case core.ErrUnknown:
		return twirp.InternalErrorWith(err)
	case core.ErrMarketNotListed:
		twerr = twirp.NewError(twirp.NotFound, err.Error())
	case core.ErrInvalidParameter, core.ErrInvalidAccount, core.ErrZeroAmount:
		twerr = twirp.NewError(twirp.InvalidArgument, err.Error())
	case core.ErrPriceUnavailable:
		twerr = twirp.NewError(twirp.Unavailable, err.Error())
	default:
		twerr = twirp.NewError(twirp.FailedPrecondition, err.Error())
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(int(code)))
}

// CodeOf custom code of a twirp error, falls back to Get
func CodeOf(twerr twirp.Error) int {
	if v := twerr.Meta(CustomCodeKey); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			return code
		}
	}

	return Get(twerr.Code())
}
