package render

import (
	"encoding/json"
	"net/http"

	"moneymarket/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render json")
	}
}

// Error write error, the status follows the twirp code the error maps to
func Error(w http.ResponseWriter, err error) {
	twerr := codes.From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(twirp.ServerHTTPStatusFromErrorCode(twerr.Code()))

	resp := errorResponse{
		Code: codes.CodeOf(twerr),
		Msg:  twerr.Msg(),
	}

	if twerr.Code() == twirp.Internal {
		resp.Msg = "internal error"
		if ResponseErrorMessageAsHint {
			resp.Hint = twerr.Msg()
		}
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Errorln("render error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, codes.With(twirp.InvalidArgumentError("request", err.Error()), codes.InvalidArguments))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()))
}
