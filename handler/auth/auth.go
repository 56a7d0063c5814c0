package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"moneymarket/handler/render"

	"github.com/fox-one/pkg/logger"
	"github.com/twitchtv/twirp"
)

// HandleAdmin reject requests not carrying the admin token as bearer token
func HandleAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			accessToken := getBearerToken(r)
			if token == "" || subtle.ConstantTimeCompare([]byte(accessToken), []byte(token)) != 1 {
				logger.FromContext(r.Context()).Debugln("admin token mismatch")
				render.Error(w, twirp.NewError(twirp.Unauthenticated, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
