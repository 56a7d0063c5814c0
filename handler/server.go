package handler

import (
	"net/http"

	"moneymarket/core"
	"moneymarket/handler/auth"
	"moneymarket/handler/render"
	"moneymarket/handler/rest"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	engine     rest.Engine
	events     core.EventStore
	adminToken string
	faucet     rest.Faucet
}

// New new server function
//
// The admin api is served under /admin only when adminToken is set, events
// and faucet may be nil.
func New(
	engine rest.Engine,
	events core.EventStore,
	adminToken string,
	faucet rest.Faucet,
) Server {
	return Server{
		engine:     engine,
		events:     events,
		adminToken: adminToken,
		faucet:     faucet,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse(true))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	if s.adminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.HandleAdmin(s.adminToken))
			r.Mount("/", rest.HandleAdmin(s.engine, s.faucet))
		})
	}

	r.Mount("/", rest.Handle(s.engine, s.events))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
