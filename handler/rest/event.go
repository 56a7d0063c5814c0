package rest

import (
	"net/http"

	"moneymarket/core"
	"moneymarket/handler/render"
	"moneymarket/handler/views"

	"github.com/spf13/cast"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

func eventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		from := cast.ToInt64(query.Get("from"))

		limit := cast.ToInt(query.Get("limit"))
		if limit <= 0 {
			limit = defaultEventLimit
		} else if limit > maxEventLimit {
			limit = maxEventLimit
		}

		list, err := events.List(r.Context(), from, limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		eventViews := make([]*views.Event, 0, len(list))
		for _, event := range list {
			eventViews = append(eventViews, views.EventOf(event))
		}

		render.JSON(w, eventViews)
	}
}
