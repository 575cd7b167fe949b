package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter wires the screen endpoints. metrics may be nil.
func NewRouter(h *Handlers, metrics http.Handler, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		hlog.NewHandler(logger),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Request handled")
		}),
	)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	r.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	r.HandleFunc("/load", h.Load).Methods(http.MethodPost)
	r.HandleFunc("/markers", h.CreateMarker).Methods(http.MethodPost)
	r.HandleFunc("/markers/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/markers/{id}/select", h.SelectMarker).Methods(http.MethodPost)
	r.HandleFunc("/markers/{id}", h.DeleteMarker).Methods(http.MethodDelete)
	r.HandleFunc("/selection", h.CloseDetail).Methods(http.MethodDelete)
	return r
}
