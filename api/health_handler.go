package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	ping        func(ctx context.Context) error
	startupTime time.Time
}

func newHealthHandler(ping func(ctx context.Context) error, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger, nil),
		logger:      logger,
		ping:        ping,
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

func (h healthHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := healthResponse{Database: "ok", Uptime: time.Since(h.startupTime).Round(time.Second).String()}

		if h.ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.ping(ctx); err != nil {
				h.logger.Warn().Err(err).Msg("Database ping failed")
				res.Database = "unreachable"
				h.responder.WriteJSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Data: res, Message: "Degraded"})
				return
			}
		}
		h.responder.WriteData(w, http.StatusOK, res, "OK")
	}
}
