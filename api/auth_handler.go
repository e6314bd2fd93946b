package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder    Responder
	logger       zerolog.Logger
	authorizer   *auth.Authorizer
	limiter      *ipLimiter
	secureCookie bool
}

func newAuthHandler(authorizer *auth.Authorizer, limiter *ipLimiter, secureCookie bool, notifier notify.Notifier) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:    NewResponder(logger, notifier),
		logger:       logger,
		authorizer:   authorizer,
		limiter:      limiter,
		secureCookie: secureCookie,
	}
}

type sessionResponse struct {
	User      sessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
	Token     string      `json:"token,omitempty"`
}

type sessionUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func toSessionResponse(session *auth.Session, withToken bool) sessionResponse {
	res := sessionResponse{
		User:      sessionUser{ID: session.UserID, Username: session.Username},
		ExpiresAt: session.ExpiresAt,
	}
	if withToken {
		res.Token = session.Token
	}
	return res
}

// login takes {username, password} as JSON or form and sets the session cookie.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(clientIP(r)) {
			h.logger.Warn().Str("ip", clientIP(r)).Msg("Login rate limited")
			h.responder.WriteError(w, errs.NewRateLimitedError())
			return
		}

		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		session, err := h.authorizer.Authorize(r.Context(), p.get("username"), p.values.Get("password"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		setSessionCookie(w, session, h.secureCookie)
		w.Header().Set(auth.RefreshHeader, session.Token)
		h.responder.WriteData(w, http.StatusOK, toSessionResponse(session, true), "Signed in")
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearSessionCookie(w, h.secureCookie)
		h.responder.WriteData(w, http.StatusOK, nil, "Signed out")
	}
}

// session reports the current session; the middleware has already refreshed it.
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := ctxGetSession(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteData(w, http.StatusOK, toSessionResponse(session, false), "Session active")
	}
}
