package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type revalidateHandler struct {
	responder Responder
	logger    zerolog.Logger
	secret    string
	cache     responseCache
	now       func() time.Time
}

func newRevalidateHandler(secret string, cache responseCache, notifier notify.Notifier) revalidateHandler {
	logger := log.With().Str("handlerName", "revalidateHandler").Logger()

	return revalidateHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		secret:    secret,
		cache:     cache,
		now:       time.Now,
	}
}

type revalidateRequest struct {
	Paths []string `json:"paths"`
	Tags  []string `json:"tags"`
}

type revalidateResult struct {
	Paths       []string `json:"paths"`
	Tags        []string `json:"tags"`
	Invalidated int      `json:"invalidated"`
}

type revalidateResponse struct {
	Success     bool             `json:"success"`
	Revalidated bool             `json:"revalidated"`
	Now         int64            `json:"now"`
	Data        revalidateResult `json:"data"`
	Message     string           `json:"message"`
}

// authorized compares in constant time; an unset secret rejects everything
func (h revalidateHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	provided := r.URL.Query().Get("secret")
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		provided = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}

// revalidate drops cached responses by path and by tag. Unknown values are no-ops.
func (h revalidateHandler) revalidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			h.responder.WriteError(w, errs.NewSecretMismatchError())
			return
		}

		var req revalidateRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		q := r.URL.Query()
		req.Paths = append(req.Paths, q["path"]...)
		req.Tags = append(req.Tags, q["tag"]...)

		result := revalidateResult{Paths: []string{}, Tags: []string{}}
		if h.cache.store != nil {
			for _, path := range req.Paths {
				if path = strings.TrimSpace(path); path == "" {
					continue
				}
				n, err := h.cache.store.InvalidatePath(r.Context(), path)
				if err != nil {
					h.responder.WriteError(w, errs.NewInternalErrorWithCause("could not revalidate path "+path, err))
					return
				}
				result.Paths = append(result.Paths, path)
				result.Invalidated += n
				cacheInvalidations.WithLabelValues("path").Add(float64(n))
			}
			for _, tag := range req.Tags {
				if tag = strings.TrimSpace(tag); tag == "" {
					continue
				}
				n, err := h.cache.store.InvalidateTag(r.Context(), tag)
				if err != nil {
					h.responder.WriteError(w, errs.NewInternalErrorWithCause("could not revalidate tag "+tag, err))
					return
				}
				result.Tags = append(result.Tags, tag)
				result.Invalidated += n
				cacheInvalidations.WithLabelValues("tag").Add(float64(n))
			}
		}

		h.logger.Info().Strs("paths", result.Paths).Strs("tags", result.Tags).Int("invalidated", result.Invalidated).Msg("Revalidated")
		h.responder.WriteJSON(w, http.StatusOK, revalidateResponse{
			Success:     true,
			Revalidated: true,
			Now:         h.now().UnixMilli(),
			Data:        result,
			Message:     "Revalidated",
		})
	}
}
