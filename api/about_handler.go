package api

import (
	"net/http"
	"strconv"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type aboutHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      aboutStore
	cache     responseCache
}

func newAboutHandler(repo aboutStore, cache responseCache, notifier notify.Notifier) aboutHandler {
	logger := log.With().Str("handlerName", "aboutHandler").Logger()

	return aboutHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
		cache:     cache,
	}
}

type aboutInput struct {
	About   string `form:"about" validate:"required"`
	WhatIDo string `form:"what_i_do"`
	Role    string `form:"role"`
}

// getAbout returns the canonical (earliest) row; ?all=true lists every row and
// ?id= fetches one.
func (h aboutHandler) getAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			about, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "about", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, about, "About retrieved")
			return
		}

		if all, _ := strconv.ParseBool(q.Get("all")); all {
			rows, err := h.repo.FindAll(r.Context())
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "about", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, rows, "About retrieved")
			return
		}

		about, err := h.repo.FindCanonical(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "about", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, about, "About retrieved")
	}
}

func (h aboutHandler) createAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		in := aboutInput{About: p.get("about"), WhatIDo: p.get("what_i_do"), Role: p.get("role")}
		if err := validateStruct(in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		about := &models.About{About: in.About, WhatIDo: in.WhatIDo, Role: in.Role}
		if err := h.repo.Add(r.Context(), about); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", "about", err))
			return
		}

		h.cache.invalidate(r.Context(), tagAbout)
		h.responder.WriteData(w, http.StatusCreated, about, "About created")
	}
}

func (h aboutHandler) updateAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		text, whatIDo, role := p.optional("about"), p.optional("what_i_do"), p.optional("role")
		if text != nil && *text == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("about"))
			return
		}
		if text == nil && whatIDo == nil && role == nil {
			h.responder.WriteError(w, errs.NewNothingToUpdateError())
			return
		}

		updated, err := h.repo.Update(r.Context(), id, func(row *models.About) error {
			changed := assign(&row.About, text)
			changed = assign(&row.WhatIDo, whatIDo) || changed
			changed = assign(&row.Role, role) || changed
			if !changed {
				return errs.NewNothingToUpdateError()
			}
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "about", err))
			return
		}

		h.cache.invalidate(r.Context(), tagAbout)
		h.responder.WriteData(w, http.StatusOK, updated, "About updated")
	}
}
