package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type workExperienceHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      workExperienceStore
	cache     responseCache
}

func newWorkExperienceHandler(repo workExperienceStore, cache responseCache, notifier notify.Notifier) workExperienceHandler {
	logger := log.With().Str("handlerName", "workExperienceHandler").Logger()

	return workExperienceHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
		cache:     cache,
	}
}

type workExperienceInput struct {
	Company  string   `form:"company" validate:"required"`
	Position string   `form:"position" validate:"required"`
	Duration string   `form:"duration"`
	Type     string   `form:"type"`
	Jobdesks []string `form:"jobdesks"`
}

func toJobdesks(descriptions []string) []models.Jobdesk {
	jobdesks := make([]models.Jobdesk, 0, len(descriptions))
	for i, d := range descriptions {
		jobdesks = append(jobdesks, models.Jobdesk{Description: d, Position: i})
	}
	return jobdesks
}

func sameJobdesks(current []models.Jobdesk, descriptions []string) bool {
	if len(current) != len(descriptions) {
		return false
	}
	for i := range current {
		if current[i].Description != descriptions[i] {
			return false
		}
	}
	return true
}

func (h workExperienceHandler) getWorkExperiences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			experience, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "work experience", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, experience, "Work experience retrieved")
			return
		}

		experiences, err := h.repo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "work experiences", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, experiences, "Work experiences retrieved")
	}
}

// createWorkExperience takes JSON with a jobdesks array or a form with repeated jobdesks values.
func (h workExperienceHandler) createWorkExperience() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		in := workExperienceInput{
			Company:  p.get("company"),
			Position: p.get("position"),
			Duration: p.get("duration"),
			Type:     p.get("type"),
			Jobdesks: p.list("jobdesks"),
		}
		if err := validateStruct(in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		experience := &models.WorkExperience{
			Company:  in.Company,
			Position: in.Position,
			Duration: in.Duration,
			Type:     in.Type,
			Jobdesks: toJobdesks(in.Jobdesks),
		}
		if err := h.repo.Add(r.Context(), experience); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", "work experience", err))
			return
		}

		h.cache.invalidate(r.Context(), tagWorkExperiences)
		h.responder.WriteData(w, http.StatusCreated, experience, "Work experience created")
	}
}

// updateWorkExperience replaces the whole jobdesk list when jobdesks is sent.
func (h workExperienceHandler) updateWorkExperience() http.HandlerFunc {
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

		company, position := p.optional("company"), p.optional("position")
		duration, kind := p.optional("duration"), p.optional("type")
		var jobdesks []string
		replaceJobdesks := p.has("jobdesks")
		if replaceJobdesks {
			jobdesks = p.list("jobdesks")
		}

		if company != nil && *company == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("company"))
			return
		}
		if position != nil && *position == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("position"))
			return
		}
		if company == nil && position == nil && duration == nil && kind == nil && !replaceJobdesks {
			h.responder.WriteError(w, errs.NewNothingToUpdateError())
			return
		}

		updated, err := h.repo.Update(r.Context(), id, func(row *models.WorkExperience) (bool, error) {
			changed := assign(&row.Company, company)
			changed = assign(&row.Position, position) || changed
			changed = assign(&row.Duration, duration) || changed
			changed = assign(&row.Type, kind) || changed

			replace := replaceJobdesks && !sameJobdesks(row.Jobdesks, jobdesks)
			if replace {
				row.Jobdesks = toJobdesks(jobdesks)
				changed = true
			}
			if !changed {
				return false, errs.NewNothingToUpdateError()
			}
			return replace, nil
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "work experience", err))
			return
		}

		h.cache.invalidate(r.Context(), tagWorkExperiences)
		h.responder.WriteData(w, http.StatusOK, updated, "Work experience updated")
	}
}

func (h workExperienceHandler) deleteWorkExperience() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "work experience", err))
			return
		}

		h.cache.invalidate(r.Context(), tagWorkExperiences)
		h.responder.WriteData(w, http.StatusOK, deletedResponse{ID: id}, "Work experience deleted")
	}
}
