package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// educationHandler is read only; rows are seeded in the database.
type educationHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      educationStore
}

func newEducationHandler(repo educationStore, notifier notify.Notifier) educationHandler {
	logger := log.With().Str("handlerName", "educationHandler").Logger()

	return educationHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
	}
}

// getEducations lists every row, or one row for ?id=.
func (h educationHandler) getEducations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			education, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "education", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, education, "Education retrieved")
			return
		}

		educations, err := h.repo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "educations", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, educations, "Educations retrieved")
	}
}
