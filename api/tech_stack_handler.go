package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const techStackFolder = "techstacks"

type techStackHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      techStackStore
	media     *media.Store
	cache     responseCache
}

func newTechStackHandler(repo techStackStore, mediaStore *media.Store, cache responseCache, notifier notify.Notifier) techStackHandler {
	logger := log.With().Str("handlerName", "techStackHandler").Logger()

	return techStackHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
		media:     mediaStore,
		cache:     cache,
	}
}

type techStackInput struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description"`
}

func (h techStackHandler) getTechStacks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			techStack, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "tech stack", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, techStack, "Tech stack retrieved")
			return
		}

		techStacks, err := h.repo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "tech stacks", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, techStacks, "Tech stacks retrieved")
	}
}

func (h techStackHandler) createTechStack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		in := techStackInput{Name: p.get("name"), Description: p.get("description")}
		if err := validateStruct(in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		photo, err := uploadPhoto(r.Context(), h.media, p, techStackFolder)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		techStack := &models.TechStack{Name: in.Name, Description: in.Description, Photo: photo}
		if err := h.repo.Add(r.Context(), techStack); err != nil {
			h.media.Destroy(r.Context(), photoURL(photo))
			h.responder.WriteError(w, errs.NewDatabaseError("create", "tech stack", err))
			return
		}

		h.cache.invalidate(r.Context(), tagTechStacks)
		h.responder.WriteData(w, http.StatusCreated, techStack, "Tech stack created")
	}
}

func (h techStackHandler) updateTechStack() http.HandlerFunc {
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

		name, description := p.optional("name"), p.optional("description")
		photo := newPhotoUpdate(h.media, p)

		if name != nil && *name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if name == nil && description == nil && !photo.requested() {
			h.responder.WriteError(w, errs.NewNothingToUpdateError())
			return
		}

		if _, err := h.repo.FindByID(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "tech stack", err))
			return
		}
		if err := photo.stage(r.Context(), techStackFolder); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.repo.Update(r.Context(), id, func(row *models.TechStack) error {
			changed := assign(&row.Name, name)
			changed = assign(&row.Description, description) || changed
			changed = photo.apply(&row.Photo) || changed
			if !changed {
				return errs.NewNothingToUpdateError()
			}
			return nil
		})
		photo.finish(r.Context(), err == nil)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "tech stack", err))
			return
		}

		h.cache.invalidate(r.Context(), tagTechStacks)
		h.responder.WriteData(w, http.StatusOK, updated, "Tech stack updated")
	}
}

func (h techStackHandler) deleteTechStack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		techStack, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "tech stack", err))
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "tech stack", err))
			return
		}
		h.media.Destroy(r.Context(), photoURL(techStack.Photo))

		h.cache.invalidate(r.Context(), tagTechStacks)
		h.responder.WriteData(w, http.StatusOK, deletedResponse{ID: id}, "Tech stack deleted")
	}
}
