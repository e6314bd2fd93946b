package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const projectFolder = "projects"

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      projectStore
	media     *media.Store
	cache     responseCache
}

func newProjectHandler(repo projectStore, mediaStore *media.Store, cache responseCache, notifier notify.Notifier) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger, notifier),
		logger:    logger,
		repo:      repo,
		media:     mediaStore,
		cache:     cache,
	}
}

type projectInput struct {
	Judul       string `form:"judul" validate:"required"`
	Category    string `form:"category" validate:"required"`
	Github      string `form:"github"`
	Tech        string `form:"tech"`
	Link        string `form:"link"`
	Description string `form:"description"`
	Status      string `form:"status"`
}

func parseProjectStatus(raw string) (models.Status, error) {
	status, ok := models.ParseStatus(raw, models.ProjectStatuses)
	if !ok {
		return "", errs.NewInvalidStatusError(raw, models.StatusNames(models.ProjectStatuses))
	}
	return status, nil
}

// getProjects returns one project for ?id=, otherwise the filtered list.
// Filters: category (slugified before matching) and status.
func (h projectHandler) getProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Has("id") {
			id, err := queryID(r, "id")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			project, err := h.repo.FindByID(r.Context(), id)
			if err != nil {
				h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, project, "Project retrieved")
			return
		}

		var filter database.ProjectFilter
		if raw := q.Get("category"); raw != "" {
			slug, err := categorySlug(raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			filter.CategorySlug = slug
		}
		if raw := q.Get("status"); raw != "" {
			status, err := parseProjectStatus(raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			filter.Status = status
		}

		projects, err := h.repo.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, projects, "Projects retrieved")
	}
}

func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePayload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer p.Close()

		in := projectInput{
			Judul:       p.get("judul"),
			Category:    p.get("category"),
			Github:      p.get("github"),
			Tech:        p.get("tech"),
			Link:        p.get("link"),
			Description: p.get("description"),
			Status:      p.get("status"),
		}
		if err := validateStruct(in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		slug, err := categorySlug(in.Category)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status := models.DefaultStatus
		if in.Status != "" {
			if status, err = parseProjectStatus(in.Status); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		photo, err := uploadPhoto(r.Context(), h.media, p, projectFolder)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := &models.Project{
			Judul:        in.Judul,
			Category:     in.Category,
			CategorySlug: slug,
			Github:       in.Github,
			Photo:        photo,
			Tech:         in.Tech,
			Link:         in.Link,
			Description:  in.Description,
			Status:       status,
		}
		if err := h.repo.Add(r.Context(), project); err != nil {
			h.media.Destroy(r.Context(), photoURL(photo))
			h.responder.WriteError(w, errs.NewDatabaseError("create", "project", err))
			return
		}

		h.cache.invalidate(r.Context(), tagProjects)
		h.responder.WriteData(w, http.StatusCreated, project, "Project created")
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
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

		judul, category := p.optional("judul"), p.optional("category")
		github, tech, link, description := p.optional("github"), p.optional("tech"), p.optional("link"), p.optional("description")
		photo := newPhotoUpdate(h.media, p)

		if judul != nil && *judul == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("judul"))
			return
		}
		var slug string
		if category != nil {
			if *category == "" {
				h.responder.WriteError(w, errs.NewMissingRequiredFieldError("category"))
				return
			}
			if slug, err = categorySlug(*category); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		var status *models.Status
		if raw := p.optional("status"); raw != nil && *raw != "" {
			s, err := parseProjectStatus(*raw)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			status = &s
		}
		if judul == nil && category == nil && github == nil && tech == nil && link == nil &&
			description == nil && status == nil && !photo.requested() {
			h.responder.WriteError(w, errs.NewNothingToUpdateError())
			return
		}

		if _, err := h.repo.FindByID(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}
		if err := photo.stage(r.Context(), projectFolder); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.repo.Update(r.Context(), id, func(row *models.Project) error {
			changed := assign(&row.Judul, judul)
			if assign(&row.Category, category) {
				row.CategorySlug = slug
				changed = true
			}
			changed = assign(&row.Github, github) || changed
			changed = assign(&row.Tech, tech) || changed
			changed = assign(&row.Link, link) || changed
			changed = assign(&row.Description, description) || changed
			if status != nil && row.Status != *status {
				row.Status = *status
				changed = true
			}
			changed = photo.apply(&row.Photo) || changed
			if !changed {
				return errs.NewNothingToUpdateError()
			}
			return nil
		})
		photo.finish(r.Context(), err == nil)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "project", err))
			return
		}

		h.cache.invalidate(r.Context(), tagProjects)
		h.responder.WriteData(w, http.StatusOK, updated, "Project updated")
	}
}

// patchProjectStatus accepts the id as ?id= or ?statuschange=.
func (h projectHandler) patchProjectStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id", "statuschange")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		raw, err := decodeStatus(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		status, err := parseProjectStatus(raw)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.repo.UpdateStatus(r.Context(), id, status)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update status", "project", err))
			return
		}

		h.cache.invalidate(r.Context(), tagProjects)
		h.responder.WriteData(w, http.StatusOK, models.ProjectStatusView{
			ID:     project.ID,
			Judul:  project.Judul,
			Status: project.Status,
		}, "Project status updated")
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := queryID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "project", err))
			return
		}
		h.media.Destroy(r.Context(), photoURL(project.Photo))

		h.cache.invalidate(r.Context(), tagProjects)
		h.responder.WriteData(w, http.StatusOK, deletedResponse{ID: id}, "Project deleted")
	}
}
