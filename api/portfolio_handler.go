package api

import (
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// portfolioHandler serves everything the public site renders in one response.
type portfolioHandler struct {
	responder    Responder
	logger       zerolog.Logger
	about        aboutStore
	techStacks   techStackStore
	experiences  workExperienceStore
	projects     projectStore
	certificates certificateStore
	educations   educationStore
}

type portfolioResponse struct {
	About           *models.About            `json:"about"`
	TechStacks      []*models.TechStack      `json:"techstacks"`
	WorkExperiences []*models.WorkExperience `json:"work_experiences"`
	Projects        []*models.Project        `json:"projects"`
	Certificates    []*models.Certificate    `json:"certificates"`
	Educations      []*models.Education      `json:"educations"`
}

func newPortfolioHandler(
	about aboutStore,
	techStacks techStackStore,
	experiences workExperienceStore,
	projects projectStore,
	certificates certificateStore,
	educations educationStore,
	notifier notify.Notifier,
) portfolioHandler {
	logger := log.With().Str("handlerName", "portfolioHandler").Logger()

	return portfolioHandler{
		responder:    NewResponder(logger, notifier),
		logger:       logger,
		about:        about,
		techStacks:   techStacks,
		experiences:  experiences,
		projects:     projects,
		certificates: certificates,
		educations:   educations,
	}
}

// getPortfolio loads every section concurrently. Only published projects and
// certificates are included; a missing about row yields null.
func (h portfolioHandler) getPortfolio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res portfolioResponse
		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() error {
			about, err := h.about.FindCanonical(ctx)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return errs.NewDatabaseError("find", "about", err)
			}
			res.About = about
			return nil
		})
		g.Go(func() (err error) {
			if res.TechStacks, err = h.techStacks.FindAll(ctx); err != nil {
				return errs.NewDatabaseError("find", "tech stacks", err)
			}
			return nil
		})
		g.Go(func() (err error) {
			if res.WorkExperiences, err = h.experiences.FindAll(ctx); err != nil {
				return errs.NewDatabaseError("find", "work experiences", err)
			}
			return nil
		})
		g.Go(func() (err error) {
			filter := database.ProjectFilter{Status: models.StatusPublished}
			if res.Projects, err = h.projects.FindAll(ctx, filter); err != nil {
				return errs.NewDatabaseError("find", "projects", err)
			}
			return nil
		})
		g.Go(func() (err error) {
			if res.Certificates, err = h.certificates.FindAll(ctx, models.StatusPublished); err != nil {
				return errs.NewDatabaseError("find", "certificates", err)
			}
			return nil
		})
		g.Go(func() (err error) {
			if res.Educations, err = h.educations.FindAll(ctx); err != nil {
				return errs.NewDatabaseError("find", "educations", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, res, "Portfolio retrieved")
	}
}
