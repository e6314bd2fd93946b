package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler        projectHandler
	certificateHandler    certificateHandler
	techStackHandler      techStackHandler
	workExperienceHandler workExperienceHandler
	aboutHandler          aboutHandler
	educationHandler      educationHandler
	portfolioHandler      portfolioHandler
	revalidateHandler     revalidateHandler
	authHandler           authHandler
	healthHandler         healthHandler
}

// The stores below are satisfied by the database repos and by in-memory fakes in tests.

type projectStore interface {
	FindAll(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Add(ctx context.Context, row *models.Project) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.Project) error) (*models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type certificateStore interface {
	FindAll(ctx context.Context, status models.Status) ([]*models.Certificate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	Add(ctx context.Context, row *models.Certificate) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.Certificate) error) (*models.Certificate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Certificate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type techStackStore interface {
	FindAll(ctx context.Context) ([]*models.TechStack, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TechStack, error)
	Add(ctx context.Context, row *models.TechStack) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.TechStack) error) (*models.TechStack, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type workExperienceStore interface {
	FindAll(ctx context.Context) ([]*models.WorkExperience, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkExperience, error)
	Add(ctx context.Context, row *models.WorkExperience) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.WorkExperience) (bool, error)) (*models.WorkExperience, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type aboutStore interface {
	FindCanonical(ctx context.Context) (*models.About, error)
	FindAll(ctx context.Context) ([]*models.About, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.About, error)
	Add(ctx context.Context, row *models.About) error
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.About) error) (*models.About, error)
}

type educationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Education, error)
	FindAll(ctx context.Context) ([]*models.Education, error)
}

// deletedResponse is the data of every successful DELETE
type deletedResponse struct {
	ID uuid.UUID `json:"id"`
}
