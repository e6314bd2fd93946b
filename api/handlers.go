package api

import (
	"context"
	"time"

	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/cache"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/notify"
)

// dependencies is everything the handlers need from outside the package
type dependencies struct {
	projects     projectStore
	certificates certificateStore
	techStacks   techStackStore
	experiences  workExperienceStore
	about        aboutStore
	educations   educationStore
	users        auth.UserFinder

	media    *media.Store
	cache    cache.Store
	sessions *auth.Sessions
	notifier notify.Notifier
	ping     func(ctx context.Context) error
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(settings config.Settings, deps dependencies, rc responseCache, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler:        newProjectHandler(deps.projects, deps.media, rc, deps.notifier),
		certificateHandler:    newCertificateHandler(deps.certificates, deps.media, rc, deps.notifier),
		techStackHandler:      newTechStackHandler(deps.techStacks, deps.media, rc, deps.notifier),
		workExperienceHandler: newWorkExperienceHandler(deps.experiences, rc, deps.notifier),
		aboutHandler:          newAboutHandler(deps.about, rc, deps.notifier),
		educationHandler:      newEducationHandler(deps.educations, deps.notifier),
		portfolioHandler: newPortfolioHandler(
			deps.about, deps.techStacks, deps.experiences, deps.projects, deps.certificates, deps.educations, deps.notifier,
		),
		revalidateHandler: newRevalidateHandler(settings.RevalidateSecret, rc, deps.notifier),
		authHandler: newAuthHandler(
			auth.NewAuthorizer(deps.users, deps.sessions),
			newIPLimiter(settings.LoginRatePerMinute),
			settings.CookieSecure,
			deps.notifier,
		),
		healthHandler: newHealthHandler(deps.ping, startupTime),
	}
}
