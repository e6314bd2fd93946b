package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes mounts the public reads (cached), the auth endpoints and the
// session protected mutations under /api.
func setupRoutes(r chi.Router, handlers *routeHandlers, sessions sessionMiddleware, rc responseCache) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.With(rc.middleware([]string{"id", "category", "status"}, tagProjects)).Get("/projects", handlers.projectHandler.getProjects())
		r.With(rc.middleware([]string{"id", "status"}, tagCertificates)).Get("/certificates", handlers.certificateHandler.getCertificates())
		r.With(rc.middleware([]string{"id"}, tagTechStacks)).Get("/techstacks", handlers.techStackHandler.getTechStacks())
		r.With(rc.middleware([]string{"id"}, tagWorkExperiences)).Get("/work-experiences", handlers.workExperienceHandler.getWorkExperiences())
		r.With(rc.middleware([]string{"id", "all"}, tagAbout)).Get("/about", handlers.aboutHandler.getAbout())
		r.With(rc.middleware([]string{"id"}, tagEducations)).Get("/educations", handlers.educationHandler.getEducations())
		r.With(rc.middleware(nil,
			tagPortfolio, tagAbout, tagTechStacks, tagWorkExperiences, tagProjects, tagCertificates, tagEducations,
		)).Get("/portfolio", handlers.portfolioHandler.getPortfolio())

		// Shared secret
		r.Post("/revalidate", handlers.revalidateHandler.revalidate())

		// Credentials
		r.Post("/auth/login", handlers.authHandler.login())
		r.Post("/auth/logout", handlers.authHandler.logout())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(sessions.authenticate)

			r.Get("/auth/session", handlers.authHandler.session())

			// Project Handler endpoints
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects", handlers.projectHandler.updateProject())
			r.Patch("/projects", handlers.projectHandler.patchProjectStatus())
			r.Delete("/projects", handlers.projectHandler.deleteProject())

			// Certificate Handler endpoints
			r.Post("/certificates", handlers.certificateHandler.createCertificate())
			r.Put("/certificates", handlers.certificateHandler.updateCertificate())
			r.Patch("/certificates", handlers.certificateHandler.patchCertificateStatus())
			r.Delete("/certificates", handlers.certificateHandler.deleteCertificate())

			// Tech Stack Handler endpoints
			r.Post("/techstacks", handlers.techStackHandler.createTechStack())
			r.Put("/techstacks", handlers.techStackHandler.updateTechStack())
			r.Delete("/techstacks", handlers.techStackHandler.deleteTechStack())

			// Work Experience Handler endpoints
			r.Post("/work-experiences", handlers.workExperienceHandler.createWorkExperience())
			r.Put("/work-experiences", handlers.workExperienceHandler.updateWorkExperience())
			r.Delete("/work-experiences", handlers.workExperienceHandler.deleteWorkExperience())

			// About Handler endpoints
			r.Post("/about", handlers.aboutHandler.createAbout())
			r.Put("/about", handlers.aboutHandler.updateAbout())
		})
	})
}
