package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/cache"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(settings config.Settings, db database.Database, mediaStore *media.Store, cacheStore cache.Store, notifier notify.Notifier) (Server, error) {
	sessions, err := auth.NewSessions(settings.SessionSecret, settings.SessionIdle, settings.SessionMaxAge)
	if err != nil {
		return Server{}, err
	}

	deps := dependencies{
		projects:     db.ProjectRepo(),
		certificates: db.CertificateRepo(),
		techStacks:   db.TechStackRepo(),
		experiences:  db.WorkExperienceRepo(),
		about:        db.AboutRepo(),
		educations:   db.EducationRepo(),
		users:        db.UserRepo(),
		media:        mediaStore,
		cache:        cacheStore,
		sessions:     sessions,
		notifier:     notifier,
		ping:         db.Ping,
	}

	// Bind to 0.0.0.0 for external access
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port)
	startupTime := time.Now()

	server := &http.Server{
		Addr:         address,
		Handler:      newRouter(settings, deps, startupTime),
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
		IdleTimeout:  settings.IdleTimeout,
	}

	return Server{server, startupTime}, nil
}

func newRouter(settings config.Settings, deps dependencies, startupTime time.Time) *chi.Mux {
	chiRouter := chi.NewRouter()
	if settings.TrustedProxy {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware)
	chiRouter.Use(metricsMiddleware)

	chiRouter.Use(CORSCheckMiddleware(settings.AcceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   settings.AcceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{auth.RefreshHeader, "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rc := newResponseCache(deps.cache, settings.CacheTTL)
	handlers := initializeHandlers(settings, deps, rc, startupTime)
	sessionMiddleware := newSessionMiddleware(deps.sessions, settings.CookieSecure)

	setupRoutes(chiRouter, handlers, sessionMiddleware, rc)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
