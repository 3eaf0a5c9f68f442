package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/residentdesk/residentdesk/internal/api/handler"
	"github.com/residentdesk/residentdesk/internal/api/middleware"
	"github.com/residentdesk/residentdesk/internal/issue"
	"github.com/residentdesk/residentdesk/internal/profile"
	"github.com/residentdesk/residentdesk/internal/resident"
	"github.com/residentdesk/residentdesk/internal/session"
)

// AuthService is the part of *auth.Service the API uses.
type AuthService interface {
	handler.Authenticator
	handler.AccountCreator
	middleware.TokenVerifier
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte
	AuthService AuthService
	Profiles    profile.Repository
	Residents   resident.Repository
	Issues      issue.Repository
	GateOptions []session.Option
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler, err := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		if err != nil {
			return nil, err
		}
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.AuthService == nil || deps.Profiles == nil {
		return r, nil
	}

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Profiles, deps.GateOptions...)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService, deps.Profiles))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)
		r.Patch("/auth/profile", authHandler.UpdateProfile)

		if deps.Residents != nil {
			residentHandler := handler.NewResidentHandler(deps.Residents)
			r.Route("/residents", func(r chi.Router) {
				r.Post("/", residentHandler.Create)
				r.Get("/", residentHandler.List)
				r.Get("/search", residentHandler.Search)
				r.Get("/stats", residentHandler.Stats)
				r.Get("/{id}", residentHandler.GetByID)
				r.Patch("/{id}", residentHandler.Update)
				r.Delete("/{id}", residentHandler.Delete)
			})
		}

		if deps.Issues != nil {
			issueHandler := handler.NewIssueHandler(deps.Issues)
			r.Route("/issues", func(r chi.Router) {
				r.Post("/", issueHandler.Create)
				r.Get("/", issueHandler.List)
				r.Get("/{id}", issueHandler.GetByID)
				r.Patch("/{id}/status", issueHandler.UpdateStatus)
			})
		}

		adminHandler := handler.NewAdminHandler(deps.AuthService, deps.Profiles)
		r.Route("/admins", func(r chi.Router) {
			r.Use(middleware.RequireRole(session.RoleSuperAdmin))
			r.Post("/", adminHandler.Create)
			r.Get("/", adminHandler.List)
		})
	})

	return r, nil
}
