package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/user-management/internal/audit"
	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/formfield"
	"github.com/frahmantamala/user-management/internal/rbac"
	"github.com/frahmantamala/user-management/internal/transport/middleware"
	"github.com/frahmantamala/user-management/internal/user"
	"github.com/go-chi/chi"
)

const (
	PermManageUsers = "manage_users"
	PermDeleteUsers = "user:delete"
	PermViewLogs    = "view_logs"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string, authHandler *auth.Handler, authz *auth.RBACAuthorization, userHandler *user.Handler, rbacHandler *rbac.Handler, auditHandler *audit.Handler, formFieldHandler *formfield.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Instrument)

	// Prometheus scrape endpoint at root (outside API prefix)
	router.Handle("/metrics", middleware.MetricsHandler())

	// Mount API under /api/v1
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Registration form definition (no auth required)
		if formFieldHandler != nil {
			r.Get("/form-fields", formFieldHandler.ListActiveFields)
		}

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if userHandler != nil {
			// Public registration and reset flow
			r.Post("/users", userHandler.Register)
			r.Route("/password-reset", func(sr chi.Router) {
				sr.Post("/request", userHandler.RequestPasswordReset)
				sr.Post("/confirm", userHandler.ConfirmPasswordReset)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if userHandler != nil {
					// Current user
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Get("/users/me/permissions", userHandler.GetMyPermissions)
					pr.Post("/users/me/consent", userHandler.SetConsent)

					// Removal routes with permission protection
					pr.Group(func(mr chi.Router) {
						mr.Use(authz.RequirePermission(PermDeleteUsers))
						mr.Delete("/users/{id}", userHandler.Delete)            // DELETE /users/:id
						mr.Post("/users/{id}/anonymize", userHandler.Anonymize) // POST /users/:id/anonymize
					})
				}

				// Role assignment (requires manage_users permission)
				if rbacHandler != nil {
					pr.Group(func(mr chi.Router) {
						mr.Use(authz.RequirePermission(PermManageUsers))
						mr.Put("/users/{id}/roles", rbacHandler.UpdateUserRoles) // PUT /users/:id/roles
					})
				}

				// Audit trail (requires view_logs permission)
				if auditHandler != nil {
					pr.Group(func(mr chi.Router) {
						mr.Use(authz.RequirePermission(PermViewLogs))
						mr.Get("/admin/audit-logs", auditHandler.ListLogs)
					})
				}
			})
		}
	})
}
