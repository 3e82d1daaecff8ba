package auth

import (
	"log/slog"
	"net/http"
)

type RBACAuthorization struct {
	service ServiceAPI
	logger  *slog.Logger
}

func NewRBACAuthorization(service ServiceAPI, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		service: service,
		logger:  logger,
	}
}

// RequirePermission guards a route behind a single permission. It expects an
// authenticated user already placed in context by the auth middleware.
func (ra *RBACAuthorization) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			err := ra.service.Authorize(r.Context(), user.ID, permission)
			if err == ErrForbidden {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed",
					"error", err,
					"user_id", user.ID,
					"permission", permission)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
