package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
	"github.com/go-chi/chi"
)

type UpdateRolesDTO struct {
	Roles []string `json:"roles"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// UpdateUserRoles replaces the target user's role set. The new set only takes
// effect when every named role exists; otherwise the previous set stands.
func (h *Handler) UpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateRolesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := chi.URLParam(r, "id")
	if err := h.Service.SetRoles(r.Context(), current.ID, userID, dto.Roles); err != nil {
		h.writeDomainError(w, err)
		return
	}

	roles, err := h.Service.ListUserRoles(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"roles":   names,
	})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
		return
	}
	h.Logger.Error("unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
