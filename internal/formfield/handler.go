package formfield

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Repo RepositoryAPI
}

func NewHandler(repo RepositoryAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Repo:        repo,
	}
}

// ListActiveFields exposes the registration form definition so clients can
// render it without hardcoding field names.
func (h *Handler) ListActiveFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.Repo.GetActiveFields(r.Context())
	if err != nil {
		h.Logger.Error("failed to load form fields", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if fields == nil {
		fields = []*Field{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
}
