package audit

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Recorder RecorderAPI
}

func NewHandler(rec RecorderAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Recorder:    rec,
	}
}

// ListLogs returns the full trail, newest first.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Recorder.ListAll(r.Context())
	if err != nil {
		h.Logger.Error("failed to list audit logs", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if entries == nil {
		entries = []*Entry{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": entries})
}
