package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder appends audit entries. Writes are best-effort: the entry is
// written outside the primary mutation's transaction, after it commits, and
// a storage failure degrades observability without failing the operation the
// entry describes. Callers therefore do not need to check the returned
// error; it exists for tests and for callers that want to surface the loss.
type Recorder struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, actorID *string, action Action, ipAddress, details *string) error {
	entry := &Entry{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Action:    action,
		Timestamp: r.now().UTC(),
		IPAddress: ipAddress,
		Details:   details,
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("audit write failed",
			"action", string(action),
			"error", err)
		return err
	}
	return nil
}

func (r *Recorder) ListAll(ctx context.Context) ([]*Entry, error) {
	return r.repo.ListAll(ctx)
}
