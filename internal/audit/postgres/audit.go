package postgres

import (
	"context"

	"github.com/frahmantamala/user-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	row := &auditDatamodel.AuditLog{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		Timestamp: entry.Timestamp,
		IPAddress: entry.IPAddress,
		Details:   entry.Details,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *AuditRepository) ListAll(ctx context.Context) ([]*audit.Entry, error) {
	var rows []*auditDatamodel.AuditLog
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &audit.Entry{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    audit.Action(row.Action),
			Timestamp: row.Timestamp,
			IPAddress: row.IPAddress,
			Details:   row.Details,
		})
	}
	return entries, nil
}
