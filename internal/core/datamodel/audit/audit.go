package audit

import "time"

// AuditLog is an append-only record of a security-relevant event. UserID is
// nullable: unauthenticated events (like failed logins) have no actor, and
// the FK is SET NULL on user deletion so the history outlives the account.
type AuditLog struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	UserID    *string   `gorm:"column:user_id;size:36;index"`
	Action    string    `gorm:"column:action;size:50;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
	IPAddress *string   `gorm:"column:ip_address;size:45"`
	Details   *string   `gorm:"column:details;type:text"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
