package audit

import (
	"context"
	"time"
)

// Action tags form a fixed vocabulary. Existing tags are never renamed, only
// new ones added, so stored history stays queryable.
type Action string

const (
	ActionLoginSuccess    Action = "login_success"
	ActionLoginFailed     Action = "login_failed"
	ActionLoginInactive   Action = "login_inactive"
	ActionUserCreated     Action = "user_created"
	ActionUserDeleted     Action = "user_deleted"
	ActionUserAnonymized  Action = "user_anonymized"
	ActionRolesUpdated    Action = "roles_updated"
	ActionConsentGiven    Action = "consent_given"
	ActionConsentRevoked  Action = "consent_revoked"
	ActionResetRequested  Action = "password_reset_requested"
	ActionResetConfirmed  Action = "password_reset_confirmed"
)

// Entry is one immutable audit record. UserID is nil for unauthenticated
// events such as failed logins.
type Entry struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress *string   `json:"ip_address,omitempty"`
	Details   *string   `json:"details,omitempty"`
}

type RepositoryAPI interface {
	Append(ctx context.Context, entry *Entry) error
	ListAll(ctx context.Context) ([]*Entry, error)
}

type RecorderAPI interface {
	Record(ctx context.Context, actorID *string, action Action, ipAddress, details *string) error
	ListAll(ctx context.Context) ([]*Entry, error)
}
