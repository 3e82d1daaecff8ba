package user

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	HashedPassword    string     `json:"-"`
	IsActive          bool       `json:"is_active"`
	ConsentLGPD       bool       `json:"consent_lgpd"`
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RepositoryAPI is the identity store. Lookups return (nil, nil) when the
// user is absent; absence is an outcome the caller branches on, not an
// error.
type RepositoryAPI interface {
	// Create persists the user. The unique constraints on username and
	// email are the final arbiter of uniqueness; a constraint violation is
	// returned as the documented Conflict error even when the service-level
	// pre-check passed.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Delete hard-removes the user and its role grants in one transaction.
	// Audit rows keep their history via the SET NULL foreign key.
	Delete(ctx context.Context, id string) error
	// Anonymize scrubs all PII columns in a single UPDATE so no
	// partially-anonymized row is ever observable.
	Anonymize(ctx context.Context, id, placeholderUsername, placeholderEmail string) error
	SetConsent(ctx context.Context, id string, consent bool) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	// UpdatePasswordAndClearResetToken applies both changes in one
	// transaction so a used ticket can never remain valid.
	UpdatePasswordAndClearResetToken(ctx context.Context, id, hashedPassword string) error
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		HashedPassword:    u.HashedPassword,
		IsActive:          u.IsActive,
		ConsentLGPD:       u.ConsentLGPD,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		HashedPassword:    u.HashedPassword,
		IsActive:          u.IsActive,
		ConsentLGPD:       u.ConsentLGPD,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt,
	}
}
