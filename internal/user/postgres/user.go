package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/auth"
	rbacDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository is the identity store. It also serves the auth module's
// credential lookups so login does not need its own storage adapter.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)
var _ auth.CredentialRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).Create(user.ToDataModel(u)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return translateDuplicate(err)
	}
	return err
}

// translateDuplicate maps a unique-constraint violation to the documented
// Conflict error. The constraint name tells the columns apart; when the
// driver does not expose it, the generic username conflict is returned.
func translateDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "email") {
		return internal.ErrEmailTaken
	}
	return internal.ErrUsernameTaken
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	return r.getOne(ctx, "reset_token = ?", token)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) Anonymize(ctx context.Context, id, placeholderUsername, placeholderEmail string) error {
	// single UPDATE: all PII columns flip together or not at all
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"username":            placeholderUsername,
			"email":               placeholderEmail,
			"hashed_password":     "",
			"is_active":           false,
			"consent_lgpd":        false,
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error
}

func (r *UserRepository) SetConsent(ctx context.Context, id string, consent bool) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("consent_lgpd", consent).Error
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":         token,
			"reset_token_expires": expires,
		}).Error
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error
}

func (r *UserRepository) UpdatePasswordAndClearResetToken(ctx context.Context, id, hashedPassword string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"hashed_password":     hashedPassword,
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error
}

// GetCredentialsByUsername serves the login path.
func (r *UserRepository) GetCredentialsByUsername(ctx context.Context, username string) (*auth.Credentials, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return &auth.Credentials{
		UserID:         u.ID,
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
	}, nil
}

// GetUserForToken resolves a token subject to the live account.
func (r *UserRepository) GetUserForToken(ctx context.Context, username string) (*auth.CurrentUser, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return &auth.CurrentUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
	}, nil
}
