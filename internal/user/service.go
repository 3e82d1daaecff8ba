package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/audit"
	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/email"
	"github.com/frahmantamala/user-management/internal/formfield"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO, ipAddress string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, actorID, userID, ipAddress string) error
	Anonymize(ctx context.Context, actorID, userID, ipAddress string) error
	SetConsent(ctx context.Context, userID string, consent bool, ipAddress string) error
	RequestPasswordReset(ctx context.Context, dto ResetRequestDTO, ipAddress string) error
	ConfirmPasswordReset(ctx context.Context, dto ResetConfirmDTO, ipAddress string) error
}

type Service struct {
	repo      RepositoryAPI
	fieldRepo formfield.RepositoryAPI
	hasher    *auth.PasswordHasher
	mailer    email.Mailer
	audit     audit.RecorderAPI
	logger    *slog.Logger
	resetTTL  time.Duration
	baseURL   string
	now       func() time.Time
}

func NewService(repo RepositoryAPI, fieldRepo formfield.RepositoryAPI, hasher *auth.PasswordHasher, mailer email.Mailer, recorder audit.RecorderAPI, logger *slog.Logger, resetTTL time.Duration, baseURL string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		fieldRepo: fieldRepo,
		hasher:    hasher,
		mailer:    mailer,
		audit:     recorder,
		logger:    logger,
		resetTTL:  resetTTL,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// Register creates a new account. Username and email uniqueness is
// pre-checked for a friendly error, but the storage constraint remains the
// final arbiter: a concurrent insert that slips past the check still comes
// back as Conflict.
func (s *Service) Register(ctx context.Context, dto RegisterDTO, ipAddress string) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	fields, err := s.fieldRepo.GetActiveFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("load form fields: %w", err)
	}
	if fieldErrs := formfield.Validate(dto.Attributes, fields); len(fieldErrs) > 0 {
		return nil, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: fieldErrs})
	}

	if existing, err := s.repo.GetByUsername(ctx, dto.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, internal.ErrUsernameTaken
	}
	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(ctx, dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:             uuid.NewString(),
		Username:       dto.Username,
		Email:          dto.Email,
		HashedPassword: hash,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &u.ID, audit.ActionUserCreated, ipAddress, fmt.Sprintf("user %s registered", u.Username))
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete hard-removes the account. Audit entries referencing it keep their
// history through the SET NULL foreign key.
func (s *Service) Delete(ctx context.Context, actorID, userID, ipAddress string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.recordAudit(ctx, &actorID, audit.ActionUserDeleted, ipAddress, fmt.Sprintf("user %s deleted", u.Username))
	return nil
}

// Anonymize irreversibly scrubs the account's PII while keeping the row for
// audit referential integrity. The placeholder identity is derived from the
// id, so the operation is deterministic and collision-free against the
// unique constraints. Clearing the password hash locks the account out of
// credential login permanently.
func (s *Service) Anonymize(ctx context.Context, actorID, userID, ipAddress string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	placeholderUsername := "anonymous-" + userID[:8]
	placeholderEmail := userID + "@anonymized.invalid"

	if err := s.repo.Anonymize(ctx, userID, placeholderUsername, placeholderEmail); err != nil {
		return fmt.Errorf("anonymize user: %w", err)
	}

	s.recordAudit(ctx, &actorID, audit.ActionUserAnonymized, ipAddress, fmt.Sprintf("user %s anonymized", userID))
	return nil
}

func (s *Service) SetConsent(ctx context.Context, userID string, consent bool, ipAddress string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.SetConsent(ctx, userID, consent); err != nil {
		return fmt.Errorf("set consent: %w", err)
	}

	action := audit.ActionConsentRevoked
	if consent {
		action = audit.ActionConsentGiven
	}
	s.recordAudit(ctx, &userID, action, ipAddress, "")
	return nil
}

// RequestPasswordReset stores a fresh single-use ticket and mails it out.
// The response is identical whether or not the address exists, so the
// endpoint cannot be used to probe for accounts. Mail delivery is
// fire-and-forget; a delivery failure is logged and the ticket stays valid.
func (s *Service) RequestPasswordReset(ctx context.Context, dto ResetRequestDTO, ipAddress string) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if u == nil || !u.IsActive {
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expires := s.now().UTC().Add(s.resetTTL)
	if err := s.repo.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.recordAudit(ctx, &u.ID, audit.ActionResetRequested, ipAddress, "")

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body := fmt.Sprintf("Use the link below to reset your password:\n\n%s/reset-password?token=%s\n\nThe link expires in %s.",
			s.baseURL, token, s.resetTTL)
		if err := s.mailer.Send(sendCtx, u.Email, "Password reset", body); err != nil {
			s.logger.Error("reset email delivery failed", "user_id", u.ID, "error", err)
		}
	}()

	return nil
}

// ConfirmPasswordReset redeems a ticket. A token that is absent or past its
// expiry behaves identically: InvalidOrExpiredToken, never a silent
// extension. The password update and the token clear commit together.
func (s *Service) ConfirmPasswordReset(ctx context.Context, dto ResetConfirmDTO, ipAddress string) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByResetToken(ctx, dto.Token)
	if err != nil {
		return fmt.Errorf("lookup reset token: %w", err)
	}
	if u == nil || u.ResetTokenExpires == nil || !u.ResetTokenExpires.After(s.now()) {
		return internal.ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(ctx, dto.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePasswordAndClearResetToken(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.recordAudit(ctx, &u.ID, audit.ActionResetConfirmed, ipAddress, "")
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID *string, action audit.Action, ipAddress, detail string) {
	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}
	var details *string
	if detail != "" {
		details = &detail
	}
	s.audit.Record(ctx, actorID, action, ip, details)
}

func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
