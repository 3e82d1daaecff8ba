package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials is the minimal projection the login path needs from storage.
type Credentials struct {
	UserID         string
	Username       string
	HashedPassword string
	IsActive       bool
}

// CurrentUser is the authenticated principal carried through request context
// after the access token has been validated.
type CurrentUser struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *CurrentUser) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Token is the login response payload.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims represents the signed claim set. Subject carries the username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and validates signed access tokens.
type TokenGenerator interface {
	GenerateAccessToken(username string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// CredentialRepository resolves login credentials. Absence of the user is
// returned as (nil, nil); it is an expected outcome, not an error.
type CredentialRepository interface {
	GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error)
	GetUserForToken(ctx context.Context, username string) (*CurrentUser, error)
}

// PermissionRepository answers graph reachability questions for the
// authorization gate.
type PermissionRepository interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
	GetPermissions(ctx context.Context, userID string) ([]string, error)
}

var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so callers cannot tell the cases apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is the single failure kind for malformed, badly signed
	// and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	ErrUserInactive = errors.New("user is inactive")
	ErrForbidden    = errors.New("insufficient permissions")
)

type ctxKey string

const ContextUserKey ctxKey = "current_user"

func ContextWithUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(ContextUserKey).(*CurrentUser)
	return user, ok && user != nil
}

// JWTTokenGenerator signs HS256 tokens with a process-wide secret injected
// at startup.
type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}
