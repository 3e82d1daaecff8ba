package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/user-management/internal/audit"
	"github.com/golang-jwt/jwt/v5"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, ipAddress string) (Token, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	CurrentUserFromClaims(ctx context.Context, claims *Claims) (*CurrentUser, error)
	Authorize(ctx context.Context, userID, permission string) error
}

// Service authenticates users and gates permission-scoped operations.
type Service struct {
	credRepo CredentialRepository
	permRepo PermissionRepository
	tokenGen TokenGenerator
	hasher   *PasswordHasher
	audit    audit.RecorderAPI
}

func NewService(credRepo CredentialRepository, permRepo PermissionRepository, tokenGen TokenGenerator, hasher *PasswordHasher, recorder audit.RecorderAPI) *Service {
	return &Service{
		credRepo: credRepo,
		permRepo: permRepo,
		tokenGen: tokenGen,
		hasher:   hasher,
		audit:    recorder,
	}
}

func NewJWTTokenGenerator(secret string, accessTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTTL,
	}
}

// Login verifies credentials and issues an access token. Exactly one audit
// entry is written per attempt: login_failed without an actor, or
// login_inactive / login_success bound to the account.
func (s *Service) Login(ctx context.Context, dto LoginDTO, ipAddress string) (Token, error) {
	if err := dto.Validate(); err != nil {
		return Token{}, err
	}

	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	creds, err := s.credRepo.GetCredentialsByUsername(ctx, dto.Username)
	if err != nil {
		return Token{}, fmt.Errorf("lookup credentials: %w", err)
	}

	if creds == nil || !s.hasher.Verify(ctx, creds.HashedPassword, dto.Password) {
		detail := fmt.Sprintf("failed login for username %q", dto.Username)
		s.audit.Record(ctx, nil, audit.ActionLoginFailed, ip, &detail)
		return Token{}, ErrInvalidCredentials
	}

	if !creds.IsActive {
		s.audit.Record(ctx, &creds.UserID, audit.ActionLoginInactive, ip, nil)
		return Token{}, ErrUserInactive
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(creds.Username)
	if err != nil {
		return Token{}, fmt.Errorf("generate access token: %w", err)
	}

	s.audit.Record(ctx, &creds.UserID, audit.ActionLoginSuccess, ip, nil)

	return Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// CurrentUserFromClaims resolves the token subject to the live account with
// its resolved permission set.
func (s *Service) CurrentUserFromClaims(ctx context.Context, claims *Claims) (*CurrentUser, error) {
	user, err := s.credRepo.GetUserForToken(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load user for token: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	perms, err := s.permRepo.GetPermissions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	user.Permissions = perms
	return user, nil
}

// Authorize is the gate composed in front of permission-scoped operations.
// It performs a single existence query against the role/permission graph and
// does not log; terminal outcomes are audited by the operation itself.
func (s *Service) Authorize(ctx context.Context, userID, permission string) error {
	ok, err := s.permRepo.HasPermission(ctx, userID, permission)
	if err != nil {
		return fmt.Errorf("permission check: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// GenerateAccessToken creates a signed access token for the given username.
func (j *JWTTokenGenerator) GenerateAccessToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken parses and verifies a token. Every failure mode collapses to
// ErrInvalidToken: callers treat a bad signature, a malformed payload and an
// expired token identically as "unauthenticated".
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsAuthError reports whether err is one of the expected authentication
// outcomes rather than an infrastructure failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUserInactive) ||
		errors.Is(err, ErrForbidden)
}
