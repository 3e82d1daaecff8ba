package rbac

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/audit"
	"github.com/google/uuid"
)

type Service struct {
	repo  RepositoryAPI
	audit audit.RecorderAPI
}

func NewService(repo RepositoryAPI, recorder audit.RecorderAPI) *Service {
	return &Service{
		repo:  repo,
		audit: recorder,
	}
}

// SetRoles replaces the user's role set with the named roles. The update is
// all-or-nothing: if the user or any named role does not exist, nothing
// changes and the user keeps their prior set.
func (s *Service) SetRoles(ctx context.Context, actorID, userID string, roleNames []string) error {
	names := dedupe(roleNames)

	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return internal.ErrUserNotFound
	}

	roles, err := s.repo.GetRolesByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("resolve roles: %w", err)
	}
	if len(roles) != len(names) {
		return internal.ErrRoleNotFound
	}

	roleIDs := make([]string, len(roles))
	for i, r := range roles {
		roleIDs[i] = r.ID
	}

	if err := s.repo.ReplaceUserRoles(ctx, userID, roleIDs); err != nil {
		return fmt.Errorf("replace roles: %w", err)
	}

	detail := fmt.Sprintf("roles of user %s set to [%s]", userID, strings.Join(names, ", "))
	s.audit.Record(ctx, &actorID, audit.ActionRolesUpdated, nil, &detail)
	return nil
}

// HasPermission reports whether at least one of the user's roles grants the
// permission. The repository answers with an existence query, so the check
// short-circuits on the first match.
func (s *Service) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	return s.repo.HasPermission(ctx, userID, permission)
}

// ListPermissions returns the resolved set, the union across all roles.
func (s *Service) ListPermissions(ctx context.Context, userID string) ([]string, error) {
	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Strings(perms)
	return perms, nil
}

func (s *Service) ListUserRoles(ctx context.Context, userID string) ([]*Role, error) {
	return s.repo.GetUserRoles(ctx, userID)
}

func (s *Service) CreateRole(ctx context.Context, name string) (*Role, error) {
	if name == "" {
		return nil, internal.NewValidationError("role name is required", internal.ErrCodeMissingField)
	}
	role := &Role{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, name string) error {
	role, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}
	return s.repo.DeleteRole(ctx, role.ID)
}

func (s *Service) CreatePermission(ctx context.Context, name, description string) (*Permission, error) {
	if name == "" {
		return nil, internal.NewValidationError("permission name is required", internal.ErrCodeMissingField)
	}
	perm := &Permission{
		Name:        name,
		Description: description,
	}
	if err := s.repo.CreatePermission(ctx, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *Service) DeletePermission(ctx context.Context, name string) error {
	perm, err := s.repo.GetPermission(ctx, name)
	if err != nil {
		return fmt.Errorf("resolve permission: %w", err)
	}
	if perm == nil {
		return internal.ErrPermissionNotFound
	}
	return s.repo.DeletePermission(ctx, name)
}

// SetRolePermissions replaces the role's grants with the named permissions,
// all-or-nothing like SetRoles.
func (s *Service) SetRolePermissions(ctx context.Context, roleName string, permissionNames []string) error {
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}

	names := dedupe(permissionNames)
	for _, name := range names {
		perm, err := s.repo.GetPermission(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve permission: %w", err)
		}
		if perm == nil {
			return internal.ErrPermissionNotFound
		}
	}

	return s.repo.ReplaceRolePermissions(ctx, role.ID, names)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
