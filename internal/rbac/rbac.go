package rbac

import "context"

// Role is a named, reusable bundle of permissions assignable to users.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is an atomic capability identified by a unique name, e.g.
// "user:delete".
type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RepositoryAPI owns all mutation of the user-role and role-permission edge
// records. User and role rows never mutate each other's edges directly.
type RepositoryAPI interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	GetRolesByNames(ctx context.Context, names []string) ([]*Role, error)
	GetUserRoles(ctx context.Context, userID string) ([]*Role, error)
	// ReplaceUserRoles swaps the user's role set for roleIDs in one
	// transaction.
	ReplaceUserRoles(ctx context.Context, userID string, roleIDs []string) error

	HasPermission(ctx context.Context, userID, permission string) (bool, error)
	GetPermissions(ctx context.Context, userID string) ([]string, error)

	CreateRole(ctx context.Context, role *Role) error
	// DeleteRole removes the role and cascades its user assignments and
	// permission grants in the same transaction.
	DeleteRole(ctx context.Context, roleID string) error
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)

	CreatePermission(ctx context.Context, perm *Permission) error
	// DeletePermission removes the permission and its role grants in the
	// same transaction.
	DeletePermission(ctx context.Context, name string) error
	GetPermission(ctx context.Context, name string) (*Permission, error)
	ListPermissionDefs(ctx context.Context) ([]*Permission, error)
	ReplaceRolePermissions(ctx context.Context, roleID string, permissionNames []string) error
}

// ServiceAPI is the role/permission graph surface consumed by handlers and
// the seeder.
type ServiceAPI interface {
	SetRoles(ctx context.Context, actorID, userID string, roleNames []string) error
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
	ListPermissions(ctx context.Context, userID string) ([]string, error)
	ListUserRoles(ctx context.Context, userID string) ([]*Role, error)

	CreateRole(ctx context.Context, name string) (*Role, error)
	DeleteRole(ctx context.Context, name string) error
	CreatePermission(ctx context.Context, name, description string) (*Permission, error)
	DeletePermission(ctx context.Context, name string) error
	SetRolePermissions(ctx context.Context, roleName string, permissionNames []string) error
}
