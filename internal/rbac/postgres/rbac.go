package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/user-management/internal"
	rbacDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/rbac"
	"gorm.io/gorm"
)

// RBACRepository persists roles, permissions and their association edges.
// Open the gorm.DB with TranslateError enabled so unique-constraint
// violations surface as gorm.ErrDuplicatedKey.
type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) rbac.RepositoryAPI {
	return &RBACRepository{db: db}
}

func (r *RBACRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *RBACRepository) GetRolesByNames(ctx context.Context, names []string) ([]*rbac.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoles(rows), nil
}

func (r *RBACRepository) GetUserRoles(ctx context.Context, userID string) ([]*rbac.Role, error) {
	var rows []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoles(rows), nil
}

func (r *RBACRepository) ReplaceUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		grants := make([]rbacDatamodel.UserRole, len(roleIDs))
		for i, roleID := range roleIDs {
			grants[i] = rbacDatamodel.UserRole{UserID: userID, RoleID: roleID}
		}
		return tx.Create(&grants).Error
	})
}

func (r *RBACRepository) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	var exists bool
	query := `
SELECT EXISTS(
  SELECT 1 FROM user_roles ur
  JOIN role_permissions rp ON rp.role_id = ur.role_id
  WHERE ur.user_id = ? AND rp.permission_name = ?
)`
	err := r.db.WithContext(ctx).Raw(query, userID, permission).Scan(&exists).Error
	return exists, err
}

func (r *RBACRepository) GetPermissions(ctx context.Context, userID string) ([]string, error) {
	var names []string
	query := `
SELECT DISTINCT rp.permission_name
FROM user_roles ur
JOIN role_permissions rp ON rp.role_id = ur.role_id
WHERE ur.user_id = ?`
	err := r.db.WithContext(ctx).Raw(query, userID).Scan(&names).Error
	return names, err
}

func (r *RBACRepository) CreateRole(ctx context.Context, role *rbac.Role) error {
	row := &rbacDatamodel.Role{ID: role.ID, Name: role.Name}
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Role already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *RBACRepository) DeleteRole(ctx context.Context, roleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", roleID).Delete(&rbacDatamodel.Role{}).Error
	})
}

func (r *RBACRepository) GetRoleByName(ctx context.Context, name string) (*rbac.Role, error) {
	var row rbacDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rbac.Role{ID: row.ID, Name: row.Name}, nil
}

func (r *RBACRepository) ListRoles(ctx context.Context) ([]*rbac.Role, error) {
	var rows []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRoles(rows), nil
}

func (r *RBACRepository) CreatePermission(ctx context.Context, perm *rbac.Permission) error {
	row := &rbacDatamodel.Permission{Name: perm.Name, Description: perm.Description}
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Permission already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *RBACRepository) DeletePermission(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_name = ?", name).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&rbacDatamodel.Permission{}).Error
	})
}

func (r *RBACRepository) GetPermission(ctx context.Context, name string) (*rbac.Permission, error) {
	var row rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rbac.Permission{Name: row.Name, Description: row.Description}, nil
}

func (r *RBACRepository) ListPermissionDefs(ctx context.Context) ([]*rbac.Permission, error) {
	var rows []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	perms := make([]*rbac.Permission, len(rows))
	for i, row := range rows {
		perms[i] = &rbac.Permission{Name: row.Name, Description: row.Description}
	}
	return perms, nil
}

func (r *RBACRepository) ReplaceRolePermissions(ctx context.Context, roleID string, permissionNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if len(permissionNames) == 0 {
			return nil
		}
		grants := make([]rbacDatamodel.RolePermission, len(permissionNames))
		for i, name := range permissionNames {
			grants[i] = rbacDatamodel.RolePermission{RoleID: roleID, PermissionName: name}
		}
		return tx.Create(&grants).Error
	})
}

func toRoles(rows []*rbacDatamodel.Role) []*rbac.Role {
	roles := make([]*rbac.Role, len(rows))
	for i, row := range rows {
		roles[i] = &rbac.Role{ID: row.ID, Name: row.Name}
	}
	return roles
}
