package rbac

// Role is a named bundle of permissions.
type Role struct {
	ID   string `gorm:"column:id;primaryKey;size:36"`
	Name string `gorm:"column:name;size:50;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is an atomic capability keyed by name. Renaming would break
// existing role grants, so a rename is modeled as delete plus recreate.
type Permission struct {
	Name        string `gorm:"column:name;primaryKey;size:50"`
	Description string `gorm:"column:description;size:100"`
}

func (Permission) TableName() string {
	return "permissions"
}

// UserRole is the user-to-role association record.
type UserRole struct {
	UserID string `gorm:"column:user_id;primaryKey;size:36"`
	RoleID string `gorm:"column:role_id;primaryKey;size:36"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// RolePermission is the role-to-permission association record.
type RolePermission struct {
	RoleID         string `gorm:"column:role_id;primaryKey;size:36"`
	PermissionName string `gorm:"column:permission_name;primaryKey;size:50"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
