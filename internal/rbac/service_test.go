package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/audit"
)

func TestRBAC(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "RBAC Module Suite")
}

// In-memory mock of RepositoryAPI
type mockRBACRepository struct {
	users         map[string]bool     // userID -> exists
	roles         map[string]*Role    // name -> role
	userRoles     map[string][]string // userID -> role IDs
	rolePerms     map[string][]string // roleID -> permission names
	perms         map[string]*Permission
	returnError   bool
	errorToReturn error
}

func newMockRBACRepository() *mockRBACRepository {
	return &mockRBACRepository{
		users:     map[string]bool{},
		roles:     map[string]*Role{},
		userRoles: map[string][]string{},
		rolePerms: map[string][]string{},
		perms:     map[string]*Permission{},
	}
}

func (m *mockRBACRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	return m.users[userID], nil
}

func (m *mockRBACRepository) GetRolesByNames(ctx context.Context, names []string) ([]*Role, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	var out []*Role
	for _, name := range names {
		if r, ok := m.roles[name]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRBACRepository) GetUserRoles(ctx context.Context, userID string) ([]*Role, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	var out []*Role
	for _, id := range m.userRoles[userID] {
		for _, r := range m.roles {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *mockRBACRepository) ReplaceUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.userRoles[userID] = roleIDs
	return nil
}

func (m *mockRBACRepository) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	for _, roleID := range m.userRoles[userID] {
		for _, p := range m.rolePerms[roleID] {
			if p == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockRBACRepository) GetPermissions(ctx context.Context, userID string) ([]string, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	seen := map[string]bool{}
	var out []string
	for _, roleID := range m.userRoles[userID] {
		for _, p := range m.rolePerms[roleID] {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *mockRBACRepository) CreateRole(ctx context.Context, role *Role) error {
	if _, exists := m.roles[role.Name]; exists {
		return internal.NewConflictError("role already exists", internal.ErrCodeDuplicateName)
	}
	m.roles[role.Name] = role
	return nil
}

func (m *mockRBACRepository) DeleteRole(ctx context.Context, roleID string) error {
	for name, r := range m.roles {
		if r.ID == roleID {
			delete(m.roles, name)
		}
	}
	delete(m.rolePerms, roleID)
	for userID, ids := range m.userRoles {
		var kept []string
		for _, id := range ids {
			if id != roleID {
				kept = append(kept, id)
			}
		}
		m.userRoles[userID] = kept
	}
	return nil
}

func (m *mockRBACRepository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	return m.roles[name], nil
}

func (m *mockRBACRepository) ListRoles(ctx context.Context) ([]*Role, error) {
	var out []*Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRBACRepository) CreatePermission(ctx context.Context, perm *Permission) error {
	if _, exists := m.perms[perm.Name]; exists {
		return internal.NewConflictError("permission already exists", internal.ErrCodeDuplicateName)
	}
	m.perms[perm.Name] = perm
	return nil
}

func (m *mockRBACRepository) DeletePermission(ctx context.Context, name string) error {
	delete(m.perms, name)
	for roleID, ps := range m.rolePerms {
		var kept []string
		for _, p := range ps {
			if p != name {
				kept = append(kept, p)
			}
		}
		m.rolePerms[roleID] = kept
	}
	return nil
}

func (m *mockRBACRepository) GetPermission(ctx context.Context, name string) (*Permission, error) {
	return m.perms[name], nil
}

func (m *mockRBACRepository) ListPermissionDefs(ctx context.Context) ([]*Permission, error) {
	var out []*Permission
	for _, p := range m.perms {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRBACRepository) ReplaceRolePermissions(ctx context.Context, roleID string, permissionNames []string) error {
	m.rolePerms[roleID] = permissionNames
	return nil
}

// Mock audit recorder
type mockRecorder struct {
	entries []audit.Action
}

func (m *mockRecorder) Record(ctx context.Context, actorID *string, action audit.Action, ipAddress, details *string) error {
	m.entries = append(m.entries, action)
	return nil
}

func (m *mockRecorder) ListAll(ctx context.Context) ([]*audit.Entry, error) {
	return nil, nil
}

var _ = ginkgo.Describe("RBACService", func() {
	var (
		service  *Service
		repo     *mockRBACRepository
		recorder *mockRecorder
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRBACRepository()
		recorder = &mockRecorder{}
		service = NewService(repo, recorder)

		repo.users["user-1"] = true
		repo.roles["admin"] = &Role{ID: "role-admin", Name: "admin"}
		repo.roles["viewer"] = &Role{ID: "role-viewer", Name: "viewer"}
		repo.rolePerms["role-admin"] = []string{"manage_users", "view_logs"}
		repo.rolePerms["role-viewer"] = []string{"view_logs"}
	})

	ginkgo.Describe("SetRoles", func() {
		ginkgo.Context("when user and roles exist", func() {
			ginkgo.It("should replace the role set and record roles_updated", func() {
				// Given
				repo.userRoles["user-1"] = []string{"role-viewer"}

				// When
				err := service.SetRoles(ctx, "admin-1", "user-1", []string{"admin"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(repo.userRoles["user-1"]).To(gomega.Equal([]string{"role-admin"}))
				gomega.Expect(recorder.entries).To(gomega.Equal([]audit.Action{audit.ActionRolesUpdated}))
			})

			ginkgo.It("should accept an empty list and revoke everything", func() {
				// Given
				repo.userRoles["user-1"] = []string{"role-admin", "role-viewer"}

				// When
				err := service.SetRoles(ctx, "admin-1", "user-1", nil)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(repo.userRoles["user-1"]).To(gomega.BeEmpty())
			})

			ginkgo.It("should collapse duplicate names", func() {
				// When
				err := service.SetRoles(ctx, "admin-1", "user-1", []string{"admin", "admin", " admin "})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(repo.userRoles["user-1"]).To(gomega.Equal([]string{"role-admin"}))
			})
		})

		ginkgo.Context("when a named role does not exist", func() {
			ginkgo.It("should change nothing and return role not found", func() {
				// Given
				repo.userRoles["user-1"] = []string{"role-viewer"}

				// When
				err := service.SetRoles(ctx, "admin-1", "user-1", []string{"admin", "ghost-role"})

				// Then
				gomega.Expect(err).To(gomega.Equal(internal.ErrRoleNotFound))
				gomega.Expect(repo.userRoles["user-1"]).To(gomega.Equal([]string{"role-viewer"}))
				gomega.Expect(recorder.entries).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the user does not exist", func() {
			ginkgo.It("should return user not found", func() {
				// When
				err := service.SetRoles(ctx, "admin-1", "missing-user", []string{"admin"})

				// Then
				gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should surface the failure", func() {
				// Given
				repo.returnError = true
				repo.errorToReturn = errors.New("database error")

				// When
				err := service.SetRoles(ctx, "admin-1", "user-1", []string{"admin"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("HasPermission", func() {
		ginkgo.It("should report true when any role grants the permission", func() {
			// Given
			repo.userRoles["user-1"] = []string{"role-viewer"}

			// When & Then
			gomega.Expect(service.HasPermission(ctx, "user-1", "view_logs")).To(gomega.BeTrue())
		})

		ginkgo.It("should report false after the granting role is revoked", func() {
			// Given
			repo.userRoles["user-1"] = []string{"role-admin"}
			gomega.Expect(service.HasPermission(ctx, "user-1", "manage_users")).To(gomega.BeTrue())

			// When
			gomega.Expect(service.SetRoles(ctx, "admin-1", "user-1", []string{"viewer"})).To(gomega.Succeed())

			// Then
			gomega.Expect(service.HasPermission(ctx, "user-1", "manage_users")).To(gomega.BeFalse())
		})

		ginkgo.It("should report false for a user with no roles", func() {
			gomega.Expect(service.HasPermission(ctx, "user-1", "view_logs")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ListPermissions", func() {
		ginkgo.It("should return the sorted union across roles without duplicates", func() {
			// Given both roles grant view_logs
			repo.userRoles["user-1"] = []string{"role-admin", "role-viewer"}

			// When
			perms, err := service.ListPermissions(ctx, "user-1")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.Equal([]string{"manage_users", "view_logs"}))
		})

		ginkgo.It("should return an empty set for a user with no roles", func() {
			// When
			perms, err := service.ListPermissions(ctx, "user-1")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("CreateRole", func() {
		ginkgo.It("should create a role with a generated id", func() {
			// When
			role, err := service.CreateRole(ctx, "auditor")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(role.Name).To(gomega.Equal("auditor"))
		})

		ginkgo.It("should return conflict for a duplicate name", func() {
			// When
			role, err := service.CreateRole(ctx, "admin")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.BeNil())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeConflict))
		})

		ginkgo.It("should reject an empty name", func() {
			// When
			role, err := service.CreateRole(ctx, "")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("DeleteRole", func() {
		ginkgo.It("should delete the role and revoke it from users", func() {
			// Given
			repo.userRoles["user-1"] = []string{"role-admin"}

			// When
			err := service.DeleteRole(ctx, "admin")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.userRoles["user-1"]).To(gomega.BeEmpty())
			gomega.Expect(service.HasPermission(ctx, "user-1", "manage_users")).To(gomega.BeFalse())
		})

		ginkgo.It("should return not found for an unknown role", func() {
			gomega.Expect(service.DeleteRole(ctx, "ghost")).To(gomega.Equal(internal.ErrRoleNotFound))
		})
	})

	ginkgo.Describe("SetRolePermissions", func() {
		ginkgo.BeforeEach(func() {
			repo.perms["manage_users"] = &Permission{Name: "manage_users"}
			repo.perms["view_logs"] = &Permission{Name: "view_logs"}
		})

		ginkgo.It("should replace the role's grants", func() {
			// When
			err := service.SetRolePermissions(ctx, "viewer", []string{"manage_users"})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.rolePerms["role-viewer"]).To(gomega.Equal([]string{"manage_users"}))
		})

		ginkgo.It("should change nothing when a permission does not exist", func() {
			// When
			err := service.SetRolePermissions(ctx, "viewer", []string{"view_logs", "ghost_permission"})

			// Then
			gomega.Expect(err).To(gomega.Equal(internal.ErrPermissionNotFound))
			gomega.Expect(repo.rolePerms["role-viewer"]).To(gomega.Equal([]string{"view_logs"}))
		})

		ginkgo.It("should return not found for an unknown role", func() {
			err := service.SetRolePermissions(ctx, "ghost", []string{"view_logs"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrRoleNotFound))
		})
	})

	ginkgo.Describe("DeletePermission", func() {
		ginkgo.BeforeEach(func() {
			repo.perms["view_logs"] = &Permission{Name: "view_logs"}
		})

		ginkgo.It("should delete the permission and drop its grants", func() {
			// Given
			repo.userRoles["user-1"] = []string{"role-viewer"}

			// When
			err := service.DeletePermission(ctx, "view_logs")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(service.HasPermission(ctx, "user-1", "view_logs")).To(gomega.BeFalse())
		})

		ginkgo.It("should return not found for an unknown permission", func() {
			gomega.Expect(service.DeletePermission(ctx, "ghost")).To(gomega.Equal(internal.ErrPermissionNotFound))
		})
	})
})
