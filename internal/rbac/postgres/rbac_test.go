package postgres_test

import (
	"context"
	"testing"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/rbac"
	rbacPostgres "github.com/frahmantamala/user-management/internal/rbac/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRBACPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBAC Postgres Suite")
}

var _ = Describe("RBAC PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo rbac.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE users (
			id VARCHAR(36) PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			reset_token VARCHAR(64),
			reset_token_expires DATETIME,
			consent_lgpd BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE roles (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE permissions (
			name VARCHAR(100) PRIMARY KEY,
			description TEXT NOT NULL DEFAULT ''
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE user_roles (
			user_id VARCHAR(36) NOT NULL,
			role_id VARCHAR(36) NOT NULL,
			PRIMARY KEY (user_id, role_id)
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE role_permissions (
			role_id VARCHAR(36) NOT NULL,
			permission_name VARCHAR(100) NOT NULL,
			PRIMARY KEY (role_id, permission_name)
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		repo = rbacPostgres.NewRBACRepository(db)

		err = db.Create(&userDatamodel.User{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
			IsActive: true,
		}).Error
		Expect(err).NotTo(HaveOccurred())
	})

	seedGraph := func() {
		Expect(repo.CreateRole(ctx, &rbac.Role{ID: "role-admin", Name: "admin"})).To(Succeed())
		Expect(repo.CreateRole(ctx, &rbac.Role{ID: "role-viewer", Name: "viewer"})).To(Succeed())
		Expect(repo.CreatePermission(ctx, &rbac.Permission{Name: "manage_users", Description: "assign roles"})).To(Succeed())
		Expect(repo.CreatePermission(ctx, &rbac.Permission{Name: "view_logs", Description: "read audit trail"})).To(Succeed())
		Expect(repo.ReplaceRolePermissions(ctx, "role-admin", []string{"manage_users", "view_logs"})).To(Succeed())
		Expect(repo.ReplaceRolePermissions(ctx, "role-viewer", []string{"view_logs"})).To(Succeed())
	}

	Describe("UserExists", func() {
		It("should report true for a stored user", func() {
			Expect(repo.UserExists(ctx, "user-1")).To(BeTrue())
		})

		It("should report false for an unknown user", func() {
			Expect(repo.UserExists(ctx, "ghost")).To(BeFalse())
		})
	})

	Describe("CreateRole", func() {
		It("should return conflict for a duplicate name", func() {
			Expect(repo.CreateRole(ctx, &rbac.Role{ID: "role-1", Name: "admin"})).To(Succeed())

			err := repo.CreateRole(ctx, &rbac.Role{ID: "role-2", Name: "admin"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ReplaceUserRoles", func() {
		BeforeEach(seedGraph)

		It("should replace the previous set atomically", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-viewer"})).To(Succeed())
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin"})).To(Succeed())

			roles, err := repo.GetUserRoles(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].Name).To(Equal("admin"))
		})

		It("should clear all roles when given an empty set", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin", "role-viewer"})).To(Succeed())
			Expect(repo.ReplaceUserRoles(ctx, "user-1", nil)).To(Succeed())

			roles, err := repo.GetUserRoles(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})
	})

	Describe("HasPermission", func() {
		BeforeEach(seedGraph)

		It("should report a grant reachable through a role", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-viewer"})).To(Succeed())

			Expect(repo.HasPermission(ctx, "user-1", "view_logs")).To(BeTrue())
			Expect(repo.HasPermission(ctx, "user-1", "manage_users")).To(BeFalse())
		})

		It("should report false once the granting role is removed", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin"})).To(Succeed())
			Expect(repo.HasPermission(ctx, "user-1", "manage_users")).To(BeTrue())

			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-viewer"})).To(Succeed())
			Expect(repo.HasPermission(ctx, "user-1", "manage_users")).To(BeFalse())
		})

		It("should report false for a user with no roles", func() {
			Expect(repo.HasPermission(ctx, "user-1", "view_logs")).To(BeFalse())
		})
	})

	Describe("GetPermissions", func() {
		BeforeEach(seedGraph)

		It("should return the union without duplicates", func() {
			// view_logs comes from both roles
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin", "role-viewer"})).To(Succeed())

			perms, err := repo.GetPermissions(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(ConsistOf("manage_users", "view_logs"))
		})

		It("should return empty for a user with no roles", func() {
			perms, err := repo.GetPermissions(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})
	})

	Describe("DeleteRole", func() {
		BeforeEach(seedGraph)

		It("should remove the role and its edges in one transaction", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin"})).To(Succeed())

			Expect(repo.DeleteRole(ctx, "role-admin")).To(Succeed())

			role, err := repo.GetRoleByName(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(BeNil())

			roles, err := repo.GetUserRoles(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())

			Expect(repo.HasPermission(ctx, "user-1", "manage_users")).To(BeFalse())
		})

		It("should keep the permission definitions", func() {
			Expect(repo.DeleteRole(ctx, "role-admin")).To(Succeed())

			perm, err := repo.GetPermission(ctx, "manage_users")
			Expect(err).NotTo(HaveOccurred())
			Expect(perm).NotTo(BeNil())
		})
	})

	Describe("DeletePermission", func() {
		BeforeEach(seedGraph)

		It("should remove the permission and its role edges", func() {
			Expect(repo.ReplaceUserRoles(ctx, "user-1", []string{"role-admin"})).To(Succeed())

			Expect(repo.DeletePermission(ctx, "view_logs")).To(Succeed())

			perm, err := repo.GetPermission(ctx, "view_logs")
			Expect(err).NotTo(HaveOccurred())
			Expect(perm).To(BeNil())

			Expect(repo.HasPermission(ctx, "user-1", "view_logs")).To(BeFalse())
			Expect(repo.HasPermission(ctx, "user-1", "manage_users")).To(BeTrue())
		})
	})

	Describe("GetRolesByNames", func() {
		BeforeEach(seedGraph)

		It("should resolve only the names that exist", func() {
			roles, err := repo.GetRolesByNames(ctx, []string{"admin", "ghost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].ID).To(Equal("role-admin"))
		})

		It("should return nothing for an empty input", func() {
			roles, err := repo.GetRolesByNames(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(BeEmpty())
		})
	})
})
