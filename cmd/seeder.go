package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"audit_logs", "role_permissions", "user_roles", "permissions", "roles", "users", "form_fields"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"manage_users", "Can assign and revoke user roles"},
			{"user:delete", "Can delete or anonymize user accounts"},
			{"view_logs", "Can read the audit trail"},
		}

		for _, p := range permissions {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM permissions WHERE name = $1", p.Name).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO permissions (name, description) VALUES ($1, $2)", p.Name, p.Desc); err != nil {
				log.Fatalf("failed to insert permission %s: %v", p.Name, err)
			}
			fmt.Println("Seeded permission:", p.Name)
		}

		roles := []string{"admin", "user"}
		roleIDs := make(map[string]string, len(roles))
		for _, name := range roles {
			var id string
			if err := db.QueryRow("SELECT id FROM roles WHERE name = $1", name).Scan(&id); err == nil {
				roleIDs[name] = id
				continue
			}
			id = uuid.NewString()
			if _, err := db.Exec("INSERT INTO roles (id, name) VALUES ($1, $2)", id, name); err != nil {
				log.Fatalf("failed to insert role %s: %v", name, err)
			}
			roleIDs[name] = id
			fmt.Println("Seeded role:", name)
		}

		for _, p := range permissions {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_name = $2", roleIDs["admin"], p.Name).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO role_permissions (role_id, permission_name) VALUES ($1, $2)", roleIDs["admin"], p.Name); err != nil {
				log.Fatalf("failed to grant permission %s to admin role: %v", p.Name, err)
			}
		}
		fmt.Println("Granted all permissions to admin role")

		adminUsername := "admin"
		adminEmail := "admin@mail.com"
		var adminID string
		if err := db.QueryRow("SELECT id FROM users WHERE username = $1", adminUsername).Scan(&adminID); err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}
			adminID = uuid.NewString()
			if _, err := db.Exec(
				"INSERT INTO users (id, username, email, hashed_password, is_active, consent_lgpd, created_at) VALUES ($1, $2, $3, $4, true, false, now())",
				adminID, adminUsername, adminEmail, string(hash),
			); err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminUsername)
		} else {
			fmt.Println("admin user already exists; will ensure role")
		}

		var exists int
		if err := db.QueryRow("SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2", adminID, roleIDs["admin"]).Scan(&exists); err != nil {
			if _, err := db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)", adminID, roleIDs["admin"]); err != nil {
				log.Fatalf("failed to assign admin role: %v", err)
			}
		}
		fmt.Println("Assigned admin role to admin user")

		fields := []struct {
			Name     string
			Label    string
			Type     string
			Required bool
		}{
			{"full_name", "Full name", "text", true},
			{"phone", "Phone number", "text", false},
			{"company", "Company", "text", false},
		}

		for _, f := range fields {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM form_fields WHERE name = $1", f.Name).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec(
				"INSERT INTO form_fields (name, label, field_type, is_required, is_active) VALUES ($1, $2, $3, $4, true)",
				f.Name, f.Label, f.Type, f.Required,
			); err != nil {
				log.Fatalf("failed to insert form field %s: %v", f.Name, err)
			}
			fmt.Printf("Seeded form field: %s\n", f.Name)
		}

		fmt.Println("Seeding completed successfully")
	},
}
