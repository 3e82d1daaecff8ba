package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/user-management/internal/audit"
	auditPostgres "github.com/frahmantamala/user-management/internal/audit/postgres"
	auditDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/audit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

var _ = Describe("Audit PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo audit.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&auditDatamodel.AuditLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = auditPostgres.NewAuditRepository(db)
	})

	Describe("Append", func() {
		It("should persist an entry with a nil actor", func() {
			entry := &audit.Entry{
				ID:        "entry-1",
				UserID:    nil,
				Action:    audit.ActionLoginFailed,
				Timestamp: time.Now().UTC(),
			}
			Expect(repo.Append(ctx, entry)).To(Succeed())

			entries, err := repo.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].UserID).To(BeNil())
			Expect(entries[0].Action).To(Equal(audit.ActionLoginFailed))
		})

		It("should keep actor, ip and details when present", func() {
			actor := "user-1"
			ip := "10.0.0.1"
			details := "roles of user user-2 set to [admin]"
			entry := &audit.Entry{
				ID:        "entry-1",
				UserID:    &actor,
				Action:    audit.ActionRolesUpdated,
				Timestamp: time.Now().UTC(),
				IPAddress: &ip,
				Details:   &details,
			}
			Expect(repo.Append(ctx, entry)).To(Succeed())

			entries, err := repo.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(*entries[0].UserID).To(Equal("user-1"))
			Expect(*entries[0].IPAddress).To(Equal("10.0.0.1"))
			Expect(*entries[0].Details).To(Equal(details))
		})
	})

	Describe("ListAll", func() {
		It("should return entries newest first", func() {
			base := time.Now().UTC().Truncate(time.Second)
			for i, id := range []string{"entry-1", "entry-2", "entry-3"} {
				entry := &audit.Entry{
					ID:        id,
					Action:    audit.ActionUserCreated,
					Timestamp: base.Add(time.Duration(i) * time.Minute),
				}
				Expect(repo.Append(ctx, entry)).To(Succeed())
			}

			entries, err := repo.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].ID).To(Equal("entry-3"))
			Expect(entries[1].ID).To(Equal("entry-2"))
			Expect(entries[2].ID).To(Equal("entry-1"))
		})

		It("should return an empty list for an empty trail", func() {
			entries, err := repo.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})
})
