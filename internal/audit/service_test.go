package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestAudit(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Audit Module Suite")
}

type mockAuditRepository struct {
	appended      []*Entry
	returnError   bool
	errorToReturn error
}

func (m *mockAuditRepository) Append(ctx context.Context, entry *Entry) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.appended = append(m.appended, entry)
	return nil
}

func (m *mockAuditRepository) ListAll(ctx context.Context) ([]*Entry, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.appended, nil
}

var _ = ginkgo.Describe("Recorder", func() {
	var (
		recorder *Recorder
		repo     *mockAuditRepository
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = &mockAuditRepository{}
		recorder = NewRecorder(repo, nil)
	})

	ginkgo.Describe("Record", func() {
		ginkgo.It("should stamp the entry with an id and a UTC timestamp", func() {
			// Given
			actor := "user-1"

			// When
			err := recorder.Record(ctx, &actor, ActionUserCreated, nil, nil)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.appended).To(gomega.HaveLen(1))
			entry := repo.appended[0]
			gomega.Expect(entry.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(entry.Timestamp.Location()).To(gomega.Equal(time.UTC))
			gomega.Expect(entry.Timestamp).To(gomega.BeTemporally("~", time.Now(), time.Second))
			gomega.Expect(*entry.UserID).To(gomega.Equal("user-1"))
		})

		ginkgo.It("should accept a nil actor for unauthenticated events", func() {
			// When
			err := recorder.Record(ctx, nil, ActionLoginFailed, nil, nil)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.appended[0].UserID).To(gomega.BeNil())
		})

		ginkgo.It("should return the storage failure without panicking", func() {
			// Given
			repo.returnError = true
			repo.errorToReturn = errors.New("storage down")

			// When
			err := recorder.Record(ctx, nil, ActionLoginFailed, nil, nil)

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.appended).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ListAll", func() {
		ginkgo.It("should pass the repository result through", func() {
			// Given
			gomega.Expect(recorder.Record(ctx, nil, ActionLoginFailed, nil, nil)).To(gomega.Succeed())

			// When
			entries, err := recorder.ListAll(ctx)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
		})
	})
})
