package formfield

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestFormField(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "FormField Module Suite")
}

var _ = ginkgo.Describe("Validate", func() {
	fields := []*Field{
		{Name: "full_name", Label: "Full name", IsRequired: true, IsActive: true},
		{Name: "phone", Label: "Phone number", IsRequired: false, IsActive: true},
		{Name: "legacy_code", Label: "Legacy code", IsRequired: true, IsActive: false},
	}

	ginkgo.Context("when all required fields carry values", func() {
		ginkgo.It("should return no errors", func() {
			attrs := map[string]string{"full_name": "Alice Example"}

			errs := Validate(attrs, fields)

			gomega.Expect(errs).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("when a required field is missing", func() {
		ginkgo.It("should name the field in the error", func() {
			errs := Validate(map[string]string{}, fields)

			gomega.Expect(errs).To(gomega.HaveLen(1))
			gomega.Expect(errs[0].Field).To(gomega.Equal("full_name"))
		})

		ginkgo.It("should treat an empty value like an absent one", func() {
			attrs := map[string]string{"full_name": ""}

			errs := Validate(attrs, fields)

			gomega.Expect(errs).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Context("when a required field is inactive", func() {
		ginkgo.It("should not demand a value for it", func() {
			attrs := map[string]string{"full_name": "Alice Example"}

			errs := Validate(attrs, fields)

			gomega.Expect(errs).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("when optional fields are absent", func() {
		ginkgo.It("should not complain", func() {
			attrs := map[string]string{"full_name": "Alice Example"}

			gomega.Expect(Validate(attrs, fields)).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("with no configured fields", func() {
		ginkgo.It("should accept any attributes", func() {
			gomega.Expect(Validate(map[string]string{"extra": "value"}, nil)).To(gomega.BeEmpty())
		})
	})
})
