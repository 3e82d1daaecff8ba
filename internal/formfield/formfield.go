package formfield

import (
	"context"
	"fmt"

	"github.com/frahmantamala/user-management/internal"
)

// Field is one configurable registration field.
type Field struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	FieldType  string `json:"field_type"`
	IsRequired bool   `json:"is_required"`
	IsActive   bool   `json:"is_active"`
}

// RepositoryAPI reads the field configuration. The registration flow fetches
// the active fields once per request and treats them as an immutable
// snapshot for that request's validation.
type RepositoryAPI interface {
	GetActiveFields(ctx context.Context) ([]*Field, error)
}

// Validate checks candidate registration attributes against a field-config
// snapshot. It is a pure function: required active fields must carry a
// non-empty value, inactive fields are ignored entirely.
func Validate(attributes map[string]string, fields []*Field) []internal.ValidationError {
	var errs []internal.ValidationError
	for _, field := range fields {
		if !field.IsActive || !field.IsRequired {
			continue
		}
		if attributes[field.Name] == "" {
			errs = append(errs, internal.ValidationError{
				Field:   field.Name,
				Message: fmt.Sprintf("%s is required", field.Label),
				Code:    string(internal.ErrCodeMissingField),
			})
		}
	}
	return errs
}
