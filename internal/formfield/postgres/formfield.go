package postgres

import (
	"context"

	formfieldDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/formfield"
	"github.com/frahmantamala/user-management/internal/formfield"
	"gorm.io/gorm"
)

type FormFieldRepository struct {
	db *gorm.DB
}

func NewFormFieldRepository(db *gorm.DB) formfield.RepositoryAPI {
	return &FormFieldRepository{db: db}
}

func (r *FormFieldRepository) GetActiveFields(ctx context.Context) ([]*formfield.Field, error) {
	var rows []*formfieldDatamodel.FormField
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	fields := make([]*formfield.Field, len(rows))
	for i, row := range rows {
		fields[i] = &formfield.Field{
			Name:       row.Name,
			Label:      row.Label,
			FieldType:  row.FieldType,
			IsRequired: row.IsRequired,
			IsActive:   row.IsActive,
		}
	}
	return fields, nil
}
