package formfield

// FormField is one configurable registration field.
type FormField struct {
	Name       string `gorm:"column:name;primaryKey;size:50"`
	Label      string `gorm:"column:label;size:100;not null"`
	FieldType  string `gorm:"column:field_type;size:20;default:text"`
	IsRequired bool   `gorm:"column:is_required;default:false"`
	IsActive   bool   `gorm:"column:is_active;default:true"`
}

func (FormField) TableName() string {
	return "form_fields"
}
