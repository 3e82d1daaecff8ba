package user

import "time"

// User is the persistence model for the users table. Username and email
// uniqueness is enforced by the database; the service-level pre-checks are
// advisory only and the constraint is the final arbiter.
type User struct {
	ID                string     `gorm:"column:id;primaryKey;size:36"`
	Username          string     `gorm:"column:username;size:50;uniqueIndex:ix_users_username;not null"`
	Email             string     `gorm:"column:email;size:100;uniqueIndex:ix_users_email;not null"`
	HashedPassword    string     `gorm:"column:hashed_password;size:255;not null"`
	IsActive          bool       `gorm:"column:is_active;default:true"`
	ResetToken        *string    `gorm:"column:reset_token;size:255"`
	ResetTokenExpires *time.Time `gorm:"column:reset_token_expires"`
	ConsentLGPD       bool       `gorm:"column:consent_lgpd;default:false"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}
