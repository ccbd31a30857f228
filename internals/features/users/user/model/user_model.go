package model

import (
	"time"

	"blood_donation_backend/internals/constants"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	UserID           uint           `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	UserName         string         `gorm:"column:user_name;size:100;not null" json:"user_name" validate:"required,min=2,max=100"`
	UserUsername     string         `gorm:"column:user_username;size:50;not null;uniqueIndex:uq_users_username" json:"user_username" validate:"required,min=3,max=50,username"`
	UserEmail        string         `gorm:"column:user_email;size:255;not null;uniqueIndex:uq_users_email" json:"user_email" validate:"required,email,max=255"`
	UserPasswordHash string         `gorm:"column:user_password_hash;not null" json:"-" validate:"required"`
	UserRole         constants.Role `gorm:"column:user_role;type:varchar(20);not null;index:idx_users_role" json:"user_role" validate:"required,oneof=Admin Donor Recipient"`
	UserProfileImage *string        `gorm:"column:user_profile_image;size:500" json:"user_profile_image,omitempty" validate:"omitempty,url,max=500"`
	UserCreatedAt    time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt    time.Time      `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}
