package dto

import (
	"strings"
	"time"

	"blood_donation_backend/internals/constants"
	uModel "blood_donation_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest: signup or create by admin
type CreateUserRequest struct {
	Name         string         `json:"user_name" validate:"required,min=2,max=100"`
	Username     string         `json:"user_username" validate:"required,min=3,max=50,username"`
	Email        string         `json:"user_email" validate:"required,email,max=255"`
	Password     string         `json:"password" validate:"required,min=8,max=72"`
	Role         constants.Role `json:"user_role" validate:"required,oneof=Admin Donor Recipient"`
	ProfileImage *string        `json:"user_profile_image,omitempty" validate:"omitempty,url,max=500"`
}

// Normalize: trim & lowercase email
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.ProfileImage = trimPtr(r.ProfileImage)
}

// ToModel: password is hashed by the service before insert
func (r *CreateUserRequest) ToModel() *uModel.UserModel {
	return &uModel.UserModel{
		UserName:         r.Name,
		UserUsername:     r.Username,
		UserEmail:        r.Email,
		UserRole:         r.Role,
		UserProfileImage: r.ProfileImage,
	}
}

// UpdateUserRequest: partial update (pointer = field present)
type UpdateUserRequest struct {
	Name         *string         `json:"user_name,omitempty" validate:"omitempty,min=2,max=100"`
	Username     *string         `json:"user_username,omitempty" validate:"omitempty,min=3,max=50,username"`
	Email        *string         `json:"user_email,omitempty" validate:"omitempty,email,max=255"`
	Password     *string         `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Role         *constants.Role `json:"user_role,omitempty" validate:"omitempty,oneof=Admin Donor Recipient"`
	ProfileImage *string         `json:"user_profile_image,omitempty" validate:"omitempty,url,max=500"`
	// ClearProfileImage removes the image; takes precedence over ProfileImage.
	ClearProfileImage bool `json:"clear_profile_image,omitempty"`
}

// Normalize: trims if present
func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Username != nil {
		v := strings.TrimSpace(*r.Username)
		r.Username = &v
	}
	if r.Email != nil {
		v := strings.TrimSpace(strings.ToLower(*r.Email))
		r.Email = &v
	}
	r.ProfileImage = trimPtr(r.ProfileImage)
}

// ApplyToModel: terapkan perubahan parsial ke model existing (tanpa password)
func (r *UpdateUserRequest) ApplyToModel(m *uModel.UserModel) {
	if r.Name != nil {
		m.UserName = *r.Name
	}
	if r.Username != nil {
		m.UserUsername = *r.Username
	}
	if r.Email != nil {
		m.UserEmail = *r.Email
	}
	if r.Role != nil {
		m.UserRole = *r.Role
	}
	if r.ProfileImage != nil {
		m.UserProfileImage = r.ProfileImage
	}
	if r.ClearProfileImage {
		m.UserProfileImage = nil
	}
}

type ListUsersFilter struct {
	Role  *constants.Role
	Query string // matches name, username or email
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

// UserResponse hides the password hash.
type UserResponse struct {
	ID           uint           `json:"user_id"`
	Name         string         `json:"user_name"`
	Username     string         `json:"user_username"`
	Email        string         `json:"user_email"`
	Role         constants.Role `json:"user_role"`
	ProfileImage *string        `json:"user_profile_image,omitempty"`
	CreatedAt    time.Time      `json:"user_created_at"`
	UpdatedAt    time.Time      `json:"user_updated_at"`
}

func FromModel(m *uModel.UserModel) *UserResponse {
	if m == nil {
		return nil
	}
	return &UserResponse{
		ID:           m.UserID,
		Name:         m.UserName,
		Username:     m.UserUsername,
		Email:        m.UserEmail,
		Role:         m.UserRole,
		ProfileImage: m.UserProfileImage,
		CreatedAt:    m.UserCreatedAt,
		UpdatedAt:    m.UserUpdatedAt,
	}
}

func FromModelList(list []uModel.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
