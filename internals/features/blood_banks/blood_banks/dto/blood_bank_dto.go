package dto

import (
	"strings"

	"blood_donation_backend/internals/features/blood_banks/blood_banks/model"
)

// CreateBloodBankRequest is also the shape of one entry in the seed file.
type CreateBloodBankRequest struct {
	Name          string `json:"blood_bank_name" validate:"required,min=2,max=150"`
	Location      string `json:"blood_bank_location" validate:"required,min=2,max=200"`
	ContactNumber string `json:"blood_bank_contact_number" validate:"required,phone"`
	Email         string `json:"blood_bank_email" validate:"required,email,max=255"`
	Capacity      int    `json:"blood_bank_capacity" validate:"required,min=1,max=100000"`
	Manager       string `json:"blood_bank_manager" validate:"required,min=2,max=100"`
}

func (r *CreateBloodBankRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.ContactNumber = strings.ReplaceAll(strings.TrimSpace(r.ContactNumber), " ", "")
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Manager = strings.TrimSpace(r.Manager)
}

func (r *CreateBloodBankRequest) ToModel() *model.BloodBankModel {
	return &model.BloodBankModel{
		BloodBankName:          r.Name,
		BloodBankLocation:      r.Location,
		BloodBankContactNumber: r.ContactNumber,
		BloodBankEmail:         r.Email,
		BloodBankCapacity:      r.Capacity,
		BloodBankManager:       r.Manager,
	}
}

type UpdateBloodBankRequest struct {
	Name          *string `json:"blood_bank_name,omitempty" validate:"omitempty,min=2,max=150"`
	Location      *string `json:"blood_bank_location,omitempty" validate:"omitempty,min=2,max=200"`
	ContactNumber *string `json:"blood_bank_contact_number,omitempty" validate:"omitempty,phone"`
	Email         *string `json:"blood_bank_email,omitempty" validate:"omitempty,email,max=255"`
	Capacity      *int    `json:"blood_bank_capacity,omitempty" validate:"omitempty,min=1,max=100000"`
	Manager       *string `json:"blood_bank_manager,omitempty" validate:"omitempty,min=2,max=100"`
}

func (r *UpdateBloodBankRequest) ApplyToModel(m *model.BloodBankModel) {
	if r.Name != nil {
		m.BloodBankName = strings.TrimSpace(*r.Name)
	}
	if r.Location != nil {
		m.BloodBankLocation = strings.TrimSpace(*r.Location)
	}
	if r.ContactNumber != nil {
		m.BloodBankContactNumber = strings.ReplaceAll(strings.TrimSpace(*r.ContactNumber), " ", "")
	}
	if r.Email != nil {
		m.BloodBankEmail = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Capacity != nil {
		m.BloodBankCapacity = *r.Capacity
	}
	if r.Manager != nil {
		m.BloodBankManager = strings.TrimSpace(*r.Manager)
	}
}

type ListBloodBanksFilter struct {
	Query string // name or location
}
