package dto

import (
	"strings"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/users/recipient_profiles/model"
)

type CreateRecipientProfileRequest struct {
	UserID        uint                 `json:"recipient_profile_user_id" validate:"required"`
	HospitalName  string               `json:"recipient_profile_hospital_name" validate:"required,min=2,max=150"`
	PatientName   string               `json:"recipient_profile_patient_name" validate:"required,min=2,max=100"`
	RequiredGroup constants.BloodGroup `json:"recipient_profile_required_blood_group" validate:"required,bloodgroup"`
	ContactNumber string               `json:"recipient_profile_contact_number" validate:"required,phone"`
}

func (r *CreateRecipientProfileRequest) Normalize() {
	r.HospitalName = strings.TrimSpace(r.HospitalName)
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.ContactNumber = strings.ReplaceAll(strings.TrimSpace(r.ContactNumber), " ", "")
}

func (r *CreateRecipientProfileRequest) ToModel() *model.RecipientProfileModel {
	return &model.RecipientProfileModel{
		RecipientProfileUserID:        r.UserID,
		RecipientProfileHospitalName:  r.HospitalName,
		RecipientProfilePatientName:   r.PatientName,
		RecipientProfileRequiredGroup: r.RequiredGroup,
		RecipientProfileContactNumber: r.ContactNumber,
	}
}

type UpdateRecipientProfileRequest struct {
	HospitalName  *string               `json:"recipient_profile_hospital_name,omitempty" validate:"omitempty,min=2,max=150"`
	PatientName   *string               `json:"recipient_profile_patient_name,omitempty" validate:"omitempty,min=2,max=100"`
	RequiredGroup *constants.BloodGroup `json:"recipient_profile_required_blood_group,omitempty" validate:"omitempty,bloodgroup"`
	ContactNumber *string               `json:"recipient_profile_contact_number,omitempty" validate:"omitempty,phone"`
}

func (r *UpdateRecipientProfileRequest) ApplyToModel(m *model.RecipientProfileModel) {
	if r.HospitalName != nil {
		m.RecipientProfileHospitalName = strings.TrimSpace(*r.HospitalName)
	}
	if r.PatientName != nil {
		m.RecipientProfilePatientName = strings.TrimSpace(*r.PatientName)
	}
	if r.RequiredGroup != nil {
		m.RecipientProfileRequiredGroup = *r.RequiredGroup
	}
	if r.ContactNumber != nil {
		m.RecipientProfileContactNumber = strings.ReplaceAll(strings.TrimSpace(*r.ContactNumber), " ", "")
	}
}

type ListRecipientProfilesFilter struct {
	RequiredGroup *constants.BloodGroup
	Hospital      string
}
