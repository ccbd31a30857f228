package dto

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/users/donor_profiles/model"
)

type CreateDonorProfileRequest struct {
	UserID           uint                 `json:"donor_profile_user_id" validate:"required"`
	BloodGroup       constants.BloodGroup `json:"donor_profile_blood_group" validate:"required,bloodgroup"`
	Age              int                  `json:"donor_profile_age" validate:"required"`
	Gender           constants.Gender     `json:"donor_profile_gender" validate:"required,oneof=Male Female Other"`
	LastDonationDate *datatypes.Date      `json:"donor_profile_last_donation_date,omitempty" validate:"omitempty,notfuture"`
	// IsEligible defaults to true when omitted.
	IsEligible *bool `json:"donor_profile_is_eligible,omitempty"`
}

func (r *CreateDonorProfileRequest) ToModel() *model.DonorProfileModel {
	eligible := true
	if r.IsEligible != nil {
		eligible = *r.IsEligible
	}
	return &model.DonorProfileModel{
		DonorProfileUserID:           r.UserID,
		DonorProfileGroup:            r.BloodGroup,
		DonorProfileAge:              r.Age,
		DonorProfileGender:           r.Gender,
		DonorProfileLastDonationDate: r.LastDonationDate,
		DonorProfileIsEligible:       eligible,
	}
}

// UpdateDonorProfileRequest is a partial update; the owning user never changes.
type UpdateDonorProfileRequest struct {
	BloodGroup       *constants.BloodGroup `json:"donor_profile_blood_group,omitempty" validate:"omitempty,bloodgroup"`
	Age              *int                  `json:"donor_profile_age,omitempty"`
	Gender           *constants.Gender     `json:"donor_profile_gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	LastDonationDate *datatypes.Date       `json:"donor_profile_last_donation_date,omitempty" validate:"omitempty,notfuture"`
	IsEligible       *bool                 `json:"donor_profile_is_eligible,omitempty"`
}

func (r *UpdateDonorProfileRequest) ApplyToModel(m *model.DonorProfileModel) {
	if r.BloodGroup != nil {
		m.DonorProfileGroup = *r.BloodGroup
	}
	if r.Age != nil {
		m.DonorProfileAge = *r.Age
	}
	if r.Gender != nil {
		m.DonorProfileGender = *r.Gender
	}
	if r.LastDonationDate != nil {
		d := *r.LastDonationDate
		m.DonorProfileLastDonationDate = &d
	}
	if r.IsEligible != nil {
		m.DonorProfileIsEligible = *r.IsEligible
	}
}

// Changes lists the columns the request patches, stamped with now.
func (r *UpdateDonorProfileRequest) Changes(now time.Time) map[string]any {
	out := map[string]any{"donor_profile_updated_at": now}
	if r.BloodGroup != nil {
		out["donor_profile_blood_group"] = *r.BloodGroup
	}
	if r.Age != nil {
		out["donor_profile_age"] = *r.Age
	}
	if r.Gender != nil {
		out["donor_profile_gender"] = *r.Gender
	}
	if r.LastDonationDate != nil {
		out["donor_profile_last_donation_date"] = *r.LastDonationDate
	}
	if r.IsEligible != nil {
		out["donor_profile_is_eligible"] = *r.IsEligible
	}
	return out
}

type ListDonorProfilesFilter struct {
	BloodGroup   *constants.BloodGroup
	EligibleOnly bool
}

type DonorProfileResponse struct {
	ID               uint                 `json:"donor_profile_id"`
	UserID           uint                 `json:"donor_profile_user_id"`
	BloodGroup       constants.BloodGroup `json:"donor_profile_blood_group"`
	Age              int                  `json:"donor_profile_age"`
	Gender           constants.Gender     `json:"donor_profile_gender"`
	LastDonationDate *datatypes.Date      `json:"donor_profile_last_donation_date,omitempty"`
	IsEligible       bool                 `json:"donor_profile_is_eligible"`
	NextEligibleDate *time.Time           `json:"donor_profile_next_eligible_date,omitempty"`
	CreatedAt        time.Time            `json:"donor_profile_created_at"`
	UpdatedAt        time.Time            `json:"donor_profile_updated_at"`
}

// FromModel fills NextEligibleDate from the recovery period when the donor
// has donated before.
func FromModel(m *model.DonorProfileModel, recovery time.Duration) DonorProfileResponse {
	out := DonorProfileResponse{
		ID:               m.DonorProfileID,
		UserID:           m.DonorProfileUserID,
		BloodGroup:       m.DonorProfileGroup,
		Age:              m.DonorProfileAge,
		Gender:           m.DonorProfileGender,
		LastDonationDate: m.DonorProfileLastDonationDate,
		IsEligible:       m.DonorProfileIsEligible,
		CreatedAt:        m.DonorProfileCreatedAt,
		UpdatedAt:        m.DonorProfileUpdatedAt,
	}
	if m.DonorProfileLastDonationDate != nil {
		next := time.Time(*m.DonorProfileLastDonationDate).UTC().Add(recovery)
		out.NextEligibleDate = &next
	}
	return out
}
