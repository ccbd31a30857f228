package model

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
)

type DonorProfileModel struct {
	DonorProfileID     uint                 `gorm:"column:donor_profile_id;primaryKey;autoIncrement" json:"donor_profile_id"`
	DonorProfileUserID uint                 `gorm:"column:donor_profile_user_id;not null;uniqueIndex:uq_donor_profiles_user_id" json:"donor_profile_user_id" validate:"required"`
	DonorProfileGroup  constants.BloodGroup `gorm:"column:donor_profile_blood_group;type:varchar(3);not null;index:idx_donor_profiles_group_eligible,priority:1" json:"donor_profile_blood_group" validate:"required,bloodgroup"`
	DonorProfileAge    int                  `gorm:"column:donor_profile_age;not null" json:"donor_profile_age" validate:"min=18,max=65"`
	DonorProfileGender constants.Gender     `gorm:"column:donor_profile_gender;type:varchar(10);not null" json:"donor_profile_gender" validate:"required,oneof=Male Female Other"`

	// nil berarti belum pernah donor
	DonorProfileLastDonationDate *datatypes.Date `gorm:"column:donor_profile_last_donation_date" json:"donor_profile_last_donation_date,omitempty" validate:"omitempty,notfuture"`
	DonorProfileIsEligible       bool            `gorm:"column:donor_profile_is_eligible;not null;index:idx_donor_profiles_group_eligible,priority:2" json:"donor_profile_is_eligible"`

	DonorProfileCreatedAt time.Time `gorm:"column:donor_profile_created_at;autoCreateTime" json:"donor_profile_created_at"`
	DonorProfileUpdatedAt time.Time `gorm:"column:donor_profile_updated_at;autoUpdateTime" json:"donor_profile_updated_at"`
}

func (DonorProfileModel) TableName() string { return "donor_profiles" }
