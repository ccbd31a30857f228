package model

import (
	"time"

	"blood_donation_backend/internals/constants"
)

type RecipientProfileModel struct {
	RecipientProfileID            uint                 `gorm:"column:recipient_profile_id;primaryKey;autoIncrement" json:"recipient_profile_id"`
	RecipientProfileUserID        uint                 `gorm:"column:recipient_profile_user_id;not null;uniqueIndex:uq_recipient_profiles_user_id" json:"recipient_profile_user_id" validate:"required"`
	RecipientProfileHospitalName  string               `gorm:"column:recipient_profile_hospital_name;size:150;not null" json:"recipient_profile_hospital_name" validate:"required,min=2,max=150"`
	RecipientProfilePatientName   string               `gorm:"column:recipient_profile_patient_name;size:100;not null" json:"recipient_profile_patient_name" validate:"required,min=2,max=100"`
	RecipientProfileRequiredGroup constants.BloodGroup `gorm:"column:recipient_profile_required_blood_group;type:varchar(3);not null" json:"recipient_profile_required_blood_group" validate:"required,bloodgroup"`
	RecipientProfileContactNumber string               `gorm:"column:recipient_profile_contact_number;size:20;not null" json:"recipient_profile_contact_number" validate:"required,phone"`

	RecipientProfileCreatedAt time.Time `gorm:"column:recipient_profile_created_at;autoCreateTime" json:"recipient_profile_created_at"`
	RecipientProfileUpdatedAt time.Time `gorm:"column:recipient_profile_updated_at;autoUpdateTime" json:"recipient_profile_updated_at"`
}

func (RecipientProfileModel) TableName() string { return "recipient_profiles" }
