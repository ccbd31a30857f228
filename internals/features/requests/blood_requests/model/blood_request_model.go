package model

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
)

type BloodRequestModel struct {
	BloodRequestID          uint                    `gorm:"column:blood_request_id;primaryKey;autoIncrement" json:"blood_request_id"`
	BloodRequestRecipientID uint                    `gorm:"column:blood_request_recipient_id;not null;index:idx_blood_requests_recipient" json:"blood_request_recipient_id" validate:"required"`
	BloodRequestGroup       constants.BloodGroup    `gorm:"column:blood_request_blood_group_needed;type:varchar(3);not null" json:"blood_request_blood_group_needed" validate:"required,bloodgroup"`
	BloodRequestQuantity    int                     `gorm:"column:blood_request_quantity;not null" json:"blood_request_quantity" validate:"min=1,max=10"`
	BloodRequestDate        datatypes.Date          `gorm:"column:blood_request_date;not null" json:"blood_request_date" validate:"required,notfuture"`
	BloodRequestStatus      constants.RequestStatus `gorm:"column:blood_request_status;type:varchar(20);not null;default:'Pending';index:idx_blood_requests_status" json:"blood_request_status" validate:"required,oneof=Pending Approved Fulfilled Rejected Cancelled"`

	// diisi oleh workflow saat donor menerima
	BloodRequestAcceptedDonorID  *uint `gorm:"column:blood_request_accepted_donor_id;index" json:"blood_request_accepted_donor_id,omitempty"`
	BloodRequestFulfillingBankID *uint `gorm:"column:blood_request_fulfilling_bank_id;index" json:"blood_request_fulfilling_bank_id,omitempty"`
	BloodRequestAppointmentID    *uint `gorm:"column:blood_request_appointment_id;index" json:"blood_request_appointment_id,omitempty"`

	BloodRequestResolvedAt *time.Time `gorm:"column:blood_request_resolved_at" json:"blood_request_resolved_at,omitempty"`
	BloodRequestCreatedAt  time.Time  `gorm:"column:blood_request_created_at;autoCreateTime" json:"blood_request_created_at"`
	BloodRequestUpdatedAt  time.Time  `gorm:"column:blood_request_updated_at;autoUpdateTime" json:"blood_request_updated_at"`
}

func (BloodRequestModel) TableName() string { return "blood_requests" }
