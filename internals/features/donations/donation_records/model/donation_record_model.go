package model

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
)

// DonationRecordModel is an append-only audit row; only the status moves.
type DonationRecordModel struct {
	DonationRecordID       uint                     `gorm:"column:donation_record_id;primaryKey;autoIncrement" json:"donation_record_id"`
	DonationRecordDonorID  uint                     `gorm:"column:donation_record_donor_id;not null;index:idx_donation_records_donor" json:"donation_record_donor_id" validate:"required"`
	DonationRecordBankID   uint                     `gorm:"column:donation_record_bank_id;not null;index:idx_donation_records_bank" json:"donation_record_bank_id" validate:"required"`
	DonationRecordDate     datatypes.Date           `gorm:"column:donation_record_date;not null" json:"donation_record_date" validate:"required,notfuture"`
	DonationRecordQuantity int                      `gorm:"column:donation_record_quantity;not null" json:"donation_record_quantity" validate:"min=1,max=5"`
	DonationRecordStatus   constants.DonationStatus `gorm:"column:donation_record_status;type:varchar(20);not null" json:"donation_record_status" validate:"required,oneof=Completed Pending Cancelled"`

	// request yang dipenuhi oleh donasi ini (opsional)
	DonationRecordRequestID *uint `gorm:"column:donation_record_request_id;index" json:"donation_record_request_id,omitempty"`

	DonationRecordCreatedAt time.Time `gorm:"column:donation_record_created_at;autoCreateTime" json:"donation_record_created_at"`
}

func (DonationRecordModel) TableName() string { return "donation_records" }
