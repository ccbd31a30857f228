package dto

import (
	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/donations/donation_records/model"
)

type CreateDonationRecordRequest struct {
	DonorID  uint `json:"donation_record_donor_id" validate:"required"`
	BankID   uint `json:"donation_record_bank_id" validate:"required"`
	Quantity int  `json:"donation_record_quantity" validate:"required,min=1,max=5"`
	// Date defaults to today, Status to Completed.
	Date      *datatypes.Date           `json:"donation_record_date,omitempty" validate:"omitempty,notfuture"`
	Status    *constants.DonationStatus `json:"donation_record_status,omitempty" validate:"omitempty,oneof=Completed Pending Cancelled"`
	RequestID *uint                     `json:"donation_record_request_id,omitempty"`
}

func (r *CreateDonationRecordRequest) ToModel(today datatypes.Date) *model.DonationRecordModel {
	m := &model.DonationRecordModel{
		DonationRecordDonorID:   r.DonorID,
		DonationRecordBankID:    r.BankID,
		DonationRecordDate:      today,
		DonationRecordQuantity:  r.Quantity,
		DonationRecordStatus:    constants.DonationCompleted,
		DonationRecordRequestID: r.RequestID,
	}
	if r.Date != nil {
		m.DonationRecordDate = *r.Date
	}
	if r.Status != nil {
		m.DonationRecordStatus = *r.Status
	}
	return m
}

type ListDonationRecordsFilter struct {
	DonorID   *uint
	BankID    *uint
	RequestID *uint
	Status    *constants.DonationStatus
}
