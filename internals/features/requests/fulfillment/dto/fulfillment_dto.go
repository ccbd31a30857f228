package dto

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	apptModel "blood_donation_backend/internals/features/donations/appointments/model"
	donationModel "blood_donation_backend/internals/features/donations/donation_records/model"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	linkModel "blood_donation_backend/internals/features/requests/donor_request_links/model"
)

// Actor is the caller identity every workflow operation is checked against.
type Actor struct {
	UserID uint
	Role   constants.Role
}

type SubmitBloodRequestInput struct {
	// RecipientID may be left zero by a Recipient actor; it resolves to their own profile.
	RecipientID uint                 `json:"blood_request_recipient_id"`
	BloodGroup  constants.BloodGroup `json:"blood_request_blood_group_needed" validate:"required,bloodgroup"`
	Quantity    int                  `json:"blood_request_quantity" validate:"required,min=1,max=10"`
	Date        *datatypes.Date      `json:"blood_request_date,omitempty" validate:"omitempty,notfuture"`
}

type RespondInput struct {
	RequestID uint `json:"request_id" validate:"required"`
	DonorID   uint `json:"donor_id" validate:"required"`
	Accept    bool `json:"accept"`
	// Required on accept.
	BloodBankID   uint      `json:"blood_bank_id" validate:"required_if=Accept true"`
	AppointmentAt time.Time `json:"appointment_at"`
	Remarks       *string   `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// MatchResult lists the links and notifications written by one matching pass.
type MatchResult struct {
	Links    []linkModel.DonorRequestLinkModel
	Notified int
}

type SubmitResult struct {
	Request *requestModel.BloodRequestModel
	MatchResult
}

type RespondResult struct {
	Request *requestModel.BloodRequestModel
	// Appointment is set when the donor accepted.
	Appointment *apptModel.AppointmentModel
	// RemainingLinks counts the donors still matched after a decline.
	RemainingLinks int64
}

type FulfillResult struct {
	Request  *requestModel.BloodRequestModel
	Donation *donationModel.DonationRecordModel
}
