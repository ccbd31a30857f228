package dto

import (
	"time"

	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/requests/blood_requests/model"
)

type CreateBloodRequestRequest struct {
	RecipientID uint                 `json:"blood_request_recipient_id" validate:"required"`
	BloodGroup  constants.BloodGroup `json:"blood_request_blood_group_needed" validate:"required,bloodgroup"`
	Quantity    int                  `json:"blood_request_quantity" validate:"required,min=1,max=10"`
	// Date defaults to today when nil.
	Date *datatypes.Date `json:"blood_request_date,omitempty" validate:"omitempty,notfuture"`
}

func (r *CreateBloodRequestRequest) ToModel(today datatypes.Date) *model.BloodRequestModel {
	d := today
	if r.Date != nil {
		d = *r.Date
	}
	return &model.BloodRequestModel{
		BloodRequestRecipientID: r.RecipientID,
		BloodRequestGroup:       r.BloodGroup,
		BloodRequestQuantity:    r.Quantity,
		BloodRequestDate:        d,
		BloodRequestStatus:      constants.RequestPending,
	}
}

// UpdateBloodRequestRequest edits a request that is still Pending. Status is
// moved only by the fulfillment workflow.
type UpdateBloodRequestRequest struct {
	BloodGroup *constants.BloodGroup `json:"blood_request_blood_group_needed,omitempty" validate:"omitempty,bloodgroup"`
	Quantity   *int                  `json:"blood_request_quantity,omitempty" validate:"omitempty,min=1,max=10"`
	Date       *datatypes.Date       `json:"blood_request_date,omitempty" validate:"omitempty,notfuture"`
}

func (r *UpdateBloodRequestRequest) ApplyToModel(m *model.BloodRequestModel) {
	if r.BloodGroup != nil {
		m.BloodRequestGroup = *r.BloodGroup
	}
	if r.Quantity != nil {
		m.BloodRequestQuantity = *r.Quantity
	}
	if r.Date != nil {
		m.BloodRequestDate = *r.Date
	}
}

type ListBloodRequestsFilter struct {
	RecipientID     *uint
	AcceptedDonorID *uint
	Status          *constants.RequestStatus
	BloodGroup      *constants.BloodGroup
}

type BloodRequestResponse struct {
	ID               uint                    `json:"blood_request_id"`
	RecipientID      uint                    `json:"blood_request_recipient_id"`
	BloodGroup       constants.BloodGroup    `json:"blood_request_blood_group_needed"`
	Quantity         int                     `json:"blood_request_quantity"`
	Date             datatypes.Date          `json:"blood_request_date"`
	Status           constants.RequestStatus `json:"blood_request_status"`
	AcceptedDonorID  *uint                   `json:"blood_request_accepted_donor_id,omitempty"`
	FulfillingBankID *uint                   `json:"blood_request_fulfilling_bank_id,omitempty"`
	AppointmentID    *uint                   `json:"blood_request_appointment_id,omitempty"`
	ResolvedAt       *time.Time              `json:"blood_request_resolved_at,omitempty"`
	CreatedAt        time.Time               `json:"blood_request_created_at"`
}

func FromModel(m *model.BloodRequestModel) BloodRequestResponse {
	return BloodRequestResponse{
		ID:               m.BloodRequestID,
		RecipientID:      m.BloodRequestRecipientID,
		BloodGroup:       m.BloodRequestGroup,
		Quantity:         m.BloodRequestQuantity,
		Date:             m.BloodRequestDate,
		Status:           m.BloodRequestStatus,
		AcceptedDonorID:  m.BloodRequestAcceptedDonorID,
		FulfillingBankID: m.BloodRequestFulfillingBankID,
		AppointmentID:    m.BloodRequestAppointmentID,
		ResolvedAt:       m.BloodRequestResolvedAt,
		CreatedAt:        m.BloodRequestCreatedAt,
	}
}
