package dto

import (
	"strings"
	"time"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/features/donations/appointments/model"
)

type CreateAppointmentRequest struct {
	DonorID uint      `json:"appointment_donor_id" validate:"required"`
	BankID  uint      `json:"appointment_bank_id" validate:"required"`
	At      time.Time `json:"appointment_at" validate:"required"`
	// Status defaults to Scheduled.
	Status  *constants.AppointmentStatus `json:"appointment_status,omitempty" validate:"omitempty,oneof=Scheduled Pending"`
	Remarks *string                      `json:"appointment_remarks,omitempty" validate:"omitempty,max=500"`
}

func (r *CreateAppointmentRequest) ToModel() *model.AppointmentModel {
	m := &model.AppointmentModel{
		AppointmentDonorID: r.DonorID,
		AppointmentBankID:  r.BankID,
		AppointmentAt:      r.At.UTC(),
		AppointmentStatus:  constants.AppointmentScheduled,
		AppointmentRemarks: trimPtr(r.Remarks),
	}
	if r.Status != nil {
		m.AppointmentStatus = *r.Status
	}
	return m
}

type UpdateAppointmentRequest struct {
	At      *time.Time                   `json:"appointment_at,omitempty"`
	Status  *constants.AppointmentStatus `json:"appointment_status,omitempty" validate:"omitempty,oneof=Scheduled Completed Cancelled Pending"`
	Remarks *string                      `json:"appointment_remarks,omitempty" validate:"omitempty,max=500"`
}

func (r *UpdateAppointmentRequest) ApplyToModel(m *model.AppointmentModel) {
	if r.At != nil {
		m.AppointmentAt = r.At.UTC()
	}
	if r.Status != nil {
		m.AppointmentStatus = *r.Status
	}
	if r.Remarks != nil {
		m.AppointmentRemarks = trimPtr(r.Remarks)
	}
}

type ListAppointmentsFilter struct {
	DonorID *uint
	BankID  *uint
	Status  *constants.AppointmentStatus
	From    *time.Time
	To      *time.Time
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
