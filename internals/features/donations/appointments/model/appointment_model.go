package model

import (
	"time"

	"blood_donation_backend/internals/constants"
)

type AppointmentModel struct {
	AppointmentID      uint                        `gorm:"column:appointment_id;primaryKey;autoIncrement" json:"appointment_id"`
	AppointmentDonorID uint                        `gorm:"column:appointment_donor_id;not null;index:idx_appointments_donor" json:"appointment_donor_id" validate:"required"`
	AppointmentBankID  uint                        `gorm:"column:appointment_bank_id;not null;index:idx_appointments_bank" json:"appointment_bank_id" validate:"required"`
	AppointmentAt      time.Time                   `gorm:"column:appointment_at;not null" json:"appointment_at" validate:"required"`
	AppointmentStatus  constants.AppointmentStatus `gorm:"column:appointment_status;type:varchar(20);not null" json:"appointment_status" validate:"required,oneof=Scheduled Completed Cancelled Pending"`
	AppointmentRemarks *string                     `gorm:"column:appointment_remarks;size:500" json:"appointment_remarks,omitempty" validate:"omitempty,max=500"`

	AppointmentCreatedAt time.Time `gorm:"column:appointment_created_at;autoCreateTime" json:"appointment_created_at"`
	AppointmentUpdatedAt time.Time `gorm:"column:appointment_updated_at;autoUpdateTime" json:"appointment_updated_at"`
}

func (AppointmentModel) TableName() string { return "appointments" }
