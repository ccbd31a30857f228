package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"blood_donation_backend/internals/configs"
	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	bankModel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	"blood_donation_backend/internals/features/donations/appointments/dto"
	"blood_donation_backend/internals/features/donations/appointments/model"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	donorModel "blood_donation_backend/internals/features/users/donor_profiles/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "appointments"

type AppointmentService struct {
	DB        *gorm.DB
	Validator *helper.Validator
	Grace     time.Duration
	Recovery  time.Duration
}

func NewAppointmentService(db *gorm.DB, v *helper.Validator, wf configs.WorkflowConfig) *AppointmentService {
	return &AppointmentService{DB: db, Validator: v, Grace: wf.AppointmentGrace, Recovery: wf.RecoveryPeriod}
}

func (s *AppointmentService) WithTx(tx *gorm.DB) *AppointmentService {
	cp := *s
	cp.DB = tx
	return &cp
}

// Create books an open appointment. The time may lag "now" by at most the
// grace window and the donor must be eligible on that day. Open appointments
// already held by the donor count as pending donations.
func (s *AppointmentService) Create(ctx context.Context, req dto.CreateAppointmentRequest) (*model.AppointmentModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel()
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}
	now := s.Validator.Clock().Now()
	if err := integrity.CheckNotBefore(entity, "appointment_at", m.AppointmentAt, now, s.Grace); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donor donorModel.DonorProfileModel
		if err := tx.Where("donor_profile_id = ?", m.AppointmentDonorID).Take(&donor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Referential(entity, "appointment_donor_id", m.AppointmentDonorID)
			}
			return err
		}
		if err := integrity.RequireRefs(tx, entity, integrity.Ref{
			Field: "appointment_bank_id", Model: &bankModel.BloodBankModel{}, Column: "blood_bank_id", ID: m.AppointmentBankID,
		}); err != nil {
			return err
		}
		if err := integrity.CheckEligible(entity, donor.DonorProfileID, donor.DonorProfileIsEligible,
			donor.DonorProfileLastDonationDate, m.AppointmentAt, s.Recovery); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[APPOINTMENT] booked id=%d donor=%d bank=%d at=%s", m.AppointmentID, m.AppointmentDonorID, m.AppointmentBankID, m.AppointmentAt.Format(time.RFC3339))
	return m, nil
}

// checkOpenWindow treats every open appointment of the donor as a pending
// donation: a booking closer than the recovery period to one of them is
// refused. self is skipped when rescheduling.
func (s *AppointmentService) checkOpenWindow(tx *gorm.DB, donorID uint, at time.Time, self uint) error {
	if s.Recovery <= 0 {
		return nil
	}
	var open []model.AppointmentModel
	err := tx.Where("appointment_donor_id = ? AND appointment_status IN ? AND appointment_id <> ?", donorID,
		[]constants.AppointmentStatus{constants.AppointmentScheduled, constants.AppointmentPending}, self).
		Order("appointment_at ASC").
		Find(&open).Error
	if err != nil {
		return err
	}
	for _, o := range open {
		gap := o.AppointmentAt.Sub(at)
		if gap < 0 {
			gap = -gap
		}
		if gap < s.Recovery {
			return apperror.Conflict(entity, "donor_eligibility",
				fmt.Sprintf("donor %d already has open appointment %d on %s", donorID, o.AppointmentID, o.AppointmentAt.Format("2006-01-02")))
		}
	}
	return nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id uint) (*model.AppointmentModel, error) {
	var m model.AppointmentModel
	err := s.DB.WithContext(ctx).Where("appointment_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *AppointmentService) List(ctx context.Context, f dto.ListAppointmentsFilter, p helper.Params) (helper.Page[model.AppointmentModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.AppointmentModel{})
	if f.DonorID != nil {
		q = q.Where("appointment_donor_id = ?", *f.DonorID)
	}
	if f.BankID != nil {
		q = q.Where("appointment_bank_id = ?", *f.BankID)
	}
	if f.Status != nil {
		q = q.Where("appointment_status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("appointment_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("appointment_at < ?", f.To.UTC())
	}
	order, err := p.SafeOrder(map[string]string{
		"id": "appointment_id",
		"at": "appointment_at",
	}, "at")
	if err != nil {
		return helper.Page[model.AppointmentModel]{}, err
	}
	page, err := helper.FindPage[model.AppointmentModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// Update edits time, status and remarks while the appointment is still
// Scheduled or Pending.
func (s *AppointmentService) Update(ctx context.Context, id uint, req dto.UpdateAppointmentRequest) (*model.AppointmentModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.AppointmentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		prev := m.AppointmentStatus
		if !prev.Open() {
			return apperror.Conflict(entity, "status", fmt.Sprintf("appointment %d is %s", id, prev))
		}
		req.ApplyToModel(&m)
		if err := s.Validator.Struct(entity, &m); err != nil {
			return err
		}
		if req.At != nil {
			if err := integrity.CheckNotBefore(entity, "appointment_at", m.AppointmentAt, s.Validator.Clock().Now(), s.Grace); err != nil {
				return err
			}
			if m.AppointmentStatus.Open() {
				if err := s.checkOpenWindow(tx, m.AppointmentDonorID, m.AppointmentAt, id); err != nil {
					return err
				}
			}
		}
		res := tx.Model(&model.AppointmentModel{}).
			Where("appointment_id = ? AND appointment_status = ?", id, prev).
			Updates(map[string]any{
				"appointment_at":         m.AppointmentAt,
				"appointment_status":     m.AppointmentStatus,
				"appointment_remarks":    m.AppointmentRemarks,
				"appointment_updated_at": s.Validator.Clock().Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict(entity, "status", fmt.Sprintf("appointment %d changed concurrently", id))
		}
		return nil
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Close moves an open appointment to Completed or Cancelled and reports
// whether it was still open.
func (s *AppointmentService) Close(ctx context.Context, id uint, to constants.AppointmentStatus) (bool, error) {
	if to != constants.AppointmentCompleted && to != constants.AppointmentCancelled {
		return false, apperror.ValidationField(entity, "appointment_status", "oneof", "appointments close as Completed or Cancelled")
	}
	res := s.DB.WithContext(ctx).Model(&model.AppointmentModel{}).
		Where("appointment_id = ? AND appointment_status IN ?", id,
			[]constants.AppointmentStatus{constants.AppointmentScheduled, constants.AppointmentPending}).
		Updates(map[string]any{
			"appointment_status":     to,
			"appointment_updated_at": s.Validator.Clock().Now(),
		})
	if res.Error != nil {
		return false, database.Classify(entity, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.AppointmentModel
		if err := tx.Where("appointment_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		if m.AppointmentStatus == constants.AppointmentCompleted {
			return apperror.Conflict(entity, "restricted_delete", fmt.Sprintf("appointment %d is completed and kept for audit", id))
		}
		if err := integrity.RestrictDelete(tx, entity, id,
			integrity.Dependent{Name: "blood_requests", Model: &requestModel.BloodRequestModel{}, Column: "blood_request_appointment_id"},
		); err != nil {
			return err
		}
		return tx.Delete(&model.AppointmentModel{}, "appointment_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	return nil
}
