package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	bankModel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	"blood_donation_backend/internals/features/donations/donation_records/dto"
	"blood_donation_backend/internals/features/donations/donation_records/model"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	donorModel "blood_donation_backend/internals/features/users/donor_profiles/model"
	donorService "blood_donation_backend/internals/features/users/donor_profiles/service"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "donation_records"

// DonationRecordService keeps the donation audit trail. Rows are appended;
// afterwards only a Pending status may move.
type DonationRecordService struct {
	DB        *gorm.DB
	Validator *helper.Validator
	// Recovery is the minimum gap between two donations of one donor.
	Recovery time.Duration

	donors *donorService.DonorProfileService
}

func NewDonationRecordService(db *gorm.DB, v *helper.Validator, recovery time.Duration) *DonationRecordService {
	return &DonationRecordService{
		DB:        db,
		Validator: v,
		Recovery:  recovery,
		donors:    donorService.NewDonorProfileService(db, v),
	}
}

func (s *DonationRecordService) WithTx(tx *gorm.DB) *DonationRecordService {
	cp := *s
	cp.DB = tx
	return &cp
}

func (s *DonationRecordService) Create(ctx context.Context, req dto.CreateDonationRecordRequest) (*model.DonationRecordModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel(integrity.DateOf(s.Validator.Clock().Now()))
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs := []integrity.Ref{
			{Field: "donation_record_bank_id", Model: &bankModel.BloodBankModel{}, Column: "blood_bank_id", ID: m.DonationRecordBankID},
		}
		if m.DonationRecordRequestID != nil {
			refs = append(refs, integrity.Ref{Field: "donation_record_request_id", Model: &requestModel.BloodRequestModel{}, Column: "blood_request_id", ID: *m.DonationRecordRequestID})
		}

		var donor donorModel.DonorProfileModel
		if err := tx.Where("donor_profile_id = ?", m.DonationRecordDonorID).Take(&donor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Referential(entity, "donation_record_donor_id", m.DonationRecordDonorID)
			}
			return err
		}
		if err := integrity.RequireRefs(tx, entity, refs...); err != nil {
			return err
		}

		if m.DonationRecordStatus != constants.DonationCancelled {
			if err := integrity.CheckEligible(entity, donor.DonorProfileID, donor.DonorProfileIsEligible,
				donor.DonorProfileLastDonationDate, time.Time(m.DonationRecordDate), s.Recovery); err != nil {
				return err
			}
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if m.DonationRecordStatus == constants.DonationCompleted {
			return s.donors.WithTx(tx).RecordDonation(ctx, donor.DonorProfileID, time.Time(m.DonationRecordDate))
		}
		return nil
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[DONATION] recorded id=%d donor=%d bank=%d status=%s", m.DonationRecordID, m.DonationRecordDonorID, m.DonationRecordBankID, m.DonationRecordStatus)
	return m, nil
}

func (s *DonationRecordService) GetByID(ctx context.Context, id uint) (*model.DonationRecordModel, error) {
	var m model.DonationRecordModel
	err := s.DB.WithContext(ctx).Where("donation_record_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *DonationRecordService) List(ctx context.Context, f dto.ListDonationRecordsFilter, p helper.Params) (helper.Page[model.DonationRecordModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.DonationRecordModel{})
	if f.DonorID != nil {
		q = q.Where("donation_record_donor_id = ?", *f.DonorID)
	}
	if f.BankID != nil {
		q = q.Where("donation_record_bank_id = ?", *f.BankID)
	}
	if f.RequestID != nil {
		q = q.Where("donation_record_request_id = ?", *f.RequestID)
	}
	if f.Status != nil {
		q = q.Where("donation_record_status = ?", *f.Status)
	}
	order, err := p.SafeOrder(map[string]string{
		"id":   "donation_record_id",
		"date": "donation_record_date",
	}, "id")
	if err != nil {
		return helper.Page[model.DonationRecordModel]{}, err
	}
	page, err := helper.FindPage[model.DonationRecordModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// UpdateStatus moves a Pending record to Completed or Cancelled.
func (s *DonationRecordService) UpdateStatus(ctx context.Context, id uint, to constants.DonationStatus) (*model.DonationRecordModel, error) {
	var m model.DonationRecordModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("donation_record_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		if !m.DonationRecordStatus.CanTransition(to) {
			return apperror.Conflict(entity, "status", fmt.Sprintf("donation %d cannot move from %s to %s", id, m.DonationRecordStatus, to))
		}
		res := tx.Model(&model.DonationRecordModel{}).
			Where("donation_record_id = ? AND donation_record_status = ?", id, m.DonationRecordStatus).
			Update("donation_record_status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict(entity, "status", fmt.Sprintf("donation %d changed concurrently", id))
		}
		m.DonationRecordStatus = to

		if to == constants.DonationCompleted {
			return s.donors.WithTx(tx).RecordDonation(ctx, m.DonationRecordDonorID, time.Time(m.DonationRecordDate))
		}
		return nil
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Delete removes a Pending or Cancelled record. Completed donations are
// permanent.
func (s *DonationRecordService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.DonationRecordModel
		if err := tx.Where("donation_record_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		if m.DonationRecordStatus == constants.DonationCompleted {
			return apperror.Conflict(entity, "restricted_delete", fmt.Sprintf("donation %d is completed and kept for audit", id))
		}
		return tx.Delete(&model.DonationRecordModel{}, "donation_record_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	return nil
}
