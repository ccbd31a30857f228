package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	database "blood_donation_backend/internals/databases"
	"blood_donation_backend/internals/features/blood_banks/blood_banks/dto"
	"blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	stockModel "blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
	apptModel "blood_donation_backend/internals/features/donations/appointments/model"
	donationModel "blood_donation_backend/internals/features/donations/donation_records/model"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "blood_banks"

type BloodBankService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewBloodBankService(db *gorm.DB, v *helper.Validator) *BloodBankService {
	return &BloodBankService{DB: db, Validator: v}
}

func (s *BloodBankService) WithTx(tx *gorm.DB) *BloodBankService {
	return &BloodBankService{DB: tx, Validator: s.Validator}
}

func (s *BloodBankService) Create(ctx context.Context, req dto.CreateBloodBankRequest) (*model.BloodBankModel, error) {
	req.Normalize()
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel()
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameLocation(tx, m, 0); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[BANK] created id=%d name=%q", m.BloodBankID, m.BloodBankName)
	return m, nil
}

// checkNameLocation enforces case-insensitive uniqueness of (name, location).
func checkNameLocation(tx *gorm.DB, m *model.BloodBankModel, selfID uint) error {
	q := tx.Model(&model.BloodBankModel{}).
		Where("LOWER(blood_bank_name) = ? AND LOWER(blood_bank_location) = ?",
			strings.ToLower(m.BloodBankName), strings.ToLower(m.BloodBankLocation))
	if selfID != 0 {
		q = q.Where("blood_bank_id <> ?", selfID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		c := apperror.Conflict(entity, "unique", "a blood bank with this name already exists at this location")
		c.Field = "blood_bank_name"
		return c
	}
	return nil
}

func (s *BloodBankService) GetByID(ctx context.Context, id uint) (*model.BloodBankModel, error) {
	return s.findOne(ctx, "blood_bank_id = ?", id)
}

// GetByNameLocation is used by the seeder to skip existing banks.
func (s *BloodBankService) GetByNameLocation(ctx context.Context, name, location string) (*model.BloodBankModel, error) {
	return s.findOne(ctx, "LOWER(blood_bank_name) = ? AND LOWER(blood_bank_location) = ?",
		strings.ToLower(strings.TrimSpace(name)), strings.ToLower(strings.TrimSpace(location)))
}

func (s *BloodBankService) findOne(ctx context.Context, where string, args ...any) (*model.BloodBankModel, error) {
	var m model.BloodBankModel
	err := s.DB.WithContext(ctx).Where(where, args...).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *BloodBankService) List(ctx context.Context, f dto.ListBloodBanksFilter, p helper.Params) (helper.Page[model.BloodBankModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.BloodBankModel{})
	if t := strings.TrimSpace(f.Query); t != "" {
		like := "%" + strings.ToLower(t) + "%"
		q = q.Where("LOWER(blood_bank_name) LIKE ? OR LOWER(blood_bank_location) LIKE ?", like, like)
	}
	order, err := p.SafeOrder(map[string]string{
		"id":       "blood_bank_id",
		"name":     "blood_bank_name",
		"location": "blood_bank_location",
		"capacity": "blood_bank_capacity",
	}, "id")
	if err != nil {
		return helper.Page[model.BloodBankModel]{}, err
	}
	page, err := helper.FindPage[model.BloodBankModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

func (s *BloodBankService) Update(ctx context.Context, id uint, req dto.UpdateBloodBankRequest) (*model.BloodBankModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.BloodBankModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blood_bank_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		req.ApplyToModel(&m)
		if err := s.Validator.Struct(entity, &m); err != nil {
			return err
		}
		if err := checkNameLocation(tx, &m, id); err != nil {
			return err
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Delete cascades to the bank's stock rows and is restricted by donation
// records, appointments and requests fulfilled from this bank.
func (s *BloodBankService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := integrity.Exists(tx, &model.BloodBankModel{}, "blood_bank_id", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound(entity, id)
		}
		if err := integrity.RestrictDelete(tx, entity, id,
			integrity.Dependent{Name: "donation_records", Model: &donationModel.DonationRecordModel{}, Column: "donation_record_bank_id"},
			integrity.Dependent{Name: "appointments", Model: &apptModel.AppointmentModel{}, Column: "appointment_bank_id"},
			integrity.Dependent{Name: "blood_requests", Model: &requestModel.BloodRequestModel{}, Column: "blood_request_fulfilling_bank_id"},
		); err != nil {
			return err
		}
		res := tx.Where("blood_stock_bank_id = ?", id).Delete(&stockModel.BloodStockModel{})
		if res.Error != nil {
			return res.Error
		}
		log.Printf("[BANK] id=%d cascading %d stock rows", id, res.RowsAffected)
		return tx.Delete(&model.BloodBankModel{}, "blood_bank_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	log.Printf("[BANK] deleted id=%d", id)
	return nil
}
