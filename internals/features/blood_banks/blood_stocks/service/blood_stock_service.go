package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	bankModel "blood_donation_backend/internals/features/blood_banks/blood_banks/model"
	"blood_donation_backend/internals/features/blood_banks/blood_stocks/dto"
	"blood_donation_backend/internals/features/blood_banks/blood_stocks/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "blood_stocks"

type BloodStockService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewBloodStockService(db *gorm.DB, v *helper.Validator) *BloodStockService {
	return &BloodStockService{DB: db, Validator: v}
}

func (s *BloodStockService) WithTx(tx *gorm.DB) *BloodStockService {
	return &BloodStockService{DB: tx, Validator: s.Validator}
}

func (s *BloodStockService) Create(ctx context.Context, req dto.CreateBloodStockRequest) (*model.BloodStockModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := &model.BloodStockModel{
		BloodStockBankID:      req.BankID,
		BloodStockGroup:       req.BloodGroup,
		BloodStockUnits:       req.Units,
		BloodStockLastUpdated: s.Validator.Clock().Now(),
	}
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.WithTx(tx).insert(ctx, m)
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return m, nil
}

func (s *BloodStockService) insert(ctx context.Context, m *model.BloodStockModel) error {
	tx := s.DB.WithContext(ctx)
	if err := integrity.RequireRefs(tx, entity, integrity.Ref{
		Field: "blood_stock_bank_id", Model: &bankModel.BloodBankModel{}, Column: "blood_bank_id", ID: m.BloodStockBankID,
	}); err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.BloodStockModel{}).
		Where("blood_stock_bank_id = ? AND blood_stock_blood_group = ?", m.BloodStockBankID, m.BloodStockGroup).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		c := apperror.Conflict(entity, "unique", fmt.Sprintf("bank %d already has a %s stock row", m.BloodStockBankID, m.BloodStockGroup))
		c.Field = "blood_stock_blood_group"
		return c
	}
	return tx.Create(m).Error
}

func (s *BloodStockService) GetByID(ctx context.Context, id uint) (*model.BloodStockModel, error) {
	return s.findOne(ctx, "blood_stock_id = ?", id)
}

func (s *BloodStockService) GetByBankAndGroup(ctx context.Context, bankID uint, group constants.BloodGroup) (*model.BloodStockModel, error) {
	return s.findOne(ctx, "blood_stock_bank_id = ? AND blood_stock_blood_group = ?", bankID, group)
}

func (s *BloodStockService) findOne(ctx context.Context, where string, args ...any) (*model.BloodStockModel, error) {
	var m model.BloodStockModel
	err := s.DB.WithContext(ctx).Where(where, args...).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Levels returns every stock row, ordered by bank then group.
func (s *BloodStockService) Levels(ctx context.Context) ([]model.BloodStockModel, error) {
	var rows []model.BloodStockModel
	err := s.DB.WithContext(ctx).
		Order("blood_stock_bank_id ASC, blood_stock_blood_group ASC").
		Find(&rows).Error
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return rows, nil
}

func (s *BloodStockService) List(ctx context.Context, f dto.ListBloodStocksFilter, p helper.Params) (helper.Page[model.BloodStockModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.BloodStockModel{})
	if f.BankID != nil {
		q = q.Where("blood_stock_bank_id = ?", *f.BankID)
	}
	if f.BloodGroup != nil {
		q = q.Where("blood_stock_blood_group = ?", *f.BloodGroup)
	}
	if f.BelowUnits > 0 {
		q = q.Where("blood_stock_units_available < ?", f.BelowUnits)
	}
	order, err := p.SafeOrder(map[string]string{
		"id":    "blood_stock_id",
		"units": "blood_stock_units_available",
		"group": "blood_stock_blood_group",
	}, "id")
	if err != nil {
		return helper.Page[model.BloodStockModel]{}, err
	}
	page, err := helper.FindPage[model.BloodStockModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// Update sets an absolute unit count.
func (s *BloodStockService) Update(ctx context.Context, id uint, req dto.UpdateBloodStockRequest) (*model.BloodStockModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.BloodStockModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blood_stock_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		now := s.Validator.Clock().Now()
		changes := map[string]any{"blood_stock_last_updated": now}
		if req.Units != nil {
			m.BloodStockUnits = *req.Units
			changes["blood_stock_units_available"] = *req.Units
		}
		m.BloodStockLastUpdated = now
		if err := s.Validator.Struct(entity, &m); err != nil {
			return err
		}
		// units are written only when patched
		if err := tx.Model(&model.BloodStockModel{}).Where("blood_stock_id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("blood_stock_id = ?", id).Take(&m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

/* ====================== ATOMIC UNIT CHANGES ====================== */

// Restock adds units to the (bank, group) row, creating it when missing. The
// increment is a single guarded UPDATE so the 500-unit cap holds under
// concurrent restocks.
func (s *BloodStockService) Restock(ctx context.Context, bankID uint, group constants.BloodGroup, units int) (*model.BloodStockModel, error) {
	if units < 1 || units > model.MaxUnits {
		return nil, apperror.ValidationField(entity, "units", "range", fmt.Sprintf("units must be between 1 and %d", model.MaxUnits))
	}
	if !group.Valid() {
		return nil, apperror.ValidationField(entity, "blood_stock_blood_group", "bloodgroup", "unknown blood group")
	}

	now := s.Validator.Clock().Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.BloodStockModel{}).
			Where("blood_stock_bank_id = ? AND blood_stock_blood_group = ? AND blood_stock_units_available + ? <= ?",
				bankID, group, units, model.MaxUnits).
			Updates(map[string]any{
				"blood_stock_units_available": gorm.Expr("blood_stock_units_available + ?", units),
				"blood_stock_last_updated":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}

		cur, err := s.WithTx(tx).GetByBankAndGroup(ctx, bankID, group)
		if err != nil {
			return err
		}
		if cur != nil {
			return apperror.Conflict(entity, "capacity",
				fmt.Sprintf("restocking %d units of %s would exceed %d (have %d)", units, group, model.MaxUnits, cur.BloodStockUnits))
		}
		return s.WithTx(tx).insert(ctx, &model.BloodStockModel{
			BloodStockBankID:      bankID,
			BloodStockGroup:       group,
			BloodStockUnits:       units,
			BloodStockLastUpdated: now,
		})
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[STOCK] restock bank=%d group=%s +%d", bankID, group, units)
	return s.GetByBankAndGroup(ctx, bankID, group)
}

// Decrement removes units from the (bank, group) row in one conditional
// UPDATE. When the row holds fewer units than asked nothing changes and a
// conflict naming the available amount is returned.
func (s *BloodStockService) Decrement(ctx context.Context, bankID uint, group constants.BloodGroup, units int) error {
	if units < 1 {
		return apperror.ValidationField(entity, "units", "min", "units must be positive")
	}
	db := s.DB.WithContext(ctx)
	res := db.Model(&model.BloodStockModel{}).
		Where("blood_stock_bank_id = ? AND blood_stock_blood_group = ? AND blood_stock_units_available >= ?", bankID, group, units).
		Updates(map[string]any{
			"blood_stock_units_available": gorm.Expr("blood_stock_units_available - ?", units),
			"blood_stock_last_updated":    s.Validator.Clock().Now(),
		})
	if res.Error != nil {
		return database.Classify(entity, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	available := 0
	cur, err := s.GetByBankAndGroup(ctx, bankID, group)
	if err != nil {
		return err
	}
	if cur != nil {
		available = cur.BloodStockUnits
	}
	return apperror.Conflict(entity, "insufficient_stock",
		fmt.Sprintf("bank %d has %d units of %s, %d needed", bankID, available, group, units))
}

func (s *BloodStockService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&model.BloodStockModel{}, "blood_stock_id = ?", id)
	if res.Error != nil {
		return database.Classify(entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(entity, id)
	}
	return nil
}
