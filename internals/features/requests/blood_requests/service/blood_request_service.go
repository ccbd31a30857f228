package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	donationModel "blood_donation_backend/internals/features/donations/donation_records/model"
	"blood_donation_backend/internals/features/requests/blood_requests/dto"
	"blood_donation_backend/internals/features/requests/blood_requests/model"
	linkModel "blood_donation_backend/internals/features/requests/donor_request_links/model"
	recipientModel "blood_donation_backend/internals/features/users/recipient_profiles/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "blood_requests"

type BloodRequestService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewBloodRequestService(db *gorm.DB, v *helper.Validator) *BloodRequestService {
	return &BloodRequestService{DB: db, Validator: v}
}

func (s *BloodRequestService) WithTx(tx *gorm.DB) *BloodRequestService {
	return &BloodRequestService{DB: tx, Validator: s.Validator}
}

// Create stores a Pending request. Matching donors is the workflow's job;
// this only persists the row.
func (s *BloodRequestService) Create(ctx context.Context, req dto.CreateBloodRequestRequest) (*model.BloodRequestModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel(integrity.DateOf(s.Validator.Clock().Now()))
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := integrity.RequireRefs(tx, entity, integrity.Ref{
			Field: "blood_request_recipient_id", Model: &recipientModel.RecipientProfileModel{},
			Column: "recipient_profile_id", ID: m.BloodRequestRecipientID,
		}); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return m, nil
}

func (s *BloodRequestService) GetByID(ctx context.Context, id uint) (*model.BloodRequestModel, error) {
	var m model.BloodRequestModel
	err := s.DB.WithContext(ctx).Where("blood_request_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// GetForUpdate loads the request under a row lock. On sqlite the locking
// clause is dropped and the single-writer connection serializes instead.
func (s *BloodRequestService) GetForUpdate(ctx context.Context, id uint) (*model.BloodRequestModel, error) {
	var m model.BloodRequestModel
	q := s.DB.WithContext(ctx)
	if q.Dialector.Name() == database.DriverPostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("blood_request_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(entity, id)
		}
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *BloodRequestService) List(ctx context.Context, f dto.ListBloodRequestsFilter, p helper.Params) (helper.Page[model.BloodRequestModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.BloodRequestModel{})
	if f.RecipientID != nil {
		q = q.Where("blood_request_recipient_id = ?", *f.RecipientID)
	}
	if f.AcceptedDonorID != nil {
		q = q.Where("blood_request_accepted_donor_id = ?", *f.AcceptedDonorID)
	}
	if f.Status != nil {
		q = q.Where("blood_request_status = ?", *f.Status)
	}
	if f.BloodGroup != nil {
		q = q.Where("blood_request_blood_group_needed = ?", *f.BloodGroup)
	}
	order, err := p.SafeOrder(map[string]string{
		"id":       "blood_request_id",
		"date":     "blood_request_date",
		"quantity": "blood_request_quantity",
	}, "id")
	if err != nil {
		return helper.Page[model.BloodRequestModel]{}, err
	}
	page, err := helper.FindPage[model.BloodRequestModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// CountByStatus reports how many requests sit in each status. Statuses with no
// rows are absent.
func (s *BloodRequestService) CountByStatus(ctx context.Context) (map[constants.RequestStatus]int64, error) {
	var rows []struct {
		Status constants.RequestStatus
		N      int64
	}
	err := s.DB.WithContext(ctx).Model(&model.BloodRequestModel{}).
		Select("blood_request_status AS status, COUNT(*) AS n").
		Group("blood_request_status").
		Scan(&rows).Error
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	out := make(map[constants.RequestStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

func (s *BloodRequestService) Update(ctx context.Context, id uint, req dto.UpdateBloodRequestRequest) (*model.BloodRequestModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.BloodRequestModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blood_request_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		if m.BloodRequestStatus != constants.RequestPending {
			return apperror.Conflict(entity, "status", fmt.Sprintf("request %d is %s; only Pending requests can be edited", id, m.BloodRequestStatus))
		}
		req.ApplyToModel(&m)
		if err := s.Validator.Struct(entity, &m); err != nil {
			return err
		}
		// guarded so a concurrent workflow transition wins over the edit
		res := tx.Model(&model.BloodRequestModel{}).
			Where("blood_request_id = ? AND blood_request_status = ?", id, constants.RequestPending).
			Updates(map[string]any{
				"blood_request_blood_group_needed": m.BloodRequestGroup,
				"blood_request_quantity":           m.BloodRequestQuantity,
				"blood_request_date":               m.BloodRequestDate,
				"blood_request_updated_at":         s.Validator.Clock().Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict(entity, "status", fmt.Sprintf("request %d changed state concurrently", id))
		}
		return nil
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Transition moves the request from one of from to to, applying extra column
// updates in the same statement. It reports false when the row was not in an
// allowed state, which is how the workflow detects a lost race.
func (s *BloodRequestService) Transition(ctx context.Context, id uint, from []constants.RequestStatus, to constants.RequestStatus, extra map[string]any) (bool, error) {
	allowed := make([]constants.RequestStatus, 0, len(from))
	for _, f := range from {
		if f.CanTransition(to) {
			allowed = append(allowed, f)
		}
	}
	if len(allowed) == 0 {
		return false, apperror.Conflict(entity, "status", fmt.Sprintf("no transition into %s from %v", to, from))
	}

	now := s.Validator.Clock().Now()
	updates := map[string]any{
		"blood_request_status":     to,
		"blood_request_updated_at": now,
	}
	if to.Terminal() {
		updates["blood_request_resolved_at"] = now
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := s.DB.WithContext(ctx).Model(&model.BloodRequestModel{}).
		Where("blood_request_id = ? AND blood_request_status IN ?", id, allowed).
		Updates(updates)
	if res.Error != nil {
		return false, database.Classify(entity, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete is restricted while donor links or donation records point at the request.
func (s *BloodRequestService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := integrity.Exists(tx, &model.BloodRequestModel{}, "blood_request_id", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound(entity, id)
		}
		if err := integrity.RestrictDelete(tx, entity, id,
			integrity.Dependent{Name: "donor_request_links", Model: &linkModel.DonorRequestLinkModel{}, Column: "donor_request_link_request_id"},
			integrity.Dependent{Name: "donation_records", Model: &donationModel.DonationRecordModel{}, Column: "donation_record_request_id"},
		); err != nil {
			return err
		}
		return tx.Delete(&model.BloodRequestModel{}, "blood_request_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	log.Printf("[REQUEST] deleted id=%d", id)
	return nil
}
