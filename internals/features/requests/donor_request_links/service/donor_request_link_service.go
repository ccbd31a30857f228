package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	database "blood_donation_backend/internals/databases"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	"blood_donation_backend/internals/features/requests/donor_request_links/model"
	donorModel "blood_donation_backend/internals/features/users/donor_profiles/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "donor_request_links"

// DonorRequestLinkService stores the donor/request matches. Links are
// immutable: created, read, and removed, never edited.
type DonorRequestLinkService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewDonorRequestLinkService(db *gorm.DB, v *helper.Validator) *DonorRequestLinkService {
	return &DonorRequestLinkService{DB: db, Validator: v}
}

func (s *DonorRequestLinkService) WithTx(tx *gorm.DB) *DonorRequestLinkService {
	return &DonorRequestLinkService{DB: tx, Validator: s.Validator}
}

func (s *DonorRequestLinkService) Create(ctx context.Context, donorID, requestID uint) (*model.DonorRequestLinkModel, error) {
	m := &model.DonorRequestLinkModel{
		DonorRequestLinkDonorID:   donorID,
		DonorRequestLinkRequestID: requestID,
		DonorRequestLinkLinkedAt:  s.Validator.Clock().Now(),
	}
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := integrity.RequireRefs(tx, entity,
			integrity.Ref{Field: "donor_request_link_donor_id", Model: &donorModel.DonorProfileModel{}, Column: "donor_profile_id", ID: donorID},
			integrity.Ref{Field: "donor_request_link_request_id", Model: &requestModel.BloodRequestModel{}, Column: "blood_request_id", ID: requestID},
		); err != nil {
			return err
		}
		linked, err := s.WithTx(tx).IsLinked(ctx, donorID, requestID)
		if err != nil {
			return err
		}
		if linked {
			return apperror.Conflict(entity, "unique", "donor is already linked to this request")
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return m, nil
}

func (s *DonorRequestLinkService) GetByID(ctx context.Context, id uint) (*model.DonorRequestLinkModel, error) {
	var m model.DonorRequestLinkModel
	err := s.DB.WithContext(ctx).Where("donor_request_link_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *DonorRequestLinkService) IsLinked(ctx context.Context, donorID, requestID uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.DonorRequestLinkModel{}).
		Where("donor_request_link_donor_id = ? AND donor_request_link_request_id = ?", donorID, requestID).
		Count(&n).Error
	if err != nil {
		return false, database.Classify(entity, err)
	}
	return n > 0, nil
}

func (s *DonorRequestLinkService) ListByRequest(ctx context.Context, requestID uint) ([]model.DonorRequestLinkModel, error) {
	return s.list(ctx, "donor_request_link_request_id = ?", requestID)
}

func (s *DonorRequestLinkService) ListByDonor(ctx context.Context, donorID uint) ([]model.DonorRequestLinkModel, error) {
	return s.list(ctx, "donor_request_link_donor_id = ?", donorID)
}

func (s *DonorRequestLinkService) list(ctx context.Context, where string, id uint) ([]model.DonorRequestLinkModel, error) {
	rows := make([]model.DonorRequestLinkModel, 0)
	if err := s.DB.WithContext(ctx).Where(where, id).Order("donor_request_link_id ASC").Find(&rows).Error; err != nil {
		return nil, database.Classify(entity, err)
	}
	return rows, nil
}

func (s *DonorRequestLinkService) CountByRequest(ctx context.Context, requestID uint) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.DonorRequestLinkModel{}).
		Where("donor_request_link_request_id = ?", requestID).Count(&n).Error; err != nil {
		return 0, database.Classify(entity, err)
	}
	return n, nil
}

func (s *DonorRequestLinkService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&model.DonorRequestLinkModel{}, "donor_request_link_id = ?", id)
	if res.Error != nil {
		return database.Classify(entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(entity, id)
	}
	return nil
}

// Unlink removes the (donor, request) pair and reports whether it existed.
func (s *DonorRequestLinkService) Unlink(ctx context.Context, donorID, requestID uint) (bool, error) {
	res := s.DB.WithContext(ctx).
		Where("donor_request_link_donor_id = ? AND donor_request_link_request_id = ?", donorID, requestID).
		Delete(&model.DonorRequestLinkModel{})
	if res.Error != nil {
		return false, database.Classify(entity, res.Error)
	}
	return res.RowsAffected > 0, nil
}
