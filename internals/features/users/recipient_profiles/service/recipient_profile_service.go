package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	requestService "blood_donation_backend/internals/features/requests/blood_requests/service"
	donorModel "blood_donation_backend/internals/features/users/donor_profiles/model"
	"blood_donation_backend/internals/features/users/recipient_profiles/dto"
	"blood_donation_backend/internals/features/users/recipient_profiles/model"
	userModel "blood_donation_backend/internals/features/users/user/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

const entity = "recipient_profiles"

type RecipientProfileService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewRecipientProfileService(db *gorm.DB, v *helper.Validator) *RecipientProfileService {
	return &RecipientProfileService{DB: db, Validator: v}
}

func (s *RecipientProfileService) WithTx(tx *gorm.DB) *RecipientProfileService {
	return &RecipientProfileService{DB: tx, Validator: s.Validator}
}

func (s *RecipientProfileService) Create(ctx context.Context, req dto.CreateRecipientProfileRequest) (*model.RecipientProfileModel, error) {
	req.Normalize()
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel()
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userModel.UserModel
		if err := tx.Where("user_id = ?", m.RecipientProfileUserID).Take(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Referential(entity, "recipient_profile_user_id", m.RecipientProfileUserID)
			}
			return err
		}
		if u.UserRole != constants.RoleRecipient {
			c := apperror.Conflict(entity, "role_profile", "user role is "+string(u.UserRole)+", not Recipient")
			c.Field = "recipient_profile_user_id"
			return c
		}

		var n int64
		if err := tx.Model(&model.RecipientProfileModel{}).Where("recipient_profile_user_id = ?", u.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			c := apperror.Conflict(entity, "unique", "user already has a recipient profile")
			c.Field = "recipient_profile_user_id"
			return c
		}
		if err := tx.Model(&donorModel.DonorProfileModel{}).Where("donor_profile_user_id = ?", u.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict(entity, "role_profile", "user already has a donor profile")
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[RECIPIENT] created id=%d user=%d", m.RecipientProfileID, m.RecipientProfileUserID)
	return m, nil
}

func (s *RecipientProfileService) GetByID(ctx context.Context, id uint) (*model.RecipientProfileModel, error) {
	return s.findOne(ctx, "recipient_profile_id = ?", id)
}

func (s *RecipientProfileService) GetByUserID(ctx context.Context, userID uint) (*model.RecipientProfileModel, error) {
	return s.findOne(ctx, "recipient_profile_user_id = ?", userID)
}

func (s *RecipientProfileService) findOne(ctx context.Context, where string, args ...any) (*model.RecipientProfileModel, error) {
	var m model.RecipientProfileModel
	err := s.DB.WithContext(ctx).Where(where, args...).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

func (s *RecipientProfileService) List(ctx context.Context, f dto.ListRecipientProfilesFilter, p helper.Params) (helper.Page[model.RecipientProfileModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.RecipientProfileModel{})
	if f.RequiredGroup != nil {
		q = q.Where("recipient_profile_required_blood_group = ?", *f.RequiredGroup)
	}
	if h := strings.TrimSpace(f.Hospital); h != "" {
		q = q.Where("LOWER(recipient_profile_hospital_name) LIKE ?", "%"+strings.ToLower(h)+"%")
	}
	order, err := p.SafeOrder(map[string]string{
		"id":       "recipient_profile_id",
		"hospital": "recipient_profile_hospital_name",
		"patient":  "recipient_profile_patient_name",
	}, "id")
	if err != nil {
		return helper.Page[model.RecipientProfileModel]{}, err
	}
	page, err := helper.FindPage[model.RecipientProfileModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

func (s *RecipientProfileService) Update(ctx context.Context, id uint, req dto.UpdateRecipientProfileRequest) (*model.RecipientProfileModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.RecipientProfileModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipient_profile_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		req.ApplyToModel(&m)
		if err := s.Validator.Struct(entity, &m); err != nil {
			return err
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// Delete cascades to the recipient's blood requests. A request that still has
// donor links or donation records aborts the delete.
func (s *RecipientProfileService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.RecipientProfileModel
		if err := tx.Where("recipient_profile_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}

		var ids []uint
		if err := tx.Model(&requestModel.BloodRequestModel{}).
			Where("blood_request_recipient_id = ?", id).
			Pluck("blood_request_id", &ids).Error; err != nil {
			return err
		}
		requests := requestService.NewBloodRequestService(tx, s.Validator)
		for _, rid := range ids {
			if err := requests.Delete(ctx, rid); err != nil {
				return err
			}
		}
		return tx.Delete(&model.RecipientProfileModel{}, "recipient_profile_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	log.Printf("[RECIPIENT] deleted id=%d", id)
	return nil
}
