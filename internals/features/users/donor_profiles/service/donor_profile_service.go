package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	apptModel "blood_donation_backend/internals/features/donations/appointments/model"
	donationModel "blood_donation_backend/internals/features/donations/donation_records/model"
	requestModel "blood_donation_backend/internals/features/requests/blood_requests/model"
	linkModel "blood_donation_backend/internals/features/requests/donor_request_links/model"
	"blood_donation_backend/internals/features/users/donor_profiles/dto"
	"blood_donation_backend/internals/features/users/donor_profiles/model"
	recipientModel "blood_donation_backend/internals/features/users/recipient_profiles/model"
	userModel "blood_donation_backend/internals/features/users/user/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "donor_profiles"

type DonorProfileService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewDonorProfileService(db *gorm.DB, v *helper.Validator) *DonorProfileService {
	return &DonorProfileService{DB: db, Validator: v}
}

func (s *DonorProfileService) WithTx(tx *gorm.DB) *DonorProfileService {
	return &DonorProfileService{DB: tx, Validator: s.Validator}
}

func (s *DonorProfileService) validate(m *model.DonorProfileModel) error {
	if err := integrity.CheckAge(entity, m.DonorProfileAge); err != nil {
		return err
	}
	if err := s.Validator.Struct(entity, m); err != nil {
		return err
	}
	return integrity.CheckNotFuture(entity, "donor_profile_last_donation_date",
		m.DonorProfileLastDonationDate, s.Validator.Clock().Now())
}

// Create attaches a donor profile to a user whose role is Donor. A user holds
// at most one donor profile and never a recipient profile at the same time.
func (s *DonorProfileService) Create(ctx context.Context, req dto.CreateDonorProfileRequest) (*model.DonorProfileModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel()
	if err := s.validate(m); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userModel.UserModel
		if err := tx.Where("user_id = ?", m.DonorProfileUserID).Take(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Referential(entity, "donor_profile_user_id", m.DonorProfileUserID)
			}
			return err
		}
		if u.UserRole != constants.RoleDonor {
			c := apperror.Conflict(entity, "role_profile", "user role is "+string(u.UserRole)+", not Donor")
			c.Field = "donor_profile_user_id"
			return c
		}

		var n int64
		if err := tx.Model(&model.DonorProfileModel{}).Where("donor_profile_user_id = ?", u.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			c := apperror.Conflict(entity, "unique", "user already has a donor profile")
			c.Field = "donor_profile_user_id"
			return c
		}
		if err := tx.Model(&recipientModel.RecipientProfileModel{}).Where("recipient_profile_user_id = ?", u.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict(entity, "role_profile", "user already has a recipient profile")
		}

		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[DONOR] created id=%d user=%d group=%s", m.DonorProfileID, m.DonorProfileUserID, m.DonorProfileGroup)
	return m, nil
}

func (s *DonorProfileService) GetByID(ctx context.Context, id uint) (*model.DonorProfileModel, error) {
	return s.findOne(ctx, "donor_profile_id = ?", id)
}

func (s *DonorProfileService) GetByUserID(ctx context.Context, userID uint) (*model.DonorProfileModel, error) {
	return s.findOne(ctx, "donor_profile_user_id = ?", userID)
}

func (s *DonorProfileService) findOne(ctx context.Context, where string, args ...any) (*model.DonorProfileModel, error) {
	var m model.DonorProfileModel
	err := s.DB.WithContext(ctx).Where(where, args...).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

var sortColumns = map[string]string{
	"id":         "donor_profile_id",
	"age":        "donor_profile_age",
	"last":       "donor_profile_last_donation_date",
	"created_at": "donor_profile_created_at",
}

func (s *DonorProfileService) List(ctx context.Context, f dto.ListDonorProfilesFilter, p helper.Params) (helper.Page[model.DonorProfileModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.DonorProfileModel{})
	if f.BloodGroup != nil {
		q = q.Where("donor_profile_blood_group = ?", *f.BloodGroup)
	}
	if f.EligibleOnly {
		q = q.Where("donor_profile_is_eligible = ?", true)
	}
	order, err := p.SafeOrder(sortColumns, "id")
	if err != nil {
		return helper.Page[model.DonorProfileModel]{}, err
	}
	page, err := helper.FindPage[model.DonorProfileModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// FindEligible returns the donors in groups whose flag is set and whose
// recovery period has elapsed on date, ordered by id.
func (s *DonorProfileService) FindEligible(ctx context.Context, groups []constants.BloodGroup, date time.Time, recovery time.Duration) ([]model.DonorProfileModel, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	var rows []model.DonorProfileModel
	err := s.DB.WithContext(ctx).
		Where("donor_profile_blood_group IN ? AND donor_profile_is_eligible = ?", groups, true).
		Order("donor_profile_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	out := rows[:0]
	for _, r := range rows {
		if integrity.EligibleOn(r.DonorProfileIsEligible, r.DonorProfileLastDonationDate, date, recovery) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *DonorProfileService) Update(ctx context.Context, id uint, req dto.UpdateDonorProfileRequest) (*model.DonorProfileModel, error) {
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	var m model.DonorProfileModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("donor_profile_id = ?", id).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		req.ApplyToModel(&m)
		if err := s.validate(&m); err != nil {
			return err
		}
		// patched columns only; last_donation_date may move concurrently
		if err := tx.Model(&model.DonorProfileModel{}).
			Where("donor_profile_id = ?", id).
			Updates(req.Changes(s.Validator.Clock().Now())).Error; err != nil {
			return err
		}
		return tx.Where("donor_profile_id = ?", id).Take(&m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// RecordDonation moves the last donation date forward to on, never back.
func (s *DonorProfileService) RecordDonation(ctx context.Context, id uint, on time.Time) error {
	m, err := s.findOne(ctx, "donor_profile_id = ?", id)
	if err != nil {
		return err
	}
	if m == nil {
		return apperror.NotFound(entity, id)
	}
	d := integrity.DateOf(on)
	if last := m.DonorProfileLastDonationDate; last != nil && !time.Time(*last).Before(time.Time(d)) {
		return nil
	}
	err = s.DB.WithContext(ctx).Model(&model.DonorProfileModel{}).
		Where("donor_profile_id = ?", id).
		Updates(map[string]any{
			"donor_profile_last_donation_date": d,
			"donor_profile_updated_at":         s.Validator.Clock().Now(),
		}).Error
	if err != nil {
		return database.Classify(entity, err)
	}
	return nil
}

/* ====================== DELETE ====================== */

// Delete keeps the audit trail: a donor with donations, appointments,
// request links or an accepted request cannot be removed.
func (s *DonorProfileService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := integrity.Exists(tx, &model.DonorProfileModel{}, "donor_profile_id", id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound(entity, id)
		}
		if err := integrity.RestrictDelete(tx, entity, id,
			integrity.Dependent{Name: "donation_records", Model: &donationModel.DonationRecordModel{}, Column: "donation_record_donor_id"},
			integrity.Dependent{Name: "appointments", Model: &apptModel.AppointmentModel{}, Column: "appointment_donor_id"},
			integrity.Dependent{Name: "donor_request_links", Model: &linkModel.DonorRequestLinkModel{}, Column: "donor_request_link_donor_id"},
			integrity.Dependent{Name: "blood_requests", Model: &requestModel.BloodRequestModel{}, Column: "blood_request_accepted_donor_id"},
		); err != nil {
			return err
		}
		return tx.Delete(&model.DonorProfileModel{}, "donor_profile_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	log.Printf("[DONOR] deleted id=%d", id)
	return nil
}
