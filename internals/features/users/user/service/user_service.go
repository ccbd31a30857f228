package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blood_donation_backend/internals/constants"
	database "blood_donation_backend/internals/databases"
	notifmodel "blood_donation_backend/internals/features/home/notifications/model"
	donormodel "blood_donation_backend/internals/features/users/donor_profiles/model"
	donorservice "blood_donation_backend/internals/features/users/donor_profiles/service"
	recipientmodel "blood_donation_backend/internals/features/users/recipient_profiles/model"
	recipientservice "blood_donation_backend/internals/features/users/recipient_profiles/service"
	"blood_donation_backend/internals/features/users/user/dto"
	"blood_donation_backend/internals/features/users/user/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
)

const entity = "users"

type UserService struct {
	DB         *gorm.DB
	Validator  *helper.Validator
	BcryptCost int
}

func NewUserService(db *gorm.DB, v *helper.Validator, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{DB: db, Validator: v, BcryptCost: bcryptCost}
}

// WithTx returns a copy bound to tx.
func (s *UserService) WithTx(tx *gorm.DB) *UserService {
	cp := *s
	cp.DB = tx
	return &cp
}

/* ====================== CREATE ====================== */

func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*model.UserModel, error) {
	req.Normalize()
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}

	m := req.ToModel()
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	m.UserPasswordHash = string(hash)
	now := s.Validator.Clock().Now()
	m.UserCreatedAt = now
	m.UserUpdatedAt = now
	if err := s.Validator.Struct(entity, m); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, m, 0); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[USER] created id=%d username=%s role=%s", m.UserID, m.UserUsername, m.UserRole)
	return m, nil
}

// checkUnique enforces case-insensitive uniqueness of username and email,
// ignoring the row selfID.
func checkUnique(tx *gorm.DB, m *model.UserModel, selfID uint) error {
	var n int64
	q := tx.Model(&model.UserModel{}).Where("LOWER(user_username) = ?", strings.ToLower(m.UserUsername))
	if selfID != 0 {
		q = q.Where("user_id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		c := apperror.Conflict(entity, "unique", "username is already taken")
		c.Field = "user_username"
		return c
	}

	q = tx.Model(&model.UserModel{}).Where("user_email = ?", strings.ToLower(m.UserEmail))
	if selfID != 0 {
		q = q.Where("user_id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		c := apperror.Conflict(entity, "unique", "email is already registered")
		c.Field = "user_email"
		return c
	}
	return nil
}

/* ====================== READ ====================== */

// GetByID returns nil, nil when the user does not exist.
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.UserModel, error) {
	return s.findOne(ctx, "user_id = ?", id)
}

func (s *UserService) findOne(ctx context.Context, where string, args ...any) (*model.UserModel, error) {
	var m model.UserModel
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
	"id":         "user_id",
	"name":       "user_name",
	"username":   "user_username",
	"created_at": "user_created_at",
}

func (s *UserService) List(ctx context.Context, f dto.ListUsersFilter, p helper.Params) (helper.Page[model.UserModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if f.Role != nil {
		q = q.Where("user_role = ?", *f.Role)
	}
	if t := strings.TrimSpace(f.Query); t != "" {
		like := "%" + strings.ToLower(t) + "%"
		q = q.Where("LOWER(user_name) LIKE ? OR LOWER(user_username) LIKE ? OR user_email LIKE ?", like, like, like)
	}
	order, err := p.SafeOrder(sortColumns, "id")
	if err != nil {
		return helper.Page[model.UserModel]{}, err
	}
	page, err := helper.FindPage[model.UserModel](q, p, order)
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

// HasRole reports whether at least one user holds role.
func (s *UserService) HasRole(ctx context.Context, role constants.Role) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.UserModel{}).Where("user_role = ?", role).Count(&n).Error; err != nil {
		return false, database.Classify(entity, err)
	}
	return n > 0, nil
}

// VerifyPassword checks a credential by username or email.
func (s *UserService) VerifyPassword(ctx context.Context, identifier, password string) (*model.UserModel, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	u, err := s.findOne(ctx, "LOWER(user_username) = ? OR user_email = ?", identifier, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.Forbidden(entity, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.UserPasswordHash), []byte(password)); err != nil {
		return nil, apperror.Forbidden(entity, "invalid credentials")
	}
	return u, nil
}

/* ====================== UPDATE ====================== */

func (s *UserService) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*model.UserModel, error) {
	req.Normalize()
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}

	var out model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Take(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}
		prevRole := out.UserRole
		req.ApplyToModel(&out)

		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.BcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			out.UserPasswordHash = string(hash)
		}
		out.UserUpdatedAt = s.Validator.Clock().Now()
		if err := s.Validator.Struct(entity, &out); err != nil {
			return err
		}
		if out.UserRole != prevRole {
			if err := checkRoleChange(tx, out.UserID, out.UserRole); err != nil {
				return err
			}
		}
		if err := checkUnique(tx, &out, out.UserID); err != nil {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &out, nil
}

// checkRoleChange keeps the role and the existing profiles consistent: a
// user holding a donor profile must stay a Donor, likewise for recipients.
func checkRoleChange(tx *gorm.DB, userID uint, to constants.Role) error {
	var donors, recipients int64
	if err := tx.Model(&donormodel.DonorProfileModel{}).Where("donor_profile_user_id = ?", userID).Count(&donors).Error; err != nil {
		return err
	}
	if err := tx.Model(&recipientmodel.RecipientProfileModel{}).Where("recipient_profile_user_id = ?", userID).Count(&recipients).Error; err != nil {
		return err
	}

	switch to {
	case constants.RoleDonor:
		if recipients > 0 {
			return roleConflict("user has a recipient profile")
		}
	case constants.RoleRecipient:
		if donors > 0 {
			return roleConflict("user has a donor profile")
		}
	case constants.RoleAdmin:
		if donors > 0 || recipients > 0 {
			return roleConflict("user still has a donor or recipient profile")
		}
	default:
		return apperror.ValidationField(entity, "user_role", "oneof", "unknown role")
	}
	return nil
}

func roleConflict(msg string) error {
	c := apperror.Conflict(entity, "role_profile", msg)
	c.Field = "user_role"
	return c
}

/* ====================== DELETE ====================== */

// Delete removes the user and cascades to its donor/recipient profile and
// notifications. A cascaded profile that is itself restricted aborts the
// whole delete.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.UserModel
		if err := tx.Where("user_id = ?", id).Take(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(entity, id)
			}
			return err
		}

		donors := donorservice.NewDonorProfileService(tx, s.Validator)
		if d, err := donors.GetByUserID(ctx, id); err != nil {
			return err
		} else if d != nil {
			if err := donors.Delete(ctx, d.DonorProfileID); err != nil {
				return err
			}
		}

		recipients := recipientservice.NewRecipientProfileService(tx, s.Validator)
		if r, err := recipients.GetByUserID(ctx, id); err != nil {
			return err
		} else if r != nil {
			if err := recipients.Delete(ctx, r.RecipientProfileID); err != nil {
				return err
			}
		}

		if err := tx.Where("notification_user_id = ?", id).Delete(&notifmodel.NotificationLogModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.UserModel{}, "user_id = ?", id).Error
	})
	if err != nil {
		return database.Classify(entity, err)
	}
	log.Printf("[USER] deleted id=%d", id)
	return nil
}
