package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	database "blood_donation_backend/internals/databases"
	"blood_donation_backend/internals/features/home/notifications/dto"
	"blood_donation_backend/internals/features/home/notifications/model"
	userModel "blood_donation_backend/internals/features/users/user/model"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/integrity"
)

const entity = "notification_logs"

// NotificationService appends notification rows and flips their read flag.
type NotificationService struct {
	DB        *gorm.DB
	Validator *helper.Validator
}

func NewNotificationService(db *gorm.DB, v *helper.Validator) *NotificationService {
	return &NotificationService{DB: db, Validator: v}
}

func (s *NotificationService) WithTx(tx *gorm.DB) *NotificationService {
	cp := *s
	cp.DB = tx
	return &cp
}

// Emit appends an unread notification for userID.
func (s *NotificationService) Emit(ctx context.Context, userID uint, message string) (*model.NotificationLogModel, error) {
	req := dto.EmitNotificationRequest{UserID: userID, Message: message}
	if err := s.Validator.Struct(entity, req); err != nil {
		return nil, err
	}
	m := req.ToModel(s.Validator.Clock().Now())

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := integrity.RequireRefs(tx, entity, integrity.Ref{
			Field: "notification_user_id", Model: &userModel.UserModel{}, Column: "user_id", ID: userID,
		}); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	log.Printf("[NOTIF] user=%d id=%d", userID, m.NotificationID)
	return m, nil
}

func (s *NotificationService) GetByID(ctx context.Context, id uint) (*model.NotificationLogModel, error) {
	var m model.NotificationLogModel
	err := s.DB.WithContext(ctx).Where("notification_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(entity, err)
	}
	return &m, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds and
// keeps the first read time.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)
	res := db.Model(&model.NotificationLogModel{}).
		Where("notification_id = ? AND notification_is_read = ?", id, false).
		Updates(map[string]any{
			"notification_is_read": true,
			"notification_read_at": s.Validator.Clock().Now(),
		})
	if res.Error != nil {
		return database.Classify(entity, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := integrity.Exists(db, &model.NotificationLogModel{}, "notification_id", id)
	if err != nil {
		return database.Classify(entity, err)
	}
	if !ok {
		return apperror.NotFound(entity, id)
	}
	return nil
}

// MarkAllRead marks every unread notification of userID and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.NotificationLogModel{}).
		Where("notification_user_id = ? AND notification_is_read = ?", userID, false).
		Updates(map[string]any{
			"notification_is_read": true,
			"notification_read_at": s.Validator.Clock().Now(),
		})
	if res.Error != nil {
		return 0, database.Classify(entity, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.NotificationLogModel{}).
		Where("notification_user_id = ? AND notification_is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, database.Classify(entity, err)
	}
	return n, nil
}

// ListByUser returns the user's notifications, newest first.
func (s *NotificationService) ListByUser(ctx context.Context, f dto.ListNotificationsFilter, p helper.Params) (helper.Page[model.NotificationLogModel], error) {
	p = p.Normalize(helper.DefaultOpts)
	q := s.DB.WithContext(ctx).Model(&model.NotificationLogModel{}).Where("notification_user_id = ?", f.UserID)
	if f.UnreadOnly {
		q = q.Where("notification_is_read = ?", false)
	}
	page, err := helper.FindPage[model.NotificationLogModel](q, p, "notification_created_at DESC, notification_id DESC")
	if err != nil {
		return page, database.Classify(entity, err)
	}
	return page, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&model.NotificationLogModel{}, "notification_id = ?", id)
	if res.Error != nil {
		return database.Classify(entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(entity, id)
	}
	return nil
}
