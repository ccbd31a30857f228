package dto

import (
	"time"

	"blood_donation_backend/internals/features/home/notifications/model"
)

// ================== REQUEST ==================
type EmitNotificationRequest struct {
	UserID  uint   `json:"notification_user_id" validate:"required"`
	Message string `json:"notification_message" validate:"required,min=1,max=500"`
}

func (r *EmitNotificationRequest) ToModel(now time.Time) *model.NotificationLogModel {
	return &model.NotificationLogModel{
		NotificationUserID:    r.UserID,
		NotificationMessage:   r.Message,
		NotificationIsRead:    false,
		NotificationCreatedAt: now,
	}
}

type ListNotificationsFilter struct {
	UserID     uint
	UnreadOnly bool
}

// ================== RESPONSE ==================
type NotificationResponse struct {
	NotificationID        uint    `json:"notification_id"`
	NotificationUserID    uint    `json:"notification_user_id"`
	NotificationMessage   string  `json:"notification_message"`
	NotificationIsRead    bool    `json:"notification_is_read"`
	NotificationReadAt    *string `json:"notification_read_at,omitempty"`
	NotificationCreatedAt string  `json:"notification_created_at"`
}

// ================ CONVERSION =================
func ToNotificationResponse(m *model.NotificationLogModel) *NotificationResponse {
	var readAt *string
	if m.NotificationReadAt != nil {
		formatted := m.NotificationReadAt.Format("2006-01-02 15:04:05")
		readAt = &formatted
	}
	return &NotificationResponse{
		NotificationID:        m.NotificationID,
		NotificationUserID:    m.NotificationUserID,
		NotificationMessage:   m.NotificationMessage,
		NotificationIsRead:    m.NotificationIsRead,
		NotificationReadAt:    readAt,
		NotificationCreatedAt: m.NotificationCreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func ToNotificationResponseList(models []model.NotificationLogModel) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(models))
	for i := range models {
		result = append(result, *ToNotificationResponse(&models[i]))
	}
	return result
}
