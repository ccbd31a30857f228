package model

import "time"

// NotificationLogModel is append-only; only the read flag changes.
type NotificationLogModel struct {
	NotificationID        uint       `gorm:"column:notification_id;primaryKey;autoIncrement" json:"notification_id"`
	NotificationUserID    uint       `gorm:"column:notification_user_id;not null;index:idx_notifications_user_read,priority:1" json:"notification_user_id" validate:"required"`
	NotificationMessage   string     `gorm:"column:notification_message;type:text;not null" json:"notification_message" validate:"required,min=1,max=500"`
	NotificationIsRead    bool       `gorm:"column:notification_is_read;not null;default:false;index:idx_notifications_user_read,priority:2" json:"notification_is_read"`
	NotificationReadAt    *time.Time `gorm:"column:notification_read_at" json:"notification_read_at,omitempty"`
	NotificationCreatedAt time.Time  `gorm:"column:notification_created_at;autoCreateTime" json:"notification_created_at"`
}

func (NotificationLogModel) TableName() string {
	return "notification_logs"
}
