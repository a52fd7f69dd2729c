package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// NotificationRepository handles CRUD for in-app notifications. Every
// mutating method is scoped to the recipient so no other actor can touch
// someone else's notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("read = ?", false)
	}
	var notifications []model.Notification
	if err := db.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips a single notification owned by the user. Returns
// gorm.ErrRecordNotFound when the notification is missing or not theirs.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) (*model.Notification, error) {
	var n model.Notification
	db := r.db.WithContext(ctx)
	if err := db.First(&n, "id = ? AND user_id = ?", notificationID, userID).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&n).Update("read", true).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// Delete removes a notification owned by the user. Returns
// gorm.ErrRecordNotFound when nothing matched.
func (r *NotificationRepository) Delete(ctx context.Context, userID, notificationID string) error {
	res := r.db.WithContext(ctx).
		Delete(&model.Notification{}, "id = ? AND user_id = ?", notificationID, userID)
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
