package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// NotificationService is the notification emitter plus the recipient-side
// operations. Emission only creates in-app records; there is no delivery
// transport.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify creates one notification for a single recipient.
func (s *NotificationService) Notify(ctx context.Context, userID string, taskID *string, kind, message string) (*model.Notification, error) {
	n := &model.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		TaskID:  taskID,
		Type:    kind,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyTaskUsers fans a task event out to every interested user: the
// creator, the assignee and each watcher, deduplicated by user id.
func (s *NotificationService) NotifyTaskUsers(ctx context.Context, task *model.Task, kind, message string) ([]model.Notification, error) {
	var notifications []model.Notification
	for _, userID := range task.InterestedUserIDs() {
		n, err := s.Notify(ctx, userID, &task.ID, kind, message)
		if err != nil {
			return notifications, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, nil
}

// NotifyTaskUsersExcept is NotifyTaskUsers minus one user, used so the
// actor behind an event does not get notified about their own action.
func (s *NotificationService) NotifyTaskUsersExcept(ctx context.Context, task *model.Task, exceptUserID, kind, message string) ([]model.Notification, error) {
	var notifications []model.Notification
	for _, userID := range task.InterestedUserIDs() {
		if userID == exceptUserID {
			continue
		}
		n, err := s.Notify(ctx, userID, &task.ID, kind, message)
		if err != nil {
			return notifications, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*model.Notification, error) {
	n, err := s.repo.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return n, err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	err := s.repo.Delete(ctx, userID, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
