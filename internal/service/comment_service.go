package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// CommentService wraps task comments. Creating a comment requires access
// to the task and notifies the task's other interested users.
type CommentService struct {
	commentRepo *repository.CommentRepository
	tasks       *TaskService
	notifier    *NotificationService
}

func NewCommentService(commentRepo *repository.CommentRepository, tasks *TaskService, notifier *NotificationService) *CommentService {
	return &CommentService{commentRepo: commentRepo, tasks: tasks, notifier: notifier}
}

func (s *CommentService) Create(ctx context.Context, userID, taskID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	task, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:      uuid.NewString(),
		TaskID:  taskID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("New comment on task %q", task.Title)
	if _, err := s.notifier.NotifyTaskUsersExcept(ctx, task, userID, model.NotifyCommented, msg); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *CommentService) ListByTask(ctx context.Context, userID, taskID string) ([]model.Comment, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTask(ctx, taskID)
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	return s.commentRepo.Delete(ctx, commentID)
}
