package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title             string
	Description       string
	Status            string
	ParentTaskID      *string
	AssigneeID        *string
	TeamID            *string
	WatcherIDs        []string
	PlannedFinishTime *time.Time
	RepeatType        *string
	RepeatInterval    int
	RepeatEndDate     *time.Time
}

// TaskUpdate carries the mutable fields of a task; nil means unchanged.
type TaskUpdate struct {
	Title             *string
	Description       *string
	Status            *string
	PlannedFinishTime *time.Time
	RepeatType        *string
	RepeatInterval    *int
	RepeatEndDate     *time.Time
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	notifier *NotificationService
}

func NewTaskService(taskRepo *repository.TaskRepository, notifier *NotificationService) *TaskService {
	return &TaskService{taskRepo: taskRepo, notifier: notifier}
}

func (s *TaskService) Create(ctx context.Context, creatorID string, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	status := input.Status
	if status == "" {
		status = model.StatusTodo
	}
	interval := input.RepeatInterval
	if interval < 1 {
		interval = 1
	}

	task := &model.Task{
		ID:                uuid.NewString(),
		Title:             input.Title,
		Description:       input.Description,
		Status:            status,
		ParentTaskID:      input.ParentTaskID,
		CreatorID:         creatorID,
		AssigneeID:        input.AssigneeID,
		TeamID:            input.TeamID,
		PlannedFinishTime: input.PlannedFinishTime,
		RepeatType:        input.RepeatType,
		RepeatInterval:    interval,
		RepeatEndDate:     input.RepeatEndDate,
	}

	if task.HasRepeatRule() {
		// Same calculator the generator uses, so the chain cadence is
		// fixed from the very first occurrence. A fresh chain points at
		// itself as origin.
		anchor := time.Now()
		if task.PlannedFinishTime != nil {
			anchor = *task.PlannedFinishTime
		}
		next := NextDate(*task.RepeatType, anchor, task.RepeatInterval)
		task.NextRepeatDate = &next
		task.OriginalTaskID = &task.ID
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	if len(input.WatcherIDs) > 0 {
		if err := s.taskRepo.AddWatchers(ctx, task, input.WatcherIDs); err != nil {
			return nil, err
		}
	}

	return s.taskRepo.FindByID(ctx, task.ID)
}

// Get loads a task the user created, is assigned to or watches.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccess(task, userID) {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, q repository.TaskQuery) ([]model.Task, error) {
	return s.taskRepo.ListForUser(ctx, userID, q)
}

// Update modifies a task. Only the creator or the assignee may change it.
// Completing a sub-task completes the parent once every sibling is done.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, update TaskUpdate) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatorID != userID && (task.AssigneeID == nil || *task.AssigneeID != userID) {
		return nil, ErrForbidden
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.PlannedFinishTime != nil {
		task.PlannedFinishTime = update.PlannedFinishTime
	}
	if update.RepeatInterval != nil && *update.RepeatInterval >= 1 {
		task.RepeatInterval = *update.RepeatInterval
	}
	if update.RepeatEndDate != nil {
		task.RepeatEndDate = update.RepeatEndDate
	}
	if update.RepeatType != nil {
		if *update.RepeatType == "" {
			task.RepeatType = nil
			task.NextRepeatDate = nil
		} else {
			task.RepeatType = update.RepeatType
		}
	}

	// A rule needs a cursor; compute one if it is missing.
	if task.HasRepeatRule() && task.NextRepeatDate == nil {
		anchor := time.Now()
		if task.PlannedFinishTime != nil {
			anchor = *task.PlannedFinishTime
		}
		next := NextDate(*task.RepeatType, anchor, task.RepeatInterval)
		task.NextRepeatDate = &next
		if task.OriginalTaskID == nil {
			task.OriginalTaskID = &task.ID
		}
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	if task.Status == model.StatusDone && task.ParentTaskID != nil {
		if err := s.completeParentIfDone(ctx, *task.ParentTaskID); err != nil {
			return nil, err
		}
	}

	return s.taskRepo.FindByID(ctx, task.ID)
}

// Delete removes a task. Only the creator may delete.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if task.CreatorID != userID {
		return ErrForbidden
	}
	return s.taskRepo.Delete(ctx, taskID)
}

// Assign sets the assignee. Only the creator may assign, and the new
// assignee gets an in-app notification.
func (s *TaskService) Assign(ctx context.Context, userID, taskID, assigneeID string) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatorID != userID {
		return nil, ErrForbidden
	}

	task.AssigneeID = &assigneeID
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	if assigneeID != userID {
		msg := fmt.Sprintf("You were assigned to task %q", task.Title)
		if _, err := s.notifier.Notify(ctx, assigneeID, &task.ID, model.NotifyAssigned, msg); err != nil {
			return nil, err
		}
	}

	return s.taskRepo.FindByID(ctx, task.ID)
}

func (s *TaskService) AddWatchers(ctx context.Context, userID, taskID string, watcherIDs []string) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.AddWatchers(ctx, task, watcherIDs); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, taskID)
}

func (s *TaskService) RemoveWatcher(ctx context.Context, userID, taskID, watcherID string) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.RemoveWatcher(ctx, task, watcherID); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, taskID)
}

// completeParentIfDone marks a parent done when all of its sub-tasks are
// done. One level only; the parent's own parent is not revisited.
func (s *TaskService) completeParentIfDone(ctx context.Context, parentID string) error {
	subTasks, err := s.taskRepo.ListSubTasks(ctx, parentID)
	if err != nil {
		return err
	}
	for _, sub := range subTasks {
		if sub.Status != model.StatusDone {
			return nil
		}
	}

	parent, err := s.taskRepo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if parent.Status == model.StatusDone {
		return nil
	}
	parent.Status = model.StatusDone
	return s.taskRepo.Save(ctx, parent)
}

func canAccess(task *model.Task, userID string) bool {
	if task.CreatorID == userID {
		return true
	}
	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return true
	}
	for _, w := range task.Watchers {
		if w.ID == userID {
			return true
		}
	}
	return false
}
