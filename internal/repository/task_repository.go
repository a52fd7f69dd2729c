package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TaskQuery filters task listings.
type TaskQuery struct {
	StartTime  *time.Time
	EndTime    *time.Time
	CreatorID  string
	AssigneeID string
	OrderBy    string
	OrderDesc  bool
}

var orderableColumns = map[string]string{
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
	"plannedFinishTime": "planned_finish_time",
	"title":             "title",
	"status":            "status",
}

// TaskRepository is the task store: CRUD plus the selection queries the
// scheduled jobs run against.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("Watchers", "SubTasks").Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// FindByID loads a task with watchers and sub-tasks.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Preload("Watchers").
		Preload("SubTasks").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListForUser returns tasks the user created, is assigned to or watches,
// narrowed by the query filters.
func (r *TaskRepository) ListForUser(ctx context.Context, userID string, q TaskQuery) ([]model.Task, error) {
	db := r.db.WithContext(ctx).
		Preload("Watchers").
		Preload("SubTasks").
		Where("creator_id = ? OR assignee_id = ? OR id IN (SELECT task_id FROM task_watchers WHERE user_id = ?)",
			userID, userID, userID)

	if q.StartTime != nil {
		db = db.Where("created_at >= ?", *q.StartTime)
	}
	if q.EndTime != nil {
		db = db.Where("created_at <= ?", *q.EndTime)
	}
	if q.CreatorID != "" {
		db = db.Where("creator_id = ?", q.CreatorID)
	}
	if q.AssigneeID != "" {
		db = db.Where("assignee_id = ?", q.AssigneeID)
	}

	column, ok := orderableColumns[q.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if q.OrderDesc {
		direction = "DESC"
	}

	var tasks []model.Task
	if err := db.Order(column + " " + direction).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListDueBetween selects todo tasks whose planned finish time falls inside
// [from, to], with the relations the notification fan-out needs.
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Watchers").
		Where("status = ? AND planned_finish_time >= ? AND planned_finish_time <= ?", model.StatusTodo, from, to).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOverdue selects todo tasks whose planned finish time is before now.
func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Watchers").
		Where("status = ? AND planned_finish_time < ?", model.StatusTodo, now).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListRepeatDue selects tasks carrying a repeat rule whose next occurrence
// is at or before the deadline.
func (r *TaskRepository) ListRepeatDue(ctx context.Context, deadline time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Watchers").
		Preload("SubTasks").
		Where("repeat_type IS NOT NULL AND repeat_type <> '' AND next_repeat_date <= ?", deadline).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSubTasks returns the children of a parent task. The parent/child
// index is kept here, in the store, rather than in object graphs.
func (r *TaskRepository) ListSubTasks(ctx context.Context, parentID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Watchers").
		Where("parent_task_id = ?", parentID).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// AddWatchers appends users to the watcher set, skipping ones already present.
func (r *TaskRepository) AddWatchers(ctx context.Context, task *model.Task, userIDs []string) error {
	existing := make(map[string]struct{}, len(task.Watchers))
	for _, w := range task.Watchers {
		existing[w.ID] = struct{}{}
	}
	var added []model.User
	for _, id := range userIDs {
		if _, ok := existing[id]; ok {
			continue
		}
		added = append(added, model.User{ID: id})
	}
	if len(added) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(task).Association("Watchers").Append(&added); err != nil {
		return fmt.Errorf("add watchers: %w", err)
	}
	return nil
}

func (r *TaskRepository) RemoveWatcher(ctx context.Context, task *model.Task, userID string) error {
	if err := r.db.WithContext(ctx).Model(task).
		Association("Watchers").Delete(&model.User{ID: userID}); err != nil {
		return fmt.Errorf("remove watcher: %w", err)
	}
	return nil
}
