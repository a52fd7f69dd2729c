package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// lookahead is the window shared by the due-soon scan and the repeat
// generator: due notifications fire a day before the deadline, and repeat
// instances are pre-created a day before their occurrence.
const lookahead = 24 * time.Hour

// ScheduleService runs the two batch jobs: scanning for due and overdue
// tasks, and generating repeat-task instances. Each job processes its
// selection sequentially; a failing item is logged and skipped, never
// aborting the batch. Idempotency marks keyed by (task, kind, occurrence)
// keep both jobs safe to re-run over the same data.
type ScheduleService struct {
	taskRepo *repository.TaskRepository
	marks    *repository.ScheduleMarkRepository
	notifier *NotificationService
}

func NewScheduleService(taskRepo *repository.TaskRepository, marks *repository.ScheduleMarkRepository, notifier *NotificationService) *ScheduleService {
	return &ScheduleService{taskRepo: taskRepo, marks: marks, notifier: notifier}
}

// CheckDueTasks notifies interested users about tasks due within the
// lookahead window and tasks already past their planned finish time.
func (s *ScheduleService) CheckDueTasks(ctx context.Context, now time.Time) error {
	dueSoon, err := s.taskRepo.ListDueBetween(ctx, now, now.Add(lookahead))
	if err != nil {
		return fmt.Errorf("select due tasks: %w", err)
	}
	log.Printf("due check: %d task(s) due within %s", len(dueSoon), lookahead)

	for i := range dueSoon {
		task := &dueSoon[i]
		msg := fmt.Sprintf("Task %q is due within 24 hours", task.Title)
		if err := s.notifyOnce(ctx, task, model.NotifyDueSoon, msg); err != nil {
			log.Printf("due check: task %s: %v", task.ID, err)
		}
	}

	overdue, err := s.taskRepo.ListOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("select overdue tasks: %w", err)
	}
	log.Printf("due check: %d task(s) overdue", len(overdue))

	for i := range overdue {
		task := &overdue[i]
		msg := fmt.Sprintf("Task %q is overdue", task.Title)
		if err := s.notifyOnce(ctx, task, model.NotifyOverdue, msg); err != nil {
			log.Printf("due check: task %s: %v", task.ID, err)
		}
	}

	return nil
}

// notifyOnce claims the (task, kind, planned time) crossing before fanning
// out, so re-running the scan over a still-overdue task does not notify
// the same users again.
func (s *ScheduleService) notifyOnce(ctx context.Context, task *model.Task, kind, message string) error {
	if task.PlannedFinishTime == nil {
		return nil
	}
	err := s.marks.Claim(ctx, task.ID, kind, *task.PlannedFinishTime)
	if errors.Is(err, repository.ErrAlreadyMarked) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.notifier.NotifyTaskUsers(ctx, task, kind, message)
	return err
}

// GenerateRepeatTasks creates the next instance of every repeat chain
// whose occurrence falls within the lookahead window.
func (s *ScheduleService) GenerateRepeatTasks(ctx context.Context, now time.Time) error {
	tasks, err := s.taskRepo.ListRepeatDue(ctx, now.Add(lookahead))
	if err != nil {
		return fmt.Errorf("select repeat tasks: %w", err)
	}
	log.Printf("repeat check: %d task(s) selected", len(tasks))

	for i := range tasks {
		if _, err := s.generateInstance(ctx, &tasks[i], now); err != nil {
			log.Printf("repeat check: task %s: %v", tasks[i].ID, err)
		}
	}

	return nil
}

// generateInstance runs one step of a repeat chain: compute the candidate
// occurrence, spawn the successor task with its sub-tasks, advance the
// source's cursor and notify the source's interested users.
//
// The successor copies the repeat rule verbatim, so after this step both
// the source and the successor satisfy future selection queries. That is
// the chain's literal contract; the occurrence marks are what keep the
// two cursors from producing duplicate instances for the same date.
func (s *ScheduleService) generateInstance(ctx context.Context, source *model.Task, now time.Time) (*model.Task, error) {
	if !source.HasRepeatRule() {
		return nil, nil
	}
	// Chain retired once the end date has passed.
	if source.RepeatEndDate != nil && source.RepeatEndDate.Before(now) {
		return nil, nil
	}
	deadline := now.Add(lookahead)
	if source.NextRepeatDate != nil && source.NextRepeatDate.After(deadline) {
		return nil, nil
	}

	previous := now
	switch {
	case source.NextRepeatDate != nil:
		previous = *source.NextRepeatDate
	case source.PlannedFinishTime != nil:
		previous = *source.PlannedFinishTime
	}
	candidate := NextDate(*source.RepeatType, previous, source.RepeatInterval)

	if source.RepeatEndDate != nil && candidate.After(*source.RepeatEndDate) {
		return nil, nil
	}

	err := s.marks.Claim(ctx, source.ID, model.NotifyRepeatCreated, candidate)
	if errors.Is(err, repository.ErrAlreadyMarked) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Planned time shifts by the same delta as the occurrence advance,
	// preserving the time-of-day offset across the chain.
	var planned *time.Time
	if source.PlannedFinishTime != nil {
		shifted := source.PlannedFinishTime.Add(candidate.Sub(previous))
		planned = &shifted
	} else {
		planned = &candidate
	}

	next := NextDate(*source.RepeatType, candidate, source.RepeatInterval)
	originID := source.ID
	if source.OriginalTaskID != nil {
		originID = *source.OriginalTaskID
	}

	instance := &model.Task{
		ID:                uuid.NewString(),
		Title:             source.Title,
		Description:       source.Description,
		Status:            source.Status,
		ParentTaskID:      source.ParentTaskID,
		CreatorID:         source.CreatorID,
		AssigneeID:        source.AssigneeID,
		TeamID:            source.TeamID,
		PlannedFinishTime: planned,
		RepeatType:        source.RepeatType,
		RepeatInterval:    source.RepeatInterval,
		RepeatEndDate:     source.RepeatEndDate,
		NextRepeatDate:    &next,
		OriginalTaskID:    &originID,
	}
	if err := s.taskRepo.Create(ctx, instance); err != nil {
		return nil, err
	}

	if len(source.Watchers) > 0 {
		ids := make([]string, 0, len(source.Watchers))
		for _, w := range source.Watchers {
			ids = append(ids, w.ID)
		}
		if err := s.taskRepo.AddWatchers(ctx, instance, ids); err != nil {
			return nil, err
		}
	}

	for i := range source.SubTasks {
		if err := s.generateSubTask(ctx, &source.SubTasks[i], instance, now); err != nil {
			log.Printf("repeat check: sub-task %s: %v", source.SubTasks[i].ID, err)
		}
	}

	// The source stays the chain's cursor: the next run reconsiders it
	// from the advanced occurrence.
	source.NextRepeatDate = &candidate
	if err := s.taskRepo.Save(ctx, source); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Recurring task %q was created automatically", source.Title)
	if _, err := s.notifier.NotifyTaskUsers(ctx, source, model.NotifyRepeatCreated, msg); err != nil {
		return nil, err
	}

	return instance, nil
}

// generateSubTask handles one child of a repeating parent. A child with
// its own rule repeats on its own chain and cadence; a child without one
// becomes a one-shot clone under the freshly created parent instance.
func (s *ScheduleService) generateSubTask(ctx context.Context, sub *model.Task, parentInstance *model.Task, now time.Time) error {
	if sub.HasRepeatRule() {
		// Reload to get the child's own watchers and sub-tasks; the
		// occurrence mark prevents double generation when the child is
		// also selected by the top-level query.
		full, err := s.taskRepo.FindByID(ctx, sub.ID)
		if err != nil {
			return err
		}
		_, err = s.generateInstance(ctx, full, now)
		return err
	}

	clone := &model.Task{
		ID:                uuid.NewString(),
		Title:             sub.Title,
		Description:       sub.Description,
		Status:            sub.Status,
		ParentTaskID:      &parentInstance.ID,
		CreatorID:         sub.CreatorID,
		AssigneeID:        sub.AssigneeID,
		TeamID:            sub.TeamID,
		PlannedFinishTime: parentInstance.PlannedFinishTime,
	}
	return s.taskRepo.Create(ctx, clone)
}
