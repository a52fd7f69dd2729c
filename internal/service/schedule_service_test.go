package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

func (e *testEnv) createTask(t *testing.T, task *model.Task) *model.Task {
	t.Helper()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if err := e.taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (e *testEnv) reloadTask(t *testing.T, id string) *model.Task {
	t.Helper()
	task, err := e.taskRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload task %s: %v", id, err)
	}
	return task
}

// chainInstances returns the generated members of a repeat chain, i.e.
// every task pointing at the origin except the origin itself.
func (e *testEnv) chainInstances(t *testing.T, originID string) []model.Task {
	t.Helper()
	var tasks []model.Task
	if err := e.db.Where("original_task_id = ? AND id <> ?", originID, originID).Find(&tasks).Error; err != nil {
		t.Fatalf("list chain instances: %v", err)
	}
	return tasks
}

func TestCheckDueTasksSelection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	dueSoon := env.createTask(t, &model.Task{
		Title: "due soon", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now.Add(23 * time.Hour)),
	})
	env.createTask(t, &model.Task{
		Title: "too far", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now.Add(25 * time.Hour)),
	})
	overdue := env.createTask(t, &model.Task{
		Title: "overdue", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now.Add(-time.Minute)),
	})
	env.createTask(t, &model.Task{
		Title: "done overdue", CreatorID: creator.ID, Status: model.StatusDone,
		PlannedFinishTime: timePtr(now.Add(-time.Minute)),
	})

	if err := env.schedule.CheckDueTasks(ctx, now); err != nil {
		t.Fatalf("CheckDueTasks: %v", err)
	}

	ns := env.mustNotifications(t, creator.ID)
	if len(ns) != 2 {
		t.Fatalf("got %d notifications, want 2", len(ns))
	}
	byTask := make(map[string]string)
	for _, n := range ns {
		byTask[*n.TaskID] = n.Type
	}
	if byTask[dueSoon.ID] != model.NotifyDueSoon {
		t.Errorf("due-soon task got %q", byTask[dueSoon.ID])
	}
	if byTask[overdue.ID] != model.NotifyOverdue {
		t.Errorf("overdue task got %q", byTask[overdue.ID])
	}
}

func TestCheckDueTasksDeduplicatesRecipients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	task := env.createTask(t, &model.Task{
		Title: "due", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now.Add(2 * time.Hour)),
	})
	// Creator also watches their own task; they still get one notification.
	if err := env.taskRepo.AddWatchers(ctx, task, []string{creator.ID}); err != nil {
		t.Fatalf("add watcher: %v", err)
	}

	if err := env.schedule.CheckDueTasks(ctx, now); err != nil {
		t.Fatalf("CheckDueTasks: %v", err)
	}

	if ns := env.mustNotifications(t, creator.ID); len(ns) != 1 {
		t.Fatalf("got %d notifications, want 1", len(ns))
	}
}

func TestCheckDueTasksIdempotentAcrossRuns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	env.createTask(t, &model.Task{
		Title: "still overdue", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now.Add(-time.Hour)),
	})

	if err := env.schedule.CheckDueTasks(ctx, now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := env.schedule.CheckDueTasks(ctx, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if ns := env.mustNotifications(t, creator.ID); len(ns) != 1 {
		t.Fatalf("got %d notifications after two runs, want 1", len(ns))
	}
}

func TestGenerateRepeatTasksExample(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	source := env.createTask(t, &model.Task{
		ID:                uuid.NewString(),
		Title:             "report",
		CreatorID:         creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    2,
		NextRepeatDate:    timePtr(now),
	})
	source.OriginalTaskID = &source.ID
	if err := env.taskRepo.Save(ctx, source); err != nil {
		t.Fatalf("save source: %v", err)
	}

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}

	instances := env.chainInstances(t, source.ID)
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
	instance := instances[0]

	if want := now.AddDate(0, 0, 2); !instance.PlannedFinishTime.Equal(want) {
		t.Errorf("instance planned time = %s, want %s", instance.PlannedFinishTime, want)
	}
	if want := now.AddDate(0, 0, 4); !instance.NextRepeatDate.Equal(want) {
		t.Errorf("instance next occurrence = %s, want %s", instance.NextRepeatDate, want)
	}
	if instance.RepeatType == nil || *instance.RepeatType != model.RepeatDaily || instance.RepeatInterval != 2 {
		t.Errorf("repeat rule not copied verbatim: %+v", instance)
	}
	if instance.OriginalTaskID == nil || *instance.OriginalTaskID != source.ID {
		t.Errorf("instance origin = %v, want %s", instance.OriginalTaskID, source.ID)
	}

	reloaded := env.reloadTask(t, source.ID)
	if want := now.AddDate(0, 0, 2); !reloaded.NextRepeatDate.Equal(want) {
		t.Errorf("source cursor = %s, want %s", reloaded.NextRepeatDate, want)
	}

	ns := env.mustNotifications(t, creator.ID)
	if len(ns) != 1 || ns[0].Type != model.NotifyRepeatCreated {
		t.Fatalf("expected one repeat_created notification, got %+v", ns)
	}
	if *ns[0].TaskID != source.ID {
		t.Errorf("notification references %s, want source %s", *ns[0].TaskID, source.ID)
	}
}

func TestGenerateSkipsTasksWithoutRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	task := env.createTask(t, &model.Task{
		Title: "plain", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}

	var count int64
	env.db.Model(&model.Task{}).Count(&count)
	if count != 1 {
		t.Fatalf("task count = %d, want 1", count)
	}
	_ = task
}

func TestGenerateHonorsEndDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	// Candidate (now+2d) lands past the end date: chain retires silently.
	source := env.createTask(t, &model.Task{
		Title: "ending", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    2,
		NextRepeatDate:    timePtr(now),
		RepeatEndDate:     timePtr(now.Add(time.Hour)),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}

	if instances := env.chainInstances(t, source.ID); len(instances) != 0 {
		t.Fatalf("got %d instances past end date, want 0", len(instances))
	}
	reloaded := env.reloadTask(t, source.ID)
	if !reloaded.NextRepeatDate.Equal(now) {
		t.Errorf("cursor moved on retired chain: %s", reloaded.NextRepeatDate)
	}
	if ns := env.mustNotifications(t, creator.ID); len(ns) != 0 {
		t.Errorf("retired chain produced %d notifications", len(ns))
	}
}

func TestGenerateSkipsExpiredChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	source := env.createTask(t, &model.Task{
		Title: "expired", CreatorID: creator.ID,
		RepeatType:     strPtr(model.RepeatDaily),
		RepeatInterval: 1,
		NextRepeatDate: timePtr(now),
		RepeatEndDate:  timePtr(now.Add(-time.Hour)),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}
	if instances := env.chainInstances(t, source.ID); len(instances) != 0 {
		t.Fatalf("expired chain produced %d instances", len(instances))
	}
}

func TestGenerateCopiesWatchers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	watcher := env.createUser(t, "watcher")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	source := env.createTask(t, &model.Task{
		Title: "watched", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatWeekly),
		RepeatInterval:    1,
		NextRepeatDate:    timePtr(now),
	})
	if err := env.taskRepo.AddWatchers(ctx, source, []string{watcher.ID}); err != nil {
		t.Fatalf("add watcher: %v", err)
	}

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}

	instances := env.chainInstances(t, source.ID)
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
	instance := env.reloadTask(t, instances[0].ID)
	if len(instance.Watchers) != 1 || instance.Watchers[0].ID != watcher.ID {
		t.Errorf("watchers not copied: %+v", instance.Watchers)
	}

	// Both the creator and the watcher of the source hear about it.
	if ns := env.mustNotifications(t, watcher.ID); len(ns) != 1 {
		t.Errorf("watcher got %d notifications, want 1", len(ns))
	}
	if ns := env.mustNotifications(t, creator.ID); len(ns) != 1 {
		t.Errorf("creator got %d notifications, want 1", len(ns))
	}
}

func TestGenerateSubTaskCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	parent := env.createTask(t, &model.Task{
		Title: "parent", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    1,
		NextRepeatDate:    timePtr(now),
	})
	oneShot := env.createTask(t, &model.Task{
		Title: "one-shot child", CreatorID: creator.ID,
		ParentTaskID: &parent.ID,
	})
	repeating := env.createTask(t, &model.Task{
		Title: "repeating child", CreatorID: creator.ID,
		ParentTaskID:      &parent.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    1,
		NextRepeatDate:    timePtr(now),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("GenerateRepeatTasks: %v", err)
	}

	parentInstances := env.chainInstances(t, parent.ID)
	if len(parentInstances) != 1 {
		t.Fatalf("got %d parent instances, want 1", len(parentInstances))
	}
	newParent := parentInstances[0]

	// The child without a rule becomes one clone under the new parent,
	// sharing its planned finish time.
	var clones []model.Task
	if err := env.db.Where("parent_task_id = ?", newParent.ID).Find(&clones).Error; err != nil {
		t.Fatalf("list clones: %v", err)
	}
	if len(clones) != 1 {
		t.Fatalf("got %d clones under new parent, want 1", len(clones))
	}
	if clones[0].Title != oneShot.Title {
		t.Errorf("clone title = %q, want %q", clones[0].Title, oneShot.Title)
	}
	if !clones[0].PlannedFinishTime.Equal(*newParent.PlannedFinishTime) {
		t.Errorf("clone planned time %s differs from parent instance %s",
			clones[0].PlannedFinishTime, newParent.PlannedFinishTime)
	}
	if clones[0].HasRepeatRule() {
		t.Errorf("one-shot clone carries a repeat rule")
	}

	// The child with its own rule repeats on its own chain, exactly once,
	// even though both the cascade and the top-level selection reach it.
	childInstances := env.chainInstances(t, repeating.ID)
	if len(childInstances) != 1 {
		t.Fatalf("got %d repeating-child instances, want 1", len(childInstances))
	}
	if childInstances[0].ParentTaskID == nil || *childInstances[0].ParentTaskID != parent.ID {
		t.Errorf("repeating child instance parent = %v, want original parent %s",
			childInstances[0].ParentTaskID, parent.ID)
	}
}

func TestGenerateMarkPreventsDoubleProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	source := env.createTask(t, &model.Task{
		Title: "guarded", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    2,
		NextRepeatDate:    timePtr(now),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Simulate an overlapping trigger that read the cursor before the
	// first run advanced it.
	stale := env.reloadTask(t, source.ID)
	stale.NextRepeatDate = timePtr(now)
	if err := env.taskRepo.Save(ctx, stale); err != nil {
		t.Fatalf("reset cursor: %v", err)
	}
	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if instances := env.chainInstances(t, source.ID); len(instances) != 1 {
		t.Fatalf("got %d instances after overlapping runs, want 1", len(instances))
	}
	if ns := env.mustNotifications(t, creator.ID); len(ns) != 1 {
		t.Fatalf("got %d notifications after overlapping runs, want 1", len(ns))
	}
}

// After a generation step both the source and the new instance carry the
// same rule, so later runs advance both cursors independently. This is
// the chain's literal contract; the occurrence marks only guard a single
// cursor against double processing, not the chain against branching.
func TestGenerateChainBranchesStayLive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.createUser(t, "creator")
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	source := env.createTask(t, &model.Task{
		Title: "branching", CreatorID: creator.ID,
		PlannedFinishTime: timePtr(now),
		RepeatType:        strPtr(model.RepeatDaily),
		RepeatInterval:    2,
		NextRepeatDate:    timePtr(now),
	})

	if err := env.schedule.GenerateRepeatTasks(ctx, now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if instances := env.chainInstances(t, source.ID); len(instances) != 1 {
		t.Fatalf("got %d instances after first run, want 1", len(instances))
	}

	// Four days on, both the source (cursor now+2d) and the first
	// instance (cursor now+4d) fall inside the window and each produces
	// a successor.
	later := now.AddDate(0, 0, 4)
	if err := env.schedule.GenerateRepeatTasks(ctx, later); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if instances := env.chainInstances(t, source.ID); len(instances) != 3 {
		t.Fatalf("got %d instances after second run, want 3 (two live cursors)", len(instances))
	}
}
