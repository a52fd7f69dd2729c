package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// testEnv bundles the repositories and services under test over a fresh
// in-memory database.
type testEnv struct {
	db            *gorm.DB
	userRepo      *repository.UserRepository
	taskRepo      *repository.TaskRepository
	teamRepo      *repository.TeamRepository
	commentRepo   *repository.CommentRepository
	notifRepo     *repository.NotificationRepository
	markRepo      *repository.ScheduleMarkRepository
	notifications *NotificationService
	tasks         *TaskService
	teams         *TeamService
	comments      *CommentService
	schedule      *ScheduleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
		teamRepo:    repository.NewTeamRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		notifRepo:   repository.NewNotificationRepository(db),
		markRepo:    repository.NewScheduleMarkRepository(db),
	}
	env.notifications = NewNotificationService(env.notifRepo)
	env.tasks = NewTaskService(env.taskRepo, env.notifications)
	env.teams = NewTeamService(env.teamRepo, env.userRepo)
	env.comments = NewCommentService(env.commentRepo, env.tasks, env.notifications)
	env.schedule = NewScheduleService(env.taskRepo, env.markRepo, env.notifications)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{
		ID:    uuid.NewString(),
		Email: name + "@example.com",
		Name:  name,
	}
	if err := e.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) mustNotifications(t *testing.T, userID string) []model.Notification {
	t.Helper()
	ns, err := e.notifRepo.ListByUser(context.Background(), userID, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return ns
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func taskQueryAll() repository.TaskQuery { return repository.TaskQuery{} }
