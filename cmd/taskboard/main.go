package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/internal/server"
	"taskboard/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	markRepo := repository.NewScheduleMarkRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	notificationSvc := service.NewNotificationService(notificationRepo)
	taskSvc := service.NewTaskService(taskRepo, notificationSvc)
	teamSvc := service.NewTeamService(teamRepo, userRepo)
	commentSvc := service.NewCommentService(commentRepo, taskSvc, notificationSvc)
	scheduleSvc := service.NewScheduleService(taskRepo, markRepo, notificationSvc)

	scheduler := service.NewScheduler(time.Local, cfg.JobTimeout)
	if cfg.JobEvery > 0 {
		if err := scheduler.RunEvery("due check", cfg.JobEvery, scheduleSvc.CheckDueTasks); err != nil {
			log.Fatalf("schedule due check: %v", err)
		}
		if err := scheduler.RunEvery("repeat check", cfg.JobEvery, scheduleSvc.GenerateRepeatTasks); err != nil {
			log.Fatalf("schedule repeat check: %v", err)
		}
	} else {
		if err := scheduler.RunDaily("due check", cfg.DueCheckAt, scheduleSvc.CheckDueTasks); err != nil {
			log.Fatalf("schedule due check: %v", err)
		}
		if err := scheduler.RunDaily("repeat check", cfg.RepeatCheckAt, scheduleSvc.GenerateRepeatTasks); err != nil {
			log.Fatalf("schedule repeat check: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(authSvc, userRepo, taskSvc, teamSvc, commentSvc, notificationSvc)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Engine()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("taskboard listening on %s", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
