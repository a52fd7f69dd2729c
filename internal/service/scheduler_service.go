package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a batch job invoked with the wall-clock time of the run.
type Job func(ctx context.Context, now time.Time) error

// Scheduler registers the periodic jobs and bounds every run with a
// shared timeout. Stop waits for in-flight runs to drain.
type Scheduler struct {
	cron       *cron.Cron
	runTimeout time.Duration
}

func NewScheduler(loc *time.Location, runTimeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		runTimeout: runTimeout,
	}
}

// RunDaily schedules job once a day at the given HH:MM local time.
func (s *Scheduler) RunDaily(name, at string, job Job) error {
	spec, err := dailySpec(at)
	if err != nil {
		return err
	}
	_, err = s.cron.AddFunc(spec, s.wrap(name, job))
	return err
}

// RunEvery schedules job at a fixed cadence. Intervals under a second
// round up to one second, the finest step the cron engine supports.
func (s *Scheduler) RunEvery(name string, every time.Duration, job Job) error {
	spec, err := intervalSpec(every)
	if err != nil {
		return err
	}
	_, err = s.cron.AddFunc(spec, s.wrap(name, job))
	return err
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if err := job(ctx, time.Now()); err != nil {
			log.Printf("%s: %v", name, err)
		}
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func dailySpec(at string) (string, error) {
	hh, mm, ok := strings.Cut(at, ":")
	if !ok {
		return "", fmt.Errorf("invalid run time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

func intervalSpec(every time.Duration) (string, error) {
	if every <= 0 {
		return "", fmt.Errorf("interval must be positive, got %s", every)
	}
	seconds := int(every.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}
