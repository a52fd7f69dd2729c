package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

// ErrAlreadyMarked means another run already claimed this crossing.
var ErrAlreadyMarked = errors.New("schedule mark already claimed")

// ScheduleMarkRepository is the idempotency ledger for the scheduled jobs.
type ScheduleMarkRepository struct {
	db *gorm.DB
}

func NewScheduleMarkRepository(db *gorm.DB) *ScheduleMarkRepository {
	return &ScheduleMarkRepository{db: db}
}

// Claim inserts a mark for (taskID, kind, occurrence). The unique index
// rejects duplicates, which surfaces as ErrAlreadyMarked; the caller then
// skips the item instead of double-notifying or double-generating.
func (r *ScheduleMarkRepository) Claim(ctx context.Context, taskID, kind string, occurrence time.Time) error {
	mark := model.ScheduleMark{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		Kind:       kind,
		Occurrence: occurrence.UTC(),
	}
	err := r.db.WithContext(ctx).Create(&mark).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return ErrAlreadyMarked
	}
	return fmt.Errorf("claim schedule mark: %w", err)
}

// isUniqueViolation covers drivers that do not translate constraint
// failures into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
