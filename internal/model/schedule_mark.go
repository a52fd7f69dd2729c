package model

import "time"

// ScheduleMark records that a scheduled job already handled a given
// (task, kind, occurrence) crossing. The unique index makes scanner and
// generator runs idempotent under overlapping or late-firing triggers:
// claiming an existing mark fails and the item is skipped.
type ScheduleMark struct {
	ID         string    `gorm:"primaryKey;size:36"`
	TaskID     string    `gorm:"size:36;index:idx_schedule_mark,unique"`
	Kind       string    `gorm:"index:idx_schedule_mark,unique"`
	Occurrence time.Time `gorm:"index:idx_schedule_mark,unique"`
	CreatedAt  time.Time
}
