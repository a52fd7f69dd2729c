package model

import "time"

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Repeat kinds. Custom carries no rule of its own and falls back to
// daily-style arithmetic in the recurrence calculator.
const (
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatYearly  = "yearly"
	RepeatCustom  = "custom"
)

// Task is a single tracked item. Tasks form a one-level tree via
// ParentTaskID; the child index lives in the database, not in memory.
// A task with a repeat rule acts as the cursor of its chain:
// NextRepeatDate advances each time an instance is generated, and
// OriginalTaskID points at the chain's canonical origin.
type Task struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `gorm:"index;default:todo" json:"status"`

	ParentTaskID *string `gorm:"size:36;index" json:"parentTaskId"`
	SubTasks     []Task  `gorm:"foreignKey:ParentTaskID" json:"subTasks,omitempty"`

	CreatorID  string  `gorm:"size:36;index" json:"creatorId"`
	AssigneeID *string `gorm:"size:36;index" json:"assigneeId"`
	TeamID     *string `gorm:"size:36;index" json:"teamId"`
	Watchers   []User  `gorm:"many2many:task_watchers" json:"watchers,omitempty"`

	PlannedFinishTime *time.Time `json:"plannedFinishTime"`

	RepeatType     *string    `json:"repeatType"`
	RepeatInterval int        `gorm:"default:1" json:"repeatInterval"`
	RepeatEndDate  *time.Time `json:"repeatEndDate"`
	NextRepeatDate *time.Time `gorm:"index" json:"nextRepeatDate"`
	OriginalTaskID *string    `gorm:"size:36" json:"originalTaskId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRepeatRule reports whether the task carries an active repeat kind.
func (t *Task) HasRepeatRule() bool {
	return t.RepeatType != nil && *t.RepeatType != ""
}

// InterestedUserIDs returns creator, assignee and watchers, deduplicated
// in first-seen order.
func (t *Task) InterestedUserIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(t.CreatorID)
	if t.AssigneeID != nil {
		add(*t.AssigneeID)
	}
	for _, w := range t.Watchers {
		add(w.ID)
	}
	return ids
}
