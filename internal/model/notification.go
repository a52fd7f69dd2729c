package model

import "time"

// Notification kinds.
const (
	NotifyDueSoon       = "due_soon"
	NotifyOverdue       = "overdue"
	NotifyAssigned      = "assigned"
	NotifyCommented     = "commented"
	NotifyRepeatCreated = "repeat_created"
)

// Notification is an in-app message owned exclusively by its recipient.
// It is created by the emitter, flipped to read by the recipient and
// deleted by the recipient; nothing else touches it.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	TaskID    *string   `gorm:"size:36;index" json:"taskId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
