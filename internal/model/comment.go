package model

import "time"

// Comment is a user remark on a task.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;index" json:"taskId"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
