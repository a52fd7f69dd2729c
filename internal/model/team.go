package model

import "time"

// Team groups users so tasks can be shared across a group.
type Team struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatorID   string       `gorm:"size:36;index" json:"creatorId"`
	Members     []TeamMember `json:"members,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TeamMember links a user to a team. The pair is unique; the creator is
// added as the first member when the team is created.
type TeamMember struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID   string    `gorm:"size:36;index:idx_team_member,unique" json:"teamId"`
	UserID   string    `gorm:"size:36;index:idx_team_member,unique" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}
