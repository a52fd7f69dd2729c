package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TeamRepository handles CRUD for teams and their membership rows.
type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *model.Team) error {
	if err := r.db.WithContext(ctx).Create(team).Error; err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

func (r *TeamRepository) Save(ctx context.Context, team *model.Team) error {
	if err := r.db.WithContext(ctx).Omit("Members").Save(team).Error; err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Preload("Members").First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListForUser returns teams the user created or belongs to.
func (r *TeamRepository) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("creator_id = ? OR id IN (SELECT team_id FROM team_members WHERE user_id = ?)", userID, userID).
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&model.TeamMember{}, "team_id = ?", id).Error; err != nil {
		return fmt.Errorf("delete team members: %w", err)
	}
	if err := db.Delete(&model.Team{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

func (r *TeamRepository) FindMember(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember inserts a membership row if the user is not in the team yet.
func (r *TeamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	_, err := r.FindMember(ctx, member.TeamID, member.UserID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
			return fmt.Errorf("add team member: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find team member: %w", err)
	}
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	if err := r.db.WithContext(ctx).
		Delete(&model.TeamMember{}, "team_id = ? AND user_id = ?", teamID, userID).Error; err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	return nil
}
