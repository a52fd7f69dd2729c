package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TeamService wraps team and membership logic. The creator is the only
// actor allowed to change a team; members may read it.
type TeamService struct {
	teamRepo *repository.TeamRepository
	userRepo *repository.UserRepository
}

func NewTeamService(teamRepo *repository.TeamRepository, userRepo *repository.UserRepository) *TeamService {
	return &TeamService{teamRepo: teamRepo, userRepo: userRepo}
}

func (s *TeamService) Create(ctx context.Context, creatorID, name, description string) (*model.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	team := &model.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}

	// Creator joins their own team.
	member := &model.TeamMember{ID: uuid.NewString(), TeamID: team.ID, UserID: creatorID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	return s.teamRepo.FindByID(ctx, team.ID)
}

func (s *TeamService) Get(ctx context.Context, userID, teamID string) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isTeamMember(team, userID) {
		return nil, ErrForbidden
	}
	return team, nil
}

func (s *TeamService) List(ctx context.Context, userID string) ([]model.Team, error) {
	return s.teamRepo.ListForUser(ctx, userID)
}

func (s *TeamService) Update(ctx context.Context, userID, teamID, name, description string) (*model.Team, error) {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != userID {
		return nil, ErrForbidden
	}

	if name != "" {
		team.Name = name
	}
	if description != "" {
		team.Description = description
	}
	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

func (s *TeamService) Delete(ctx context.Context, userID, teamID string) error {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if team.CreatorID != userID {
		return ErrForbidden
	}
	return s.teamRepo.Delete(ctx, teamID)
}

func (s *TeamService) AddMember(ctx context.Context, userID, teamID, memberID string) (*model.Team, error) {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != userID {
		return nil, ErrForbidden
	}

	if _, err := s.userRepo.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	member := &model.TeamMember{ID: uuid.NewString(), TeamID: teamID, UserID: memberID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

func (s *TeamService) RemoveMember(ctx context.Context, userID, teamID, memberID string) (*model.Team, error) {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != userID {
		return nil, ErrForbidden
	}
	if err := s.teamRepo.RemoveMember(ctx, teamID, memberID); err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

// Members returns the member users of a team, creator first.
func (s *TeamService) Members(ctx context.Context, userID, teamID string) ([]model.User, error) {
	team, err := s.Get(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	ids := []string{team.CreatorID}
	for _, m := range team.Members {
		if m.UserID != team.CreatorID {
			ids = append(ids, m.UserID)
		}
	}

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func isTeamMember(team *model.Team, userID string) bool {
	if team.CreatorID == userID {
		return true
	}
	for _, m := range team.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
