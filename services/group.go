package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// GroupService manages group membership during registration. Adding a team is
// the trigger for the round-robin schedule: the full-group notification goes
// through the queue so the consumer generates the matches.
type GroupService interface {
	Create(ctx context.Context, tournamentID, name string) (*models.Group, error)
	GetByID(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error)
}

type groupService struct {
	groupRepo repositories.GroupRepository
	teamRepo  repositories.TeamRepository
	publisher EventPublisher
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	publisher EventPublisher,
) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		teamRepo:  teamRepo,
		publisher: publisher,
	}
}

func (s *groupService) Create(ctx context.Context, tournamentID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{
		TournamentID: tournamentID,
		Name:         name,
	}
	id, err := s.groupRepo.Create(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create group %q: %w", name, err)
	}
	group.ID = id
	return group, nil
}

func (s *groupService) GetByID(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	group, err := s.groupRepo.FindByTournamentAndID(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %s: %w", tournamentID, err)
	}
	if groups == nil {
		return []*models.Group{}, nil
	}
	return groups, nil
}

func (s *groupService) AddTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Group, error) {
	group, err := s.groupRepo.FindByTournamentAndID(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group.IsFull() {
		return nil, fmt.Errorf("%w: group %s", ErrGroupFull, group.Name)
	}

	team, err := s.teamRepo.FindByTournamentAndID(ctx, tournamentID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		return nil, fmt.Errorf("failed to load team %s: %w", teamID, err)
	}

	if err := s.groupRepo.AddTeam(ctx, tournamentID, groupID, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamAlreadyInGroup) {
			return nil, fmt.Errorf("%w: team %s", ErrTeamAlreadyInGroup, teamID)
		}
		return nil, fmt.Errorf("failed to add team %s to group %s: %w", teamID, groupID, err)
	}
	group.Teams = append(group.Teams, *team)

	if s.publisher != nil {
		err := s.publisher.Publish(models.TopicTeamAdded, models.TeamAddedEvent{
			TournamentID: tournamentID,
			GroupID:      groupID,
			TeamID:       teamID,
		})
		if err != nil {
			return nil, fmt.Errorf("team added but notification failed for group %s: %w", groupID, err)
		}
	}

	return group, nil
}
