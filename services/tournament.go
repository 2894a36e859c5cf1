package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// DoubleEliminationCapacity is the registration limit for bracket
// tournaments. The 32nd team triggers bracket generation.
const DoubleEliminationCapacity = 32

// TournamentFullData aggregates everything the dashboard renders for one
// tournament.
type TournamentFullData struct {
	Tournament *models.Tournament `json:"tournament"`
	Groups     []*models.Group    `json:"groups"`
	Teams      []*models.Team     `json:"teams"`
	Matches    []*models.Match    `json:"matches"`
}

type TournamentService interface {
	Create(ctx context.Context, name string, format models.TournamentFormat) (*models.Tournament, error)
	GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error)
	GetFullData(ctx context.Context, tournamentID string) (*TournamentFullData, error)
	RegisterTeam(ctx context.Context, tournamentID, teamName string) (*models.Team, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	publisher      EventPublisher
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	publisher EventPublisher,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		publisher:      publisher,
	}
}

func (s *tournamentService) Create(ctx context.Context, name string, format models.TournamentFormat) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	switch format.Type {
	case models.TournamentMundial:
		if format.MaxTeamsPerGroup <= 0 {
			format.MaxTeamsPerGroup = models.GroupCapacity
		}
		if format.NumberOfGroups <= 0 {
			format.NumberOfGroups = 8
		}
	case models.TournamentDoubleElimination:
		format.MaxTeamsPerGroup = 0
		format.NumberOfGroups = 0
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTournamentType, format.Type)
	}

	tournament := &models.Tournament{
		Name:   name,
		Format: format,
	}
	id, err := s.tournamentRepo.Create(ctx, tournament)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament %q: %w", name, err)
	}
	tournament.ID = id
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, tournamentID)
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}
	return tournament, nil
}

// GetFullData fetches the tournament and its groups, teams and matches in
// parallel.
func (s *tournamentService) GetFullData(ctx context.Context, tournamentID string) (*TournamentFullData, error) {
	data := &TournamentFullData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.GetByID(gctx, tournamentID)
		if err != nil {
			return err
		}
		data.Tournament = tournament
		return nil
	})
	g.Go(func() error {
		groups, err := s.groupRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		data.Groups = groups
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		data.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		data.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if data.Groups == nil {
		data.Groups = []*models.Group{}
	}
	if data.Teams == nil {
		data.Teams = []*models.Team{}
	}
	if data.Matches == nil {
		data.Matches = []*models.Match{}
	}
	return data, nil
}

// RegisterTeam adds an entrant to the tournament. For double elimination the
// capacity is fixed; the team that fills the last slot triggers the bracket
// through the queue.
func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID, teamName string) (*models.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if tournament.Format.Type == models.TournamentDoubleElimination {
		count, err := s.teamRepo.CountByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to count teams: %w", err)
		}
		if count >= DoubleEliminationCapacity {
			return nil, fmt.Errorf("%w: tournament %s", ErrRegistrationClosed, tournamentID)
		}
	}

	team := &models.Team{
		TournamentID: tournamentID,
		Name:         teamName,
	}
	id, err := s.teamRepo.Create(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to register team %q: %w", teamName, err)
	}
	team.ID = id

	if tournament.Format.Type == models.TournamentDoubleElimination && s.publisher != nil {
		count, err := s.teamRepo.CountByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to count teams: %w", err)
		}
		if count == DoubleEliminationCapacity {
			err := s.publisher.Publish(models.TopicTournamentFull, models.TournamentFullEvent{
				TournamentID: tournamentID,
			})
			if err != nil {
				return nil, fmt.Errorf("registration stored but notification failed: %w", err)
			}
		}
	}

	return team, nil
}
