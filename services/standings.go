package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// StandingsCalculator derives group classifications from completed matches.
// The matches are the source of truth; the standing store is a read model
// recomputed from them, which keeps score-event redelivery harmless.
type StandingsCalculator interface {
	// ComputeStandings classifies the group from its completed REGULAR
	// matches: 3 points per win, 1 per draw, symmetric goal-difference
	// accumulation. Ordering: points desc, goal difference desc, goals for
	// desc, team id asc.
	ComputeStandings(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error)
	// RecalculateGroup recomputes the classification and replaces the stored
	// standings with it.
	RecalculateGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error)
	// TopTeams returns the first limit entries of the classification.
	TopTeams(ctx context.Context, tournamentID, groupID string, limit int) ([]*models.Standing, error)
	// GroupComplete reports whether every pairing of the group has a score.
	GroupComplete(ctx context.Context, tournamentID, groupID string) (bool, error)
}

type standingsCalculator struct {
	matchRepo    repositories.MatchRepository
	groupRepo    repositories.GroupRepository
	standingRepo repositories.StandingRepository
}

func NewStandingsCalculator(
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
	standingRepo repositories.StandingRepository,
) StandingsCalculator {
	return &standingsCalculator{
		matchRepo:    matchRepo,
		groupRepo:    groupRepo,
		standingRepo: standingRepo,
	}
}

func (c *standingsCalculator) ComputeStandings(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error) {
	group, err := c.groupRepo.FindByTournamentAndID(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}

	standings := make(map[string]*models.Standing, len(group.Teams))
	for _, team := range group.Teams {
		standings[team.ID] = &models.Standing{
			TournamentID: tournamentID,
			GroupID:      groupID,
			TeamID:       team.ID,
			TeamName:     team.Name,
		}
	}

	matches, err := c.groupMatches(ctx, tournamentID, standings)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		if !match.HasScore() {
			continue
		}
		home := standings[*match.HomeTeamID]
		visitor := standings[*match.VisitorTeamID]
		home.Record(match.Score.Home, match.Score.Visitor)
		visitor.Record(match.Score.Visitor, match.Score.Home)
	}

	result := make([]*models.Standing, 0, len(standings))
	for _, s := range standings {
		result = append(result, s)
	}
	sortStandings(result)
	return result, nil
}

// groupMatches returns the tournament's REGULAR matches played between two
// members of the group.
func (c *standingsCalculator) groupMatches(ctx context.Context, tournamentID string, members map[string]*models.Standing) ([]*models.Match, error) {
	regular, err := c.matchRepo.FindByTournamentAndRound(ctx, tournamentID, models.RoundRegular)
	if err != nil {
		return nil, fmt.Errorf("failed to load regular matches: %w", err)
	}
	matches := make([]*models.Match, 0, len(regular))
	for _, match := range regular {
		if match.HomeTeamID == nil || match.VisitorTeamID == nil {
			continue
		}
		if _, ok := members[*match.HomeTeamID]; !ok {
			continue
		}
		if _, ok := members[*match.VisitorTeamID]; !ok {
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (c *standingsCalculator) RecalculateGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error) {
	standings, err := c.ComputeStandings(ctx, tournamentID, groupID)
	if err != nil {
		return nil, err
	}
	if err := c.standingRepo.ReplaceGroup(ctx, tournamentID, groupID, standings); err != nil {
		return nil, fmt.Errorf("failed to store standings for group %s: %w", groupID, err)
	}
	return standings, nil
}

func (c *standingsCalculator) TopTeams(ctx context.Context, tournamentID, groupID string, limit int) ([]*models.Standing, error) {
	standings, err := c.ComputeStandings(ctx, tournamentID, groupID)
	if err != nil {
		return nil, err
	}
	if len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, nil
}

func (c *standingsCalculator) GroupComplete(ctx context.Context, tournamentID, groupID string) (bool, error) {
	group, err := c.groupRepo.FindByTournamentAndID(ctx, tournamentID, groupID)
	if err != nil {
		return false, err
	}
	members := make(map[string]*models.Standing, len(group.Teams))
	for _, team := range group.Teams {
		members[team.ID] = nil
	}
	matches, err := c.groupMatches(ctx, tournamentID, members)
	if err != nil {
		return false, err
	}
	expected := len(group.Teams) * (len(group.Teams) - 1) / 2
	if len(matches) < expected {
		return false, nil
	}
	for _, match := range matches {
		if !match.HasScore() {
			return false, nil
		}
	}
	return true, nil
}

// sortStandings orders by points, then goal difference, then goals for, with
// team id as the final stable key so equal records rank identically on every
// recomputation.
func sortStandings(standings []*models.Standing) {
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
}
