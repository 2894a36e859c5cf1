package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// MatchService is the producer side of score recording: it persists the
// result and hands a notification to the queue for the advancement engine.
type MatchService interface {
	RecordScore(ctx context.Context, tournamentID, matchID string, score models.Score) (*models.Match, error)
	GetByID(ctx context.Context, tournamentID, matchID string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	ListByRound(ctx context.Context, tournamentID string, round models.Round) ([]*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	publisher EventPublisher
}

func NewMatchService(matchRepo repositories.MatchRepository, publisher EventPublisher) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		publisher: publisher,
	}
}

func (s *matchService) RecordScore(ctx context.Context, tournamentID, matchID string, score models.Score) (*models.Match, error) {
	if score.Home < 0 || score.Visitor < 0 {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidScore, score.Home, score.Visitor)
	}

	match, err := s.matchRepo.FindByTournamentAndID(ctx, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	if match.HasScore() {
		return nil, fmt.Errorf("%w: match %s", ErrScoreAlreadyRecorded, matchID)
	}
	if match.HomeTeamID == nil || match.VisitorTeamID == nil {
		return nil, fmt.Errorf("%w: match %s has unassigned slots", ErrInvalidScore, matchID)
	}
	// Ties cannot decide an elimination match.
	if score.IsTie() && (match.Round.IsKnockout() || match.Name != nil) {
		return nil, fmt.Errorf("%w: match %s", ErrTieNotAllowed, matchID)
	}

	if err := s.matchRepo.UpdateScore(ctx, tournamentID, matchID, score); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			// The guarded update found a score already present.
			return nil, fmt.Errorf("%w: match %s", ErrScoreAlreadyRecorded, matchID)
		}
		return nil, fmt.Errorf("failed to record score for match %s: %w", matchID, err)
	}
	match.Score = &score

	if s.publisher != nil {
		err := s.publisher.Publish(models.TopicScoreRecorded, models.ScoreRecordedEvent{
			TournamentID:     tournamentID,
			MatchID:          matchID,
			HomeTeamScore:    score.Home,
			VisitorTeamScore: score.Visitor,
		})
		if err != nil {
			return nil, fmt.Errorf("score stored but notification failed for match %s: %w", matchID, err)
		}
	}

	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.FindByTournamentAndID(ctx, tournamentID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) ListByRound(ctx context.Context, tournamentID string, round models.Round) ([]*models.Match, error) {
	matches, err := s.matchRepo.FindByTournamentAndRound(ctx, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s matches for tournament %s: %w", round, tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}
