package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	FindByTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Standing, error)
	// ListByGroup returns the group's standings already in classification
	// order: points desc, goal difference desc, goals for desc, team id asc.
	ListByGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error)
	Create(ctx context.Context, standing *models.Standing) error
	Update(ctx context.Context, standing *models.Standing) (bool, error)
	// ReplaceGroup overwrites the group's stored standings in one transaction,
	// making recomputation from matches idempotent under event redelivery.
	ReplaceGroup(ctx context.Context, tournamentID, groupID string, standings []*models.Standing) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

const standingColumns = `
	id, tournament_id, group_id, team_id, team_name,
	points, wins, draws, losses, goals_for, goals_against, goal_difference, matches_played`

func scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.Standing, error) {
	var s models.Standing
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.GroupID, &s.TeamID, &s.TeamName,
		&s.Points, &s.Wins, &s.Draws, &s.Losses,
		&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.MatchesPlayed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) FindByTeam(ctx context.Context, tournamentID, groupID, teamID string) (*models.Standing, error) {
	query := `SELECT` + standingColumns + `
		FROM standings WHERE tournament_id = $1 AND group_id = $2 AND team_id = $3`
	return scanStanding(r.db.QueryRowContext(ctx, query, tournamentID, groupID, teamID))
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, tournamentID, groupID string) ([]*models.Standing, error) {
	query := `SELECT` + standingColumns + `
		FROM standings WHERE tournament_id = $1 AND group_id = $2
		ORDER BY points DESC, goal_difference DESC, goals_for DESC, team_id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, errScan := scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

const insertStandingQuery = `
	INSERT INTO standings
		(id, tournament_id, group_id, team_id, team_name,
		 points, wins, draws, losses, goals_for, goals_against, goal_difference, matches_played)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func insertStanding(ctx context.Context, exec SQLExecutor, s *models.Standing) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := exec.ExecContext(ctx, insertStandingQuery,
		s.ID, s.TournamentID, s.GroupID, s.TeamID, s.TeamName,
		s.Points, s.Wins, s.Draws, s.Losses,
		s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.MatchesPlayed,
	)
	return err
}

func (r *postgresStandingRepository) Create(ctx context.Context, standing *models.Standing) error {
	return insertStanding(ctx, r.db, standing)
}

func (r *postgresStandingRepository) Update(ctx context.Context, standing *models.Standing) (bool, error) {
	query := `UPDATE standings SET
			team_name = $1, points = $2, wins = $3, draws = $4, losses = $5,
			goals_for = $6, goals_against = $7, goal_difference = $8, matches_played = $9
		WHERE tournament_id = $10 AND group_id = $11 AND team_id = $12`
	result, err := r.db.ExecContext(ctx, query,
		standing.TeamName, standing.Points, standing.Wins, standing.Draws, standing.Losses,
		standing.GoalsFor, standing.GoalsAgainst, standing.GoalDifference, standing.MatchesPlayed,
		standing.TournamentID, standing.GroupID, standing.TeamID,
	)
	if err != nil {
		return false, err
	}
	if err := checkAffectedRows(result, ErrStandingNotFound); err != nil {
		if errors.Is(err, ErrStandingNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *postgresStandingRepository) ReplaceGroup(ctx context.Context, tournamentID, groupID string, standings []*models.Standing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceGroup failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM standings WHERE tournament_id = $1 AND group_id = $2`,
		tournamentID, groupID); err != nil {
		return fmt.Errorf("ReplaceGroup failed to clear group %s: %w", groupID, err)
	}
	for _, s := range standings {
		if err := insertStanding(ctx, tx, s); err != nil {
			return fmt.Errorf("ReplaceGroup failed for team %s: %w", s.TeamID, err)
		}
	}
	return tx.Commit()
}
