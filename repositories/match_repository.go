package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrStageAlreadyCreated is the serialization point for round advancement:
	// only the first caller to create a (tournament, stage) pair succeeds.
	ErrStageAlreadyCreated = errors.New("stage already created for tournament")
)

type MatchRepository interface {
	FindByTournamentAndID(ctx context.Context, tournamentID, matchID string) (*models.Match, error)
	FindByTournamentAndRound(ctx context.Context, tournamentID string, round models.Round) ([]*models.Match, error)
	FindByTournamentAndName(ctx context.Context, tournamentID, name string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	Create(ctx context.Context, match *models.Match) (string, error)
	// CreateStage inserts the stage claim and all of the stage's matches in a
	// single transaction. A duplicate claim fails the whole batch with
	// ErrStageAlreadyCreated.
	CreateStage(ctx context.Context, tournamentID, stage string, matches []*models.Match) ([]string, error)
	UpdateScore(ctx context.Context, tournamentID, matchID string, score models.Score) error
	UpdateTeams(ctx context.Context, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, seq, tournament_id, group_id, round, name,
	home_team_id, home_team_name, visitor_team_id, visitor_team_name,
	home_score, visitor_score,
	winner_next_name, winner_next_slot, loser_next_name, loser_next_slot`

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m              models.Match
		homeScore      sql.NullInt64
		visitorScore   sql.NullInt64
		winnerNextName sql.NullString
		winnerNextSlot sql.NullString
		loserNextName  sql.NullString
		loserNextSlot  sql.NullString
	)
	err := rowScanner.Scan(
		&m.ID, &m.Seq, &m.TournamentID, &m.GroupID, &m.Round, &m.Name,
		&m.HomeTeamID, &m.HomeTeamName, &m.VisitorTeamID, &m.VisitorTeamName,
		&homeScore, &visitorScore,
		&winnerNextName, &winnerNextSlot, &loserNextName, &loserNextSlot,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if homeScore.Valid && visitorScore.Valid {
		m.Score = &models.Score{Home: int(homeScore.Int64), Visitor: int(visitorScore.Int64)}
	}
	if winnerNextName.Valid {
		m.WinnerNext = &models.FeedEdge{Match: winnerNextName.String, Slot: models.TeamSlot(winnerNextSlot.String)}
	}
	if loserNextName.Valid {
		m.LoserNext = &models.FeedEdge{Match: loserNextName.String, Slot: models.TeamSlot(loserNextSlot.String)}
	}
	return &m, nil
}

func (r *postgresMatchRepository) FindByTournamentAndID(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE tournament_id = $1 AND id = $2`
	return scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, matchID))
}

func (r *postgresMatchRepository) FindByTournamentAndName(ctx context.Context, tournamentID, name string) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE tournament_id = $1 AND name = $2`
	return scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, name))
}

func (r *postgresMatchRepository) FindByTournamentAndRound(ctx context.Context, tournamentID string, round models.Round) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE tournament_id = $1 AND round = $2 ORDER BY seq ASC`
	return r.queryMatches(ctx, query, tournamentID, string(round))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE tournament_id = $1 ORDER BY seq ASC`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

const insertMatchQuery = `
	INSERT INTO matches
		(id, tournament_id, group_id, round, name,
		 home_team_id, home_team_name, visitor_team_id, visitor_team_name,
		 home_score, visitor_score,
		 winner_next_name, winner_next_slot, loser_next_name, loser_next_slot)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING seq`

func insertMatch(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	var homeScore, visitorScore interface{}
	if match.Score != nil {
		homeScore, visitorScore = match.Score.Home, match.Score.Visitor
	}
	var winnerNextName, winnerNextSlot, loserNextName, loserNextSlot interface{}
	if match.WinnerNext != nil {
		winnerNextName, winnerNextSlot = match.WinnerNext.Match, string(match.WinnerNext.Slot)
	}
	if match.LoserNext != nil {
		loserNextName, loserNextSlot = match.LoserNext.Match, string(match.LoserNext.Slot)
	}
	return exec.QueryRowContext(ctx, insertMatchQuery,
		match.ID, match.TournamentID, match.GroupID, string(match.Round), match.Name,
		match.HomeTeamID, match.HomeTeamName, match.VisitorTeamID, match.VisitorTeamName,
		homeScore, visitorScore,
		winnerNextName, winnerNextSlot, loserNextName, loserNextSlot,
	).Scan(&match.Seq)
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) (string, error) {
	if err := insertMatch(ctx, r.db, match); err != nil {
		return "", err
	}
	return match.ID, nil
}

func (r *postgresMatchRepository) CreateStage(ctx context.Context, tournamentID, stage string, matches []*models.Match) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateStage failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claim, err := tx.ExecContext(ctx,
		`INSERT INTO tournament_stages (tournament_id, stage) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		tournamentID, stage)
	if err != nil {
		return nil, fmt.Errorf("CreateStage failed to claim stage %s: %w", stage, err)
	}
	claimed, err := claim.RowsAffected()
	if err != nil {
		return nil, err
	}
	if claimed == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrStageAlreadyCreated, tournamentID, stage)
	}

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		if err := insertMatch(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("CreateStage failed for match in stage %s: %w", stage, err)
		}
		ids = append(ids, match.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateStage failed to commit: %w", err)
	}
	return ids, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, tournamentID, matchID string, score models.Score) error {
	query := `UPDATE matches SET home_score = $1, visitor_score = $2
		WHERE tournament_id = $3 AND id = $4 AND home_score IS NULL`
	result, err := r.db.ExecContext(ctx, query, score.Home, score.Visitor, tournamentID, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateTeams(ctx context.Context, match *models.Match) error {
	query := `UPDATE matches SET
			home_team_id = $1, home_team_name = $2,
			visitor_team_id = $3, visitor_team_name = $4
		WHERE tournament_id = $5 AND id = $6`
	result, err := r.db.ExecContext(ctx, query,
		match.HomeTeamID, match.HomeTeamName, match.VisitorTeamID, match.VisitorTeamName,
		match.TournamentID, match.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
