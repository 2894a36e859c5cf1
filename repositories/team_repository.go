package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) (string, error)
	FindByTournamentAndID(ctx context.Context, tournamentID, teamID string) (*models.Team, error)
	// ListByTournament returns teams in registration order.
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error)
	CountByTournament(ctx context.Context, tournamentID string) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) (string, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, tournament_id, name) VALUES ($1, $2, $3)`,
		team.ID, team.TournamentID, team.Name)
	if err != nil {
		return "", err
	}
	return team.ID, nil
}

func (r *postgresTeamRepository) FindByTournamentAndID(ctx context.Context, tournamentID, teamID string) (*models.Team, error) {
	var team models.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, name FROM teams WHERE tournament_id = $1 AND id = $2`,
		tournamentID, teamID,
	).Scan(&team.ID, &team.TournamentID, &team.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, name FROM teams WHERE tournament_id = $1 ORDER BY seq ASC`,
		tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.TournamentID, &team.Name); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}
