package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) (string, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) (string, error) {
	if tournament.ID == "" {
		tournament.ID = uuid.NewString()
	}
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, max_teams_per_group, number_of_groups, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tournament.ID, tournament.Name,
		tournament.Format.MaxTeamsPerGroup, tournament.Format.NumberOfGroups, string(tournament.Format.Type),
		tournament.CreatedAt)
	if err != nil {
		return "", err
	}
	return tournament.ID, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, max_teams_per_group, number_of_groups, type, created_at
		FROM tournaments WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Format.MaxTeamsPerGroup, &t.Format.NumberOfGroups, &t.Format.Type, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}
