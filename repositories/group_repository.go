package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrTeamAlreadyInGroup = errors.New("team already in group")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) (string, error)
	// FindByTournamentAndID loads the group and its members in join order.
	FindByTournamentAndID(ctx context.Context, tournamentID, groupID string) (*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error)
	AddTeam(ctx context.Context, tournamentID, groupID, teamID string) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) (string, error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, tournament_id, name) VALUES ($1, $2, $3)`,
		group.ID, group.TournamentID, group.Name)
	if err != nil {
		return "", err
	}
	return group.ID, nil
}

func (r *postgresGroupRepository) FindByTournamentAndID(ctx context.Context, tournamentID, groupID string) (*models.Group, error) {
	var group models.Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, name FROM groups WHERE tournament_id = $1 AND id = $2`,
		tournamentID, groupID,
	).Scan(&group.ID, &group.TournamentID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	teams, err := r.groupTeams(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	group.Teams = teams
	return &group, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, name FROM groups WHERE tournament_id = $1 ORDER BY name ASC`,
		tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.TournamentID, &group.Name); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		teams, err := r.groupTeams(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Teams = teams
	}
	return groups, nil
}

func (r *postgresGroupRepository) groupTeams(ctx context.Context, groupID string) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.tournament_id, t.name
		FROM group_teams gt
		JOIN teams t ON t.id = gt.team_id
		WHERE gt.group_id = $1
		ORDER BY gt.position ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0, models.GroupCapacity)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.TournamentID, &team.Name); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresGroupRepository) AddTeam(ctx context.Context, tournamentID, groupID, teamID string) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO group_teams (group_id, team_id, position)
		SELECT g.id, $3, COALESCE((SELECT MAX(position) FROM group_teams WHERE group_id = g.id), 0) + 1
		FROM groups g WHERE g.tournament_id = $1 AND g.id = $2
		ON CONFLICT DO NOTHING`,
		tournamentID, groupID, teamID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeamAlreadyInGroup
	}
	return nil
}
