package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// In-memory repository fakes. They mirror the postgres implementations'
// contracts, including the stage claim that serializes round creation.

type fakeMatchRepo struct {
	mu      sync.Mutex
	seq     int64
	matches []*models.Match
	stages  map[string]bool
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{stages: make(map[string]bool)}
}

func (r *fakeMatchRepo) FindByTournamentAndID(_ context.Context, tournamentID, matchID string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.ID == matchID {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) FindByTournamentAndRound(_ context.Context, tournamentID string, round models.Round) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Round == round {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *fakeMatchRepo) FindByTournamentAndName(_ context.Context, tournamentID, name string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Name != nil && *m.Name == name {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(match)
	return match.ID, nil
}

func (r *fakeMatchRepo) CreateStage(_ context.Context, tournamentID, stage string, matches []*models.Match) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tournamentID + "/" + stage
	if r.stages[key] {
		return nil, repositories.ErrStageAlreadyCreated
	}
	r.stages[key] = true

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		r.insert(m)
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (r *fakeMatchRepo) insert(match *models.Match) {
	r.seq++
	match.Seq = r.seq
	if match.ID == "" {
		match.ID = fmt.Sprintf("m-%d", r.seq)
	}
	r.matches = append(r.matches, match)
}

func (r *fakeMatchRepo) UpdateScore(_ context.Context, tournamentID, matchID string, score models.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.ID == matchID && m.Score == nil {
			s := score
			m.Score = &s
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) UpdateTeams(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.TournamentID == match.TournamentID && m.ID == match.ID {
			m.HomeTeamID = match.HomeTeamID
			m.HomeTeamName = match.HomeTeamName
			m.VisitorTeamID = match.VisitorTeamID
			m.VisitorTeamName = match.VisitorTeamName
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups []*models.Group
}

func (r *fakeGroupRepo) Create(_ context.Context, group *models.Group) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID == "" {
		group.ID = fmt.Sprintf("g-%d", len(r.groups)+1)
	}
	r.groups = append(r.groups, group)
	return group.ID, nil
}

func (r *fakeGroupRepo) FindByTournamentAndID(_ context.Context, tournamentID, groupID string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.TournamentID == tournamentID && g.ID == groupID {
			// Mirror the postgres repository: each find builds a fresh
			// Group (and Teams slice) from storage rather than aliasing
			// the stored value.
			copied := *g
			copied.Teams = append([]models.Team(nil), g.Teams...)
			return &copied, nil
		}
	}
	return nil, repositories.ErrGroupNotFound
}

func (r *fakeGroupRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Group
	for _, g := range r.groups {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeGroupRepo) AddTeam(_ context.Context, tournamentID, groupID, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.TournamentID != tournamentID || g.ID != groupID {
			continue
		}
		for _, t := range g.Teams {
			if t.ID == teamID {
				return repositories.ErrTeamAlreadyInGroup
			}
		}
		g.Teams = append(g.Teams, models.Team{ID: teamID, TournamentID: tournamentID, Name: teamID})
		return nil
	}
	return repositories.ErrGroupNotFound
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams []*models.Team
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team.ID == "" {
		team.ID = fmt.Sprintf("team-%d", len(r.teams)+1)
	}
	r.teams = append(r.teams, team)
	return team.ID, nil
}

func (r *fakeTeamRepo) FindByTournamentAndID(_ context.Context, tournamentID, teamID string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.TournamentID == tournamentID && t.ID == teamID {
			return t, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Team
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) CountByTournament(_ context.Context, tournamentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments []*models.Tournament
}

func (r *fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tournament.ID == "" {
		tournament.ID = fmt.Sprintf("t-%d", len(r.tournaments)+1)
	}
	r.tournaments = append(r.tournaments, tournament)
	return tournament.ID, nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

type fakeStandingRepo struct {
	mu      sync.Mutex
	byGroup map[string][]*models.Standing
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{byGroup: make(map[string][]*models.Standing)}
}

func (r *fakeStandingRepo) key(tournamentID, groupID string) string {
	return tournamentID + "/" + groupID
}

func (r *fakeStandingRepo) FindByTeam(_ context.Context, tournamentID, groupID, teamID string) (*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byGroup[r.key(tournamentID, groupID)] {
		if s.TeamID == teamID {
			return s, nil
		}
	}
	return nil, repositories.ErrStandingNotFound
}

func (r *fakeStandingRepo) ListByGroup(_ context.Context, tournamentID, groupID string) ([]*models.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byGroup[r.key(tournamentID, groupID)], nil
}

func (r *fakeStandingRepo) Create(_ context.Context, standing *models.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.key(standing.TournamentID, standing.GroupID)
	r.byGroup[key] = append(r.byGroup[key], standing)
	return nil
}

func (r *fakeStandingRepo) Update(_ context.Context, standing *models.Standing) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.byGroup[r.key(standing.TournamentID, standing.GroupID)] {
		if s.TeamID == standing.TeamID {
			r.byGroup[r.key(standing.TournamentID, standing.GroupID)][i] = standing
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStandingRepo) ReplaceGroup(_ context.Context, tournamentID, groupID string, standings []*models.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byGroup[r.key(tournamentID, groupID)] = standings
	return nil
}

type publishedEvent struct {
	topic   string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, payload: payload})
	return nil
}

func (p *fakePublisher) byTopic(topic string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}
