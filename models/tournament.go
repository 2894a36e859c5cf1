package models

import "time"

type TournamentType string

const (
	TournamentMundial           TournamentType = "MUNDIAL"
	TournamentDoubleElimination TournamentType = "DOUBLE_ELIMINATION"
)

type TournamentFormat struct {
	MaxTeamsPerGroup int            `json:"maxTeamsPerGroup"`
	NumberOfGroups   int            `json:"numberOfGroups"`
	Type             TournamentType `json:"type"`
}

// RegularMatchCount is the number of group-phase matches a full tournament
// plays: one round-robin per group.
func (f TournamentFormat) RegularMatchCount() int {
	perGroup := f.MaxTeamsPerGroup * (f.MaxTeamsPerGroup - 1) / 2
	return f.NumberOfGroups * perGroup
}

type Tournament struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	Format    TournamentFormat `json:"format"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
}
