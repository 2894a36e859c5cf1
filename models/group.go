package models

// GroupCapacity is the number of teams a round-robin group holds. Reaching it
// triggers the regular-phase match generation.
const GroupCapacity = 4

type Group struct {
	ID           string `json:"id,omitempty"`
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name"`
	Teams        []Team `json:"teams"`
}

func (g *Group) IsFull() bool {
	return len(g.Teams) >= GroupCapacity
}
