package models

// Round identifies the phase a match belongs to. REGULAR is the group
// round-robin; the rest are the knockout rounds in playing order.
type Round string

const (
	RoundRegular  Round = "REGULAR"
	RoundEighths  Round = "EIGHTHS"
	RoundQuarters Round = "QUARTERS"
	RoundSemis    Round = "SEMIS"
	RoundFinal    Round = "FINAL"
)

// Next returns the knockout round that follows the current one. The second
// value is false for REGULAR (handled by the qualification flow) and FINAL.
func (r Round) Next() (Round, bool) {
	switch r {
	case RoundEighths:
		return RoundQuarters, true
	case RoundQuarters:
		return RoundSemis, true
	case RoundSemis:
		return RoundFinal, true
	default:
		return "", false
	}
}

// ExpectedMatches returns the number of matches a knockout round contains, or
// 0 for rounds whose size is not fixed by the progression (REGULAR).
func (r Round) ExpectedMatches() int {
	switch r {
	case RoundEighths:
		return 8
	case RoundQuarters:
		return 4
	case RoundSemis:
		return 2
	case RoundFinal:
		return 1
	default:
		return 0
	}
}

func (r Round) IsKnockout() bool {
	return r != RoundRegular
}

type Winner int

const (
	WinnerNone Winner = iota
	WinnerHome
	WinnerVisitor
)

type Score struct {
	Home    int `json:"homeTeamScore"`
	Visitor int `json:"visitorTeamScore"`
}

// Winner returns which side won. A tie has no winner; callers decide whether
// that is legal for the round they are processing.
func (s Score) Winner() Winner {
	switch {
	case s.Home > s.Visitor:
		return WinnerHome
	case s.Visitor > s.Home:
		return WinnerVisitor
	default:
		return WinnerNone
	}
}

func (s Score) IsTie() bool {
	return s.Home == s.Visitor
}

func (s Score) GoalDifference(side Winner) int {
	if side == WinnerHome {
		return s.Home - s.Visitor
	}
	return s.Visitor - s.Home
}

type TeamSlot string

const (
	SlotHome    TeamSlot = "HOME"
	SlotVisitor TeamSlot = "VISITOR"
)

// FeedEdge points from a finished bracket match to the slot of a later match
// that its outcome fills. Targets are referenced by slot name within the same
// tournament, never by pointer.
type FeedEdge struct {
	Match string   `json:"match"`
	Slot  TeamSlot `json:"slot"`
}

type Match struct {
	ID           string  `json:"id,omitempty"`
	Seq          int64   `json:"-"`
	TournamentID string  `json:"tournamentId"`
	GroupID      *string `json:"groupId,omitempty"`
	Round        Round   `json:"round"`

	// Name is the bracket slot (W0..W30, L0..L29, F0, F1) and is set only for
	// double-elimination matches.
	Name *string `json:"name,omitempty"`

	HomeTeamID      *string `json:"homeTeamId,omitempty"`
	HomeTeamName    *string `json:"homeTeamName,omitempty"`
	VisitorTeamID   *string `json:"visitorTeamId,omitempty"`
	VisitorTeamName *string `json:"visitorTeamName,omitempty"`

	Score *Score `json:"score,omitempty"`

	WinnerNext *FeedEdge `json:"winnerNext,omitempty"`
	LoserNext  *FeedEdge `json:"loserNext,omitempty"`
}

// HasScore reports whether the match has been played. A match without a score
// is pending; once a score is set it is immutable.
func (m *Match) HasScore() bool {
	return m.Score != nil
}

// WinnerTeam returns the id and display name of the winning side. ok is false
// when the match is unplayed or tied.
func (m *Match) WinnerTeam() (id, name string, ok bool) {
	if m.Score == nil {
		return "", "", false
	}
	switch m.Score.Winner() {
	case WinnerHome:
		return deref(m.HomeTeamID), deref(m.HomeTeamName), true
	case WinnerVisitor:
		return deref(m.VisitorTeamID), deref(m.VisitorTeamName), true
	default:
		return "", "", false
	}
}

// LoserTeam mirrors WinnerTeam for the losing side.
func (m *Match) LoserTeam() (id, name string, ok bool) {
	if m.Score == nil {
		return "", "", false
	}
	switch m.Score.Winner() {
	case WinnerHome:
		return deref(m.VisitorTeamID), deref(m.VisitorTeamName), true
	case WinnerVisitor:
		return deref(m.HomeTeamID), deref(m.HomeTeamName), true
	default:
		return "", "", false
	}
}

// SetTeam fills one side of the match.
func (m *Match) SetTeam(slot TeamSlot, teamID, teamName string) {
	if slot == SlotHome {
		m.HomeTeamID = &teamID
		m.HomeTeamName = &teamName
		return
	}
	m.VisitorTeamID = &teamID
	m.VisitorTeamName = &teamName
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
