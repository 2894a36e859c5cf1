package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Not found
	ErrMatchNotFound      = errors.New("match not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	// Validation and business rules
	ErrInvalidScore           = errors.New("score values must be non-negative")
	ErrTieNotAllowed          = errors.New("elimination matches cannot end in a tie")
	ErrInvalidTournamentType  = errors.New("unknown tournament type")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrGroupNameRequired      = errors.New("group name is required")

	// Conflicts
	ErrScoreAlreadyRecorded = errors.New("match score already recorded")
	ErrGroupFull            = errors.New("group already has the maximum number of teams")
	ErrTeamAlreadyInGroup   = errors.New("team is already a member of the group")
	ErrRegistrationClosed   = errors.New("tournament registration is full")
)
