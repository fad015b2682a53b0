package services

import "errors"

// Shared errors used across services and HTTP mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrOutcomeNotFound     = errors.New("outcome not found")
	ErrSnapshotNotFound    = errors.New("standings snapshot not found")
	ErrUserNotFound        = errors.New("user not found")

	// Conflicts
	ErrTournamentNameConflict       = errors.New("tournament name already exists")
	ErrParticipantAlreadyRegistered = errors.New("participant is already registered for this tournament")
	ErrOutcomeRoundConflict         = errors.New("participant already has a result recorded for this round")

	// Business rules
	ErrTournamentNotActive               = errors.New("tournament is not active")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrParticipantNotActive              = errors.New("participant is not active")
	ErrParticipantWrongTournament        = errors.New("participant does not belong to this tournament")
	ErrRoundOutOfRange                   = errors.New("round is outside the tournament's current progress")
	ErrInvalidResult                     = errors.New("unknown game result")
	ErrByeHasOpponent                    = errors.New("bye outcome cannot name an opponent")
	ErrMissingOpponent                   = errors.New("non-bye outcome requires an opponent")
	ErrSelfPairing                       = errors.New("participant cannot play against themselves")
)
