package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

var ErrOutcomeAlreadyConfirmed = errors.New("confirmed outcomes cannot be deleted, amend the result instead")

type OutcomeService interface {
	SubmitOutcome(ctx context.Context, input SubmitOutcomeInput) (*models.GameOutcome, error)
	ConfirmOutcome(ctx context.Context, tournamentID, outcomeID int) (*models.GameOutcome, error)
	AmendOutcome(ctx context.Context, tournamentID, outcomeID int, result models.GameResult) (*models.GameOutcome, error)
	DeleteOutcome(ctx context.Context, tournamentID, outcomeID int) error
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.GameOutcome, error)
}

type SubmitOutcomeInput struct {
	TournamentID int               `json:"tournament_id"`
	Round        int               `json:"round"`
	WhiteID      int               `json:"white_id"`
	BlackID      *int              `json:"black_id,omitempty"`
	Result       models.GameResult `json:"result"`
	// Confirmed outcomes enter standings immediately; unconfirmed ones wait
	// for an explicit ConfirmOutcome call.
	Confirmed bool `json:"confirmed"`
}

type outcomeService struct {
	outcomeRepo     repositories.OutcomeRepository
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	db              repositories.SQLExecutor
	coordinator     RecalculationCoordinator
}

func NewOutcomeService(
	outcomeRepo repositories.OutcomeRepository,
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	db repositories.SQLExecutor,
	coordinator RecalculationCoordinator,
) OutcomeService {
	return &outcomeService{
		outcomeRepo:     outcomeRepo,
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		db:              db,
		coordinator:     coordinator,
	}
}

func (s *outcomeService) SubmitOutcome(ctx context.Context, input SubmitOutcomeInput) (*models.GameOutcome, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d for outcome intake: %w", input.TournamentID, err)
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}
	if input.Round < 1 || input.Round > tournament.RoundCount {
		return nil, fmt.Errorf("%w: round %d, tournament at round %d", ErrRoundOutOfRange, input.Round, tournament.RoundCount)
	}
	if err := s.validateShape(input); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, input); err != nil {
		return nil, err
	}

	outcome := &models.GameOutcome{
		TournamentID: input.TournamentID,
		Round:        input.Round,
		WhiteID:      input.WhiteID,
		BlackID:      input.BlackID,
		Result:       input.Result,
		Confirmed:    input.Confirmed,
	}
	if err := s.outcomeRepo.Create(ctx, s.db, outcome); err != nil {
		switch {
		case errors.Is(err, repositories.ErrOutcomeRoundConflict):
			return nil, ErrOutcomeRoundConflict
		case errors.Is(err, repositories.ErrOutcomeParticipantInvalid):
			return nil, ErrParticipantNotFound
		case errors.Is(err, repositories.ErrOutcomeTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create outcome: %w", err)
	}

	if outcome.Confirmed && s.coordinator != nil {
		s.coordinator.Trigger(input.TournamentID, TriggerGameConfirmed)
	}
	return outcome, nil
}

func (s *outcomeService) ConfirmOutcome(ctx context.Context, tournamentID, outcomeID int) (*models.GameOutcome, error) {
	outcome, err := s.getOwnedOutcome(ctx, tournamentID, outcomeID)
	if err != nil {
		return nil, err
	}
	if outcome.Confirmed {
		return outcome, nil
	}

	if err := s.outcomeRepo.SetConfirmed(ctx, s.db, outcomeID, true); err != nil {
		if errors.Is(err, repositories.ErrOutcomeNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to confirm outcome %d: %w", outcomeID, err)
	}
	outcome.Confirmed = true

	if s.coordinator != nil {
		s.coordinator.Trigger(tournamentID, TriggerGameConfirmed)
	}
	return outcome, nil
}

// AmendOutcome corrects a recorded result. The recomputation it schedules
// rebuilds standings from the full history, so downstream tie-breaks pick
// the correction up without any incremental patching.
func (s *outcomeService) AmendOutcome(ctx context.Context, tournamentID, outcomeID int, result models.GameResult) (*models.GameOutcome, error) {
	if !isKnownResult(result) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResult, result)
	}
	outcome, err := s.getOwnedOutcome(ctx, tournamentID, outcomeID)
	if err != nil {
		return nil, err
	}
	if (result == models.ResultBye) != outcome.IsBye() {
		if result == models.ResultBye {
			return nil, ErrByeHasOpponent
		}
		return nil, ErrMissingOpponent
	}

	if err := s.outcomeRepo.UpdateResult(ctx, s.db, outcomeID, result); err != nil {
		if errors.Is(err, repositories.ErrOutcomeNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to amend outcome %d: %w", outcomeID, err)
	}
	outcome.Result = result

	if outcome.Confirmed && s.coordinator != nil {
		s.coordinator.Trigger(tournamentID, TriggerResultAmended)
	}
	return outcome, nil
}

// DeleteOutcome removes a mistakenly entered outcome. Only unconfirmed
// outcomes can be deleted; a confirmed result is part of the standings
// history and must be amended instead.
func (s *outcomeService) DeleteOutcome(ctx context.Context, tournamentID, outcomeID int) error {
	outcome, err := s.getOwnedOutcome(ctx, tournamentID, outcomeID)
	if err != nil {
		return err
	}
	if outcome.Confirmed {
		return ErrOutcomeAlreadyConfirmed
	}

	if err := s.outcomeRepo.Delete(ctx, s.db, outcomeID); err != nil {
		if errors.Is(err, repositories.ErrOutcomeNotFound) {
			return ErrOutcomeNotFound
		}
		return fmt.Errorf("failed to delete outcome %d: %w", outcomeID, err)
	}
	return nil
}

func (s *outcomeService) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.GameOutcome, error) {
	outcomes, err := s.outcomeRepo.ListByTournament(ctx, tournamentID, round, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes for tournament %d: %w", tournamentID, err)
	}
	return outcomes, nil
}

func (s *outcomeService) getOwnedOutcome(ctx context.Context, tournamentID, outcomeID int) (*models.GameOutcome, error) {
	outcome, err := s.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		if errors.Is(err, repositories.ErrOutcomeNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to get outcome by id %d: %w", outcomeID, err)
	}
	if outcome.TournamentID != tournamentID {
		return nil, ErrOutcomeNotFound
	}
	return outcome, nil
}

func (s *outcomeService) validateShape(input SubmitOutcomeInput) error {
	if !isKnownResult(input.Result) {
		return fmt.Errorf("%w: %q", ErrInvalidResult, input.Result)
	}
	if input.Result == models.ResultBye {
		if input.BlackID != nil {
			return ErrByeHasOpponent
		}
		return nil
	}
	if input.BlackID == nil {
		return ErrMissingOpponent
	}
	if *input.BlackID == input.WhiteID {
		return ErrSelfPairing
	}
	return nil
}

func (s *outcomeService) validateParticipants(ctx context.Context, input SubmitOutcomeInput) error {
	ids := []int{input.WhiteID}
	if input.BlackID != nil {
		ids = append(ids, *input.BlackID)
	}
	for _, id := range ids {
		participant, err := s.participantRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return fmt.Errorf("%w: participant %d", ErrParticipantNotFound, id)
			}
			return fmt.Errorf("failed to get participant %d: %w", id, err)
		}
		if participant.TournamentID != input.TournamentID {
			return fmt.Errorf("%w: participant %d", ErrParticipantWrongTournament, id)
		}
	}
	return nil
}

func isKnownResult(result models.GameResult) bool {
	for _, known := range models.KnownGameResults {
		if result == known {
			return true
		}
	}
	return false
}
