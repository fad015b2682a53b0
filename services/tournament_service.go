package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

var (
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTournamentCreationFailed = errors.New("failed to create tournament")
	ErrTournamentUpdateFailed   = errors.New("failed to update tournament")
	ErrConfigChangeNotAllowed   = errors.New("scoring and pairing config cannot change after completion")
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	UpdateConfig(ctx context.Context, id int, config models.TournamentConfig) (*models.Tournament, error)
	AdvanceRound(ctx context.Context, id int) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Config      models.TournamentConfig `json:"config"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	db             repositories.SQLExecutor
	coordinator    RecalculationCoordinator
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	db repositories.SQLExecutor,
	coordinator RecalculationCoordinator,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		db:             db,
		coordinator:    coordinator,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := input.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	tournament := &models.Tournament{
		Name:        name,
		Description: input.Description,
		Status:      models.StatusRegistration,
		RoundCount:  0,
		Config:      input.Config,
	}

	if err := s.tournamentRepo.Create(ctx, s.db, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrTournamentCreationFailed, err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	if status != nil && !isValidTournamentStatus(*status) {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, *status)
	}
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	if !isValidTournamentStatus(status) {
		return fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, status)
	}
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("%w (id: %d): %w", ErrTournamentUpdateFailed, id, err)
	}
	return nil
}

// UpdateConfig replaces the tournament configuration and forces a full
// recomputation, so mid-event tie-break changes take effect immediately.
func (s *tournamentService) UpdateConfig(ctx context.Context, id int, config models.TournamentConfig) (*models.Tournament, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted || tournament.Status == models.StatusCanceled {
		return nil, ErrConfigChangeNotAllowed
	}

	if err := s.tournamentRepo.UpdateConfig(ctx, s.db, id, config); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w (id: %d): %w", ErrTournamentUpdateFailed, id, err)
	}
	tournament.Config = config

	if s.coordinator != nil {
		s.coordinator.Trigger(id, TriggerConfigChanged)
	}
	return tournament, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	next := tournament.RoundCount + 1
	if err := s.tournamentRepo.UpdateRoundCount(ctx, s.db, id, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w (id: %d): %w", ErrTournamentUpdateFailed, id, err)
	}
	tournament.RoundCount = next

	// The published snapshot carries the round number; recomputing here
	// keeps it current even when no new results arrived yet.
	if s.coordinator != nil {
		s.coordinator.Trigger(id, TriggerRoundClosed)
	}
	return tournament, nil
}

func isValidTournamentStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusRegistration, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
		return true
	}
	return false
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
