package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

var ErrRegistrationClosed = errors.New("tournament registration is closed")

type ParticipantService interface {
	Register(ctx context.Context, tournamentID, userID int) (*models.Participant, error)
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]models.Participant, error)
	Withdraw(ctx context.Context, tournamentID, participantID int) error
	Disqualify(ctx context.Context, tournamentID, participantID int) error
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	userRepo        repositories.UserRepository
	db              repositories.SQLExecutor
	coordinator     RecalculationCoordinator
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	db repositories.SQLExecutor,
	coordinator RecalculationCoordinator,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		userRepo:        userRepo,
		db:              db,
		coordinator:     coordinator,
	}
}

// Register enters a user into a tournament, capturing the user's current
// rating as the immutable seed rating. Unrated users seed at zero.
func (s *participantService) Register(ctx context.Context, tournamentID, userID int) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d for registration: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationClosed
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d for registration: %w", userID, err)
	}

	seedRating := 0
	if user.Rating != nil {
		seedRating = *user.Rating
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		UserID:       userID,
		SeedRating:   seedRating,
		Status:       models.ParticipantActive,
	}
	if err := s.participantRepo.Create(ctx, s.db, participant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantAlreadyRegistered):
			return nil, ErrParticipantAlreadyRegistered
		case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrParticipantUserInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to register user %d in tournament %d: %w", userID, tournamentID, err)
	}
	participant.User = user
	return participant, nil
}

func (s *participantService) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant by id %d: %w", id, err)
	}
	return participant, nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}

	userIDs := make([]int, 0, len(participants))
	for i := range participants {
		userIDs = append(userIDs, participants[i].UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users for tournament %d participants: %w", tournamentID, err)
	}
	for i := range participants {
		participants[i].User = users[participants[i].UserID]
	}
	return participants, nil
}

func (s *participantService) Withdraw(ctx context.Context, tournamentID, participantID int) error {
	return s.setStatus(ctx, tournamentID, participantID, models.ParticipantWithdrawn)
}

func (s *participantService) Disqualify(ctx context.Context, tournamentID, participantID int) error {
	return s.setStatus(ctx, tournamentID, participantID, models.ParticipantDisqualified)
}

// setStatus removes a participant from future pairings while keeping their
// played games in the record, then schedules a recomputation so standings
// and opponents' tie-breaks reflect the change.
func (s *participantService) setStatus(ctx context.Context, tournamentID, participantID int, status models.ParticipantStatus) error {
	participant, err := s.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.TournamentID != tournamentID {
		return ErrParticipantWrongTournament
	}

	if err := s.participantRepo.UpdateStatus(ctx, s.db, participantID, status); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to update participant %d status: %w", participantID, err)
	}

	if s.coordinator != nil {
		s.coordinator.Trigger(tournamentID, TriggerParticipantStatus)
	}
	return nil
}
