package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/pairing"
	"github.com/Dauren-Zh/tourney-engine/repositories"
	"github.com/Dauren-Zh/tourney-engine/standings"
)

var ErrNotEnoughParticipants = errors.New("not enough active participants to generate pairings")

type PairingService interface {
	GeneratePairings(ctx context.Context, tournamentID int, input GeneratePairingsInput) (*pairing.Result, error)
}

// GeneratePairingsInput carries the caller's overrides. Zero value means
// the next round with rematch avoidance and color balancing on.
type GeneratePairingsInput struct {
	// Round regenerates a specific round instead of the next one. Rounds
	// past the next are rejected.
	Round *int `json:"round,omitempty"`
	// Constraints replace the default Swiss constraints. Round-robin
	// ignores them: the rotation schedule is fixed.
	Constraints *pairing.Constraints `json:"constraints,omitempty"`
}

// PairingPublisher announces freshly generated pairings; the websocket hub
// publisher satisfies it.
type PairingPublisher interface {
	PublishPairings(tournamentID int, result *pairing.Result)
}

type pairingService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	outcomeRepo     repositories.OutcomeRepository
	publisher       PairingPublisher
}

func NewPairingService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	outcomeRepo repositories.OutcomeRepository,
	publisher PairingPublisher,
) PairingService {
	return &pairingService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		outcomeRepo:     outcomeRepo,
		publisher:       publisher,
	}
}

// GeneratePairings proposes a round for the tournament's configured mode.
// The proposal is advisory: nothing is persisted until outcomes for the
// round come in, so organizers can regenerate freely, including with
// relaxed constraints when the default proposal does not suit the venue.
func (s *pairingService) GeneratePairings(ctx context.Context, tournamentID int, input GeneratePairingsInput) (*pairing.Result, error) {
	var (
		tournament   *models.Tournament
		participants []models.Participant
		outcomes     []models.GameOutcome
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		list, err := s.participantRepo.ListByTournament(gCtx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load participants for tournament %d: %w", tournamentID, err)
		}
		participants = list
		return nil
	})

	g.Go(func() error {
		list, err := s.outcomeRepo.ListByTournament(gCtx, tournamentID, nil, true)
		if err != nil {
			return fmt.Errorf("failed to load outcomes for tournament %d: %w", tournamentID, err)
		}
		outcomes = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	// Scores come from the full confirmed history rather than the latest
	// snapshot, so a pairing generated mid-recomputation is never stale.
	dataset, err := standings.NewDataset(participants, outcomes, tournament.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to index outcomes for tournament %d: %w", tournamentID, err)
	}

	candidates := make([]pairing.Candidate, 0, len(participants))
	for _, p := range participants {
		if !p.IsActive() {
			continue
		}
		candidates = append(candidates, pairing.Candidate{
			ParticipantID: p.ID,
			Score:         dataset.Scores[p.ID],
			SeedRating:    p.SeedRating,
		})
	}
	if len(candidates) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	history := pairing.BuildHistory(outcomes)

	round := tournament.RoundCount + 1
	if input.Round != nil {
		if *input.Round < 1 || *input.Round > round {
			return nil, fmt.Errorf("%w: round %d, next round is %d", ErrRoundOutOfRange, *input.Round, round)
		}
		round = *input.Round
	}
	constraints := pairing.Constraints{AvoidRematch: true, BalanceColors: true}
	if input.Constraints != nil {
		constraints = *input.Constraints
	}

	var result *pairing.Result
	switch tournament.Config.PairingMode {
	case models.PairingRoundRobin:
		result, err = pairing.RoundRobin(candidates, history, round)
	default:
		result, err = pairing.Swiss(candidates, history, constraints, round)
	}
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishPairings(tournamentID, result)
	}
	return result, nil
}
