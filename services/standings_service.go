package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

type StandingsService interface {
	GetLatestStandings(ctx context.Context, tournamentID int) (*models.StandingsSnapshot, error)
	GetStandingsByRound(ctx context.Context, tournamentID, round int) (*models.StandingsSnapshot, error)
	GetRankProgression(ctx context.Context, tournamentID, participantID int) ([]RankProgressionPoint, error)
	ForceRecalculation(ctx context.Context, tournamentID int) error
}

// RankProgressionPoint is one participant's position in one published
// snapshot, for round-over-round progression charts.
type RankProgressionPoint struct {
	Version int     `json:"version"`
	Round   int     `json:"round"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
}

type standingsService struct {
	snapshotRepo   repositories.SnapshotRepository
	tournamentRepo repositories.TournamentRepository
	coordinator    RecalculationCoordinator
}

func NewStandingsService(
	snapshotRepo repositories.SnapshotRepository,
	tournamentRepo repositories.TournamentRepository,
	coordinator RecalculationCoordinator,
) StandingsService {
	return &standingsService{
		snapshotRepo:   snapshotRepo,
		tournamentRepo: tournamentRepo,
		coordinator:    coordinator,
	}
}

func (s *standingsService) GetLatestStandings(ctx context.Context, tournamentID int) (*models.StandingsSnapshot, error) {
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshotRepo.GetLatest(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest standings for tournament %d: %w", tournamentID, err)
	}
	return snapshot, nil
}

func (s *standingsService) GetStandingsByRound(ctx context.Context, tournamentID, round int) (*models.StandingsSnapshot, error) {
	if round < 0 {
		return nil, fmt.Errorf("%w: round %d", ErrRoundOutOfRange, round)
	}
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshotRepo.GetByRound(ctx, tournamentID, round)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get round %d standings for tournament %d: %w", round, tournamentID, err)
	}
	return snapshot, nil
}

func (s *standingsService) GetRankProgression(ctx context.Context, tournamentID, participantID int) ([]RankProgressionPoint, error) {
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	snapshots, err := s.snapshotRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for tournament %d: %w", tournamentID, err)
	}

	points := make([]RankProgressionPoint, 0, len(snapshots))
	for _, snapshot := range snapshots {
		for _, entry := range snapshot.Entries {
			if entry.ParticipantID != participantID {
				continue
			}
			points = append(points, RankProgressionPoint{
				Version: snapshot.Version,
				Round:   snapshot.Round,
				Rank:    entry.Rank,
				Score:   entry.Score,
			})
			break
		}
	}
	if len(points) == 0 {
		return nil, ErrParticipantNotFound
	}
	return points, nil
}

// ForceRecalculation schedules a recomputation without any data change,
// for operator use after manual database fixes.
func (s *standingsService) ForceRecalculation(ctx context.Context, tournamentID int) error {
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return err
	}
	s.coordinator.Trigger(tournamentID, TriggerManual)
	return nil
}

func (s *standingsService) ensureTournament(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	return nil
}
