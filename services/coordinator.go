package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
	"github.com/Dauren-Zh/tourney-engine/standings"
	"github.com/Dauren-Zh/tourney-engine/storage"
)

const recomputeTimeout = 30 * time.Second

// RecalcTrigger names the event that scheduled a recomputation. It only
// feeds the coordinator's logs; debouncing is per tournament regardless of
// kind, and a collapsed follow-up runs under the latest kind received.
type RecalcTrigger string

const (
	TriggerGameConfirmed     RecalcTrigger = "game_confirmed"
	TriggerResultAmended     RecalcTrigger = "result_amended"
	TriggerRoundClosed       RecalcTrigger = "round_closed"
	TriggerParticipantStatus RecalcTrigger = "participant_status_changed"
	TriggerConfigChanged     RecalcTrigger = "config_changed"
	TriggerManual            RecalcTrigger = "manual"
)

// RecalculationCoordinator serializes standings recomputation per
// tournament. Trigger never blocks and never loses an update: triggers
// arriving while a computation runs collapse into a single follow-up run
// over the then-current state.
type RecalculationCoordinator interface {
	Trigger(tournamentID int, trigger RecalcTrigger)
}

// SnapshotPublisher is the fan-out half the coordinator needs; the
// websocket hub publisher satisfies it.
type SnapshotPublisher interface {
	PublishStandings(tournamentID int, snapshot *models.StandingsSnapshot, changed []int)
}

type recalcState struct {
	running bool
	pending bool
	trigger RecalcTrigger
}

type recalculationCoordinator struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	outcomeRepo     repositories.OutcomeRepository
	snapshotRepo    repositories.SnapshotRepository
	db              repositories.SQLExecutor
	publisher       SnapshotPublisher
	archiver        storage.SnapshotArchiver
	logger          *slog.Logger

	mu     sync.Mutex
	states map[int]*recalcState
}

func NewRecalculationCoordinator(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	outcomeRepo repositories.OutcomeRepository,
	snapshotRepo repositories.SnapshotRepository,
	db repositories.SQLExecutor,
	publisher SnapshotPublisher,
	archiver storage.SnapshotArchiver,
	logger *slog.Logger,
) RecalculationCoordinator {
	return &recalculationCoordinator{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		outcomeRepo:     outcomeRepo,
		snapshotRepo:    snapshotRepo,
		db:              db,
		publisher:       publisher,
		archiver:        archiver,
		logger:          logger,
		states:          make(map[int]*recalcState),
	}
}

// Trigger schedules a recomputation for the tournament. While one is in
// flight, any number of further triggers mark at most one follow-up.
func (c *recalculationCoordinator) Trigger(tournamentID int, trigger RecalcTrigger) {
	c.mu.Lock()
	state, ok := c.states[tournamentID]
	if !ok {
		state = &recalcState{}
		c.states[tournamentID] = state
	}
	state.trigger = trigger
	if state.running {
		state.pending = true
		c.mu.Unlock()
		return
	}
	state.running = true
	c.mu.Unlock()

	go c.runLoop(tournamentID, state)
}

func (c *recalculationCoordinator) runLoop(tournamentID int, state *recalcState) {
	for {
		c.mu.Lock()
		trigger := state.trigger
		c.mu.Unlock()

		if err := c.recompute(tournamentID, trigger); err != nil {
			// The last published snapshot stays current; the next trigger
			// retries from scratch.
			c.logger.Error("standings recomputation failed",
				slog.Int("tournament_id", tournamentID),
				slog.String("trigger", string(trigger)),
				slog.Any("error", err))
		}

		c.mu.Lock()
		if state.pending {
			state.pending = false
			c.mu.Unlock()
			continue
		}
		state.running = false
		c.mu.Unlock()
		return
	}
}

func (c *recalculationCoordinator) recompute(tournamentID int, trigger RecalcTrigger) error {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	input, prev, err := c.loadInput(ctx, tournamentID)
	if err != nil {
		return err
	}

	snapshot, err := standings.Rank(*input)
	if err != nil {
		return fmt.Errorf("ranking failed for tournament %d: %w", tournamentID, err)
	}
	snapshot.TournamentID = tournamentID
	snapshot.Version = 1
	if prev != nil {
		snapshot.Version = prev.Version + 1
	}

	if err := c.snapshotRepo.Save(ctx, c.db, snapshot); err != nil {
		if errors.Is(err, repositories.ErrSnapshotVersionConflict) {
			// A fresher computation won the race; this result is stale and
			// must not be published.
			c.logger.Info("discarding stale standings computation",
				slog.Int("tournament_id", tournamentID),
				slog.Int("version", snapshot.Version))
			return nil
		}
		return fmt.Errorf("failed to save snapshot v%d for tournament %d: %w", snapshot.Version, tournamentID, err)
	}

	changed := snapshot.ChangedSince(prev)
	c.logger.Info("standings snapshot published",
		slog.Int("tournament_id", tournamentID),
		slog.String("trigger", string(trigger)),
		slog.Int("version", snapshot.Version),
		slog.Int("round", snapshot.Round),
		slog.Int("changed_entries", len(changed)))

	if c.publisher != nil {
		c.publisher.PublishStandings(tournamentID, snapshot, changed)
	}
	if c.archiver != nil {
		if _, err := c.archiver.ArchiveSnapshot(ctx, snapshot); err != nil {
			c.logger.Warn("snapshot archiving failed",
				slog.Int("tournament_id", tournamentID),
				slog.Int("version", snapshot.Version),
				slog.Any("error", err))
		}
	}
	return nil
}

// loadInput captures a consistent view of the tournament for one
// computation: config, the full participant list, every confirmed outcome
// and the previous snapshot, loaded in parallel.
func (c *recalculationCoordinator) loadInput(ctx context.Context, tournamentID int) (*standings.Input, *models.StandingsSnapshot, error) {
	var (
		tournament   *models.Tournament
		participants []models.Participant
		outcomes     []models.GameOutcome
		prev         *models.StandingsSnapshot
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := c.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		list, err := c.participantRepo.ListByTournament(gCtx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load participants for tournament %d: %w", tournamentID, err)
		}
		participants = list
		return nil
	})

	g.Go(func() error {
		list, err := c.outcomeRepo.ListByTournament(gCtx, tournamentID, nil, true)
		if err != nil {
			return fmt.Errorf("failed to load outcomes for tournament %d: %w", tournamentID, err)
		}
		outcomes = list
		return nil
	})

	g.Go(func() error {
		snapshot, err := c.snapshotRepo.GetLatest(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrSnapshotNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load latest snapshot for tournament %d: %w", tournamentID, err)
		}
		prev = snapshot
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return &standings.Input{
		Participants: participants,
		Outcomes:     outcomes,
		Config:       tournament.Config,
		Round:        tournament.RoundCount,
		Previous:     prev,
	}, prev, nil
}
