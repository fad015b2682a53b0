package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

type fakeTournamentRepo struct {
	tournament *models.Tournament
}

func (f *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil || f.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.tournament, nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	return []*models.Tournament{f.tournament}, nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	f.tournament.Status = status
	return nil
}

func (f *fakeTournamentRepo) UpdateRoundCount(ctx context.Context, exec repositories.SQLExecutor, id int, round int) error {
	f.tournament.RoundCount = round
	return nil
}

func (f *fakeTournamentRepo) UpdateConfig(ctx context.Context, exec repositories.SQLExecutor, id int, config models.TournamentConfig) error {
	f.tournament.Config = config
	return nil
}

type fakeParticipantRepo struct {
	participants []models.Participant
}

func (f *fakeParticipantRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participant) error {
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	for i := range f.participants {
		if f.participants[i].ID == id {
			return &f.participants[i], nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]models.Participant, error) {
	return f.participants, nil
}

func (f *fakeParticipantRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.ParticipantStatus) error {
	return nil
}

type fakeOutcomeRepo struct {
	mu       sync.Mutex
	outcomes []models.GameOutcome
	calls    int
	failWith error
	nextID   int
}

func (f *fakeOutcomeRepo) Create(ctx context.Context, exec repositories.SQLExecutor, o *models.GameOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID == 0 {
		f.nextID++
		o.ID = f.nextID + 100
	}
	f.outcomes = append(f.outcomes, *o)
	return nil
}

func (f *fakeOutcomeRepo) GetByID(ctx context.Context, id int) (*models.GameOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.outcomes {
		if f.outcomes[i].ID == id {
			found := f.outcomes[i]
			return &found, nil
		}
	}
	return nil, repositories.ErrOutcomeNotFound
}

func (f *fakeOutcomeRepo) ListByTournament(ctx context.Context, tournamentID int, round *int, onlyConfirmed bool) ([]models.GameOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		err := f.failWith
		f.failWith = nil
		return nil, err
	}
	return f.outcomes, nil
}

func (f *fakeOutcomeRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result models.GameResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.outcomes {
		if f.outcomes[i].ID == id {
			f.outcomes[i].Result = result
			return nil
		}
	}
	return repositories.ErrOutcomeNotFound
}

func (f *fakeOutcomeRepo) SetConfirmed(ctx context.Context, exec repositories.SQLExecutor, id int, confirmed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.outcomes {
		if f.outcomes[i].ID == id {
			f.outcomes[i].Confirmed = confirmed
			return nil
		}
	}
	return repositories.ErrOutcomeNotFound
}

func (f *fakeOutcomeRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.outcomes {
		if f.outcomes[i].ID == id {
			f.outcomes = append(f.outcomes[:i], f.outcomes[i+1:]...)
			return nil
		}
	}
	return repositories.ErrOutcomeNotFound
}

func (f *fakeOutcomeRepo) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	snapshots []*models.StandingsSnapshot
	onSave    func()
	nextID    int
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, exec repositories.SQLExecutor, snapshot *models.StandingsSnapshot) error {
	if f.onSave != nil {
		f.onSave()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.snapshots {
		if existing.TournamentID == snapshot.TournamentID && existing.Version == snapshot.Version {
			return repositories.ErrSnapshotVersionConflict
		}
	}
	f.nextID++
	snapshot.ID = f.nextID
	stored := *snapshot
	f.snapshots = append(f.snapshots, &stored)
	return nil
}

func (f *fakeSnapshotRepo) GetLatest(ctx context.Context, tournamentID int) (*models.StandingsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.StandingsSnapshot
	for _, s := range f.snapshots {
		if s.TournamentID != tournamentID {
			continue
		}
		if latest == nil || s.Version > latest.Version {
			latest = s
		}
	}
	if latest == nil {
		return nil, repositories.ErrSnapshotNotFound
	}
	return latest, nil
}

func (f *fakeSnapshotRepo) GetByRound(ctx context.Context, tournamentID int, round int) (*models.StandingsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.StandingsSnapshot
	for _, s := range f.snapshots {
		if s.TournamentID != tournamentID || s.Round != round {
			continue
		}
		if best == nil || s.Version > best.Version {
			best = s
		}
	}
	if best == nil {
		return nil, repositories.ErrSnapshotNotFound
	}
	return best, nil
}

func (f *fakeSnapshotRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.StandingsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.StandingsSnapshot(nil), f.snapshots...), nil
}

func (f *fakeSnapshotRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snapshots)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.StandingsSnapshot
}

func (f *fakePublisher) PublishStandings(tournamentID int, snapshot *models.StandingsSnapshot, changed []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, snapshot)
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func testTournament() *models.Tournament {
	return &models.Tournament{
		ID:         1,
		Name:       "club open",
		Status:     models.StatusActive,
		RoundCount: 1,
		Config: models.TournamentConfig{
			ScoringSystem: models.ScoringClassic,
			ByePoints:     1,
			PairingMode:   models.PairingSwiss,
			TieBreaks:     []models.TieBreakRule{{Metric: models.TieBreakBuchholz}},
		},
	}
}

func testFixtures() (*fakeTournamentRepo, *fakeParticipantRepo, *fakeOutcomeRepo, *fakeSnapshotRepo, *fakePublisher) {
	black := 2
	return &fakeTournamentRepo{tournament: testTournament()},
		&fakeParticipantRepo{participants: []models.Participant{
			{ID: 1, TournamentID: 1, SeedRating: 1600, Status: models.ParticipantActive},
			{ID: 2, TournamentID: 1, SeedRating: 1400, Status: models.ParticipantActive},
		}},
		&fakeOutcomeRepo{outcomes: []models.GameOutcome{
			{ID: 1, TournamentID: 1, Round: 1, WhiteID: 1, BlackID: &black, Result: models.ResultWhiteWin, Confirmed: true},
		}},
		&fakeSnapshotRepo{},
		&fakePublisher{}
}

func newTestCoordinator(
	tr *fakeTournamentRepo,
	pr *fakeParticipantRepo,
	or *fakeOutcomeRepo,
	sr *fakeSnapshotRepo,
	pub *fakePublisher,
) RecalculationCoordinator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecalculationCoordinator(tr, pr, or, sr, nil, pub, nil, logger)
}

func TestCoordinatorPublishesVersionedSnapshot(t *testing.T) {
	tr, pr, or, sr, pub := testFixtures()
	coordinator := newTestCoordinator(tr, pr, or, sr, pub)

	coordinator.Trigger(1, TriggerGameConfirmed)

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	snapshot, err := sr.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Version)
	assert.Equal(t, 1, snapshot.Round)
	require.Len(t, snapshot.Entries, 2)
	assert.Equal(t, 1, snapshot.Entries[0].ParticipantID)
	assert.Equal(t, 1, snapshot.Entries[0].Rank)
	assert.Equal(t, 2, snapshot.Entries[1].Rank)
}

func TestCoordinatorVersionsIncreaseAcrossRuns(t *testing.T) {
	tr, pr, or, sr, pub := testFixtures()
	coordinator := newTestCoordinator(tr, pr, or, sr, pub)

	coordinator.Trigger(1, TriggerGameConfirmed)
	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
	coordinator.Trigger(1, TriggerGameConfirmed)
	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)

	snapshot, err := sr.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Version)
	assert.Equal(t, 2, sr.count(), "append-only: both versions kept")
}

func TestCoordinatorCollapsesBurstIntoOneFollowUp(t *testing.T) {
	tr, pr, or, sr, pub := testFixtures()

	gate := make(chan struct{})
	var gateOnce sync.Once
	sr.onSave = func() {
		gateOnce.Do(func() { <-gate })
	}

	coordinator := newTestCoordinator(tr, pr, or, sr, pub)

	coordinator.Trigger(1, TriggerGameConfirmed)
	// Let the first run reach the blocked save before the burst arrives.
	require.Eventually(t, func() bool { return or.listCalls() >= 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		coordinator.Trigger(1, TriggerGameConfirmed)
	}
	close(gate)

	// The burst collapses into exactly one follow-up computation.
	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, pub.count())
	assert.Equal(t, 2, sr.count())
}

func TestCoordinatorDiscardsStaleComputation(t *testing.T) {
	tr, pr, or, sr, pub := testFixtures()

	// A competing writer lands the same version first.
	var raceOnce sync.Once
	sr.onSave = func() {
		raceOnce.Do(func() {
			competitor := &models.StandingsSnapshot{TournamentID: 1, Version: 1, Round: 1}
			sr.mu.Lock()
			sr.snapshots = append(sr.snapshots, competitor)
			sr.mu.Unlock()
		})
	}

	coordinator := newTestCoordinator(tr, pr, or, sr, pub)
	coordinator.Trigger(1, TriggerGameConfirmed)

	require.Eventually(t, func() bool { return or.listCalls() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	// The stale result was discarded silently: nothing published, the
	// competitor's snapshot left in place.
	assert.Equal(t, 0, pub.count())
	assert.Equal(t, 1, sr.count())
}

func TestCoordinatorFailureKeepsLastGoodSnapshot(t *testing.T) {
	tr, pr, or, sr, pub := testFixtures()

	seeded := &models.StandingsSnapshot{TournamentID: 1, Version: 1, Round: 1}
	require.NoError(t, sr.Save(context.Background(), nil, seeded))

	or.failWith = context.DeadlineExceeded

	coordinator := newTestCoordinator(tr, pr, or, sr, pub)
	coordinator.Trigger(1, TriggerGameConfirmed)

	require.Eventually(t, func() bool { return or.listCalls() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, pub.count())
	latest, err := sr.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Version, "failed run must not disturb the published snapshot")
}
