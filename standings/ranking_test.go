package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dauren-Zh/tourney-engine/models"
)

func rankingInput(cfg models.TournamentConfig, pool []models.Participant, outcomes []models.GameOutcome) Input {
	return Input{
		Participants: pool,
		Outcomes:     outcomes,
		Config:       cfg,
		Round:        2,
	}
}

func entryByID(t *testing.T, snapshot *models.StandingsSnapshot, id int) models.RankingEntry {
	t.Helper()
	for _, e := range snapshot.Entries {
		if e.ParticipantID == id {
			return e
		}
	}
	t.Fatalf("participant %d not in snapshot", id)
	return models.RankingEntry{}
}

func TestRankOrdersByScoreThenTieBreakChain(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{
		{Metric: models.TieBreakBuchholz},
		{Metric: models.TieBreakSonnebornBerger},
	}
	pool := participants(map[int]int{1: 1800, 2: 1600, 3: 1500, 4: 1400})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultDraw),
		game(2, 3, 1, models.ResultBlackWin),
		game(2, 2, 4, models.ResultWhiteWin),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 4)

	assert.Equal(t, 1, snapshot.Entries[0].ParticipantID)
	assert.Equal(t, 1, snapshot.Entries[0].Rank)
	assert.Equal(t, 2, snapshot.Entries[1].ParticipantID)
	assert.Equal(t, 2, snapshot.Entries[1].Rank)

	for _, e := range snapshot.Entries {
		assert.Len(t, e.TieBreaks, 2, "every configured metric present for participant %d", e.ParticipantID)
	}
}

func TestRankSharedRanksSkipPositions(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{{Metric: models.TieBreakBuchholz}}
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500, 4: 1500, 5: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultWhiteWin),
		byeRound(1, 5),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	// 1, 3 and 5 all on 1.0 with equal tie-breaks share first; the next
	// distinct rank accounts for the group size.
	assert.Equal(t, 1, entryByID(t, snapshot, 1).Rank)
	assert.Equal(t, 1, entryByID(t, snapshot, 3).Rank)
	assert.Equal(t, 1, entryByID(t, snapshot, 5).Rank)
	assert.Equal(t, 4, entryByID(t, snapshot, 2).Rank)
	assert.Equal(t, 4, entryByID(t, snapshot, 4).Rank)
}

func TestRankSharedMiddleRanks(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{{Metric: models.TieBreakBuchholz}}
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500, 4: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultWhiteWin),
		game(2, 1, 3, models.ResultWhiteWin),
		game(2, 2, 4, models.ResultWhiteWin),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	// 2 and 3 tie on score (1.0) and Buchholz (2.0) and never met: the
	// rank sequence is 1, 2, 2, 4.
	assert.Equal(t, 1, entryByID(t, snapshot, 1).Rank)
	assert.Equal(t, 2, entryByID(t, snapshot, 2).Rank)
	assert.Equal(t, 2, entryByID(t, snapshot, 3).Rank)
	assert.Equal(t, 4, entryByID(t, snapshot, 4).Rank)
}

func TestRankDirectEncounterBreaksTwoWayTie(t *testing.T) {
	cfg := classicConfig()
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500, 4: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 4, models.ResultWhiteWin),
		game(1, 2, 3, models.ResultWhiteWin),
		game(2, 1, 2, models.ResultWhiteWin),
		game(2, 3, 4, models.ResultWhiteWin),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	// 2 and 3 are tied on every criterion, but 2 won their game.
	assert.Equal(t, 1, entryByID(t, snapshot, 1).Rank)
	assert.Equal(t, 2, entryByID(t, snapshot, 2).Rank)
	assert.Equal(t, 3, entryByID(t, snapshot, 3).Rank)
	assert.Equal(t, 4, entryByID(t, snapshot, 4).Rank)
}

func TestRankDirectEncounterIgnoredForLargerGroups(t *testing.T) {
	cfg := classicConfig()
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(2, 2, 3, models.ResultWhiteWin),
		game(3, 3, 1, models.ResultWhiteWin),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	// A three-way cycle on equal criteria shares the rank; head-to-head
	// only separates groups of exactly two.
	for id := 1; id <= 3; id++ {
		assert.Equal(t, 1, entryByID(t, snapshot, id).Rank)
	}
}

func TestRankAscendingTieBreakRule(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{{Metric: models.TieBreakBuchholz, Ascending: true}}
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500, 4: 1500, 5: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultWhiteWin),
		byeRound(1, 5),
		game(2, 1, 3, models.ResultWhiteWin),
	}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	// 3 and 5 are both on 1.0; Buchholz(3)=2.0, Buchholz(5)=0. The
	// ascending rule puts the lower value first.
	require.Less(t, entryByID(t, snapshot, 5).Rank, entryByID(t, snapshot, 3).Rank)
}

func TestRankDeltasAgainstPreviousSnapshot(t *testing.T) {
	cfg := classicConfig()
	pool := participants(map[int]int{1: 1500, 2: 1500})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
	}

	in := rankingInput(cfg, pool, outcomes)
	in.Previous = &models.StandingsSnapshot{
		Version: 3,
		Entries: []models.RankingEntry{
			{ParticipantID: 1, Rank: 2},
			{ParticipantID: 2, Rank: 1},
		},
	}

	snapshot, err := Rank(in)
	require.NoError(t, err)

	first := entryByID(t, snapshot, 1)
	require.NotNil(t, first.RankDelta)
	assert.Equal(t, 1, *first.RankDelta, "climbed from 2 to 1")

	second := entryByID(t, snapshot, 2)
	require.NotNil(t, second.RankDelta)
	assert.Equal(t, -1, *second.RankDelta)
}

func TestRankDeltaNilForNewParticipant(t *testing.T) {
	cfg := classicConfig()
	pool := participants(map[int]int{1: 1500, 2: 1500})

	in := rankingInput(cfg, pool, nil)
	in.Previous = &models.StandingsSnapshot{
		Entries: []models.RankingEntry{{ParticipantID: 1, Rank: 1}},
	}

	snapshot, err := Rank(in)
	require.NoError(t, err)
	assert.Nil(t, entryByID(t, snapshot, 2).RankDelta)
}

func TestRankDeterministic(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{
		{Metric: models.TieBreakBuchholz},
		{Metric: models.TieBreakProgressive},
	}
	pool := participants(map[int]int{1: 1800, 2: 1600, 3: 1500, 4: 1400, 5: 1300})
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultDraw),
		byeRound(1, 5),
		game(2, 1, 3, models.ResultDraw),
		game(2, 5, 2, models.ResultBlackWin),
		byeRound(2, 4),
	}

	first, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)
	second, err := Rank(rankingInput(cfg, pool, outcomes))
	require.NoError(t, err)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].ParticipantID, second.Entries[i].ParticipantID)
		assert.Equal(t, first.Entries[i].Rank, second.Entries[i].Rank)
	}
}

func TestRankRejectsInvalidConfig(t *testing.T) {
	cfg := classicConfig()
	cfg.TieBreaks = []models.TieBreakRule{{Metric: models.TieBreakMetric("median")}}

	_, err := Rank(rankingInput(cfg, participants(map[int]int{1: 1500}), nil))
	require.ErrorIs(t, err, models.ErrConfigUnknownTieBreak)
}

func TestRankFailsOnDataIntegrityError(t *testing.T) {
	cfg := classicConfig()
	pool := participants(map[int]int{1: 1500, 2: 1500})
	outcomes := []models.GameOutcome{game(1, 1, 99, models.ResultDraw)}

	snapshot, err := Rank(rankingInput(cfg, pool, outcomes))
	require.ErrorIs(t, err, ErrUnknownParticipant)
	assert.Nil(t, snapshot, "no partial snapshot on failure")
}
