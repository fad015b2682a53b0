package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dauren-Zh/tourney-engine/models"
)

func classicConfig() models.TournamentConfig {
	return models.TournamentConfig{
		ScoringSystem: models.ScoringClassic,
		ByePoints:     1,
		PairingMode:   models.PairingSwiss,
	}
}

func participants(ratings map[int]int) []models.Participant {
	var list []models.Participant
	for id, rating := range ratings {
		list = append(list, models.Participant{
			ID:         id,
			SeedRating: rating,
			Status:     models.ParticipantActive,
		})
	}
	return list
}

func game(round, white, black int, result models.GameResult) models.GameOutcome {
	b := black
	return models.GameOutcome{
		Round:     round,
		WhiteID:   white,
		BlackID:   &b,
		Result:    result,
		Confirmed: true,
	}
}

func byeRound(round, id int) models.GameOutcome {
	return models.GameOutcome{
		Round:     round,
		WhiteID:   id,
		Result:    models.ResultBye,
		Confirmed: true,
	}
}

// Two rounds among four players:
//
//	R1: 1 beats 2, 3 draws 4
//	R2: 1 beats 3, 2 beats 4
//
// Final scores: 1 -> 2.0, 2 -> 1.0, 3 -> 0.5, 4 -> 0.5.
func twoRoundDataset(t *testing.T, cfg models.TournamentConfig) *Dataset {
	t.Helper()
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(1, 3, 4, models.ResultDraw),
		game(2, 3, 1, models.ResultBlackWin),
		game(2, 2, 4, models.ResultWhiteWin),
	}
	d, err := NewDataset(participants(map[int]int{1: 1800, 2: 1600, 3: 1500, 4: 1400}), outcomes, cfg)
	require.NoError(t, err)
	return d
}

func TestDatasetFinalScores(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	assert.Equal(t, 2.0, d.Scores[1])
	assert.Equal(t, 1.0, d.Scores[2])
	assert.Equal(t, 0.5, d.Scores[3])
	assert.Equal(t, 0.5, d.Scores[4])
}

func TestDatasetIgnoresUnconfirmedOutcomes(t *testing.T) {
	pending := game(1, 1, 2, models.ResultWhiteWin)
	pending.Confirmed = false

	d, err := NewDataset(participants(map[int]int{1: 1500, 2: 1500}), []models.GameOutcome{pending}, classicConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, d.Scores[1])
	assert.Empty(t, d.Games[1])
}

func TestDatasetRejectsUnknownParticipant(t *testing.T) {
	_, err := NewDataset(
		participants(map[int]int{1: 1500, 2: 1500}),
		[]models.GameOutcome{game(1, 1, 99, models.ResultDraw)},
		classicConfig(),
	)
	require.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestDatasetRejectsDuplicateRoundOutcome(t *testing.T) {
	_, err := NewDataset(
		participants(map[int]int{1: 1500, 2: 1500, 3: 1500}),
		[]models.GameOutcome{
			game(1, 1, 2, models.ResultDraw),
			game(1, 1, 3, models.ResultDraw),
		},
		classicConfig(),
	)
	require.ErrorIs(t, err, ErrDuplicateOutcome)
}

func TestBuchholz(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	// Opponents of 1 were 2 and 3.
	got, err := Compute(models.TieBreakBuchholz, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	// Opponents of 4 were 3 and 2.
	got, err = Compute(models.TieBreakBuchholz, 4, d)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)
}

func TestBuchholzCut1DropsLowestOpponent(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	// Opponents of 1 scored 1.0 and 0.5; the cut drops the 0.5.
	got, err := Compute(models.TieBreakBuchholzCut1, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestBuchholzCut1NeverExceedsBuchholz(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())
	for id := 1; id <= 4; id++ {
		full, err := Compute(models.TieBreakBuchholz, id, d)
		require.NoError(t, err)
		cut, err := Compute(models.TieBreakBuchholzCut1, id, d)
		require.NoError(t, err)
		assert.LessOrEqual(t, cut, full, "participant %d", id)
	}
}

func TestBuchholzByeContribution(t *testing.T) {
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		byeRound(1, 3),
	}
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500})

	cfg := classicConfig()
	d, err := NewDataset(pool, outcomes, cfg)
	require.NoError(t, err)
	got, err := Compute(models.TieBreakBuchholz, 3, d)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got, "bye contributes nothing by default")

	cfg.ByeCountsForBuchholz = true
	d, err = NewDataset(pool, outcomes, cfg)
	require.NoError(t, err)
	got, err = Compute(models.TieBreakBuchholz, 3, d)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got, "bye contributes own score when configured")
}

func TestSonnebornBerger(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	// 1 took 1.0 off 2 (final 1.0) and 1.0 off 3 (final 0.5).
	got, err := Compute(models.TieBreakSonnebornBerger, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	// 3 took 0.5 off 4 (final 0.5) and 0 off 1.
	got, err = Compute(models.TieBreakSonnebornBerger, 3, d)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
}

func TestProgressive(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	// 1 had 1.0 after R1 and 2.0 after R2.
	got, err := Compute(models.TieBreakProgressive, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	// 2 had 0 after R1 and 1.0 after R2: early losses weigh less.
	got, err = Compute(models.TieBreakProgressive, 2, d)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestMostWinsForfeitPolicy(t *testing.T) {
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(2, 1, 3, models.ResultWhiteForfeitWin),
	}
	pool := participants(map[int]int{1: 1500, 2: 1500, 3: 1500})

	cfg := classicConfig()
	d, err := NewDataset(pool, outcomes, cfg)
	require.NoError(t, err)
	got, err := Compute(models.TieBreakMostWins, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got, "forfeit wins excluded by default")

	cfg.CountForfeitWins = true
	d, err = NewDataset(pool, outcomes, cfg)
	require.NoError(t, err)
	got, err = Compute(models.TieBreakMostWins, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestPerformanceRatingMidRange(t *testing.T) {
	// A 50% score equals the average opponent rating exactly.
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(2, 3, 1, models.ResultWhiteWin),
	}
	d, err := NewDataset(participants(map[int]int{1: 1500, 2: 1600, 3: 1400}), outcomes, classicConfig())
	require.NoError(t, err)

	got, err := Compute(models.TieBreakPerformance, 1, d)
	require.NoError(t, err)
	assert.InDelta(t, 1500, got, 0.0001)
}

func TestPerformanceRatingClampsPerfectScore(t *testing.T) {
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultWhiteWin),
		game(2, 1, 3, models.ResultWhiteWin),
	}
	pool := participants(map[int]int{1: 1500, 2: 1600, 3: 1400})

	d, err := NewDataset(pool, outcomes, classicConfig())
	require.NoError(t, err)
	got, err := Compute(models.TieBreakPerformance, 1, d)
	require.NoError(t, err)
	assert.InDelta(t, 1900, got, 0.0001, "average 1500 plus default delta")

	cfg := classicConfig()
	cfg.PerformanceRatingDelta = 800
	d, err = NewDataset(pool, outcomes, cfg)
	require.NoError(t, err)
	got, err = Compute(models.TieBreakPerformance, 1, d)
	require.NoError(t, err)
	assert.InDelta(t, 2300, got, 0.0001)
}

func TestPerformanceRatingClampsZeroScore(t *testing.T) {
	outcomes := []models.GameOutcome{
		game(1, 1, 2, models.ResultBlackWin),
	}
	d, err := NewDataset(participants(map[int]int{1: 1500, 2: 1600}), outcomes, classicConfig())
	require.NoError(t, err)

	got, err := Compute(models.TieBreakPerformance, 1, d)
	require.NoError(t, err)
	assert.InDelta(t, 1200, got, 0.0001)
}

func TestPerformanceRatingNoGames(t *testing.T) {
	d, err := NewDataset(participants(map[int]int{1: 1500}), nil, classicConfig())
	require.NoError(t, err)

	got, err := Compute(models.TieBreakPerformance, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestComputeUnknownMetric(t *testing.T) {
	d, err := NewDataset(participants(map[int]int{1: 1500}), nil, classicConfig())
	require.NoError(t, err)

	_, err = Compute(models.TieBreakMetric("median"), 1, d)
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestDirectEncounter(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	assert.Equal(t, 1.0, DirectEncounter(1, 2, d))
	assert.Equal(t, -1.0, DirectEncounter(2, 1, d))
	assert.Equal(t, 0.0, DirectEncounter(3, 4, d), "drawn game decides nothing")
	assert.Equal(t, 0.0, DirectEncounter(1, 4, d), "never met")
}

func TestColorBalance(t *testing.T) {
	d := twoRoundDataset(t, classicConfig())

	white, black := ColorBalance(1, d)
	assert.Equal(t, 1, white)
	assert.Equal(t, 1, black)

	white, black = ColorBalance(2, d)
	assert.Equal(t, 1, white)
	assert.Equal(t, 1, black)
}
