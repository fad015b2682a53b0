package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dauren-Zh/tourney-engine/models"
)

func TestScoreClassic(t *testing.T) {
	tests := []struct {
		name   string
		result models.GameResult
		seat   models.Seat
		want   float64
	}{
		{"white win as white", models.ResultWhiteWin, models.SeatWhite, 1},
		{"white win as black", models.ResultWhiteWin, models.SeatBlack, 0},
		{"black win as black", models.ResultBlackWin, models.SeatBlack, 1},
		{"black win as white", models.ResultBlackWin, models.SeatWhite, 0},
		{"draw as white", models.ResultDraw, models.SeatWhite, 0.5},
		{"draw as black", models.ResultDraw, models.SeatBlack, 0.5},
		{"forfeit win as white", models.ResultWhiteForfeitWin, models.SeatWhite, 1},
		{"forfeit loss as black", models.ResultWhiteForfeitWin, models.SeatBlack, 0},
		{"forfeit win as black", models.ResultBlackForfeitWin, models.SeatBlack, 1},
		{"double forfeit as white", models.ResultDoubleForfeit, models.SeatWhite, 0},
		{"double forfeit as black", models.ResultDoubleForfeit, models.SeatBlack, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.result, tt.seat, models.ScoringClassic, 1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreFootball(t *testing.T) {
	assert.Equal(t, 3.0, Score(models.ResultWhiteWin, models.SeatWhite, models.ScoringFootball, 1))
	assert.Equal(t, 1.0, Score(models.ResultDraw, models.SeatBlack, models.ScoringFootball, 1))
	assert.Equal(t, 0.0, Score(models.ResultBlackWin, models.SeatWhite, models.ScoringFootball, 1))
	assert.Equal(t, 3.0, Score(models.ResultBlackForfeitWin, models.SeatBlack, models.ScoringFootball, 1))
}

func TestScoreBye(t *testing.T) {
	assert.Equal(t, 1.0, Score(models.ResultBye, models.SeatWhite, models.ScoringClassic, 1))
	assert.Equal(t, 0.5, Score(models.ResultBye, models.SeatWhite, models.ScoringClassic, 0.5))
	assert.Equal(t, 0.0, Score(models.ResultBye, models.SeatWhite, models.ScoringFootball, 0))
}

func TestScorePanicsOnUnknownResult(t *testing.T) {
	require.Panics(t, func() {
		Score(models.GameResult("adjourned"), models.SeatWhite, models.ScoringClassic, 1)
	})
}

func TestTablePanicsOnUnknownSystem(t *testing.T) {
	require.Panics(t, func() {
		Table(models.ScoringSystemName("hockey"))
	})
}
