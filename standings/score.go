package standings

import (
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
)

// PointTable is one of the closed set of scoring systems.
type PointTable struct {
	Win  float64
	Draw float64
	Loss float64
}

// Table resolves a scoring system name to its point table. The name set is
// closed and validated at config time, so an unknown name here is a
// programming error.
func Table(system models.ScoringSystemName) PointTable {
	switch system {
	case models.ScoringClassic:
		return PointTable{Win: 1, Draw: 0.5, Loss: 0}
	case models.ScoringFootball:
		return PointTable{Win: 3, Draw: 1, Loss: 0}
	default:
		panic(fmt.Sprintf("standings: unhandled scoring system %q", system))
	}
}

// Score returns the points the participant on the given seat earned from a
// game result. It is total over the closed result enum: forfeits score like
// normal wins/losses, byes award the configured bye points independent of
// the system's win value. An unrecognized result is a programming error.
func Score(result models.GameResult, seat models.Seat, system models.ScoringSystemName, byePoints float64) float64 {
	t := Table(system)
	switch result {
	case models.ResultWhiteWin, models.ResultWhiteForfeitWin:
		if seat == models.SeatWhite {
			return t.Win
		}
		return t.Loss
	case models.ResultBlackWin, models.ResultBlackForfeitWin:
		if seat == models.SeatBlack {
			return t.Win
		}
		return t.Loss
	case models.ResultDraw:
		return t.Draw
	case models.ResultDoubleForfeit:
		return t.Loss
	case models.ResultBye:
		if seat != models.SeatWhite {
			panic("standings: bye outcome has no black seat")
		}
		return byePoints
	default:
		panic(fmt.Sprintf("standings: unhandled game result %q", result))
	}
}
