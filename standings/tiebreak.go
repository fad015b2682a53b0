package standings

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dauren-Zh/tourney-engine/models"
)

// Data-integrity errors. Any of these fails the whole ranking computation;
// a partial snapshot is never produced.
var (
	ErrUnknownParticipant = errors.New("outcome references unknown participant")
	ErrDuplicateOutcome   = errors.New("participant has more than one outcome in a round")
	ErrUnknownMetric      = errors.New("unknown tie-break metric")
)

// Dataset is the immutable per-computation view of a tournament: every
// confirmed outcome indexed by participant, plus the final score map all
// metrics share. Building it validates referential integrity and the
// one-outcome-per-participant-per-round invariant.
type Dataset struct {
	Config      models.TournamentConfig
	Games       map[int][]models.GameOutcome
	Scores      map[int]float64
	SeedRatings map[int]int
}

// NewDataset indexes confirmed outcomes by participant and computes final
// scores. Unconfirmed outcomes are ignored entirely.
func NewDataset(participants []models.Participant, outcomes []models.GameOutcome, cfg models.TournamentConfig) (*Dataset, error) {
	d := &Dataset{
		Config:      cfg,
		Games:       make(map[int][]models.GameOutcome, len(participants)),
		Scores:      make(map[int]float64, len(participants)),
		SeedRatings: make(map[int]int, len(participants)),
	}
	known := make(map[int]bool, len(participants))
	for _, p := range participants {
		known[p.ID] = true
		d.Games[p.ID] = nil
		d.Scores[p.ID] = 0
		d.SeedRatings[p.ID] = p.SeedRating
	}

	seenRound := make(map[int]map[int]bool)
	mark := func(participantID, round int) error {
		if !known[participantID] {
			return fmt.Errorf("%w: participant %d", ErrUnknownParticipant, participantID)
		}
		if seenRound[participantID] == nil {
			seenRound[participantID] = make(map[int]bool)
		}
		if seenRound[participantID][round] {
			return fmt.Errorf("%w: participant %d, round %d", ErrDuplicateOutcome, participantID, round)
		}
		seenRound[participantID][round] = true
		return nil
	}

	for _, o := range outcomes {
		if !o.Confirmed {
			continue
		}
		if err := mark(o.WhiteID, o.Round); err != nil {
			return nil, err
		}
		d.Games[o.WhiteID] = append(d.Games[o.WhiteID], o)
		if o.BlackID != nil {
			if err := mark(*o.BlackID, o.Round); err != nil {
				return nil, err
			}
			d.Games[*o.BlackID] = append(d.Games[*o.BlackID], o)
		}
	}

	for id, games := range d.Games {
		sort.Slice(games, func(i, j int) bool { return games[i].Round < games[j].Round })
		total := 0.0
		for _, g := range games {
			seat, _ := g.SeatOf(id)
			total += Score(g.Result, seat, cfg.ScoringSystem, cfg.ByePoints)
		}
		d.Scores[id] = total
	}
	return d, nil
}

// pointsFor returns the points the participant earned in one game.
func (d *Dataset) pointsFor(participantID int, g models.GameOutcome) float64 {
	seat, _ := g.SeatOf(participantID)
	return Score(g.Result, seat, d.Config.ScoringSystem, d.Config.ByePoints)
}

// Compute evaluates one per-participant metric. All metrics are pure reads
// over the dataset; none mutates shared state.
func Compute(metric models.TieBreakMetric, participantID int, d *Dataset) (float64, error) {
	switch metric {
	case models.TieBreakBuchholz:
		return buchholz(participantID, d), nil
	case models.TieBreakBuchholzCut1:
		return buchholzCut1(participantID, d), nil
	case models.TieBreakSonnebornBerger:
		return sonnebornBerger(participantID, d), nil
	case models.TieBreakProgressive:
		return progressive(participantID, d), nil
	case models.TieBreakMostWins:
		return mostWins(participantID, d), nil
	case models.TieBreakPerformance:
		return performanceRating(participantID, d), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
}

// buchholzContributions collects the per-game opponent-score contributions.
// A bye round contributes the participant's own score only when configured.
func buchholzContributions(participantID int, d *Dataset) []float64 {
	var values []float64
	for _, g := range d.Games[participantID] {
		if g.IsBye() {
			if d.Config.ByeCountsForBuchholz {
				values = append(values, d.Scores[participantID])
			}
			continue
		}
		opp := g.OpponentOf(participantID)
		values = append(values, d.Scores[*opp])
	}
	return values
}

func buchholz(participantID int, d *Dataset) float64 {
	sum := 0.0
	for _, v := range buchholzContributions(participantID, d) {
		sum += v
	}
	return sum
}

// buchholzCut1 drops the single lowest contribution. With fewer than two
// contributions it equals plain Buchholz.
func buchholzCut1(participantID int, d *Dataset) float64 {
	values := buchholzContributions(participantID, d)
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if len(values) < 2 {
		return sum
	}
	lowest := values[0]
	for _, v := range values[1:] {
		if v < lowest {
			lowest = v
		}
	}
	return sum - lowest
}

// sonnebornBerger weights each opponent's final score by the points taken
// off them: beating strong opponents counts, losses contribute zero.
func sonnebornBerger(participantID int, d *Dataset) float64 {
	sum := 0.0
	for _, g := range d.Games[participantID] {
		if g.IsBye() {
			continue
		}
		opp := g.OpponentOf(participantID)
		sum += d.pointsFor(participantID, g) * d.Scores[*opp]
	}
	return sum
}

// progressive sums the running cumulative score after each played round,
// rewarding early strong starts.
func progressive(participantID int, d *Dataset) float64 {
	running, sum := 0.0, 0.0
	for _, g := range d.Games[participantID] {
		running += d.pointsFor(participantID, g)
		sum += running
	}
	return sum
}

// mostWins counts decisive wins. Forfeit wins count only when configured;
// draws and byes never do.
func mostWins(participantID int, d *Dataset) float64 {
	wins := 0
	for _, g := range d.Games[participantID] {
		seat, _ := g.SeatOf(participantID)
		switch g.Result {
		case models.ResultWhiteWin:
			if seat == models.SeatWhite {
				wins++
			}
		case models.ResultBlackWin:
			if seat == models.SeatBlack {
				wins++
			}
		case models.ResultWhiteForfeitWin:
			if seat == models.SeatWhite && d.Config.CountForfeitWins {
				wins++
			}
		case models.ResultBlackForfeitWin:
			if seat == models.SeatBlack && d.Config.CountForfeitWins {
				wins++
			}
		}
	}
	return float64(wins)
}

// performanceRating is average opponent seed rating plus
// 400*log10(p/(1-p)) where p is the score percentage against rated
// opposition. Perfect and zero scores are clamped to ±delta instead of ±inf.
func performanceRating(participantID int, d *Dataset) float64 {
	table := Table(d.Config.ScoringSystem)
	ratingSum, points, max := 0.0, 0.0, 0.0
	games := 0
	for _, g := range d.Games[participantID] {
		if g.IsBye() {
			continue
		}
		opp := g.OpponentOf(participantID)
		ratingSum += float64(d.SeedRatings[*opp])
		points += d.pointsFor(participantID, g)
		max += table.Win
		games++
	}
	if games == 0 {
		return 0
	}
	avg := ratingSum / float64(games)
	pct := points / max
	delta := d.Config.PerfDelta()
	switch {
	case pct <= 0:
		return avg - delta
	case pct >= 1:
		return avg + delta
	default:
		return avg + 400*math.Log10(pct/(1-pct))
	}
}

// DirectEncounter compares two otherwise-tied participants by their
// head-to-head record: +1 when a beat b, -1 when b beat a, 0 when they
// never met or split their games.
func DirectEncounter(aID, bID int, d *Dataset) float64 {
	balance := 0.0
	for _, g := range d.Games[aID] {
		opp := g.OpponentOf(aID)
		if opp == nil || *opp != bID {
			continue
		}
		seatA, _ := g.SeatOf(aID)
		pa := Score(g.Result, seatA, d.Config.ScoringSystem, d.Config.ByePoints)
		pb := Score(g.Result, seatA.Opposite(), d.Config.ScoringSystem, d.Config.ByePoints)
		switch {
		case pa > pb:
			balance++
		case pa < pb:
			balance--
		}
	}
	switch {
	case balance > 0:
		return 1
	case balance < 0:
		return -1
	default:
		return 0
	}
}

// ColorBalance reports how often the participant held each seat. A reported
// statistic, not a sort key.
func ColorBalance(participantID int, d *Dataset) (white, black int) {
	for _, g := range d.Games[participantID] {
		if g.IsBye() {
			continue
		}
		if seat, ok := g.SeatOf(participantID); ok && seat == models.SeatBlack {
			black++
		} else {
			white++
		}
	}
	return white, black
}
