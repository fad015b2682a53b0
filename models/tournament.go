package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TournamentStatus represents tournament lifecycle states, matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// PairingMode selects how next-round pairings are generated.
type PairingMode string

const (
	PairingSwiss      PairingMode = "swiss"
	PairingRoundRobin PairingMode = "round_robin"
)

// ScoringSystemName selects one of the closed set of point tables.
type ScoringSystemName string

const (
	// ScoringClassic is the chess-style 1 / 0.5 / 0 table.
	ScoringClassic ScoringSystemName = "classic"
	// ScoringFootball is the 3 / 1 / 0 table.
	ScoringFootball ScoringSystemName = "football"
)

// TieBreakMetric is the closed set of supported tie-break calculators.
// A dynamic but strongly-typed mapping keyed by this enum replaces the
// one-nullable-column-per-metric table layout.
type TieBreakMetric string

const (
	TieBreakBuchholz        TieBreakMetric = "buchholz"
	TieBreakBuchholzCut1    TieBreakMetric = "buchholz_cut1"
	TieBreakSonnebornBerger TieBreakMetric = "sonneborn_berger"
	TieBreakProgressive     TieBreakMetric = "progressive"
	TieBreakMostWins        TieBreakMetric = "most_wins"
	TieBreakPerformance     TieBreakMetric = "performance"
)

// KnownTieBreakMetrics lists every metric the engine can compute per participant.
// Direct encounter is deliberately absent: it is pairwise-only and applied by
// the ranking engine between exactly two tied participants.
var KnownTieBreakMetrics = []TieBreakMetric{
	TieBreakBuchholz, TieBreakBuchholzCut1, TieBreakSonnebornBerger,
	TieBreakProgressive, TieBreakMostWins, TieBreakPerformance,
}

// TieBreakRule is one entry of the organizer-ordered tie-break chain.
// Metrics compare descending unless Ascending is set.
type TieBreakRule struct {
	Metric    TieBreakMetric `json:"metric"`
	Ascending bool           `json:"ascending,omitempty"`
}

// Configuration errors, fatal at tournament-setup time.
var (
	ErrConfigUnknownScoringSystem = errors.New("unknown scoring system")
	ErrConfigUnknownTieBreak      = errors.New("unknown tie-break metric")
	ErrConfigDuplicateTieBreak    = errors.New("duplicate tie-break metric")
	ErrConfigUnknownPairingMode   = errors.New("unknown pairing mode")
	ErrConfigInvalidByePoints     = errors.New("bye points must not be negative")
)

// TournamentConfig holds the scoring, tie-break and pairing settings of a
// tournament. Stored as a JSON document on the tournaments row.
type TournamentConfig struct {
	ScoringSystem ScoringSystemName `json:"scoring_system"`
	ByePoints     float64           `json:"bye_points"`
	TieBreaks     []TieBreakRule    `json:"tie_breaks"`
	PairingMode   PairingMode       `json:"pairing_mode"`

	// CountForfeitWins makes forfeit wins count toward the most-wins metric.
	CountForfeitWins bool `json:"count_forfeit_wins,omitempty"`
	// ByeCountsForBuchholz includes the participant's own score for bye
	// rounds in Buchholz sums.
	ByeCountsForBuchholz bool `json:"bye_counts_for_buchholz,omitempty"`
	// PerformanceRatingDelta bounds the performance rating at 0% and 100%
	// scores instead of letting the log term run to infinity. Zero means
	// the default of 400.
	PerformanceRatingDelta float64 `json:"performance_rating_delta,omitempty"`
}

// DefaultPerformanceRatingDelta is used when the config leaves the clamp unset.
const DefaultPerformanceRatingDelta = 400

// Validate rejects invalid configurations before any computation is
// attempted. Unknown names are never silently defaulted.
func (c *TournamentConfig) Validate() error {
	switch c.ScoringSystem {
	case ScoringClassic, ScoringFootball:
	default:
		return fmt.Errorf("%w: %q", ErrConfigUnknownScoringSystem, c.ScoringSystem)
	}
	switch c.PairingMode {
	case PairingSwiss, PairingRoundRobin:
	default:
		return fmt.Errorf("%w: %q", ErrConfigUnknownPairingMode, c.PairingMode)
	}
	if c.ByePoints < 0 {
		return fmt.Errorf("%w: %v", ErrConfigInvalidByePoints, c.ByePoints)
	}
	seen := make(map[TieBreakMetric]bool, len(c.TieBreaks))
	for _, rule := range c.TieBreaks {
		known := false
		for _, m := range KnownTieBreakMetrics {
			if rule.Metric == m {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %q", ErrConfigUnknownTieBreak, rule.Metric)
		}
		if seen[rule.Metric] {
			return fmt.Errorf("%w: %q", ErrConfigDuplicateTieBreak, rule.Metric)
		}
		seen[rule.Metric] = true
	}
	return nil
}

// PerfDelta returns the configured performance rating clamp, defaulted.
func (c *TournamentConfig) PerfDelta() float64 {
	if c.PerformanceRatingDelta > 0 {
		return c.PerformanceRatingDelta
	}
	return DefaultPerformanceRatingDelta
}

// Tournament is the aggregate root the coordinator operates on.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Status      TournamentStatus `json:"status" db:"status"`
	RoundCount  int              `json:"round_count" db:"round_count"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Config TournamentConfig `json:"config" db:"-"`

	// Optional linked data, populated by services when needed.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Outcomes     []GameOutcome `json:"outcomes,omitempty" db:"-"`
}

// ParseConfig unmarshals the raw JSON config column and validates it.
func ParseConfig(raw []byte) (TournamentConfig, error) {
	var cfg TournamentConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return TournamentConfig{}, fmt.Errorf("invalid tournament config document: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return TournamentConfig{}, err
	}
	return cfg, nil
}
