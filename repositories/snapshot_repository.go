package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/lib/pq"
)

var (
	ErrSnapshotNotFound          = errors.New("standings snapshot not found")
	ErrSnapshotTournamentInvalid = errors.New("snapshot tournament conflict or invalid")
	ErrSnapshotVersionConflict   = errors.New("standings snapshot version already exists")
)

// SnapshotRepository stores standings snapshots append-only: a new version
// is inserted per recomputation and old versions are never touched. The
// unique (tournament_id, version) constraint is what detects a stale
// computation racing a fresher one.
type SnapshotRepository interface {
	Save(ctx context.Context, exec SQLExecutor, snapshot *models.StandingsSnapshot) error
	GetLatest(ctx context.Context, tournamentID int) (*models.StandingsSnapshot, error)
	GetByRound(ctx context.Context, tournamentID int, round int) (*models.StandingsSnapshot, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.StandingsSnapshot, error)
}

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

func (r *postgresSnapshotRepository) Save(ctx context.Context, exec SQLExecutor, snapshot *models.StandingsSnapshot) error {
	rawEntries, err := json.Marshal(snapshot.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot entries: %w", err)
	}

	query := `
		INSERT INTO standings_snapshots (tournament_id, version, round, entries, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query,
		snapshot.TournamentID,
		snapshot.Version,
		snapshot.Round,
		rawEntries,
		snapshot.ComputedAt,
	).Scan(&snapshot.ID)

	return r.handleSnapshotError(err)
}

func (r *postgresSnapshotRepository) GetLatest(ctx context.Context, tournamentID int) (*models.StandingsSnapshot, error) {
	query := `
		SELECT id, tournament_id, version, round, entries, computed_at
		FROM standings_snapshots
		WHERE tournament_id = $1
		ORDER BY version DESC
		LIMIT 1`

	return r.scanSnapshot(r.db.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresSnapshotRepository) GetByRound(ctx context.Context, tournamentID int, round int) (*models.StandingsSnapshot, error) {
	query := `
		SELECT id, tournament_id, version, round, entries, computed_at
		FROM standings_snapshots
		WHERE tournament_id = $1 AND round = $2
		ORDER BY version DESC
		LIMIT 1`

	return r.scanSnapshot(r.db.QueryRowContext(ctx, query, tournamentID, round))
}

func (r *postgresSnapshotRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.StandingsSnapshot, error) {
	query := `
		SELECT id, tournament_id, version, round, entries, computed_at
		FROM standings_snapshots
		WHERE tournament_id = $1
		ORDER BY version ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	snapshots := make([]*models.StandingsSnapshot, 0)
	for rows.Next() {
		var s models.StandingsSnapshot
		var rawEntries []byte
		if scanErr := rows.Scan(&s.ID, &s.TournamentID, &s.Version, &s.Round, &rawEntries, &s.ComputedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", scanErr)
		}
		if err := json.Unmarshal(rawEntries, &s.Entries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entries for snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during snapshot rows iteration: %w", err)
	}
	return snapshots, nil
}

func (r *postgresSnapshotRepository) scanSnapshot(row *sql.Row) (*models.StandingsSnapshot, error) {
	s := &models.StandingsSnapshot{}
	var rawEntries []byte
	err := row.Scan(&s.ID, &s.TournamentID, &s.Version, &s.Round, &rawEntries, &s.ComputedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to scan standings snapshot: %w", err)
	}
	if err := json.Unmarshal(rawEntries, &s.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entries for snapshot %d: %w", s.ID, err)
	}
	return s, nil
}

func (r *postgresSnapshotRepository) handleSnapshotError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "standings_snapshots_tournament_id_fkey":
			return ErrSnapshotTournamentInvalid
		case "standings_snapshots_tournament_id_version_key":
			return ErrSnapshotVersionConflict
		}
	}
	return err
}
