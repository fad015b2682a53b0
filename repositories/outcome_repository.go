package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/lib/pq"
)

var (
	ErrOutcomeNotFound           = errors.New("outcome not found")
	ErrOutcomeTournamentInvalid  = errors.New("outcome tournament conflict or invalid")
	ErrOutcomeParticipantInvalid = errors.New("outcome participant conflict or invalid")
	ErrOutcomeRoundConflict      = errors.New("participant already has an outcome in this round")
)

type OutcomeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, outcome *models.GameOutcome) error
	GetByID(ctx context.Context, id int) (*models.GameOutcome, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, onlyConfirmed bool) ([]models.GameOutcome, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result models.GameResult) error
	SetConfirmed(ctx context.Context, exec SQLExecutor, id int, confirmed bool) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresOutcomeRepository struct {
	db *sql.DB
}

func NewPostgresOutcomeRepository(db *sql.DB) OutcomeRepository {
	return &postgresOutcomeRepository{db: db}
}

func (r *postgresOutcomeRepository) Create(ctx context.Context, exec SQLExecutor, outcome *models.GameOutcome) error {
	query := `
		INSERT INTO game_outcomes (tournament_id, round, white_id, black_id, result, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		outcome.TournamentID,
		outcome.Round,
		outcome.WhiteID,
		outcome.BlackID,
		outcome.Result,
		outcome.Confirmed,
	).Scan(&outcome.ID, &outcome.CreatedAt)

	return r.handleOutcomeError(err)
}

func (r *postgresOutcomeRepository) GetByID(ctx context.Context, id int) (*models.GameOutcome, error) {
	query := `
		SELECT id, tournament_id, round, white_id, black_id, result, confirmed, created_at
		FROM game_outcomes
		WHERE id = $1`

	o := &models.GameOutcome{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.TournamentID,
		&o.Round,
		&o.WhiteID,
		&o.BlackID,
		&o.Result,
		&o.Confirmed,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to scan outcome by id %d: %w", id, err)
	}
	return o, nil
}

func (r *postgresOutcomeRepository) ListByTournament(ctx context.Context, tournamentID int, roundFilter *int, onlyConfirmed bool) ([]models.GameOutcome, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, tournament_id, round, white_id, black_id, result, confirmed, created_at
		FROM game_outcomes
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundFilter)
		placeholderIndex++
	}
	if onlyConfirmed {
		queryBuilder.WriteString(" AND confirmed = TRUE")
	}

	queryBuilder.WriteString(" ORDER BY round ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	outcomes := make([]models.GameOutcome, 0)
	for rows.Next() {
		var o models.GameOutcome
		if scanErr := rows.Scan(
			&o.ID,
			&o.TournamentID,
			&o.Round,
			&o.WhiteID,
			&o.BlackID,
			&o.Result,
			&o.Confirmed,
			&o.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan outcome row: %w", scanErr)
		}
		outcomes = append(outcomes, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during outcome rows iteration: %w", err)
	}
	return outcomes, nil
}

func (r *postgresOutcomeRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, result models.GameResult) error {
	query := `UPDATE game_outcomes SET result = $1 WHERE id = $2`
	res, err := exec.ExecContext(ctx, query, result, id)
	if err != nil {
		return r.handleOutcomeError(err)
	}
	return checkAffectedRows(res, ErrOutcomeNotFound)
}

func (r *postgresOutcomeRepository) SetConfirmed(ctx context.Context, exec SQLExecutor, id int, confirmed bool) error {
	query := `UPDATE game_outcomes SET confirmed = $1 WHERE id = $2`
	res, err := exec.ExecContext(ctx, query, confirmed, id)
	if err != nil {
		return r.handleOutcomeError(err)
	}
	return checkAffectedRows(res, ErrOutcomeNotFound)
}

func (r *postgresOutcomeRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM game_outcomes WHERE id = $1`
	res, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrOutcomeNotFound)
}

func (r *postgresOutcomeRepository) handleOutcomeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		// "23505": unique_violation (partial unique indexes on confirmed rows)
		switch pqErr.Constraint {
		case "game_outcomes_tournament_id_fkey":
			return ErrOutcomeTournamentInvalid
		case "game_outcomes_white_id_fkey", "game_outcomes_black_id_fkey":
			return ErrOutcomeParticipantInvalid
		case "game_outcomes_white_round_uidx", "game_outcomes_black_round_uidx":
			return ErrOutcomeRoundConflict
		}
	}
	return err
}
