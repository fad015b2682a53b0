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
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameConflict  = errors.New("tournament name conflict")
	ErrTournamentConfigInvalid = errors.New("tournament config is not valid JSON")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateRoundCount(ctx context.Context, exec SQLExecutor, id int, round int) error
	UpdateConfig(ctx context.Context, exec SQLExecutor, id int, config models.TournamentConfig) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	rawConfig, err := json.Marshal(tournament.Config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTournamentConfigInvalid, err)
	}

	query := `
		INSERT INTO tournaments (name, description, status, round_count, config)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.Status,
		tournament.RoundCount,
		rawConfig,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, description, status, round_count, config, created_at
		FROM tournaments
		WHERE id = $1`

	return r.scanTournament(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *postgresTournamentRepository) List(ctx context.Context, statusFilter *models.TournamentStatus) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, description, status, round_count, config, created_at
		FROM tournaments`
	args := []interface{}{}
	if statusFilter != nil {
		query += ` WHERE status = $1`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var rawConfig []byte
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.RoundCount, &rawConfig, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		config, cfgErr := models.ParseConfig(rawConfig)
		if cfgErr != nil {
			return nil, fmt.Errorf("tournament %d: %w", t.ID, cfgErr)
		}
		t.Config = config
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRoundCount(ctx context.Context, exec SQLExecutor, id int, round int) error {
	query := `UPDATE tournaments SET round_count = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, round, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateConfig(ctx context.Context, exec SQLExecutor, id int, config models.TournamentConfig) error {
	rawConfig, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTournamentConfigInvalid, err)
	}
	query := `UPDATE tournaments SET config = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, rawConfig, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) scanTournament(row *sql.Row, id int) (*models.Tournament, error) {
	t := &models.Tournament{}
	var rawConfig []byte
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.RoundCount, &rawConfig, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	config, err := models.ParseConfig(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("tournament %d: %w", t.ID, err)
	}
	t.Config = config
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "tournaments_name_key":
			return ErrTournamentNameConflict
		}
	}
	return err
}
