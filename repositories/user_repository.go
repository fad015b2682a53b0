package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNameConflict = errors.New("user display name conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*models.User, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, id int, rating *int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (display_name, rating)
		VALUES ($1, $2)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query, user.DisplayName, user.Rating).Scan(&user.ID)
	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, display_name, rating FROM users WHERE id = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.DisplayName, &u.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by id %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.User, error) {
	if len(ids) == 0 {
		return map[int]*models.User{}, nil
	}

	query := `SELECT id, display_name, rating FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	defer rows.Close()

	users := make(map[int]*models.User, len(ids))
	for rows.Next() {
		var u models.User
		if scanErr := rows.Scan(&u.ID, &u.DisplayName, &u.Rating); scanErr != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", scanErr)
		}
		users[u.ID] = &u
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during user rows iteration: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id int, rating *int) error {
	query := `UPDATE users SET rating = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, rating, id)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "users_display_name_key":
			return ErrUserNameConflict
		}
	}
	return err
}
