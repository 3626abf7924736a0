package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rongwang/fintrack-server/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext // *sqlx.DB, or *sqlx.Tx inside WithTx
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		q:  db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

func (r *PostgresRepository) WithTx(ctx context.Context, fn func(Repository) error) (err error) {
	if _, nested := r.q.(*sqlx.Tx); nested {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(&PostgresRepository{db: r.db, q: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LockUser takes a row lock on the user, held until the surrounding
// transaction ends. Outside a transaction it only checks existence.
func (r *PostgresRepository) LockUser(ctx context.Context, userID string) error {
	var id string
	err := sqlx.GetContext(ctx, r.q, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, pqErr.Constraint)
	}
	return err
}

// getOne runs a single-row query, returning (false, nil) for no rows
func (r *PostgresRepository) getOne(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, r.q, dest, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// execOne runs a write and reports ErrNotFound when no row matched
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = utcNow()
		user.UpdatedAt = user.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.Name, user.Password, user.CreatedAt, user.UpdatedAt)
	return mapError(err)
}

const userColumns = `id, email, username, name, password_hash, created_at, updated_at`

func (r *PostgresRepository) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var user models.User
	found, err := r.getOne(ctx, &user, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `lower(username) = lower($1)`, username)
}

func (r *PostgresRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.getUser(ctx, `lower(username) = lower($1) OR lower(email) = lower($1)`, identifier)
}

var _ Repository = (*PostgresRepository)(nil)
