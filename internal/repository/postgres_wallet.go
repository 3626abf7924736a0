package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, name, type, balance, credit_limit, icon, color, is_default, created_at, updated_at, deleted_at`

func (r *PostgresRepository) ListWallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY is_default DESC, created_at DESC, id DESC`

	wallets := []models.Wallet{}
	if err := sqlx.SelectContext(ctx, r.q, &wallets, query, userID); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *PostgresRepository) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := r.getOne(ctx, &wallet, `SELECT `+walletColumns+` FROM wallets
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, walletID, userID)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

func (r *PostgresRepository) GetDefaultWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := r.getOne(ctx, &wallet, `SELECT `+walletColumns+` FROM wallets
		WHERE user_id = $1 AND is_default AND deleted_at IS NULL`, userID)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

func (r *PostgresRepository) CountWallets(ctx context.Context, userID string) (int64, error) {
	var n int64
	_, err := r.getOne(ctx, &n, `SELECT COUNT(*) FROM wallets WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	return n, err
}

func (r *PostgresRepository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, name, type, balance, credit_limit, icon, color, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = utcNow()
		wallet.UpdatedAt = wallet.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.Name, wallet.Type, wallet.Balance, wallet.CreditLimit,
		wallet.Icon, wallet.Color, wallet.IsDefault, wallet.CreatedAt, wallet.UpdatedAt)
	return mapError(err)
}

// UpdateWallet writes the mutable wallet fields. Balance is left alone.
func (r *PostgresRepository) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	query := `UPDATE wallets
		SET name = $3, type = $4, credit_limit = $5, icon = $6, color = $7, is_default = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING ` + walletColumns

	found, err := r.getOne(ctx, wallet, query,
		wallet.ID, wallet.UserID, wallet.Name, wallet.Type, wallet.CreditLimit,
		wallet.Icon, wallet.Color, wallet.IsDefault, utcNow())
	if err != nil {
		return mapError(err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearDefaultWallets(ctx context.Context, userID, exceptID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE wallets SET is_default = FALSE, updated_at = $3
		WHERE user_id = $1 AND id <> $2 AND is_default AND deleted_at IS NULL`,
		userID, nilUUIDIfEmpty(exceptID), utcNow())
	return err
}

// AdjustWalletBalance applies delta in place; soft-deleted wallets are
// included so historical transactions stay reversible.
func (r *PostgresRepository) AdjustWalletBalance(ctx context.Context, userID, walletID string, delta decimal.Decimal) error {
	return r.execOne(ctx, `UPDATE wallets SET balance = balance + $3, updated_at = $4
		WHERE id = $1 AND user_id = $2`, walletID, userID, delta, utcNow())
}

func (r *PostgresRepository) SoftDeleteWallet(ctx context.Context, userID, walletID string) (bool, error) {
	now := utcNow()
	err := r.execOne(ctx, `UPDATE wallets SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, walletID, userID, now)
	return deleted(err)
}

func (r *PostgresRepository) CountWalletTransactions(ctx context.Context, userID, walletID string) (int64, error) {
	var n int64
	_, err := r.getOne(ctx, &n, `SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND wallet_id = $2`, userID, walletID)
	return n, err
}

// nilUUIDIfEmpty keeps "id <> $n" comparable against a uuid column
func nilUUIDIfEmpty(id string) string {
	if id == "" {
		return "00000000-0000-0000-0000-000000000000"
	}
	return id
}

func deleted(err error) (bool, error) {
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
