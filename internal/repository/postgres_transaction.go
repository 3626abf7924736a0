package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

const transactionSelect = `SELECT t.id, t.user_id, t.wallet_id, w.name AS wallet_name,
		t.category_id, c.name AS category_name, t.type, t.amount, t.description,
		t.transaction_date, t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN wallets w ON w.id = t.wallet_id
	LEFT JOIN categories c ON c.id = t.category_id`

// transactionWhere builds the WHERE clause shared by the list and count queries
func transactionWhere(userID string, f models.TransactionFilter) (string, []interface{}) {
	conds := []string{"t.user_id = $1"}
	args := []interface{}{userID}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.WalletID != nil {
		add("t.wallet_id = $%d", *f.WalletID)
	}
	if f.CategoryID != nil {
		add("t.category_id = $%d", *f.CategoryID)
	}
	if f.Type != nil {
		add("t.type = $%d", *f.Type)
	}
	if f.StartDate != nil {
		add("t.transaction_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("t.transaction_date <= $%d", *f.EndDate)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	where, args := transactionWhere(userID, filter)

	var total int64
	if _, err := r.getOne(ctx, &total, `SELECT COUNT(*) FROM transactions t`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := transactionSelect + where + ` ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	txns := []models.Transaction{}
	if err := sqlx.SelectContext(ctx, r.q, &txns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txns, total, nil
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	found, err := r.getOne(ctx, &txn, transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`, transactionID, userID)
	if err != nil || !found {
		return nil, err
	}
	return &txn, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = utcNow()
		txn.UpdatedAt = txn.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, wallet_id, category_id, type, amount, description, transaction_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		txn.ID, txn.UserID, txn.WalletID, txn.CategoryID, txn.Type, txn.Amount,
		txn.Description, txn.Date, txn.CreatedAt, txn.UpdatedAt)
	return mapError(err)
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.execOne(ctx, `UPDATE transactions
		SET wallet_id = $3, category_id = $4, type = $5, amount = $6, description = $7,
			transaction_date = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2`,
		txn.ID, txn.UserID, txn.WalletID, txn.CategoryID, txn.Type, txn.Amount,
		txn.Description, txn.Date, utcNow())
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return r.execOne(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, transactionID, userID)
}

func (r *PostgresRepository) SumExpenses(ctx context.Context, userID string, month, year int, categoryID *string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'expense'
			AND EXTRACT(MONTH FROM transaction_date) = $2
			AND EXTRACT(YEAR FROM transaction_date) = $3`
	args := []interface{}{userID, month, year}
	if categoryID != nil {
		query += ` AND category_id = $4`
		args = append(args, *categoryID)
	}

	var sum decimal.Decimal
	_, err := r.getOne(ctx, &sum, query, args...)
	return sum, err
}
