package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

func (r *PostgresRepository) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	_, err := r.getOne(ctx, &sum, `SELECT COALESCE(SUM(balance), 0) FROM wallets
		WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	return sum, err
}

func (r *PostgresRepository) SumTransactions(ctx context.Context, userID, txnType string, since *models.Date) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1 AND type = $2`
	args := []interface{}{userID, txnType}
	if since != nil {
		query += ` AND transaction_date >= $3`
		args = append(args, *since)
	}

	var sum decimal.Decimal
	_, err := r.getOne(ctx, &sum, query, args...)
	return sum, err
}

func (r *PostgresRepository) CountTransactions(ctx context.Context, userID string) (int64, error) {
	var n int64
	_, err := r.getOne(ctx, &n, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID)
	return n, err
}

func (r *PostgresRepository) MonthlyTotals(ctx context.Context, userID string, since models.Date) ([]models.MonthlyStat, error) {
	stats := []models.MonthlyStat{}
	err := sqlx.SelectContext(ctx, r.q, &stats, `
		SELECT to_char(transaction_date, 'YYYY-MM') AS month,
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS income,
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS expense
		FROM transactions
		WHERE user_id = $1 AND transaction_date >= $2
		GROUP BY 1
		ORDER BY 1`, userID, since)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *PostgresRepository) TopExpenseCategories(ctx context.Context, userID string, since models.Date, limit int) ([]models.CategoryStat, error) {
	stats := []models.CategoryStat{}
	err := sqlx.SelectContext(ctx, r.q, &stats, `
		SELECT t.category_id, COALESCE(c.name, 'Uncategorized') AS category_name, c.icon, c.color,
			SUM(t.amount) AS total, COUNT(*) AS count
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.transaction_date >= $2
		GROUP BY t.category_id, c.name, c.icon, c.color
		ORDER BY total DESC, category_name
		LIMIT $3`, userID, since, limit)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
