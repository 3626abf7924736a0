package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/models"
)

const budgetSelect = `SELECT b.id, b.user_id, b.category_id, c.name AS category_name, b.amount,
		b.month, b.year, b.is_active, b.alert_threshold, b.created_at, b.updated_at, b.deleted_at
	FROM budgets b
	LEFT JOIN categories c ON c.id = b.category_id`

func (r *PostgresRepository) ListBudgets(ctx context.Context, userID string, filter BudgetFilter) ([]models.Budget, error) {
	query := budgetSelect + ` WHERE b.user_id = $1 AND b.deleted_at IS NULL`
	args := []interface{}{userID}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		query += fmt.Sprintf(" AND b.month = $%d", len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND b.year = $%d", len(args))
	}
	query += ` ORDER BY b.year DESC, b.month DESC, b.created_at DESC, b.id DESC`

	budgets := []models.Budget{}
	if err := sqlx.SelectContext(ctx, r.q, &budgets, query, args...); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *PostgresRepository) GetBudget(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	found, err := r.getOne(ctx, &budget, budgetSelect+` WHERE b.id = $1 AND b.user_id = $2 AND b.deleted_at IS NULL`, budgetID, userID)
	if err != nil || !found {
		return nil, err
	}
	return &budget, nil
}

// FindBudget looks up the live budget of a (category, month, year) bucket;
// a nil category only matches budgets without one.
func (r *PostgresRepository) FindBudget(ctx context.Context, userID string, categoryID *string, month, year int, excludeID string) (*models.Budget, error) {
	var budget models.Budget
	found, err := r.getOne(ctx, &budget, budgetSelect+`
		WHERE b.user_id = $1 AND b.category_id IS NOT DISTINCT FROM $2::uuid
			AND b.month = $3 AND b.year = $4 AND b.id <> $5 AND b.deleted_at IS NULL
		LIMIT 1`, userID, categoryID, month, year, nilUUIDIfEmpty(excludeID))
	if err != nil || !found {
		return nil, err
	}
	return &budget, nil
}

func (r *PostgresRepository) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = utcNow()
		budget.UpdatedAt = budget.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, month, year, is_active, alert_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		budget.ID, budget.UserID, budget.CategoryID, budget.Amount, budget.Month, budget.Year,
		budget.IsActive, budget.AlertThreshold, budget.CreatedAt, budget.UpdatedAt)
	return mapError(err)
}

func (r *PostgresRepository) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	return r.execOne(ctx, `UPDATE budgets
		SET category_id = $3, amount = $4, month = $5, year = $6, is_active = $7,
			alert_threshold = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		budget.ID, budget.UserID, budget.CategoryID, budget.Amount, budget.Month, budget.Year,
		budget.IsActive, budget.AlertThreshold, utcNow())
}

func (r *PostgresRepository) SoftDeleteBudget(ctx context.Context, userID, budgetID string) (bool, error) {
	now := utcNow()
	err := r.execOne(ctx, `UPDATE budgets SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, budgetID, userID, now)
	return deleted(err)
}
