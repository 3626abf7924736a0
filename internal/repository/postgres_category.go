package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/models"
)

const categoryColumns = `id, user_id, name, type, icon, color, (user_id IS NULL) AS is_default, created_at, deleted_at`

func (r *PostgresRepository) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE (user_id = $1 OR user_id IS NULL) AND deleted_at IS NULL
		ORDER BY name, id`

	categories := []models.Category{}
	if err := sqlx.SelectContext(ctx, r.q, &categories, query, userID); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PostgresRepository) GetCategory(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	found, err := r.getOne(ctx, &category, `SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND (user_id = $2 OR user_id IS NULL) AND deleted_at IS NULL`, categoryID, userID)
	if err != nil || !found {
		return nil, err
	}
	return &category, nil
}

// FindCategoryByName prefers the user's own category over a system one
func (r *PostgresRepository) FindCategoryByName(ctx context.Context, userID, name, categoryType string) (*models.Category, error) {
	var category models.Category
	found, err := r.getOne(ctx, &category, `SELECT `+categoryColumns+` FROM categories
		WHERE name = $1 AND type = $2 AND (user_id = $3 OR user_id IS NULL) AND deleted_at IS NULL
		ORDER BY user_id NULLS LAST, created_at
		LIMIT 1`, name, categoryType, userID)
	if err != nil || !found {
		return nil, err
	}
	return &category, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = utcNow()
	}
	category.IsDefault = category.UserID == nil

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		category.ID, category.UserID, category.Name, category.Type, category.Icon, category.Color, category.CreatedAt)
	return mapError(err)
}

// UpdateCategory only touches user-owned categories
func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	if category.UserID == nil {
		return ErrNotFound
	}
	found, err := r.getOne(ctx, category, `UPDATE categories
		SET name = $3, type = $4, icon = $5, color = $6
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		category.ID, *category.UserID, category.Name, category.Type, category.Icon, category.Color)
	if err != nil {
		return mapError(err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	err := r.execOne(ctx, `UPDATE categories SET deleted_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, categoryID, userID, utcNow())
	return deleted(err)
}

func (r *PostgresRepository) CountCategoryUsage(ctx context.Context, userID, categoryID string) (int64, int64, error) {
	var counts struct {
		Transactions int64 `db:"transactions"`
		Budgets      int64 `db:"budgets"`
	}
	_, err := r.getOne(ctx, &counts, `SELECT
		(SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND category_id = $2) AS transactions,
		(SELECT COUNT(*) FROM budgets WHERE user_id = $1 AND category_id = $2 AND deleted_at IS NULL) AS budgets`,
		userID, categoryID)
	return counts.Transactions, counts.Budgets, err
}

func (r *PostgresRepository) EnsureSystemCategories(ctx context.Context, categories []models.Category) error {
	for _, c := range categories {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO categories (id, user_id, name, type, icon, color, created_at)
			VALUES ($1, NULL, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Type, c.Icon, c.Color, c.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
