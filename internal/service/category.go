package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
)

func (s *DefaultService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, fail("list categories", err)
	}
	return categories, nil
}

func (s *DefaultService) CreateCategory(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.Category, error) {
	name, err := validateName("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := validateEntryType("category_type", req.Type); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:        uuid.New().String(),
		UserID:    &userID,
		Name:      name,
		Type:      req.Type,
		Icon:      trimmedOrNil(req.Icon),
		Color:     trimmedOrNil(req.Color),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fail("create category", err)
	}
	return category, nil
}

// UpdateCategory edits a user-owned category. System categories are
// shared and therefore read-only.
func (s *DefaultService) UpdateCategory(ctx context.Context, userID, categoryID string, req models.UpdateCategoryRequest) (*models.Category, error) {
	name := trimmedOrNil(req.Name)
	if name != nil {
		if _, err := validateName("name", *name); err != nil {
			return nil, err
		}
	}
	newType := trimmedOrNil(req.Type)
	if newType != nil {
		if err := validateEntryType("category_type", *newType); err != nil {
			return nil, err
		}
	}

	var category *models.Category
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		current, err := tx.GetCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("Category")
		}
		if current.UserID == nil {
			return apperror.Conflict("Default categories cannot be modified")
		}

		if newType != nil && *newType != current.Type {
			txns, budgets, err := tx.CountCategoryUsage(ctx, userID, categoryID)
			if err != nil {
				return err
			}
			if txns > 0 || budgets > 0 {
				return apperror.Conflict("Category type cannot change while used by %d transactions and %d budgets", txns, budgets)
			}
			current.Type = *newType
		}
		if name != nil {
			current.Name = *name
		}
		if req.Icon != nil {
			current.Icon = trimmedOrNil(req.Icon)
		}
		if req.Color != nil {
			current.Color = trimmedOrNil(req.Color)
		}

		if err := tx.UpdateCategory(ctx, current); err != nil {
			return err
		}
		category = current
		return nil
	})
	if err != nil {
		return nil, fail("update category", err)
	}
	return category, nil
}

// DeleteCategory soft deletes a category no transaction or budget uses
func (s *DefaultService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		current, err := tx.GetCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("Category")
		}
		if current.UserID == nil {
			return apperror.Conflict("Default categories cannot be deleted")
		}

		txns, budgets, err := tx.CountCategoryUsage(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if txns > 0 || budgets > 0 {
			return apperror.Conflict("Category is still used by %d transactions and %d budgets", txns, budgets)
		}

		ok, err := tx.SoftDeleteCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("Category")
		}
		return nil
	})
	if err != nil {
		return fail("delete category", err)
	}
	return nil
}

func (s *DefaultService) ResolveOrCreateCategory(ctx context.Context, userID, name, categoryType string) (*models.Category, error) {
	var category *models.Category
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		var err error
		category, err = s.resolveCategory(ctx, tx, userID, name, categoryType)
		return err
	})
	if err != nil {
		return nil, fail("resolve category", err)
	}
	return category, nil
}

// resolveCategory finds a visible category by exact name and type,
// creating a user-owned one when none exists.
func (s *DefaultService) resolveCategory(ctx context.Context, repo repository.Repository, userID, name, categoryType string) (*models.Category, error) {
	name, err := validateName("category_name", name)
	if err != nil {
		return nil, err
	}
	if err := validateEntryType("category_type", categoryType); err != nil {
		return nil, err
	}

	existing, err := repo.FindCategoryByName(ctx, userID, name, categoryType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	category := &models.Category{
		ID:        uuid.New().String(),
		UserID:    &userID,
		Name:      name,
		Type:      categoryType,
		CreatedAt: s.now(),
	}
	if err := repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Category created from name", "user_id", userID, "category_id", category.ID, "name", name)
	return category, nil
}
