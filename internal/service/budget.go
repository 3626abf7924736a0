package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// computeUsage decorates a budget with the spend of its period
func computeUsage(b models.Budget, used decimal.Decimal) models.BudgetUsage {
	usage := models.BudgetUsage{
		Budget:          b,
		UsedAmount:      used,
		RemainingAmount: b.Amount.Sub(used),
		IsOverBudget:    used.GreaterThan(b.Amount),
	}
	if b.Amount.IsPositive() {
		usage.UsagePercentage = used.Div(b.Amount).Mul(hundred).InexactFloat64()
	}
	if b.AlertThreshold != nil {
		usage.ShouldAlert = usage.UsagePercentage >= *b.AlertThreshold
	}
	return usage
}

func (s *DefaultService) usageOf(ctx context.Context, repo repository.Repository, b models.Budget) (models.BudgetUsage, error) {
	used, err := repo.SumExpenses(ctx, b.UserID, b.Month, b.Year, b.CategoryID)
	if err != nil {
		return models.BudgetUsage{}, err
	}
	return computeUsage(b, used), nil
}

func validatePeriod(prefix string, month, year int) error {
	if err := validateMonth(prefix+"month", month); err != nil {
		return err
	}
	return validateYear(prefix+"year", year)
}

// budgetCategory checks that a budget category is a visible expense category
func budgetCategory(ctx context.Context, repo repository.Repository, userID, categoryID string) (*models.Category, error) {
	category, err := repo.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NotFound("Category")
	}
	if category.Type != models.TypeExpense {
		return nil, apperror.Validation("budget category must be an expense category")
	}
	return category, nil
}

func (s *DefaultService) ListBudgets(ctx context.Context, userID string, month, year *int) ([]models.BudgetUsage, error) {
	if month != nil {
		if err := validateMonth("month", *month); err != nil {
			return nil, err
		}
	}
	if year != nil {
		if err := validateYear("year", *year); err != nil {
			return nil, err
		}
	}

	budgets, err := s.repo.ListBudgets(ctx, userID, repository.BudgetFilter{Month: month, Year: year})
	if err != nil {
		return nil, fail("list budgets", err)
	}
	usages := make([]models.BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		usage, err := s.usageOf(ctx, s.repo, b)
		if err != nil {
			return nil, fail("budget usage", err)
		}
		usages = append(usages, usage)
	}
	return usages, nil
}

func (s *DefaultService) GetBudget(ctx context.Context, userID, budgetID string) (*models.BudgetUsage, error) {
	budget, err := s.repo.GetBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, fail("get budget", err)
	}
	if budget == nil {
		return nil, apperror.NotFound("Budget")
	}
	usage, err := s.usageOf(ctx, s.repo, *budget)
	if err != nil {
		return nil, fail("budget usage", err)
	}
	return &usage, nil
}

// CreateBudget rejects a second live budget for the same category (or
// overall) and period.
func (s *DefaultService) CreateBudget(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.BudgetUsage, error) {
	if req.Amount == nil {
		return nil, apperror.Validation("amount is required")
	}
	if err := validateMoney("amount", *req.Amount, true); err != nil {
		return nil, err
	}
	if err := validatePeriod("", req.Month, req.Year); err != nil {
		return nil, err
	}
	if err := validateThreshold(req.AlertThreshold); err != nil {
		return nil, err
	}

	threshold := defaultAlertThreshold
	if req.AlertThreshold != nil {
		threshold = *req.AlertThreshold
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	budget := &models.Budget{
		ID:             uuid.New().String(),
		UserID:         userID,
		CategoryID:     req.CategoryID,
		Amount:         *req.Amount,
		Month:          req.Month,
		Year:           req.Year,
		IsActive:       isActive,
		AlertThreshold: &threshold,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var usage models.BudgetUsage
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		if budget.CategoryID != nil {
			category, err := budgetCategory(ctx, tx, userID, *budget.CategoryID)
			if err != nil {
				return err
			}
			budget.CategoryName = &category.Name
		}

		existing, err := tx.FindBudget(ctx, userID, budget.CategoryID, budget.Month, budget.Year, "")
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("Budget already exists for %02d/%d", budget.Month, budget.Year)
		}
		if err := tx.CreateBudget(ctx, budget); err != nil {
			return err
		}

		usage, err = s.usageOf(ctx, tx, *budget)
		return err
	})
	if err != nil {
		return nil, conflictOr("create budget", err, "Budget already exists for this period")
	}
	return &usage, nil
}

// UpdateBudget re-checks period uniqueness only when the merged category,
// month or year differ from the stored budget.
func (s *DefaultService) UpdateBudget(ctx context.Context, userID, budgetID string, req models.UpdateBudgetRequest) (*models.BudgetUsage, error) {
	if req.Amount != nil {
		if err := validateMoney("amount", *req.Amount, true); err != nil {
			return nil, err
		}
	}
	if req.Month != nil {
		if err := validateMonth("month", *req.Month); err != nil {
			return nil, err
		}
	}
	if req.Year != nil {
		if err := validateYear("year", *req.Year); err != nil {
			return nil, err
		}
	}
	if err := validateThreshold(req.AlertThreshold); err != nil {
		return nil, err
	}

	var usage models.BudgetUsage
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		current, err := tx.GetBudget(ctx, userID, budgetID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("Budget")
		}

		next := *current
		if req.CategoryID != nil {
			category, err := budgetCategory(ctx, tx, userID, *req.CategoryID)
			if err != nil {
				return err
			}
			next.CategoryID = &category.ID
			next.CategoryName = &category.Name
		}
		if req.Amount != nil {
			next.Amount = *req.Amount
		}
		if req.Month != nil {
			next.Month = *req.Month
		}
		if req.Year != nil {
			next.Year = *req.Year
		}
		if req.IsActive != nil {
			next.IsActive = *req.IsActive
		}
		if req.AlertThreshold != nil {
			threshold := *req.AlertThreshold
			next.AlertThreshold = &threshold
		}

		periodChanged := next.Month != current.Month || next.Year != current.Year ||
			!equalIDs(next.CategoryID, current.CategoryID)
		if periodChanged {
			existing, err := tx.FindBudget(ctx, userID, next.CategoryID, next.Month, next.Year, budgetID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperror.Conflict("Budget already exists for %02d/%d", next.Month, next.Year)
			}
		}

		next.UpdatedAt = s.now()
		if err := tx.UpdateBudget(ctx, &next); err != nil {
			return err
		}
		usage, err = s.usageOf(ctx, tx, next)
		return err
	})
	if err != nil {
		return nil, conflictOr("update budget", err, "Budget already exists for this period")
	}
	return &usage, nil
}

func (s *DefaultService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	ok, err := s.repo.SoftDeleteBudget(ctx, userID, budgetID)
	if err != nil {
		return fail("delete budget", err)
	}
	if !ok {
		return apperror.NotFound("Budget")
	}
	return nil
}

// CopyBudgets seeds an empty target period with the budgets of the source
// period. Nothing is written unless every copy succeeds.
func (s *DefaultService) CopyBudgets(ctx context.Context, userID string, req models.CopyBudgetRequest) ([]models.BudgetUsage, error) {
	if err := validatePeriod("source_", req.SourceMonth, req.SourceYear); err != nil {
		return nil, err
	}
	if err := validatePeriod("target_", req.TargetMonth, req.TargetYear); err != nil {
		return nil, err
	}
	if req.SourceMonth == req.TargetMonth && req.SourceYear == req.TargetYear {
		return nil, apperror.Validation("source and target periods must differ")
	}

	var usages []models.BudgetUsage
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		source, err := tx.ListBudgets(ctx, userID, repository.BudgetFilter{Month: &req.SourceMonth, Year: &req.SourceYear})
		if err != nil {
			return err
		}
		if len(source) == 0 {
			return apperror.NotFound("Source budgets")
		}
		target, err := tx.ListBudgets(ctx, userID, repository.BudgetFilter{Month: &req.TargetMonth, Year: &req.TargetYear})
		if err != nil {
			return err
		}
		if len(target) > 0 {
			return apperror.Validation("target period %02d/%d already has %d budgets", req.TargetMonth, req.TargetYear, len(target))
		}

		now := s.now()
		usages = make([]models.BudgetUsage, 0, len(source))
		for _, src := range source {
			copied := src
			copied.ID = uuid.New().String()
			copied.Month = req.TargetMonth
			copied.Year = req.TargetYear
			copied.CreatedAt = now
			copied.UpdatedAt = now
			if err := tx.CreateBudget(ctx, &copied); err != nil {
				return err
			}
			usage, err := s.usageOf(ctx, tx, copied)
			if err != nil {
				return err
			}
			usages = append(usages, usage)
		}
		return nil
	})
	if err != nil {
		return nil, conflictOr("copy budgets", err, "Budget already exists for the target period")
	}

	s.logger.InfoContext(ctx, "Budgets copied", "user_id", userID, "count", len(usages))
	return usages, nil
}

func equalIDs(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
