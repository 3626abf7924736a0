package service

import (
	"context"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	statsMonths      = 12
	topCategoryLimit = 10
)

// GetDashboardSummary runs the independent aggregates concurrently
func (s *DefaultService) GetDashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}
	monthStart := s.monthStart(0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.TotalBalance, err = s.repo.TotalBalance(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalIncome, err = s.repo.SumTransactions(gctx, userID, models.TypeIncome, nil)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalExpense, err = s.repo.SumTransactions(gctx, userID, models.TypeExpense, nil)
		return err
	})
	g.Go(func() (err error) {
		summary.MonthIncome, err = s.repo.SumTransactions(gctx, userID, models.TypeIncome, &monthStart)
		return err
	})
	g.Go(func() (err error) {
		summary.MonthExpense, err = s.repo.SumTransactions(gctx, userID, models.TypeExpense, &monthStart)
		return err
	})
	g.Go(func() (err error) {
		summary.WalletCount, err = s.repo.CountWallets(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		summary.TransactionCount, err = s.repo.CountTransactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fail("dashboard summary", err)
	}
	return summary, nil
}

// GetMonthlyStats returns income and expense for each of the last twelve
// months, oldest first. Months without transactions are zero.
func (s *DefaultService) GetMonthlyStats(ctx context.Context, userID string) ([]models.MonthlyStat, error) {
	since := s.monthStart(1 - statsMonths)
	rows, err := s.repo.MonthlyTotals(ctx, userID, since)
	if err != nil {
		return nil, fail("monthly stats", err)
	}

	byMonth := make(map[string]models.MonthlyStat, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row
	}
	stats := make([]models.MonthlyStat, 0, statsMonths)
	for i := 0; i < statsMonths; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		stat, ok := byMonth[key]
		if !ok {
			stat = models.MonthlyStat{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// GetCategoryBreakdown returns the top expense categories of the current month
func (s *DefaultService) GetCategoryBreakdown(ctx context.Context, userID string) ([]models.CategoryStat, error) {
	stats, err := s.repo.TopExpenseCategories(ctx, userID, s.monthStart(0), topCategoryLimit)
	if err != nil {
		return nil, fail("category breakdown", err)
	}
	return stats, nil
}

