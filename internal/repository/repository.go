package repository

import (
	"context"
	"errors"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a uniqueness constraint is violated
	ErrAlreadyExists = errors.New("record already exists")
)

// BudgetFilter narrows budget listings; nil fields match everything
type BudgetFilter struct {
	Month *int
	Year  *int
}

// Repository interface defines the methods that any repository implementation must satisfy.
// Getters return (nil, nil) when nothing matches.
type Repository interface {
	// WithTx runs fn inside one unit of work. fn must only use the
	// repository it is given; any error rolls every write back.
	WithTx(ctx context.Context, fn func(Repository) error) error
	// LockUser serializes units of work of one user until commit
	LockUser(ctx context.Context, userID string) error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// Wallet operations
	ListWallets(ctx context.Context, userID string) ([]models.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	GetDefaultWallet(ctx context.Context, userID string) (*models.Wallet, error)
	CountWallets(ctx context.Context, userID string) (int64, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	UpdateWallet(ctx context.Context, wallet *models.Wallet) error
	ClearDefaultWallets(ctx context.Context, userID, exceptID string) error
	AdjustWalletBalance(ctx context.Context, userID, walletID string, delta decimal.Decimal) error
	SoftDeleteWallet(ctx context.Context, userID, walletID string) (bool, error)
	CountWalletTransactions(ctx context.Context, userID, walletID string) (int64, error)

	// Category operations
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategory(ctx context.Context, userID, categoryID string) (*models.Category, error)
	FindCategoryByName(ctx context.Context, userID, name, categoryType string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	SoftDeleteCategory(ctx context.Context, userID, categoryID string) (bool, error)
	CountCategoryUsage(ctx context.Context, userID, categoryID string) (transactions int64, budgets int64, err error)
	EnsureSystemCategories(ctx context.Context, categories []models.Category) error

	// Transaction operations
	ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	SumExpenses(ctx context.Context, userID string, month, year int, categoryID *string) (decimal.Decimal, error)

	// Budget operations
	ListBudgets(ctx context.Context, userID string, filter BudgetFilter) ([]models.Budget, error)
	GetBudget(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	FindBudget(ctx context.Context, userID string, categoryID *string, month, year int, excludeID string) (*models.Budget, error)
	CreateBudget(ctx context.Context, budget *models.Budget) error
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	SoftDeleteBudget(ctx context.Context, userID, budgetID string) (bool, error)

	// Dashboard aggregates
	TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	SumTransactions(ctx context.Context, userID, txnType string, since *models.Date) (decimal.Decimal, error)
	CountTransactions(ctx context.Context, userID string) (int64, error)
	MonthlyTotals(ctx context.Context, userID string, since models.Date) ([]models.MonthlyStat, error)
	TopExpenseCategories(ctx context.Context, userID string, since models.Date, limit int) ([]models.CategoryStat, error)
}

func sameCategory(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
