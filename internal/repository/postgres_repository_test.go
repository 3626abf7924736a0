package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/config"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/rongwang/fintrack-server/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPostgres connects to the test database named by TEST_DB_NAME.
// Set RUN_POSTGRES_INTEGRATION=true to enable.
func setupPostgres(t *testing.T) (*repository.PostgresRepository, *sqlx.DB) {
	t.Helper()
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run PostgreSQL integration tests")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.DBName = cfg.Database.TestDBName

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.SetupDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to set up test database")

	cleanup(t, db)
	t.Cleanup(func() {
		cleanup(t, db)
		db.Close()
	})
	return repository.NewPostgresRepository(db), db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	for _, table := range []string{"budgets", "transactions", "categories", "wallets", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

func createUser(t *testing.T, repo repository.Repository) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{Email: suffix + "@example.com", Username: "user" + suffix, Name: "PG User", Password: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestPostgresUniqueEmail(t *testing.T) {
	repo, _ := setupPostgres(t)
	user := createUser(t, repo)

	err := repo.CreateUser(context.Background(), &models.User{Email: user.Email, Username: "different", Name: "x", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestPostgresBalanceAdjustmentRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupPostgres(t)
	user := createUser(t, repo)

	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true, Balance: decimal.NewFromInt(100)}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	err := repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.AdjustWalletBalance(ctx, user.ID, wallet.ID, decimal.NewFromInt(-40)); err != nil {
			return err
		}
		// second default violates the partial unique index
		return tx.CreateWallet(ctx, &models.Wallet{UserID: user.ID, Name: "Bank", Type: models.WalletBank, IsDefault: true})
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	stored, err := repo.GetWallet(ctx, user.ID, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(100)))
}

func TestPostgresTransactionsAndBudgets(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupPostgres(t)
	user := createUser(t, repo)
	require.NoError(t, repo.EnsureSystemCategories(ctx, models.SystemCategories(time.Now().UTC())))

	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	food, err := repo.FindCategoryByName(ctx, user.ID, "Food", models.TypeExpense)
	require.NoError(t, err)
	require.NotNil(t, food)

	txn := &models.Transaction{
		UserID: user.ID, WalletID: wallet.ID, CategoryID: &food.ID, Type: models.TypeExpense,
		Amount: decimal.RequireFromString("12.50"), Date: models.NewDate(2024, 1, 15),
	}
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	got, err := repo.GetTransaction(ctx, user.ID, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Food", *got.CategoryName)
	assert.Equal(t, "2024-01-15", got.Date.String())
	assert.True(t, got.Amount.Equal(txn.Amount))

	sum, err := repo.SumExpenses(ctx, user.ID, 1, 2024, &food.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("12.50")))

	budget := &models.Budget{UserID: user.ID, Amount: decimal.NewFromInt(100), Month: 1, Year: 2024, IsActive: true}
	require.NoError(t, repo.CreateBudget(ctx, budget))
	dup := &models.Budget{UserID: user.ID, Amount: decimal.NewFromInt(5), Month: 1, Year: 2024, IsActive: true}
	assert.ErrorIs(t, repo.CreateBudget(ctx, dup), repository.ErrAlreadyExists)

	found, err := repo.FindBudget(ctx, user.ID, nil, 1, 2024, "")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, budget.ID, found.ID)

	txns, budgets, err := repo.CountCategoryUsage(ctx, user.ID, food.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, txns)
	assert.EqualValues(t, 0, budgets)
}

func TestPostgresCategoryDeleteWaitsForPendingTransaction(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupPostgres(t)
	user := createUser(t, repo)
	svc := service.NewDefaultService(service.Deps{Repo: repo})

	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, wallet))
	category := &models.Category{UserID: &user.ID, Name: "Hobbies", Type: models.TypeExpense}
	require.NoError(t, repo.CreateCategory(ctx, category))

	deleted := make(chan error, 1)
	err := repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, user.ID); err != nil {
			return err
		}
		txn := &models.Transaction{
			UserID: user.ID, WalletID: wallet.ID, CategoryID: &category.ID, Type: models.TypeExpense,
			Amount: decimal.NewFromInt(20), Date: models.NewDate(2024, 3, 1),
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		go func() {
			deleted <- svc.DeleteCategory(ctx, user.ID, category.ID)
		}()

		// The delete must not finish while this transaction holds the user lock
		select {
		case err := <-deleted:
			t.Errorf("category delete finished before the transaction committed: %v", err)
		case <-time.After(300 * time.Millisecond):
		}
		return nil
	})
	require.NoError(t, err)

	select {
	case err := <-deleted:
		assert.True(t, apperror.Is(err, apperror.KindConflict), "expected conflict, got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("category delete did not finish")
	}

	got, err := repo.GetCategory(ctx, user.ID, category.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "category must stay live while a transaction uses it")
}
