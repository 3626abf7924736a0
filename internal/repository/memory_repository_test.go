package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, repo Repository, email, username string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: username, Name: "Test User", Password: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestMemoryUserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seedUser(t, repo, "alice@example.com", "alice")

	err := repo.CreateUser(ctx, &models.User{Email: "ALICE@example.com", Username: "other"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = repo.CreateUser(ctx, &models.User{Email: "new@example.com", Username: "Alice"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	u, err := repo.GetUserByIdentifier(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	u2, err := repo.GetUserByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)

	missing, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "bob@example.com", "bob")

	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx Repository) error {
		require.NoError(t, tx.AdjustWalletBalance(ctx, user.ID, wallet.ID, decimal.NewFromInt(500)))
		require.NoError(t, tx.CreateTransaction(ctx, &models.Transaction{
			UserID: user.ID, WalletID: wallet.ID, Type: models.TypeIncome,
			Amount: decimal.NewFromInt(500), Date: models.DateOf(time.Now()),
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.GetWallet(ctx, user.ID, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero(), "balance change must be rolled back")

	n, err := repo.CountTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryWithTxSerializes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "carol@example.com", "carol")
	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithTx(ctx, func(tx Repository) error {
				w, err := tx.GetWallet(ctx, user.ID, wallet.ID)
				if err != nil {
					return err
				}
				return tx.AdjustWalletBalance(ctx, user.ID, w.ID, decimal.NewFromInt(10))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetWallet(ctx, user.ID, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(500)))
}

func TestMemorySingleDefaultWallet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "dan@example.com", "dan")

	first := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, first))

	second := &models.Wallet{UserID: user.ID, Name: "Bank", Type: models.WalletBank, IsDefault: true}
	assert.ErrorIs(t, repo.CreateWallet(ctx, second), ErrAlreadyExists)

	require.NoError(t, repo.ClearDefaultWallets(ctx, user.ID, ""))
	require.NoError(t, repo.CreateWallet(ctx, second))

	wallets, err := repo.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, second.ID, wallets[0].ID, "default wallet listed first")

	ok, err := repo.SoftDeleteWallet(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SoftDeleteWallet(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second soft delete matches nothing")

	def, err := repo.GetDefaultWallet(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestMemoryCategoryVisibility(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	alice := seedUser(t, repo, "a@example.com", "alice")
	bob := seedUser(t, repo, "b@example.com", "bob")

	require.NoError(t, repo.EnsureSystemCategories(ctx, models.SystemCategories(time.Now())))
	require.NoError(t, repo.EnsureSystemCategories(ctx, models.SystemCategories(time.Now())))

	own := &models.Category{UserID: &alice.ID, Name: "Coffee", Type: models.TypeExpense}
	require.NoError(t, repo.CreateCategory(ctx, own))

	aliceCats, err := repo.ListCategories(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceCats, 13)

	bobCats, err := repo.ListCategories(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobCats, 12)

	hidden, err := repo.GetCategory(ctx, bob.ID, own.ID)
	require.NoError(t, err)
	assert.Nil(t, hidden)

	food, err := repo.FindCategoryByName(ctx, bob.ID, "Food", models.TypeExpense)
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.True(t, food.IsDefault)

	none, err := repo.FindCategoryByName(ctx, bob.ID, "Food", models.TypeIncome)
	require.NoError(t, err)
	assert.Nil(t, none)

	ok, err := repo.SoftDeleteCategory(ctx, bob.ID, food.ID)
	require.NoError(t, err)
	assert.False(t, ok, "system categories cannot be deleted")
}

func TestMemoryTransactionListing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "e@example.com", "erin")
	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i, day := range []int{5, 7, 7, 1} {
		txn := &models.Transaction{
			UserID: user.ID, WalletID: wallet.ID, Type: models.TypeExpense,
			Amount: decimal.NewFromInt(int64(100 * (i + 1))), Date: models.NewDate(2024, 3, day),
			CreatedAt: created, UpdatedAt: created,
		}
		require.NoError(t, repo.CreateTransaction(ctx, txn))
		ids = append(ids, txn.ID)
	}

	all, total, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, []string{ids[2], ids[1], ids[0], ids[3]}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})
	require.NotNil(t, all[0].WalletName)
	assert.Equal(t, "Cash", *all[0].WalletName)

	page, total, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total, "total ignores pagination")
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)

	start, end := models.NewDate(2024, 3, 2), models.NewDate(2024, 3, 6)
	ranged, total, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ids[0], ranged[0].ID)

	beyond, total, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilter{Offset: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Empty(t, beyond)

	sum, err := repo.SumExpenses(ctx, user.ID, 3, 2024, nil)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(1000)))

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "someone-else", ids[0]), ErrNotFound)
	require.NoError(t, repo.DeleteTransaction(ctx, user.ID, ids[0]))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, user.ID, ids[0]), ErrNotFound)
}

func TestMemoryBudgetUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "f@example.com", "frank")
	food := strPtr("00000000-0000-4000-8000-000000000005")

	overall := &models.Budget{UserID: user.ID, Amount: decimal.NewFromInt(100), Month: 1, Year: 2024, IsActive: true}
	require.NoError(t, repo.CreateBudget(ctx, overall))

	scoped := &models.Budget{UserID: user.ID, CategoryID: food, Amount: decimal.NewFromInt(50), Month: 1, Year: 2024, IsActive: true}
	require.NoError(t, repo.CreateBudget(ctx, scoped), "null category is a distinct bucket")

	dup := &models.Budget{UserID: user.ID, Amount: decimal.NewFromInt(70), Month: 1, Year: 2024}
	assert.ErrorIs(t, repo.CreateBudget(ctx, dup), ErrAlreadyExists)

	found, err := repo.FindBudget(ctx, user.ID, nil, 1, 2024, "")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, overall.ID, found.ID)

	found, err = repo.FindBudget(ctx, user.ID, nil, 1, 2024, overall.ID)
	require.NoError(t, err)
	assert.Nil(t, found, "excluded id is ignored")

	scoped.CategoryID = nil
	assert.ErrorIs(t, repo.UpdateBudget(ctx, scoped), ErrAlreadyExists)

	ok, err := repo.SoftDeleteBudget(ctx, user.ID, overall.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, repo.CreateBudget(ctx, dup), "deleted budgets free their bucket")

	month := 1
	budgets, err := repo.ListBudgets(ctx, user.ID, BudgetFilter{Month: &month})
	require.NoError(t, err)
	assert.Len(t, budgets, 2)
}

func TestMemoryDashboardAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo, "g@example.com", "gina")
	require.NoError(t, repo.EnsureSystemCategories(ctx, models.SystemCategories(time.Now())))
	food := "00000000-0000-4000-8000-000000000005"

	wallet := &models.Wallet{UserID: user.ID, Name: "Cash", Type: models.WalletCash, IsDefault: true, Balance: decimal.NewFromInt(1000)}
	require.NoError(t, repo.CreateWallet(ctx, wallet))

	add := func(typ string, amount int64, date models.Date, category *string) {
		require.NoError(t, repo.CreateTransaction(ctx, &models.Transaction{
			UserID: user.ID, WalletID: wallet.ID, Type: typ, Amount: decimal.NewFromInt(amount),
			Date: date, CategoryID: category,
		}))
	}
	add(models.TypeIncome, 500, models.NewDate(2024, 1, 10), nil)
	add(models.TypeExpense, 200, models.NewDate(2024, 2, 3), &food)
	add(models.TypeExpense, 50, models.NewDate(2024, 2, 4), nil)

	total, err := repo.TotalBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1000)))

	since := models.NewDate(2024, 2, 1)
	expense, err := repo.SumTransactions(ctx, user.ID, models.TypeExpense, &since)
	require.NoError(t, err)
	assert.True(t, expense.Equal(decimal.NewFromInt(250)))

	monthly, err := repo.MonthlyTotals(ctx, user.ID, models.NewDate(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Month)
	assert.True(t, monthly[1].Expense.Equal(decimal.NewFromInt(250)))

	top, err := repo.TopExpenseCategories(ctx, user.ID, since, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Food", top[0].CategoryName)
	assert.Equal(t, "Uncategorized", top[1].CategoryName)
}
