package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

const uncategorized = "Uncategorized"

type memoryState struct {
	users        map[string]models.User
	wallets      map[string]models.Wallet
	categories   map[string]models.Category
	transactions map[string]models.Transaction
	budgets      map[string]models.Budget
	order        map[string]int64 // insertion sequence, breaks timestamp ties
	seq          int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:        map[string]models.User{},
		wallets:      map[string]models.Wallet{},
		categories:   map[string]models.Category{},
		transactions: map[string]models.Transaction{},
		budgets:      map[string]models.Budget{},
		order:        map[string]int64{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		users:        make(map[string]models.User, len(s.users)),
		wallets:      make(map[string]models.Wallet, len(s.wallets)),
		categories:   make(map[string]models.Category, len(s.categories)),
		transactions: make(map[string]models.Transaction, len(s.transactions)),
		budgets:      make(map[string]models.Budget, len(s.budgets)),
		order:        make(map[string]int64, len(s.order)),
		seq:          s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	return c
}

func (s *memoryState) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

// MemoryRepository implements Repository in process memory. Units of work
// are serialized by a single mutex and rolled back from a snapshot.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:    &sync.Mutex{},
		state: newMemoryState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.mu.Lock()
	snapshot := r.state.clone()
	committed := false
	defer func() {
		if !committed {
			*r.state = *snapshot
		}
		r.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	txRepo := &MemoryRepository{mu: r.mu, state: r.state, inTx: true, now: r.now}
	if err := fn(txRepo); err != nil {
		return err
	}
	committed = true
	return nil
}

// LockUser is a no-op: units of work are already serialized
func (r *MemoryRepository) LockUser(ctx context.Context, userID string) error {
	defer r.lock()()
	if _, ok := r.state.users[userID]; !ok {
		return ErrNotFound
	}
	return nil
}

// User repository methods
func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	defer r.lock()()

	for _, u := range r.state.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return ErrAlreadyExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
		user.UpdatedAt = user.CreatedAt
	}
	r.state.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	defer r.lock()()
	if u, ok := r.state.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findUser(func(u models.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (r *MemoryRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.findUser(func(u models.User) bool {
		return strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier)
	}), nil
}

func (r *MemoryRepository) findUser(match func(models.User) bool) *models.User {
	defer r.lock()()
	for _, u := range r.state.users {
		if match(u) {
			found := u
			return &found
		}
	}
	return nil
}

// Wallet repository methods
func (r *MemoryRepository) ListWallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	defer r.lock()()

	wallets := []models.Wallet{}
	for _, w := range r.state.wallets {
		if w.UserID == userID && w.DeletedAt == nil {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool {
		a, b := wallets[i], wallets[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.state.order[a.ID] > r.state.order[b.ID]
	})
	return wallets, nil
}

func (r *MemoryRepository) liveWallet(userID, walletID string) (models.Wallet, bool) {
	w, ok := r.state.wallets[walletID]
	if !ok || w.UserID != userID || w.DeletedAt != nil {
		return models.Wallet{}, false
	}
	return w, true
}

func (r *MemoryRepository) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	defer r.lock()()
	if w, ok := r.liveWallet(userID, walletID); ok {
		return &w, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetDefaultWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	defer r.lock()()
	for _, w := range r.state.wallets {
		if w.UserID == userID && w.DeletedAt == nil && w.IsDefault {
			found := w
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CountWallets(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, w := range r.state.wallets {
		if w.UserID == userID && w.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) hasOtherDefault(userID, walletID string) bool {
	for _, w := range r.state.wallets {
		if w.UserID == userID && w.ID != walletID && w.DeletedAt == nil && w.IsDefault {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	defer r.lock()()

	if wallet.IsDefault && r.hasOtherDefault(wallet.UserID, wallet.ID) {
		return ErrAlreadyExists
	}
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = r.now()
		wallet.UpdatedAt = wallet.CreatedAt
	}
	r.state.wallets[wallet.ID] = *wallet
	r.state.next(wallet.ID)
	return nil
}

func (r *MemoryRepository) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	defer r.lock()()

	stored, ok := r.liveWallet(wallet.UserID, wallet.ID)
	if !ok {
		return ErrNotFound
	}
	if wallet.IsDefault && r.hasOtherDefault(wallet.UserID, wallet.ID) {
		return ErrAlreadyExists
	}

	stored.Name = wallet.Name
	stored.Type = wallet.Type
	stored.CreditLimit = wallet.CreditLimit
	stored.Icon = wallet.Icon
	stored.Color = wallet.Color
	stored.IsDefault = wallet.IsDefault
	stored.UpdatedAt = r.now()
	r.state.wallets[stored.ID] = stored

	*wallet = stored
	return nil
}

func (r *MemoryRepository) ClearDefaultWallets(ctx context.Context, userID, exceptID string) error {
	defer r.lock()()
	now := r.now()
	for id, w := range r.state.wallets {
		if w.UserID == userID && w.ID != exceptID && w.DeletedAt == nil && w.IsDefault {
			w.IsDefault = false
			w.UpdatedAt = now
			r.state.wallets[id] = w
		}
	}
	return nil
}

// AdjustWalletBalance also applies to soft-deleted wallets so that
// historical transactions stay reversible.
func (r *MemoryRepository) AdjustWalletBalance(ctx context.Context, userID, walletID string, delta decimal.Decimal) error {
	defer r.lock()()
	w, ok := r.state.wallets[walletID]
	if !ok || w.UserID != userID {
		return ErrNotFound
	}
	w.Balance = w.Balance.Add(delta)
	w.UpdatedAt = r.now()
	r.state.wallets[walletID] = w
	return nil
}

func (r *MemoryRepository) SoftDeleteWallet(ctx context.Context, userID, walletID string) (bool, error) {
	defer r.lock()()
	w, ok := r.liveWallet(userID, walletID)
	if !ok {
		return false, nil
	}
	now := r.now()
	w.DeletedAt = &now
	w.UpdatedAt = now
	r.state.wallets[walletID] = w
	return true, nil
}

func (r *MemoryRepository) CountWalletTransactions(ctx context.Context, userID, walletID string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, t := range r.state.transactions {
		if t.UserID == userID && t.WalletID == walletID {
			n++
		}
	}
	return n, nil
}

// Category repository methods
func visibleTo(c models.Category, userID string) bool {
	return c.DeletedAt == nil && (c.UserID == nil || *c.UserID == userID)
}

func (r *MemoryRepository) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	defer r.lock()()
	categories := []models.Category{}
	for _, c := range r.state.categories {
		if visibleTo(c, userID) {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *MemoryRepository) GetCategory(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	defer r.lock()()
	if c, ok := r.state.categories[categoryID]; ok && visibleTo(c, userID) {
		return &c, nil
	}
	return nil, nil
}

// FindCategoryByName prefers the user's own category over a system one
func (r *MemoryRepository) FindCategoryByName(ctx context.Context, userID, name, categoryType string) (*models.Category, error) {
	defer r.lock()()
	var found *models.Category
	for _, c := range r.state.categories {
		if !visibleTo(c, userID) || c.Name != name || c.Type != categoryType {
			continue
		}
		match := c
		if c.UserID != nil {
			return &match, nil
		}
		found = &match
	}
	return found, nil
}

func (r *MemoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	defer r.lock()()
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = r.now()
	}
	category.IsDefault = category.UserID == nil
	r.state.categories[category.ID] = *category
	return nil
}

func (r *MemoryRepository) ownedCategory(userID, categoryID string) (models.Category, bool) {
	c, ok := r.state.categories[categoryID]
	if !ok || c.DeletedAt != nil || c.UserID == nil || *c.UserID != userID {
		return models.Category{}, false
	}
	return c, true
}

func (r *MemoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	defer r.lock()()
	if category.UserID == nil {
		return ErrNotFound
	}
	stored, ok := r.ownedCategory(*category.UserID, category.ID)
	if !ok {
		return ErrNotFound
	}
	stored.Name = category.Name
	stored.Type = category.Type
	stored.Icon = category.Icon
	stored.Color = category.Color
	r.state.categories[stored.ID] = stored
	*category = stored
	return nil
}

func (r *MemoryRepository) SoftDeleteCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	defer r.lock()()
	c, ok := r.ownedCategory(userID, categoryID)
	if !ok {
		return false, nil
	}
	now := r.now()
	c.DeletedAt = &now
	r.state.categories[categoryID] = c
	return true, nil
}

func (r *MemoryRepository) CountCategoryUsage(ctx context.Context, userID, categoryID string) (int64, int64, error) {
	defer r.lock()()
	var txns, budgets int64
	for _, t := range r.state.transactions {
		if t.UserID == userID && t.CategoryID != nil && *t.CategoryID == categoryID {
			txns++
		}
	}
	for _, b := range r.state.budgets {
		if b.UserID == userID && b.DeletedAt == nil && b.CategoryID != nil && *b.CategoryID == categoryID {
			budgets++
		}
	}
	return txns, budgets, nil
}

func (r *MemoryRepository) EnsureSystemCategories(ctx context.Context, categories []models.Category) error {
	defer r.lock()()
	for _, c := range categories {
		if _, exists := r.state.categories[c.ID]; exists {
			continue
		}
		c.UserID = nil
		c.IsDefault = true
		r.state.categories[c.ID] = c
	}
	return nil
}

// Transaction repository methods
func (r *MemoryRepository) withNames(t models.Transaction) models.Transaction {
	if w, ok := r.state.wallets[t.WalletID]; ok {
		name := w.Name
		t.WalletName = &name
	}
	t.CategoryName = nil
	if t.CategoryID != nil {
		if c, ok := r.state.categories[*t.CategoryID]; ok {
			name := c.Name
			t.CategoryName = &name
		}
	}
	return t
}

func matchesFilter(t models.Transaction, f models.TransactionFilter) bool {
	if f.WalletID != nil && t.WalletID != *f.WalletID {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}
	return true
}

func (r *MemoryRepository) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	defer r.lock()()

	matched := []models.Transaction{}
	for _, t := range r.state.transactions {
		if t.UserID == userID && matchesFilter(t, filter) {
			matched = append(matched, r.withNames(t))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.state.order[a.ID] > r.state.order[b.ID]
	})

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []models.Transaction{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *MemoryRepository) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	defer r.lock()()
	t, ok := r.state.transactions[transactionID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	t = r.withNames(t)
	return &t, nil
}

func (r *MemoryRepository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	defer r.lock()()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = r.now()
		txn.UpdatedAt = txn.CreatedAt
	}
	stored := *txn
	stored.WalletName, stored.CategoryName = nil, nil
	r.state.transactions[txn.ID] = stored
	r.state.next(txn.ID)
	return nil
}

func (r *MemoryRepository) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	defer r.lock()()
	stored, ok := r.state.transactions[txn.ID]
	if !ok || stored.UserID != txn.UserID {
		return ErrNotFound
	}
	stored.WalletID = txn.WalletID
	stored.CategoryID = txn.CategoryID
	stored.Type = txn.Type
	stored.Amount = txn.Amount
	stored.Description = txn.Description
	stored.Date = txn.Date
	stored.UpdatedAt = r.now()
	r.state.transactions[stored.ID] = stored
	return nil
}

func (r *MemoryRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	defer r.lock()()
	t, ok := r.state.transactions[transactionID]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.state.transactions, transactionID)
	delete(r.state.order, transactionID)
	return nil
}

func (r *MemoryRepository) SumExpenses(ctx context.Context, userID string, month, year int, categoryID *string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, t := range r.state.transactions {
		if t.UserID != userID || t.Type != models.TypeExpense {
			continue
		}
		if int(t.Date.Month()) != month || t.Date.Year() != year {
			continue
		}
		if categoryID != nil && (t.CategoryID == nil || *t.CategoryID != *categoryID) {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

// Budget repository methods
func (r *MemoryRepository) budgetWithName(b models.Budget) models.Budget {
	b.CategoryName = nil
	if b.CategoryID != nil {
		if c, ok := r.state.categories[*b.CategoryID]; ok {
			name := c.Name
			b.CategoryName = &name
		}
	}
	return b
}

func (r *MemoryRepository) ListBudgets(ctx context.Context, userID string, filter BudgetFilter) ([]models.Budget, error) {
	defer r.lock()()
	budgets := []models.Budget{}
	for _, b := range r.state.budgets {
		if b.UserID != userID || b.DeletedAt != nil {
			continue
		}
		if filter.Month != nil && b.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && b.Year != *filter.Year {
			continue
		}
		budgets = append(budgets, r.budgetWithName(b))
	}
	sort.Slice(budgets, func(i, j int) bool {
		a, b := budgets[i], budgets[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.state.order[a.ID] > r.state.order[b.ID]
	})
	return budgets, nil
}

func (r *MemoryRepository) GetBudget(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	defer r.lock()()
	b, ok := r.state.budgets[budgetID]
	if !ok || b.UserID != userID || b.DeletedAt != nil {
		return nil, nil
	}
	b = r.budgetWithName(b)
	return &b, nil
}

func (r *MemoryRepository) findBudget(userID string, categoryID *string, month, year int, excludeID string) *models.Budget {
	for _, b := range r.state.budgets {
		if b.UserID == userID && b.DeletedAt == nil && b.ID != excludeID &&
			b.Month == month && b.Year == year && sameCategory(b.CategoryID, categoryID) {
			found := r.budgetWithName(b)
			return &found
		}
	}
	return nil
}

func (r *MemoryRepository) FindBudget(ctx context.Context, userID string, categoryID *string, month, year int, excludeID string) (*models.Budget, error) {
	defer r.lock()()
	return r.findBudget(userID, categoryID, month, year, excludeID), nil
}

func (r *MemoryRepository) CreateBudget(ctx context.Context, budget *models.Budget) error {
	defer r.lock()()
	if r.findBudget(budget.UserID, budget.CategoryID, budget.Month, budget.Year, budget.ID) != nil {
		return ErrAlreadyExists
	}
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = r.now()
		budget.UpdatedAt = budget.CreatedAt
	}
	stored := *budget
	stored.CategoryName = nil
	r.state.budgets[budget.ID] = stored
	r.state.next(budget.ID)
	return nil
}

func (r *MemoryRepository) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	defer r.lock()()
	stored, ok := r.state.budgets[budget.ID]
	if !ok || stored.UserID != budget.UserID || stored.DeletedAt != nil {
		return ErrNotFound
	}
	if r.findBudget(budget.UserID, budget.CategoryID, budget.Month, budget.Year, budget.ID) != nil {
		return ErrAlreadyExists
	}
	stored.CategoryID = budget.CategoryID
	stored.Amount = budget.Amount
	stored.Month = budget.Month
	stored.Year = budget.Year
	stored.IsActive = budget.IsActive
	stored.AlertThreshold = budget.AlertThreshold
	stored.UpdatedAt = r.now()
	r.state.budgets[stored.ID] = stored
	return nil
}

func (r *MemoryRepository) SoftDeleteBudget(ctx context.Context, userID, budgetID string) (bool, error) {
	defer r.lock()()
	b, ok := r.state.budgets[budgetID]
	if !ok || b.UserID != userID || b.DeletedAt != nil {
		return false, nil
	}
	now := r.now()
	b.DeletedAt = &now
	b.UpdatedAt = now
	r.state.budgets[budgetID] = b
	return true, nil
}

// Dashboard aggregates
func (r *MemoryRepository) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, w := range r.state.wallets {
		if w.UserID == userID && w.DeletedAt == nil {
			sum = sum.Add(w.Balance)
		}
	}
	return sum, nil
}

func (r *MemoryRepository) SumTransactions(ctx context.Context, userID, txnType string, since *models.Date) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, t := range r.state.transactions {
		if t.UserID != userID || t.Type != txnType {
			continue
		}
		if since != nil && t.Date.Before(*since) {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (r *MemoryRepository) CountTransactions(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, t := range r.state.transactions {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) MonthlyTotals(ctx context.Context, userID string, since models.Date) ([]models.MonthlyStat, error) {
	defer r.lock()()
	byMonth := map[string]*models.MonthlyStat{}
	for _, t := range r.state.transactions {
		if t.UserID != userID || t.Date.Before(since) {
			continue
		}
		key := t.Date.Format("2006-01")
		stat, ok := byMonth[key]
		if !ok {
			stat = &models.MonthlyStat{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = stat
		}
		if t.Type == models.TypeIncome {
			stat.Income = stat.Income.Add(t.Amount)
		} else {
			stat.Expense = stat.Expense.Add(t.Amount)
		}
	}

	stats := make([]models.MonthlyStat, 0, len(byMonth))
	for _, s := range byMonth {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats, nil
}

func (r *MemoryRepository) TopExpenseCategories(ctx context.Context, userID string, since models.Date, limit int) ([]models.CategoryStat, error) {
	defer r.lock()()
	byCategory := map[string]*models.CategoryStat{}
	for _, t := range r.state.transactions {
		if t.UserID != userID || t.Type != models.TypeExpense || t.Date.Before(since) {
			continue
		}
		key := ""
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		stat, ok := byCategory[key]
		if !ok {
			stat = &models.CategoryStat{CategoryName: uncategorized, Total: decimal.Zero}
			if c, found := r.state.categories[key]; found {
				id := c.ID
				stat.CategoryID = &id
				stat.CategoryName = c.Name
				stat.Icon = c.Icon
				stat.Color = c.Color
			}
			byCategory[key] = stat
		}
		stat.Total = stat.Total.Add(t.Amount)
		stat.Count++
	}

	stats := make([]models.CategoryStat, 0, len(byCategory))
	for _, s := range byCategory {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Total.Cmp(stats[j].Total); c != 0 {
			return c > 0
		}
		return stats[i].CategoryName < stats[j].CategoryName
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

var _ Repository = (*MemoryRepository)(nil)
