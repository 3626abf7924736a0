package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet types accepted by the ledger.
const (
	WalletCash    = "cash"
	WalletBank    = "bank"
	WalletCredit  = "credit"
	WalletEWallet = "e-wallet"
)

// Transaction and category types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// User represents a registered account
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password_hash" json:"-"` // argon2id PHC string
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Wallet is a money container with a running balance.
// Balance only changes as a side effect of transaction writes.
type Wallet struct {
	ID          string              `db:"id" json:"id"`
	UserID      string              `db:"user_id" json:"user_id"`
	Name        string              `db:"name" json:"name"`
	Type        string              `db:"type" json:"wallet_type"`
	Balance     decimal.Decimal     `db:"balance" json:"balance"`
	CreditLimit decimal.NullDecimal `db:"credit_limit" json:"credit_limit"`
	Icon        *string             `db:"icon" json:"icon"`
	Color       *string             `db:"color" json:"color"`
	IsDefault   bool                `db:"is_default" json:"is_default"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time          `db:"deleted_at" json:"-"`
}

// Category labels transactions and budgets. A nil UserID marks a
// system category shared by every user.
type Category struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"-"`
	Name      string     `db:"name" json:"name"`
	Type      string     `db:"type" json:"category_type"`
	Icon      *string    `db:"icon" json:"icon"`
	Color     *string    `db:"color" json:"color"`
	IsDefault bool       `db:"is_default" json:"is_default"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// Transaction is a single income or expense event against one wallet
type Transaction struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"-"`
	WalletID     string          `db:"wallet_id" json:"wallet_id"`
	WalletName   *string         `db:"wallet_name" json:"wallet_name"`
	CategoryID   *string         `db:"category_id" json:"category_id"`
	CategoryName *string         `db:"category_name" json:"category_name"`
	Type         string          `db:"type" json:"transaction_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Description  *string         `db:"description" json:"description"`
	Date         Date            `db:"transaction_date" json:"date"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Effect returns the signed amount the transaction applies to its wallet
func (t Transaction) Effect() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Budget is a monthly spending cap, optionally scoped to a category
type Budget struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"-"`
	CategoryID     *string         `db:"category_id" json:"category_id"`
	CategoryName   *string         `db:"category_name" json:"category_name"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Month          int             `db:"month" json:"month"`
	Year           int             `db:"year" json:"year"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	AlertThreshold *float64        `db:"alert_threshold" json:"alert_threshold"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time      `db:"deleted_at" json:"-"`
}

// BudgetUsage decorates a budget with spend computed for its period
type BudgetUsage struct {
	Budget
	UsedAmount      decimal.Decimal `json:"used_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	UsagePercentage float64         `json:"usage_percentage"`
	IsOverBudget    bool            `json:"is_over_budget"`
	ShouldAlert     bool            `json:"should_alert"`
}

// DashboardSummary holds the headline figures of the dashboard
type DashboardSummary struct {
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	MonthIncome      decimal.Decimal `json:"month_income"`
	MonthExpense     decimal.Decimal `json:"month_expense"`
	WalletCount      int64           `json:"wallet_count"`
	TransactionCount int64           `json:"transaction_count"`
}

// MonthlyStat is the income/expense total of one calendar month ("2024-01")
type MonthlyStat struct {
	Month   string          `db:"month" json:"month"`
	Income  decimal.Decimal `db:"income" json:"income"`
	Expense decimal.Decimal `db:"expense" json:"expense"`
}

// CategoryStat is the expense total of one category
type CategoryStat struct {
	CategoryID   *string         `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	Icon         *string         `db:"icon" json:"icon"`
	Color        *string         `db:"color" json:"color"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Count        int64           `db:"count" json:"count"`
}
