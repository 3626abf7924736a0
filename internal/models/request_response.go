package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Request models
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest accepts the identifier under any of the spellings clients use
type LoginRequest struct {
	Identifier      string `json:"identifier"`
	UsernameOrEmail string `json:"username_or_email"`
	Email           string `json:"email"`
	Password        string `json:"password" binding:"required"`
}

// LoginID returns the first non-empty identifier
func (r LoginRequest) LoginID() string {
	for _, v := range []string{r.Identifier, r.UsernameOrEmail, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type CreateWalletRequest struct {
	Name        string           `json:"name" binding:"required"`
	Type        string           `json:"wallet_type"`
	Balance     *decimal.Decimal `json:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Icon        *string          `json:"icon"`
	Color       *string          `json:"color"`
	IsDefault   bool             `json:"is_default"`
}

// UpdateWalletRequest is a partial update; nil fields keep their value
type UpdateWalletRequest struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"wallet_type"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Icon        *string          `json:"icon"`
	Color       *string          `json:"color"`
	IsDefault   *bool            `json:"is_default"`
}

type CreateCategoryRequest struct {
	Name  string  `json:"name" binding:"required"`
	Type  string  `json:"category_type" binding:"required"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"category_type"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// CreateTransactionRequest carries identifiers already normalized by the
// HTTP layer: nil means absent.
type CreateTransactionRequest struct {
	WalletID     *string          `json:"wallet_id"`
	CategoryID   *string          `json:"category_id"`
	CategoryName *string          `json:"category_name"`
	Type         string           `json:"transaction_type" binding:"required"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
	Description  *string          `json:"description"`
	Date         *Date            `json:"date"`
}

type UpdateTransactionRequest struct {
	WalletID     *string          `json:"wallet_id"`
	CategoryID   *string          `json:"category_id"`
	CategoryName *string          `json:"category_name"`
	Type         *string          `json:"transaction_type"`
	Amount       *decimal.Decimal `json:"amount"`
	Description  *string          `json:"description"`
	Date         *Date            `json:"date"`
}

// TransactionFilter narrows a transaction listing. Limit <= 0 disables pagination.
type TransactionFilter struct {
	WalletID   *string
	CategoryID *string
	Type       *string
	StartDate  *Date
	EndDate    *Date
	Limit      int
	Offset     int
}

type CreateBudgetRequest struct {
	CategoryID     *string          `json:"category_id"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Month          int              `json:"month" binding:"required"`
	Year           int              `json:"year" binding:"required"`
	IsActive       *bool            `json:"is_active"`
	AlertThreshold *float64         `json:"alert_threshold"`
}

type UpdateBudgetRequest struct {
	CategoryID     *string          `json:"category_id"`
	Amount         *decimal.Decimal `json:"amount"`
	Month          *int             `json:"month"`
	Year           *int             `json:"year"`
	IsActive       *bool            `json:"is_active"`
	AlertThreshold *float64         `json:"alert_threshold"`
}

type CopyBudgetRequest struct {
	SourceMonth int `json:"source_month" binding:"required"`
	SourceYear  int `json:"source_year" binding:"required"`
	TargetMonth int `json:"target_month" binding:"required"`
	TargetYear  int `json:"target_year" binding:"required"`
}

// Response models
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	User      *User  `json:"user"`
}

type DeleteWalletResponse struct {
	WalletID         string `json:"wallet_id"`
	TransactionCount int64  `json:"transaction_count"`
}

type TransactionList struct {
	Transactions []Transaction
	Total        int64
	Limit        int
	Offset       int
}

// Response is the success envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}
