package service

import (
	"strings"

	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
)

const (
	moneyScale   = 2
	maxNameLen   = 100
	minBudgetYr  = 2000
	maxBudgetYr  = 3000
	defaultLimit = 50
	maxLimit     = 500
	// alert threshold applied when a budget is created without one
	defaultAlertThreshold = 80.0
)

// NUMERIC(20,2) holds 18 integer digits
var maxMoney = decimal.New(1, 18)

// validateMoney checks scale and magnitude; positive additionally
// rejects zero and negative values.
func validateMoney(field string, d decimal.Decimal, positive bool) error {
	if positive && d.Sign() <= 0 {
		return apperror.Validation("%s must be greater than 0", field)
	}
	if !d.Equal(d.Round(moneyScale)) {
		return apperror.Validation("%s must have at most %d decimal places", field, moneyScale)
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return apperror.Validation("%s is too large", field)
	}
	return nil
}

func validateEntryType(field, value string) error {
	if value != models.TypeIncome && value != models.TypeExpense {
		return apperror.Validation("%s must be 'income' or 'expense'", field)
	}
	return nil
}

func validateWalletType(value string) error {
	switch value {
	case models.WalletCash, models.WalletBank, models.WalletCredit, models.WalletEWallet:
		return nil
	}
	return apperror.Validation("wallet_type must be one of cash, bank, credit, e-wallet")
}

func validateName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperror.Validation("%s is required", field)
	}
	if len([]rune(value)) > maxNameLen {
		return "", apperror.Validation("%s must be at most %d characters", field, maxNameLen)
	}
	return value, nil
}

func validateMonth(field string, month int) error {
	if month < 1 || month > 12 {
		return apperror.Validation("%s must be between 1 and 12", field)
	}
	return nil
}

func validateYear(field string, year int) error {
	if year < minBudgetYr || year > maxBudgetYr {
		return apperror.Validation("%s must be between %d and %d", field, minBudgetYr, maxBudgetYr)
	}
	return nil
}

func validateThreshold(threshold *float64) error {
	if threshold != nil && (*threshold < 0 || *threshold > 100) {
		return apperror.Validation("alert_threshold must be between 0 and 100")
	}
	return nil
}

// trimmedOrNil treats blank strings as absent
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
