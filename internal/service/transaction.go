package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/events"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/report"
	"github.com/rongwang/fintrack-server/internal/repository"
)

func validateFilter(filter models.TransactionFilter) error {
	if filter.Type != nil {
		if err := validateEntryType("transaction_type", *filter.Type); err != nil {
			return err
		}
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return apperror.Validation("start_date must not be after end_date")
	}
	if filter.Offset < 0 {
		return apperror.Validation("offset must not be negative")
	}
	return nil
}

// ListTransactions returns one page of matching transactions plus the
// total number of matches.
func (s *DefaultService) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) (*models.TransactionList, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	txns, total, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fail("list transactions", err)
	}
	return &models.TransactionList{
		Transactions: txns,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

func (s *DefaultService) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	txn, err := s.repo.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, fail("get transaction", err)
	}
	if txn == nil {
		return nil, apperror.NotFound("Transaction")
	}
	return txn, nil
}

// CreateTransaction stores the transaction and applies its effect to the
// wallet balance in one unit of work.
func (s *DefaultService) CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateEntryType("transaction_type", req.Type); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, apperror.Validation("amount is required")
	}
	if err := validateMoney("amount", *req.Amount, true); err != nil {
		return nil, err
	}
	categoryName := trimmedOrNil(req.CategoryName)
	if req.CategoryID == nil && categoryName != nil {
		if _, err := validateName("category_name", *categoryName); err != nil {
			return nil, err
		}
	}

	now := s.now()
	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        req.Type,
		Amount:      *req.Amount,
		Description: trimmedOrNil(req.Description),
		Date:        s.today(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}

	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}

		wallet, err := s.resolveWallet(ctx, tx, userID, req.WalletID)
		if err != nil {
			return err
		}
		txn.WalletID = wallet.ID
		txn.WalletName = &wallet.Name

		category, err := s.resolveTransactionCategory(ctx, tx, userID, req.CategoryID, categoryName, txn.Type)
		if err != nil {
			return err
		}
		if category != nil {
			txn.CategoryID = &category.ID
			txn.CategoryName = &category.Name
		}

		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		return tx.AdjustWalletBalance(ctx, userID, txn.WalletID, txn.Effect())
	})
	if err != nil {
		return nil, fail("create transaction", err)
	}

	s.publish(ctx, events.TransactionCreated, *txn)
	return txn, nil
}

// UpdateTransaction merges the patch into the stored transaction. The old
// balance effect is always reversed and the new one applied.
func (s *DefaultService) UpdateTransaction(ctx context.Context, userID, transactionID string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	if req.Type != nil {
		if err := validateEntryType("transaction_type", *req.Type); err != nil {
			return nil, err
		}
	}
	if req.Amount != nil {
		if err := validateMoney("amount", *req.Amount, true); err != nil {
			return nil, err
		}
	}
	categoryName := trimmedOrNil(req.CategoryName)
	if req.CategoryID == nil && categoryName != nil {
		if _, err := validateName("category_name", *categoryName); err != nil {
			return nil, err
		}
	}

	var updated *models.Transaction
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		current, err := tx.GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("Transaction")
		}
		old := *current
		next := *current

		if req.Type != nil {
			next.Type = *req.Type
		}
		if req.Amount != nil {
			next.Amount = *req.Amount
		}
		if req.Description != nil {
			next.Description = trimmedOrNil(req.Description)
		}
		if req.Date != nil {
			next.Date = *req.Date
		}
		if req.WalletID != nil && *req.WalletID != old.WalletID {
			wallet, err := s.resolveWallet(ctx, tx, userID, req.WalletID)
			if err != nil {
				return err
			}
			next.WalletID = wallet.ID
		}

		switch {
		case req.CategoryID != nil || categoryName != nil:
			category, err := s.resolveTransactionCategory(ctx, tx, userID, req.CategoryID, categoryName, next.Type)
			if err != nil {
				return err
			}
			next.CategoryID = &category.ID
		case next.CategoryID != nil && next.Type != old.Type:
			category, err := tx.GetCategory(ctx, userID, *next.CategoryID)
			if err != nil {
				return err
			}
			if category != nil && category.Type != next.Type {
				return apperror.Validation("category type '%s' does not match transaction type '%s'", category.Type, next.Type)
			}
		}

		next.UpdatedAt = s.now()
		if err := tx.UpdateTransaction(ctx, &next); err != nil {
			return err
		}
		if err := tx.AdjustWalletBalance(ctx, userID, old.WalletID, old.Effect().Neg()); err != nil {
			return err
		}
		if err := tx.AdjustWalletBalance(ctx, userID, next.WalletID, next.Effect()); err != nil {
			return err
		}

		updated, err = tx.GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if updated == nil {
			return apperror.NotFound("Transaction")
		}
		return nil
	})
	if err != nil {
		return nil, fail("update transaction", err)
	}

	s.publish(ctx, events.TransactionUpdated, *updated)
	return updated, nil
}

// DeleteTransaction removes the transaction and reverses its balance effect
func (s *DefaultService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	var deleted *models.Transaction
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		txn, err := tx.GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return apperror.NotFound("Transaction")
		}
		if err := tx.DeleteTransaction(ctx, userID, transactionID); err != nil {
			return err
		}
		if err := tx.AdjustWalletBalance(ctx, userID, txn.WalletID, txn.Effect().Neg()); err != nil {
			return err
		}
		deleted = txn
		return nil
	})
	if err != nil {
		return fail("delete transaction", err)
	}

	s.publish(ctx, events.TransactionDeleted, *deleted)
	return nil
}

// ExportTransactions writes every transaction matching the filter as an
// XLSX workbook. Pagination in the filter is ignored.
func (s *DefaultService) ExportTransactions(ctx context.Context, userID string, filter models.TransactionFilter, w io.Writer) error {
	if err := validateFilter(filter); err != nil {
		return err
	}
	filter.Limit, filter.Offset = 0, 0

	txns, _, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		return fail("list transactions", err)
	}
	if err := report.WriteTransactions(w, txns); err != nil {
		return fail("write export", err)
	}
	s.logger.InfoContext(ctx, "Transactions exported", "user_id", userID, "rows", len(txns))
	return nil
}

// resolveWallet returns the requested wallet, or the default one when no
// id is given. A default cash wallet is created if the user has none.
func (s *DefaultService) resolveWallet(ctx context.Context, tx repository.Repository, userID string, walletID *string) (*models.Wallet, error) {
	if walletID != nil {
		wallet, err := tx.GetWallet(ctx, userID, *walletID)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return nil, apperror.NotFound("Wallet")
		}
		return wallet, nil
	}

	wallet, err := tx.GetDefaultWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	created := models.NewDefaultWallet(uuid.New().String(), userID, s.now())
	if err := tx.CreateWallet(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Default wallet created for transaction", "user_id", userID, "wallet_id", created.ID)
	return &created, nil
}

// resolveTransactionCategory resolves an explicit id or a free-text name.
// An id takes precedence; both absent leaves the transaction uncategorized.
func (s *DefaultService) resolveTransactionCategory(ctx context.Context, tx repository.Repository, userID string, categoryID, categoryName *string, txnType string) (*models.Category, error) {
	if categoryID != nil {
		category, err := tx.GetCategory(ctx, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NotFound("Category")
		}
		if category.Type != txnType {
			return nil, apperror.Validation("category type '%s' does not match transaction type '%s'", category.Type, txnType)
		}
		return category, nil
	}
	if categoryName != nil {
		return s.resolveCategory(ctx, tx, userID, *categoryName, txnType)
	}
	return nil, nil
}
