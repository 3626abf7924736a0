package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/shopspring/decimal"
)

func (s *DefaultService) ListWallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	wallets, err := s.repo.ListWallets(ctx, userID)
	if err != nil {
		return nil, fail("list wallets", err)
	}
	return wallets, nil
}

func (s *DefaultService) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	wallet, err := s.repo.GetWallet(ctx, userID, walletID)
	if err != nil {
		return nil, fail("get wallet", err)
	}
	if wallet == nil {
		return nil, apperror.NotFound("Wallet")
	}
	return wallet, nil
}

// CreateWallet forces the first wallet of a user to be the default cash
// wallet. Requesting is_default on a later wallet moves the default to it.
func (s *DefaultService) CreateWallet(ctx context.Context, userID string, req models.CreateWalletRequest) (*models.Wallet, error) {
	name, err := validateName("name", req.Name)
	if err != nil {
		return nil, err
	}
	walletType := strings.TrimSpace(req.Type)
	if walletType == "" {
		walletType = models.WalletCash
	}
	if err := validateWalletType(walletType); err != nil {
		return nil, err
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
		if err := validateMoney("balance", balance, false); err != nil {
			return nil, err
		}
	}
	var creditLimit decimal.NullDecimal
	if req.CreditLimit != nil {
		if req.CreditLimit.Sign() < 0 {
			return nil, apperror.Validation("credit_limit must not be negative")
		}
		if err := validateMoney("credit_limit", *req.CreditLimit, false); err != nil {
			return nil, err
		}
		creditLimit = decimal.NewNullDecimal(*req.CreditLimit)
	}

	now := s.now()
	wallet := &models.Wallet{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Type:        walletType,
		Balance:     balance,
		CreditLimit: creditLimit,
		Icon:        trimmedOrNil(req.Icon),
		Color:       trimmedOrNil(req.Color),
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		count, err := tx.CountWallets(ctx, userID)
		if err != nil {
			return err
		}

		if count == 0 {
			wallet.Type = models.WalletCash
			wallet.IsDefault = true
		} else if wallet.IsDefault {
			if err := tx.ClearDefaultWallets(ctx, userID, wallet.ID); err != nil {
				return err
			}
		}
		return tx.CreateWallet(ctx, wallet)
	})
	if err != nil {
		return nil, conflictOr("create wallet", err, "Another wallet is already the default")
	}

	s.logger.InfoContext(ctx, "Wallet created", "user_id", userID, "wallet_id", wallet.ID, "default", wallet.IsDefault)
	return wallet, nil
}

// UpdateWallet applies a partial update. Blank name or type count as not
// provided; balance cannot be changed here.
func (s *DefaultService) UpdateWallet(ctx context.Context, userID, walletID string, req models.UpdateWalletRequest) (*models.Wallet, error) {
	name := trimmedOrNil(req.Name)
	if name != nil {
		if _, err := validateName("name", *name); err != nil {
			return nil, err
		}
	}
	walletType := trimmedOrNil(req.Type)
	if walletType != nil {
		if err := validateWalletType(*walletType); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.Sign() < 0 {
			return nil, apperror.Validation("credit_limit must not be negative")
		}
		if err := validateMoney("credit_limit", *req.CreditLimit, false); err != nil {
			return nil, err
		}
	}

	var wallet *models.Wallet
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		current, err := tx.GetWallet(ctx, userID, walletID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("Wallet")
		}

		if name != nil {
			current.Name = *name
		}
		if walletType != nil {
			current.Type = *walletType
		}
		if req.CreditLimit != nil {
			current.CreditLimit = decimal.NewNullDecimal(*req.CreditLimit)
		}
		if req.Icon != nil {
			current.Icon = trimmedOrNil(req.Icon)
		}
		if req.Color != nil {
			current.Color = trimmedOrNil(req.Color)
		}
		if req.IsDefault != nil {
			if *req.IsDefault && !current.IsDefault {
				if err := tx.ClearDefaultWallets(ctx, userID, walletID); err != nil {
					return err
				}
			}
			current.IsDefault = *req.IsDefault
		}

		if err := tx.UpdateWallet(ctx, current); err != nil {
			return err
		}
		wallet = current
		return nil
	})
	if err != nil {
		return nil, conflictOr("update wallet", err, "Another wallet is already the default")
	}
	return wallet, nil
}

// DeleteWallet soft deletes the wallet. Its balance and transactions are
// kept; the number of transactions is reported back.
func (s *DefaultService) DeleteWallet(ctx context.Context, userID, walletID string) (*models.DeleteWalletResponse, error) {
	var resp *models.DeleteWalletResponse
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		ok, err := tx.SoftDeleteWallet(ctx, userID, walletID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("Wallet")
		}
		count, err := tx.CountWalletTransactions(ctx, userID, walletID)
		if err != nil {
			return err
		}
		resp = &models.DeleteWalletResponse{WalletID: walletID, TransactionCount: count}
		return nil
	})
	if err != nil {
		return nil, fail("delete wallet", err)
	}

	s.logger.InfoContext(ctx, "Wallet deleted", "user_id", userID, "wallet_id", walletID, "transactions", resp.TransactionCount)
	return resp, nil
}
