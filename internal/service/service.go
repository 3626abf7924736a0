package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/events"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/rongwang/fintrack-server/internal/utils"
)

// Service defines all the business logic operations
type Service interface {
	// Identity
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (*auth.Claims, error)
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)

	// Wallet ledger
	ListWallets(ctx context.Context, userID string) ([]models.Wallet, error)
	CreateWallet(ctx context.Context, userID string, req models.CreateWalletRequest) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	UpdateWallet(ctx context.Context, userID, walletID string, req models.UpdateWalletRequest) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, userID, walletID string) (*models.DeleteWalletResponse, error)

	// Categories
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, req models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	ResolveOrCreateCategory(ctx context.Context, userID, name, categoryType string) (*models.Category, error)

	// Transactions
	ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) (*models.TransactionList, error)
	CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	ExportTransactions(ctx context.Context, userID string, filter models.TransactionFilter, w io.Writer) error

	// Budgets
	ListBudgets(ctx context.Context, userID string, month, year *int) ([]models.BudgetUsage, error)
	CreateBudget(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.BudgetUsage, error)
	GetBudget(ctx context.Context, userID, budgetID string) (*models.BudgetUsage, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, req models.UpdateBudgetRequest) (*models.BudgetUsage, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	CopyBudgets(ctx context.Context, userID string, req models.CopyBudgetRequest) ([]models.BudgetUsage, error)

	// Dashboard
	GetDashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	GetMonthlyStats(ctx context.Context, userID string) ([]models.MonthlyStat, error)
	GetCategoryBreakdown(ctx context.Context, userID string) ([]models.CategoryStat, error)
}

// TokenManager issues and verifies access tokens
type TokenManager interface {
	Generate(user models.User) (string, error)
	Verify(token string) (*auth.Claims, error)
	TTL() time.Duration
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Deps are the collaborators of DefaultService. Publisher, Logger and
// Clock are optional.
type Deps struct {
	Repo      repository.Repository
	Tokens    TokenManager
	Hasher    PasswordHasher
	Publisher events.Publisher
	Logger    *utils.Logger
	Clock     func() time.Time
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo      repository.Repository
	tokens    TokenManager
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *utils.Logger
	now       func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(deps Deps) *DefaultService {
	s := &DefaultService{
		repo:      deps.Repo,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		now:       deps.Clock,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = utils.NopLogger()
	}
	s.logger = s.logger.WithComponent("service")
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

var _ Service = (*DefaultService)(nil)

// fail passes application errors through and wraps anything else as
// internal, keeping op for the server log.
func fail(op string, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(fmt.Errorf("%s: %w", op, err))
}

// conflictOr maps a uniqueness violation to a Conflict with msg
func conflictOr(op string, err error, msg string) error {
	if errors.Is(err, repository.ErrAlreadyExists) {
		return apperror.Conflict("%s", msg)
	}
	return fail(op, err)
}

func (s *DefaultService) today() models.Date {
	return models.DateOf(s.now())
}

// monthStart returns the first day of the month offset months from now
func (s *DefaultService) monthStart(offset int) models.Date {
	now := s.now()
	return models.DateOf(time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC))
}

// publish emits a ledger event after commit. Failures are logged only.
func (s *DefaultService) publish(ctx context.Context, eventType string, txn models.Transaction) {
	event := events.NewLedgerEvent(eventType, txn, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			"type", eventType,
			"transaction_id", txn.ID,
			"error", err)
	}
}
