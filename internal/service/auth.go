package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/repository"
)

func validateRegistration(req *models.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if len([]rune(req.Name)) < 2 {
		return apperror.Validation("name must be at least 2 characters")
	}
	if n := len(req.Username); n < 3 || n > 30 {
		return apperror.Validation("username must be between 3 and 30 characters")
	}
	if strings.ContainsAny(req.Username, " @") {
		return apperror.Validation("username must not contain spaces or '@'")
	}
	if at := strings.Index(req.Email, "@"); at < 1 || at == len(req.Email)-1 {
		return apperror.Validation("email is not valid")
	}
	if len(req.Password) < 8 {
		return apperror.Validation("password must be at least 8 characters")
	}
	return nil
}

// Register creates the user together with the default wallet and the
// system categories in one unit of work.
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fail("hash password", err)
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Username:  req.Username,
		Name:      req.Name,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		existing, err := tx.GetUserByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("Email already registered")
		}
		existing, err = tx.GetUserByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("Username already taken")
		}

		if err := tx.CreateUser(ctx, user); err != nil {
			return conflictOr("create user", err, "Email or username already registered")
		}
		if err := tx.EnsureSystemCategories(ctx, models.SystemCategories(now)); err != nil {
			return fail("seed categories", err)
		}
		wallet := models.NewDefaultWallet(uuid.New().String(), user.ID, now)
		if err := tx.CreateWallet(ctx, &wallet); err != nil {
			return fail("create default wallet", err)
		}
		return nil
	})
	if err != nil {
		return nil, fail("register", err)
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return s.issueToken(user)
}

// Login accepts a username or an email as identifier
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	identifier := req.LoginID()
	if identifier == "" || req.Password == "" {
		return nil, apperror.Validation("identifier and password are required")
	}

	user, err := s.repo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fail("get user", err)
	}
	if user == nil {
		return nil, apperror.InvalidCredentials()
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		return nil, fail("verify password", err)
	}
	if !ok {
		return nil, apperror.InvalidCredentials()
	}

	return s.issueToken(user)
}

func (s *DefaultService) issueToken(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Generate(*user)
	if err != nil {
		return nil, fail("generate token", err)
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}

// VerifyToken validates a bearer token and returns its claims
func (s *DefaultService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.TokenExpired()
		}
		return nil, apperror.Unauthorized("Invalid token")
	}
	return claims, nil
}

func (s *DefaultService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fail("get user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User")
	}
	return user, nil
}
