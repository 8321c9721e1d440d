package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/models"
	"cuotas/api/internal/security"
)

const minPasswordLength = 8

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	GetByID(ctx context.Context, id int64) (models.Account, error)
	List(ctx context.Context, role authz.Role, limit, offset int) ([]models.Account, error)
	Deactivate(ctx context.Context, id int64) error
}

type TokenIssuer interface {
	Issue(accountID int64, role string) (string, time.Time, error)
}

type AuthService struct {
	accounts AccountStore
	tokens   TokenIssuer
	log      zerolog.Logger

	hash   func(password string) ([]byte, error)
	verify func(password string, encoded []byte) (bool, error)

	// decoy is verified against when the email is unknown, so a miss costs
	// the same as a wrong password.
	decoyOnce sync.Once
	decoy     []byte
}

func NewAuthService(accounts AccountStore, tokens TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		log:      log,
		hash:     security.HashPassword,
		verify:   security.VerifyPassword,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     models.Account
}

// Register creates a self-service client account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	account, err := s.CreateAccount(ctx, CreateAccountInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Role:     authz.RoleClient,
	})
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(account)
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, authz.ErrAccountNotFound) {
			_, _ = s.verify(input.Password, s.decoyHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := s.verify(input.Password, account.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Int64("account_id", account.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !account.Active {
		return AuthResult{}, ErrAccountInactive
	}

	return s.issue(account)
}

func (s *AuthService) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		hash, err := s.hash("decoy-password-never-issued")
		if err != nil {
			s.log.Warn().Err(err).Msg("hash decoy password failed")
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

type CreateAccountInput struct {
	Email    string
	Password string
	Name     string
	Role     authz.Role
}

// CreateAccount creates an active account holding any role.
func (s *AuthService) CreateAccount(ctx context.Context, input CreateAccountInput) (models.Account, error) {
	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return models.Account{}, fmt.Errorf("%w: valid email required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return models.Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Account{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if !input.Role.Valid() {
		return models.Account{}, fmt.Errorf("%w: %w", ErrInvalidInput, authz.ErrUnknownRole)
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		return models.Account{}, err
	}

	s.log.Info().
		Int64("account_id", account.ID).
		Str("role", account.Role.String()).
		Msg("account created")
	return account, nil
}

func (s *AuthService) ListAccounts(ctx context.Context, role authz.Role, limit, offset int) ([]models.Account, error) {
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, authz.ErrUnknownRole)
	}
	return s.accounts.List(ctx, role, limit, offset)
}

func (s *AuthService) Deactivate(ctx context.Context, id int64) error {
	if err := s.accounts.Deactivate(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("account_id", id).Msg("account deactivated")
	return nil
}

func (s *AuthService) Account(ctx context.Context, id int64) (models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AuthService) issue(account models.Account) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Role.String())
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{AccessToken: token, ExpiresAt: expiresAt, Account: account}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
