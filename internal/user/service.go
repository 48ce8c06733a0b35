package user

import (
	"context"
	"errors"
	"strings"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/email"
	"github.com/vslbak/gymflow-web/internal/logger"
)

var (
	ErrEmailExists         = errors.New("Email already exists")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrInvalidRefreshToken = errors.New("Invalid refresh token")
)

type Service interface {
	Register(ctx context.Context, req api.SignupRequest) (*User, auth.Tokens, error)
	Login(ctx context.Context, req api.LoginRequest) (*User, auth.Tokens, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*User, auth.Tokens, error)
}

type service struct {
	repo     Repository
	issuer   *auth.TokenIssuer
	notifier email.Notifier
}

func NewService(repo Repository, issuer *auth.TokenIssuer, notifier email.Notifier) Service {
	return &service{
		repo:     repo,
		issuer:   issuer,
		notifier: notifier,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *service) Register(ctx context.Context, req api.SignupRequest) (*User, auth.Tokens, error) {
	addr := normalizeEmail(req.Email)

	exists, err := s.repo.EmailExists(ctx, addr)
	if err != nil {
		return nil, auth.Tokens{}, err
	}
	if exists {
		return nil, auth.Tokens{}, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, auth.Tokens{}, err
	}

	user, err := s.repo.Create(ctx, strings.TrimSpace(req.Username), addr, strings.TrimSpace(req.Phone), passwordHash, api.RoleUser)
	if err != nil {
		return nil, auth.Tokens{}, err
	}

	tokens, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, auth.Tokens{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user.Email, user.Username); err != nil {
			logger.Warn("Welcome email not queued", "user_id", user.ID, "error", err)
		}
	}

	return user, tokens, nil
}

func (s *service) Login(ctx context.Context, req api.LoginRequest) (*User, auth.Tokens, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, auth.Tokens{}, ErrInvalidCredentials
		}
		return nil, auth.Tokens{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, auth.Tokens{}, ErrInvalidCredentials
	}

	tokens, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, auth.Tokens{}, err
	}

	return user, tokens, nil
}

func (s *service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// Refresh re-reads the user so that role changes apply to the new pair.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*User, auth.Tokens, error) {
	if refreshToken == "" {
		return nil, auth.Tokens{}, ErrInvalidRefreshToken
	}

	claims, err := s.issuer.Refresh(refreshToken)
	if err != nil {
		return nil, auth.Tokens{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, auth.Tokens{}, ErrInvalidRefreshToken
		}
		return nil, auth.Tokens{}, err
	}

	tokens, err := s.issuer.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, auth.Tokens{}, err
	}

	return user, tokens, nil
}
