package service

import (
	"context"
	"strings"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

const invalidCredentials = "no active account found with the given credentials"

// AuthService coordinates login and token flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokenMgr: tokens, bcryptCost: cfg.BcryptCost}
}

// Tokens exposes the token manager for middleware wiring.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// Authenticate checks email and password and returns the active account.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", map[string]any{"fields": []string{"email", "password"}})
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.HasCode(apperrors.ToDomainError(err), apperrors.CodeNotFound) {
			return nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	return user, nil
}

// Login authenticates and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	pair, err := s.tokenMgr.GeneratePair(user)
	if err != nil {
		return nil, auth.TokenPair{}, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.TokenPair{}, apperrors.NewUnauthorized("token is invalid or expired")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return auth.TokenPair{}, apperrors.NewUnauthorized("token is invalid or expired")
	}
	access, expiresAt, err := s.tokenMgr.GenerateAccess(user)
	if err != nil {
		return auth.TokenPair{}, apperrors.NewInternalError(err)
	}
	return auth.TokenPair{Access: access, ExpiresAt: expiresAt}, nil
}

// Verify accepts any well-formed, unexpired token of either type.
func (s *AuthService) Verify(token string) error {
	if _, err := s.tokenMgr.ParseToken(token, ""); err != nil {
		return apperrors.NewUnauthorized("token is invalid or expired")
	}
	return nil
}

// CreateUser hashes password and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, user *domain.User, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Create(ctx, user)
}
