package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates login and session flows.
type AuthService struct {
	users    repository.UserRepository
	sessions auth.SessionStore
	tokenMgr *auth.TokenManager
	clock    clock.Clock
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions auth.SessionStore
	Tokens   *auth.TokenManager
	Clock    clock.Clock
	Logger   *zap.Logger
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   domain.Session
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &AuthService{
		users:    deps.UserRepo,
		sessions: deps.Sessions,
		tokenMgr: deps.Tokens,
		clock:    clk,
		logger:   logger,
	}
}

// Login verifies credentials, opens a session and issues its token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user := s.users.Authenticate(ctx, strings.TrimSpace(username), password)
	if user == nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	sessionID := uuid.NewString()
	token, exp, err := s.tokenMgr.GenerateToken(*user, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	session := domain.Session{
		ID:        sessionID,
		User:      *user,
		IssuedAt:  s.clock.Now(),
		ExpiresAt: exp,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{Token: token, ExpiresAt: exp, Session: session}, nil
}

// Logout ends the principal's session.
func (s *AuthService) Logout(ctx context.Context, p *auth.Principal) error {
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged out", zap.String("user_id", p.User.ID))
	return nil
}

// Session returns the stored session of the principal.
func (s *AuthService) Session(ctx context.Context, p *auth.Principal) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, apperrors.NewUnauthorized("session expired")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return session, nil
}
