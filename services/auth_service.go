package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/repository"
	"go.uber.org/zap"
)

// AuthService manages admin sessions.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Session returns the live session for id, or ErrUnauthenticated.
	Session(ctx context.Context, sessionID string) (*models.Session, error)
}

type authServiceImpl struct {
	auth     providers.Authenticator
	sessions repository.SessionStore
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(auth providers.Authenticator, sessions repository.SessionStore, ttl time.Duration, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		auth:     auth,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *authServiceImpl) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateForm(req); err != nil {
		return nil, err
	}

	token, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if providers.IsStatus(err, http.StatusUnauthorized) || providers.IsStatus(err, http.StatusForbidden) {
			s.logger.Warn("Admin login rejected", zap.String("username", req.Username))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Admin login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: s.expiry(token, now),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Admin logged in",
		zap.String("username", session.Username),
		zap.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

// expiry is now+ttl, cut short by the token's own exp claim when the token
// happens to be a JWT. The token is never verified here; the tracking API
// does that.
func (s *authServiceImpl) expiry(token string, now time.Time) time.Time {
	var exp time.Time
	if s.ttl > 0 {
		exp = now.Add(s.ttl)
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return exp
	}
	if tokenExp := claims.ExpiresAt.Time; exp.IsZero() || tokenExp.Before(exp) {
		return tokenExp
	}
	return exp
}

func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}
	s.logger.Info("Admin logged out", zap.String("session_id", sessionID))
	return nil
}

func (s *authServiceImpl) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !session.HasCredential() || session.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}
	return session, nil
}
