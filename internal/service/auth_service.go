package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// ProfileUpdate lists the profile fields a user may change; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// AuthService coordinates registration, login, logout, refresh and profile flows.
type AuthService struct {
	users         repository.UserRepository
	credentials   *auth.CredentialStore
	tokens        *auth.TokenManager
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	rotateRefresh bool
	adminEmails   map[string]struct{}
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Credentials *auth.CredentialStore
	Tokens      *auth.TokenManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[domain.NormalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		users:         deps.UserRepo,
		credentials:   deps.Credentials,
		tokens:        deps.Tokens,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		rotateRefresh: cfg.RotateRefreshTokens,
		adminEmails:   admins,
	}
}

// Register creates an identity and signs it in. Emails listed in AUTH_ADMIN_EMAILS are
// registered as administrators.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, *domain.TokenPair, error) {
	_, isAdmin := s.adminEmails[domain.NormalizeEmail(email)]
	user, err := s.credentials.Create(ctx, email, name, password, isAdmin)
	if err != nil {
		return nil, nil, err
	}
	if user.IsAdmin {
		s.logger.Info("registered administrator", zap.String("user_id", user.ID))
	}
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventUserRegistered, SubjectID: user.ID})
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, SubjectID: user.ID})
	return user, pair, nil
}

// Logout revokes the caller's refresh token. The token must belong to the caller.
func (s *AuthService) Logout(ctx context.Context, caller *domain.User, refreshToken string) error {
	if caller == nil || caller.ID == "" {
		return auth.ErrAuthorizationDenied
	}
	claims, err := s.tokens.Revoke(ctx, refreshToken, caller.ID)
	if err != nil {
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) {
			s.logger.Error("revoke refresh token", zap.String("user_id", caller.ID), zap.Error(err))
		}
		return err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTokenRevoked,
		SubjectID: caller.ID,
		Payload:   events.TokenPayload{TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time},
	})
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. With rotation enabled the
// presented token is consumed before the new pair is signed, so concurrent exchanges of
// one token yield a single pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Validate(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, claims.SubjectID()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrUnknownSubject
		}
		return nil, err
	}

	if s.rotateRefresh {
		if err := s.tokens.Consume(ctx, claims); err != nil {
			return nil, err
		}
	}
	pair, err := s.tokens.Issue(claims.SubjectID())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventTokenRefreshed,
		SubjectID: claims.SubjectID(),
		Payload:   events.TokenPayload{TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time, Rotated: s.rotateRefresh},
	})
	return pair, nil
}

// Profile returns the identity behind userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrUnknownSubject
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Password != nil {
		if err := s.credentials.SetPassword(user, *update.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrUnknownSubject
		}
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventProfileUpdated, SubjectID: user.ID})
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
