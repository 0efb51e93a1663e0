package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
)

// RevocationLedger records refresh tokens that were explicitly invalidated.
type RevocationLedger interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SigningConfig is the process-wide key material and lifetimes. It is built once at startup
// and never changes while the process runs.
type SigningConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewSigningConfig derives the signing configuration from the auth settings.
func NewSigningConfig(cfg config.AuthConfig) SigningConfig {
	return SigningConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}
}

// Validate checks the configuration is usable.
func (c SigningConfig) Validate() error {
	if len(c.Secret) == 0 {
		return errors.New("signing secret is empty")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	return nil
}

// Claims describes JWT payload.
type Claims struct {
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// SubjectID returns the user id the token was minted for.
func (c *Claims) SubjectID() string { return c.Subject }

// TokenManager mints token pairs and validates presented tokens.
type TokenManager struct {
	cfg    SigningConfig
	ledger RevocationLedger
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock replaces the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) { tm.now = now }
}

// WithLogger attaches a logger for fail-closed ledger lookups.
func WithLogger(logger *zap.Logger) Option {
	return func(tm *TokenManager) { tm.logger = logger }
}

// NewTokenManager builds a new manager.
func NewTokenManager(cfg SigningConfig, ledger RevocationLedger, opts ...Option) (*TokenManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, errors.New("revocation ledger is required")
	}
	tm := &TokenManager{cfg: cfg, ledger: ledger, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue mints an access and a refresh token for the subject.
func (tm *TokenManager) Issue(subjectID string) (*domain.TokenPair, error) {
	if subjectID == "" {
		return nil, errors.New("issue token: empty subject")
	}
	now := tm.now().Truncate(time.Second)

	access, accessExp, err := tm.sign(subjectID, domain.TokenTypeAccess, now, tm.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tm.sign(subjectID, domain.TokenTypeRefresh, now, tm.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		SubjectID:        subjectID,
		IssuedAt:         now,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (tm *TokenManager) sign(subjectID string, tokenType domain.TokenType, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			Issuer:    tm.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Validate checks, in order: signature and shape, token type, expiry and, for refresh
// tokens, the revocation ledger. A ledger that cannot be consulted refuses the token.
func (tm *TokenManager) Validate(ctx context.Context, raw string, expected domain.TokenType) (*Claims, error) {
	claims, err := tm.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	if !claims.ExpiresAt.Time.After(tm.now()) {
		return nil, ErrTokenExpired
	}
	if expected == domain.TokenTypeRefresh {
		revoked, err := tm.ledger.IsRevoked(ctx, claims.ID)
		if err != nil {
			tm.logger.Warn("revocation lookup failed; refusing token",
				zap.String("jti", claims.ID), zap.Error(err))
			return nil, ErrTokenRevoked.Wrap(err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke records a refresh token in the ledger. The signature must verify, but an expired
// token can still be revoked. Revoking twice is not an error. A non-empty ownerID must match
// the token subject, otherwise nothing is written and ErrAuthorizationDenied is returned.
func (tm *TokenManager) Revoke(ctx context.Context, raw, ownerID string) (*Claims, error) {
	claims, err := tm.inspect(raw, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if ownerID != "" && claims.SubjectID() != ownerID {
		return nil, ErrAuthorizationDenied
	}
	if _, err := tm.ledger.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	return claims, nil
}

// Consume revokes validated refresh claims and succeeds only for the caller that inserted
// the ledger entry. Used by rotation so a refresh token is spent at most once.
func (tm *TokenManager) Consume(ctx context.Context, claims *Claims) error {
	inserted, err := tm.ledger.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		tm.logger.Warn("revocation write failed; refusing rotation",
			zap.String("jti", claims.ID), zap.Error(err))
		return ErrTokenRevoked.Wrap(err)
	}
	if !inserted {
		return ErrTokenRevoked
	}
	return nil
}

// inspect verifies the signature and token type without checking expiry or revocation.
func (tm *TokenManager) inspect(raw string, expected domain.TokenType) (*Claims, error) {
	claims, err := tm.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// IsRevoked consults the ledger for a token id.
func (tm *TokenManager) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return tm.ledger.IsRevoked(ctx, tokenID)
}

// parse verifies the signature and required claims. Time-based claims are checked by
// Validate so that a wrong token type is reported before expiry.
func (tm *TokenManager) parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenMalformed
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrTokenMalformed.Wrap(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil || !claims.TokenType.Valid() {
		return nil, ErrTokenMalformed
	}
	if tm.cfg.Issuer != "" && claims.Issuer != tm.cfg.Issuer {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
