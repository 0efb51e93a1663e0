package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/revocation"
)

var testSigning = SigningConfig{
	Secret:     []byte("test-secret-0123456789abcdef0123"),
	Issuer:     "shop-test",
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 24 * time.Hour,
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestManager(t *testing.T, ledger RevocationLedger) (*TokenManager, *clock) {
	t.Helper()
	if ledger == nil {
		ledger = revocation.NewMemoryLedger()
	}
	clk := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	tm, err := NewTokenManager(testSigning, ledger, WithClock(clk.Now))
	require.NoError(t, err)
	return tm, clk
}

type failingLedger struct{}

func (failingLedger) Revoke(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("ledger offline")
}

func (failingLedger) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("ledger offline")
}

func TestNewTokenManagerRejectsBadConfig(t *testing.T) {
	ledger := revocation.NewMemoryLedger()

	_, err := NewTokenManager(SigningConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour}, ledger)
	assert.Error(t, err)

	cfg := testSigning
	cfg.RefreshTTL = cfg.AccessTTL
	_, err = NewTokenManager(cfg, ledger)
	assert.Error(t, err)

	_, err = NewTokenManager(testSigning, nil)
	assert.Error(t, err)
}

func TestIssueThenValidateAccess(t *testing.T) {
	tm, clk := newTestManager(t, nil)

	pair, err := tm.Issue("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, clk.t.Add(testSigning.AccessTTL), pair.AccessExpiresAt)
	assert.Equal(t, clk.t.Add(testSigning.RefreshTTL), pair.RefreshExpiresAt)

	claims, err := tm.Validate(context.Background(), pair.AccessToken, domain.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID())
	assert.Equal(t, domain.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "shop-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := tm.Validate(context.Background(), pair.RefreshToken, domain.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.SubjectID())
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestValidateExpiredAlwaysReportsExpired(t *testing.T) {
	ledger := revocation.NewMemoryLedger()
	tm, clk := newTestManager(t, ledger)
	ctx := context.Background()

	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	clk.t = pair.AccessExpiresAt
	_, err = tm.Validate(ctx, pair.AccessToken, domain.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// an expired refresh token that was also revoked still reports expiry
	_, err = tm.Revoke(ctx, pair.RefreshToken, "")
	require.NoError(t, err)
	clk.t = pair.RefreshExpiresAt.Add(time.Second)
	_, err = tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateWrongTokenType(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()

	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	_, err = tm.Validate(ctx, pair.AccessToken, domain.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateMalformed(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	other, err := NewTokenManager(SigningConfig{
		Secret:     []byte("another-secret"),
		Issuer:     testSigning.Issuer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, revocation.NewMemoryLedger())
	require.NoError(t, err)
	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1", "jti": "x", "token_type": "access", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"tampered":       tampered,
		"foreign secret": foreign.AccessToken,
		"alg none":       noneToken,
	} {
		_, err := tm.Validate(ctx, raw, domain.TokenTypeAccess)
		assert.ErrorIs(t, err, ErrTokenMalformed, name)
	}
}

func TestValidateRejectsMissingClaims(t *testing.T) {
	tm, clk := newTestManager(t, nil)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		TokenType: domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testSigning.Issuer,
			ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour)),
		},
	}).SignedString(testSigning.Secret)
	require.NoError(t, err)

	_, err = tm.Validate(context.Background(), signed, domain.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRevokeThenValidateRefresh(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()

	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	claims, err := tm.Revoke(ctx, pair.RefreshToken, "")
	require.NoError(t, err)
	_, err = tm.Revoke(ctx, pair.RefreshToken, "")
	require.NoError(t, err, "revoking twice is not an error")

	revoked, err := tm.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// access tokens are not consulted against the ledger
	_, err = tm.Validate(ctx, pair.AccessToken, domain.TokenTypeAccess)
	assert.NoError(t, err)
}

func TestRevokeRejectsAccessAndMalformed(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	_, err = tm.Revoke(ctx, pair.AccessToken, "")
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = tm.Revoke(ctx, "junk", "")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRevokeAcceptsExpiredRefresh(t *testing.T) {
	tm, clk := newTestManager(t, nil)
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	clk.t = pair.RefreshExpiresAt.Add(time.Hour)
	_, err = tm.Revoke(context.Background(), pair.RefreshToken, "")
	assert.NoError(t, err)
}

func TestValidateFailsClosedWhenLedgerUnavailable(t *testing.T) {
	tm, _ := newTestManager(t, failingLedger{})
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	_, err = tm.Validate(context.Background(), pair.RefreshToken, domain.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = tm.Revoke(context.Background(), pair.RefreshToken, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenMalformed)

	claims, err := tm.inspect(pair.RefreshToken, domain.TokenTypeRefresh)
	require.NoError(t, err)
	assert.ErrorIs(t, tm.Consume(context.Background(), claims), ErrTokenRevoked)
}

func TestRevokeChecksOwner(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)

	_, err = tm.Revoke(ctx, pair.RefreshToken, "user-2")
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
	_, err = tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeRefresh)
	require.NoError(t, err, "a denied revoke writes nothing")

	claims, err := tm.Revoke(ctx, pair.RefreshToken, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID())
}

func TestConsumeSucceedsOnce(t *testing.T) {
	tm, _ := newTestManager(t, nil)
	ctx := context.Background()
	pair, err := tm.Issue("user-1")
	require.NoError(t, err)
	claims, err := tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeRefresh)
	require.NoError(t, err)

	require.NoError(t, tm.Consume(ctx, claims))
	assert.ErrorIs(t, tm.Consume(ctx, claims), ErrTokenRevoked)

	_, err = tm.Validate(ctx, pair.RefreshToken, domain.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
