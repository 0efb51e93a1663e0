package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.NoError(t, ComparePassword(hash, "Secret123"))
	assert.Error(t, ComparePassword(hash, "secret123"))
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		reason   string
	}{
		{password: "Secret123"},
		{password: "short1", reason: "too_short"},
		{password: "12345678901", reason: "entirely_numeric"},
		{password: strings.Repeat("a", 73), reason: "too_long"},
	}

	for _, tc := range cases {
		err := CheckPasswordPolicy(tc.password, 8)
		if tc.reason == "" {
			assert.NoError(t, err, tc.password)
			continue
		}
		require.ErrorIs(t, err, ErrWeakPassword, tc.password)
		var de *apperrors.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, tc.reason, de.Details["reason"])
	}
}
