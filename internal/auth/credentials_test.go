package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shop-service/internal/repository"
)

func newCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(repository.NewMemoryStore().Users(), bcrypt.MinCost, 8)
	require.NoError(t, err)
	return store
}

func TestCredentialStoreCreateAndVerify(t *testing.T) {
	store := newCredentialStore(t)
	ctx := context.Background()

	user, err := store.Create(ctx, "  A@X.com ", "Alice", "Secret123", false)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.ID)

	verified, err := store.Verify(ctx, "a@X.COM", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestCredentialStoreVerifyFailures(t *testing.T) {
	store := newCredentialStore(t)
	ctx := context.Background()
	_, err := store.Create(ctx, "a@x.com", "", "Secret123", false)
	require.NoError(t, err)

	_, err = store.Verify(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Verify(ctx, "nobody@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialStoreDuplicateEmailIgnoresCase(t *testing.T) {
	store := newCredentialStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "a@x.com", "", "Secret123", false)
	require.NoError(t, err)

	_, err = store.Create(ctx, "A@X.COM", "", "Other4567", false)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCredentialStoreWeakPassword(t *testing.T) {
	store := newCredentialStore(t)

	_, err := store.Create(context.Background(), "a@x.com", "", "12345678", false)
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestCredentialStoreConcurrentRegistrationSameEmail(t *testing.T) {
	store := newCredentialStore(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		duplicate int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, "race@x.com", "", "Secret123", false)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, ErrDuplicateEmail) {
				duplicate++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, duplicate)
}
