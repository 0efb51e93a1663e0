package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

// CredentialStore verifies and creates identities.
type CredentialStore struct {
	users      repository.UserRepository
	bcryptCost int
	minLength  int
	dummyHash  []byte
}

// NewCredentialStore builds a store over the user repository.
func NewCredentialStore(users repository.UserRepository, bcryptCost, minPasswordLength int) (*CredentialStore, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the email is unknown so both failure paths cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		users:      users,
		bcryptCost: bcryptCost,
		minLength:  minPasswordLength,
		dummyHash:  dummy,
	}, nil
}

// Verify returns the identity for email if password matches; ErrInvalidCredentials otherwise.
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Create registers a new identity in a single insert. Fails with ErrWeakPassword or
// ErrDuplicateEmail.
func (s *CredentialStore) Create(ctx context.Context, email, name, password string, isAdmin bool) (*domain.User, error) {
	if err := s.CheckPassword(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        domain.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// SetPassword replaces the identity's password hash after applying the policy.
func (s *CredentialStore) SetPassword(user *domain.User, password string) error {
	if err := s.CheckPassword(password); err != nil {
		return err
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// CheckPassword applies the configured password policy.
func (s *CredentialStore) CheckPassword(password string) error {
	return CheckPasswordPolicy(password, s.minLength)
}
