package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value in constant time.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CheckPasswordPolicy returns ErrWeakPassword (with a reason in Details) when the
// password is too short, purely numeric or longer than bcrypt accepts.
func CheckPasswordPolicy(password string, minLength int) error {
	if len([]rune(password)) < minLength {
		return ErrWeakPassword.WithDetails(map[string]any{
			"reason":     "too_short",
			"min_length": minLength,
		})
	}
	if len(password) > 72 {
		return ErrWeakPassword.WithDetails(map[string]any{"reason": "too_long", "max_bytes": 72})
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return ErrWeakPassword.WithDetails(map[string]any{"reason": "entirely_numeric"})
	}
	return nil
}
