package auth

import (
	"net/http"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// Authentication failures. Each is a DomainError so the HTTP layer renders its code as-is;
// match them with errors.Is.
var (
	ErrInvalidCredentials  = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	ErrDuplicateEmail      = apperrors.NewDomainError("DUPLICATE_EMAIL", "email already registered", http.StatusBadRequest, nil)
	ErrWeakPassword        = apperrors.NewDomainError("WEAK_PASSWORD", "password does not meet policy", http.StatusBadRequest, nil)
	ErrTokenMalformed      = apperrors.NewDomainError("TOKEN_MALFORMED", "token is malformed or has an invalid signature", http.StatusUnauthorized, nil)
	ErrTokenExpired        = apperrors.NewDomainError("TOKEN_EXPIRED", "token has expired", http.StatusUnauthorized, nil)
	ErrTokenRevoked        = apperrors.NewDomainError("TOKEN_REVOKED", "token has been revoked", http.StatusUnauthorized, nil)
	ErrWrongTokenType      = apperrors.NewDomainError("WRONG_TOKEN_TYPE", "token type is not accepted here", http.StatusUnauthorized, nil)
	ErrUnknownSubject      = apperrors.NewDomainError("UNKNOWN_SUBJECT", "token subject no longer exists", http.StatusUnauthorized, nil)
	ErrMissingToken        = apperrors.NewDomainError("TOKEN_MISSING", "missing bearer token", http.StatusUnauthorized, nil)
	ErrAuthorizationDenied = apperrors.NewDomainError("AUTHORIZATION_DENIED", "insufficient permission", http.StatusForbidden, nil)
)
