package auth

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// Text codes surfaced to clients for machine readable rejections.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
)

// ErrNoEmptyString rejects empty required values
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the single signal for a failed password
// comparison. A missing user collapses into it too so callers cannot tell
// the cases apart.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is what login surfaces for both unknown users and
// wrong passwords, preventing account enumeration.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned when registering an email that already exists.
// The service reports this as a 400, not a 409.
var ErrEmailTaken = errors.New("Email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenExpired covers tokens with a valid signature past their expiry.
// Rejected tokens map to 403 while a missing token maps to 401.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuthz).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// ErrTokenMalformed covers bad structure and bad signatures alike.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuthz).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeForbidden)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden)

// HTTPStatus resolves the response status for an error. Rich errors carry
// their own code; everything else is an opaque 500.
func HTTPStatus(err error) int {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return 500
	}

	if rich.Code > 0 {
		return rich.Code
	}

	switch rich.Category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return 400
	case errors.CategoryAuth:
		return 401
	case errors.CategoryAuthz:
		return 403
	case errors.CategoryNotFound:
		return 404
	default:
		return 500
	}
}

// IsUniqueViolation checks for duplicate key errors. The repository layer
// maps driver duplicates to its own category; the raw driver messages are
// still checked along the chain for errors that bypass it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) {
		if rich.Category == repository.CategoryDatabaseDuplicate || rich.Code == errors.CodeConflict {
			return true
		}
	}

	for e := err; e != nil; e = stderrors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") ||
			strings.Contains(msg, "Duplicate entry") {
			return true
		}
	}

	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired
}

// IsMalformedError will check for tokens that fail verification for any
// reason other than expiry, plus the guard's missing-token sentinel
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || errors.Is(err, ErrUnableToMapClaims) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "missing or malformed JWT")
}
