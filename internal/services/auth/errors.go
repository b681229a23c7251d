package auth

import "errors"

var (
	// ErrDuplicate is returned by UsersRepo.Create when the email is taken.
	ErrDuplicate = errors.New("user with this email already exists")
	// ErrUserNotFound is returned by UsersRepo lookups that match nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrRegistrationFailed masks duplicate-email details from callers.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrGenAccessToken is returned when we cannot create a JWT.
	ErrGenAccessToken = errors.New("failed to generate access token")

	// ErrMissingToken means no credential was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers bad signatures, wrong algorithms, expiry and malformed claims.
	ErrInvalidToken = errors.New("invalid or expired token")
)
