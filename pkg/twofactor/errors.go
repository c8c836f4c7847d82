package twofactor

import "errors"

// State machine errors
var (
	ErrNoPendingEnrollment  = errors.New("no pending enrollment")
	ErrNoActiveSecondFactor = errors.New("no active second factor")
	ErrInvalidCode          = errors.New("invalid one-time code")
	ErrInvalidRecoveryCode  = errors.New("invalid recovery code")
)

// Authorization errors
var (
	ErrPasswordMismatch = errors.New("password does not match")
)

// Storage errors
var (
	ErrFactorNotFound       = errors.New("second factor not found")
	ErrRecoveryCodeNotFound = errors.New("recovery code not found")
	ErrConcurrentUpdate     = errors.New("second factor changed concurrently")
)

// Recovery code errors
var (
	ErrInvalidRecoveryCodeCount     = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode = errors.New("failed to generate recovery code")
)
