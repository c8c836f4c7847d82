package totp

import "errors"

var (
	ErrEntropyUnavailable = errors.New("secure randomness source unavailable")
	ErrInvalidSecret      = errors.New("invalid secret")
	ErrInvalidCodeFormat  = errors.New("invalid one-time code format")
	ErrMissingSecret      = errors.New("missing secret")
	ErrMissingAccountName = errors.New("missing account name")
	ErrMissingIssuer      = errors.New("missing issuer")

	ErrFailedToSealSecret         = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret         = errors.New("failed to open sealed TOTP secret")
	ErrCipherTooShort             = errors.New("cipher text too short")
	ErrInvalidEncryptionKeyLength = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet        = errors.New("TOTP encryption key not set")
	ErrFailedToLoadEncryptionKey  = errors.New("failed to load encryption key")
)
