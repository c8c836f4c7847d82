// Package totp implements the RFC 6238 time-based one-time password
// primitives used by the second-factor state machine: secret generation,
// otpauth URI construction for authenticator onboarding, code
// generation/verification with bounded clock-skew tolerance, and AES-256-GCM
// helpers for sealing secrets before they are persisted.
//
// The package is deliberately self-contained and free of third-party TOTP
// libraries so that the codec stays pure computation, testable at fixed
// timestamps and framework-agnostic.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.ProvisioningURI(secret, "alice@example.com", "Acme")
//	key := totp.ManualEntryKey(secret) // "A2B4 C6D8 ..." for manual setup
//
//	ok, _ := totp.VerifyCode(secret, "123456", time.Now())
//
// Code verification accepts the current 30-second step and one step on
// either side; every candidate comparison runs in constant time.
//
// Secrets destined for storage should be sealed first:
//
//	cfg, _ := totp.LoadConfig() // reads TWOFA_ENCRYPTION_KEY
//	key, _ := totp.EncryptionKey(cfg)
//	sealed, _ := totp.SealSecret(secret, key)
//
// Every exported operation returns sentinel errors (ErrInvalidSecret,
// ErrInvalidCodeFormat, ErrEntropyUnavailable, ...) suitable for errors.Is.
package totp
