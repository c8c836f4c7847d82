// Package twofactor implements the TOTP second-factor lifecycle for user
// accounts: enrollment, confirmation, removal, and the authorization policy
// that decides when those actions additionally require password re-entry.
//
// # State machine
//
// An account's second factor moves through three states:
//
//	absent --Enroll--> pending --Confirm--> active --Remove--> absent
//
// Enroll provisions a fresh secret and returns the otpauth URI and manual
// entry key exactly once; a repeated Enroll supersedes the pending secret
// without touching an active factor. Confirm verifies a one-time code
// against the pending secret and promotes it atomically, replacing any
// previously active factor in the same storage transition, so an account is
// never left without an active factor mid-replacement. Remove deletes the
// active factor.
//
// # Authorization policy
//
// Accounts with a usable password must re-confirm it before Enroll/Remove;
// SSO-only accounts have no password to confirm and instead prove live
// possession via code entry. Policy encapsulates that branching so the
// state machine itself stays credential-kind agnostic:
//
//	policy := twofactor.NewPolicy()
//	if policy.RequiresPasswordConfirmation(account) {
//	    if err := policy.Authorize(account, suppliedPassword); err != nil {
//	        return err // ErrPasswordMismatch; do not touch the service
//	    }
//	}
//	material, err := svc.Enroll(ctx, account)
//
// # Storage
//
// All state is scoped per account behind the Storage interface. MemoryStore
// serves tests and development; the pgstore subpackage persists factors in
// PostgreSQL with a version-guarded promotion so concurrent Confirm calls
// cannot both win. Secrets can be sealed with AES-256-GCM before they reach
// storage (WithEncryptionKey).
//
// All failures are returned as sentinel errors (ErrNoPendingEnrollment,
// ErrInvalidCode, ErrPasswordMismatch, ...) for errors.Is dispatch; the
// package never logs errors or renders anything.
package twofactor
