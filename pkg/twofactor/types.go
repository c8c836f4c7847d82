package twofactor

import (
	"time"

	"github.com/google/uuid"
)

// CredentialKind tags how an account authenticates its primary credential.
type CredentialKind string

const (
	// CredentialKindPassword marks accounts with a usable password.
	CredentialKindPassword CredentialKind = "password"
	// CredentialKindUnusablePassword marks SSO-only accounts that have no
	// password to confirm.
	CredentialKindUnusablePassword CredentialKind = "unusable_password"
)

// Account is the opaque identity handle passed into every operation. It is
// owned by the external identity store; this package reads the credential
// kind and password hash and never mutates either.
type Account struct {
	ID             uuid.UUID
	Email          string // account label shown in authenticator apps
	CredentialKind CredentialKind
	PasswordHash   []byte // bcrypt hash, empty for SSO-only accounts
}

// FactorStatus is the lifecycle state of a stored second factor.
type FactorStatus string

const (
	FactorStatusPending FactorStatus = "pending"
	FactorStatusActive  FactorStatus = "active"
)

// SecondFactor is one enrolled TOTP method. An account holds at most one
// active and at most one pending factor; the pending one exists only during
// the enroll-confirm window and is superseded by any new enrollment.
type SecondFactor struct {
	AccountID uuid.UUID
	Secret    string // Base32 secret, sealed with AES-256-GCM when a key is configured
	Status    FactorStatus
	CreatedAt time.Time
	Version   int64 // storage CAS token guarding the pending->active transition
}

// ProvisioningMaterial is the derived, non-persisted view of a pending
// factor handed back to the caller exactly once, at enrollment. It is the
// only secret-bearing data that ever crosses the boundary.
type ProvisioningMaterial struct {
	URI            string // otpauth:// URI for QR rendering
	ManualEntryKey string // grouped Base32 secret for manual transcription
}
