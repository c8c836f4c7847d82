package twofactor

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists second factors and recovery codes per account. Every
// method is a single atomic transition: implementations must serialize the
// pending->active promotion per account (compare-and-swap on Version or an
// equivalent per-account lock) so that concurrent confirms cannot both
// promote a secret.
type Storage interface {
	// GetFactor returns the account's factor in the given status, or
	// ErrFactorNotFound.
	GetFactor(ctx context.Context, accountID uuid.UUID, status FactorStatus) (*SecondFactor, error)

	// PutPending stores a pending factor, replacing any prior pending one
	// for the account. The active factor, if any, is not touched. The
	// stored Version must change on every write.
	PutPending(ctx context.Context, factor *SecondFactor) error

	// PromotePending atomically promotes the account's pending factor to
	// active, replacing any prior active factor, iff the pending factor's
	// Version still equals version. Returns ErrFactorNotFound when no
	// pending factor exists and ErrConcurrentUpdate when the version check
	// fails.
	PromotePending(ctx context.Context, accountID uuid.UUID, version int64) error

	// DeletePending discards the pending factor, if any.
	DeletePending(ctx context.Context, accountID uuid.UUID) error

	// DeleteActive removes the active factor and the account's recovery
	// codes. Returns ErrFactorNotFound when no active factor exists.
	DeleteActive(ctx context.Context, accountID uuid.UUID) error

	// ReplaceRecoveryCodes stores the hashed recovery codes for the
	// account, discarding any previous set.
	ReplaceRecoveryCodes(ctx context.Context, accountID uuid.UUID, hashes []string) error

	// ConsumeRecoveryCode removes one unused recovery code matching hash,
	// or returns ErrRecoveryCodeNotFound.
	ConsumeRecoveryCode(ctx context.Context, accountID uuid.UUID, hash string) error
}
