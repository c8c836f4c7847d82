package twofactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofakit/pkg/totp"
)

// Service is the enrollment/verification/removal state machine for a single
// account's second factor: absent -> pending (Enroll) -> active (Confirm),
// back to absent via Remove. Password policy is deliberately not embedded
// here; callers consult Policy before Enroll/Remove so the same state
// machine serves every credential kind.
type Service interface {
	// Enroll generates a fresh secret, stores it as the account's pending
	// factor (superseding any prior pending one, never touching an active
	// one) and returns the provisioning material.
	Enroll(ctx context.Context, account Account) (*ProvisioningMaterial, error)

	// Confirm verifies code against the pending secret and, on success,
	// atomically promotes it to active, replacing any previously active
	// factor. The returned strings are freshly issued single-use recovery
	// codes; they are shown to the user once and stored only as hashes.
	// A wrong code returns ErrInvalidCode and leaves the pending factor
	// confirmable again.
	Confirm(ctx context.Context, account Account, code string) ([]string, error)

	// PendingMaterial regenerates the provisioning material from the
	// account's pending secret, e.g. for re-rendering the QR code during
	// the enroll-confirm window. It is never derivable from an active
	// factor, so an activated secret cannot be re-exposed.
	PendingMaterial(ctx context.Context, account Account) (*ProvisioningMaterial, error)

	// Remove deletes the account's active factor, or returns
	// ErrNoActiveSecondFactor.
	Remove(ctx context.Context, account Account) error

	// HasActive reports whether the account has a confirmed second factor.
	HasActive(ctx context.Context, account Account) (bool, error)

	// UseRecoveryCode consumes one of the account's single-use recovery
	// codes, or returns ErrInvalidRecoveryCode.
	UseRecoveryCode(ctx context.Context, account Account, code string) error
}

type service struct {
	storage           Storage
	issuer            string
	logger            *slog.Logger
	now               func() time.Time
	encryptionKey     []byte
	recoveryCodeCount int
}

// Option configures the service during construction.
type Option func(*service)

// WithLogger sets the logger for lifecycle diagnostics. Errors are never
// logged, only returned; the default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for code verification and
// record timestamps. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithEncryptionKey enables AES-256-GCM sealing of secrets before they
// reach storage. The key must be EncryptionKeySize bytes (see pkg/totp).
func WithEncryptionKey(key []byte) Option {
	return func(s *service) {
		s.encryptionKey = key
	}
}

// WithRecoveryCodeCount sets how many recovery codes Confirm issues.
// Zero disables recovery codes.
func WithRecoveryCodeCount(count int) Option {
	return func(s *service) {
		s.recoveryCodeCount = count
	}
}

// NewService creates the second-factor state machine. The issuer is the
// service name displayed in authenticator apps.
func NewService(storage Storage, issuer string, opts ...Option) Service {
	s := &service{
		storage:           storage,
		issuer:            issuer,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:               time.Now,
		recoveryCodeCount: 10,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Enroll(ctx context.Context, account Account) (*ProvisioningMaterial, error) {
	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(secret, account.Email, s.issuer)
	if err != nil {
		return nil, err
	}

	stored, err := s.sealSecret(secret)
	if err != nil {
		return nil, err
	}

	factor := &SecondFactor{
		AccountID: account.ID,
		Secret:    stored,
		Status:    FactorStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.storage.PutPending(ctx, factor); err != nil {
		return nil, fmt.Errorf("failed to store pending factor: %w", err)
	}

	s.logger.DebugContext(ctx, "second factor enrollment started",
		slog.String("account_id", account.ID.String()),
	)

	return &ProvisioningMaterial{
		URI:            uri,
		ManualEntryKey: totp.ManualEntryKey(secret),
	}, nil
}

func (s *service) PendingMaterial(ctx context.Context, account Account) (*ProvisioningMaterial, error) {
	factor, err := s.storage.GetFactor(ctx, account.ID, FactorStatusPending)
	if err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return nil, ErrNoPendingEnrollment
		}
		return nil, fmt.Errorf("failed to load pending factor: %w", err)
	}

	secret, err := s.openSecret(factor.Secret)
	if err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(secret, account.Email, s.issuer)
	if err != nil {
		return nil, err
	}

	return &ProvisioningMaterial{
		URI:            uri,
		ManualEntryKey: totp.ManualEntryKey(secret),
	}, nil
}

func (s *service) Confirm(ctx context.Context, account Account, code string) ([]string, error) {
	factor, err := s.storage.GetFactor(ctx, account.ID, FactorStatusPending)
	if err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return nil, ErrNoPendingEnrollment
		}
		return nil, fmt.Errorf("failed to load pending factor: %w", err)
	}

	secret, err := s.openSecret(factor.Secret)
	if err != nil {
		return nil, err
	}

	ok, err := totp.VerifyCode(secret, code, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	if err := s.storage.PromotePending(ctx, account.ID, factor.Version); err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return nil, ErrNoPendingEnrollment
		}
		return nil, fmt.Errorf("failed to promote pending factor: %w", err)
	}

	s.logger.DebugContext(ctx, "second factor activated",
		slog.String("account_id", account.ID.String()),
	)

	if s.recoveryCodeCount < 1 {
		return nil, nil
	}

	codes, err := GenerateRecoveryCodes(s.recoveryCodeCount)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = HashRecoveryCode(c)
	}
	if err := s.storage.ReplaceRecoveryCodes(ctx, account.ID, hashes); err != nil {
		return nil, fmt.Errorf("failed to store recovery codes: %w", err)
	}

	return codes, nil
}

func (s *service) Remove(ctx context.Context, account Account) error {
	if err := s.storage.DeleteActive(ctx, account.ID); err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return ErrNoActiveSecondFactor
		}
		return fmt.Errorf("failed to delete active factor: %w", err)
	}

	s.logger.DebugContext(ctx, "second factor removed",
		slog.String("account_id", account.ID.String()),
	)
	return nil
}

func (s *service) HasActive(ctx context.Context, account Account) (bool, error) {
	_, err := s.storage.GetFactor(ctx, account.ID, FactorStatusActive)
	if err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load active factor: %w", err)
	}
	return true, nil
}

func (s *service) UseRecoveryCode(ctx context.Context, account Account, code string) error {
	if _, err := s.storage.GetFactor(ctx, account.ID, FactorStatusActive); err != nil {
		if errors.Is(err, ErrFactorNotFound) {
			return ErrNoActiveSecondFactor
		}
		return fmt.Errorf("failed to load active factor: %w", err)
	}

	hash := HashRecoveryCode(NormalizeRecoveryCode(code))
	if err := s.storage.ConsumeRecoveryCode(ctx, account.ID, hash); err != nil {
		if errors.Is(err, ErrRecoveryCodeNotFound) {
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("failed to consume recovery code: %w", err)
	}
	return nil
}

func (s *service) sealSecret(secret string) (string, error) {
	if s.encryptionKey == nil {
		return secret, nil
	}
	return totp.SealSecret(secret, s.encryptionKey)
}

func (s *service) openSecret(stored string) (string, error) {
	if s.encryptionKey == nil {
		return stored, nil
	}
	return totp.OpenSecret(stored, s.encryptionKey)
}

// Compile-time interface assertion
var _ Service = (*service)(nil)
