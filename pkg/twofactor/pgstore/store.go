package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofakit/pkg/twofactor"
)

// Store is the PostgreSQL implementation of twofactor.Storage. The
// pending->active promotion is a version-guarded UPDATE inside a
// transaction, so concurrent confirms against the same pending record are
// serialized by the database and exactly one wins.
type Store struct {
	db *pgxpool.Pool
}

// New creates a store on top of an existing connection pool (see pkg/pg
// for bootstrap helpers).
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetFactor(ctx context.Context, accountID uuid.UUID, status twofactor.FactorStatus) (*twofactor.SecondFactor, error) {
	const q = `
		SELECT secret, version, created_at
		FROM second_factors
		WHERE account_id = $1 AND status = $2
	`

	factor := twofactor.SecondFactor{
		AccountID: accountID,
		Status:    status,
	}
	err := s.db.QueryRow(ctx, q, accountID, status).Scan(
		&factor.Secret,
		&factor.Version,
		&factor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, twofactor.ErrFactorNotFound
		}
		return nil, fmt.Errorf("failed to query second factor: %w", err)
	}
	return &factor, nil
}

func (s *Store) PutPending(ctx context.Context, factor *twofactor.SecondFactor) error {
	// Upsert keyed on (account_id, status): a new enrollment supersedes the
	// prior pending secret and bumps the version so in-flight confirms of
	// the old secret lose their CAS.
	const q = `
		INSERT INTO second_factors (account_id, status, secret, created_at)
		VALUES ($1, 'pending', $2, $3)
		ON CONFLICT (account_id, status) DO UPDATE
		SET secret     = EXCLUDED.secret,
		    created_at = EXCLUDED.created_at,
		    version    = nextval('second_factor_version_seq')
	`

	createdAt := factor.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := s.db.Exec(ctx, q, factor.AccountID, factor.Secret, createdAt); err != nil {
		return fmt.Errorf("failed to store pending factor: %w", err)
	}
	return nil
}

func (s *Store) PromotePending(ctx context.Context, accountID uuid.UUID, version int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin promotion: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// Clearing the previous active row first keeps the (account_id, status)
	// key free for the promoted record within the same transaction, so the
	// account is never observed without an active factor mid-replacement.
	if _, err := tx.Exec(ctx,
		`DELETE FROM second_factors WHERE account_id = $1 AND status = 'active'`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to clear prior active factor: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE second_factors
		SET status = 'active'
		WHERE account_id = $1 AND status = 'pending' AND version = $2
	`, accountID, version)
	if err != nil {
		return fmt.Errorf("failed to promote pending factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a superseded secret from a missing one; either way
		// the transaction rolls back and the prior active factor survives.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM second_factors WHERE account_id = $1 AND status = 'pending')`,
			accountID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to inspect pending factor: %w", err)
		}
		if exists {
			return twofactor.ErrConcurrentUpdate
		}
		return twofactor.ErrFactorNotFound
	}

	// Recovery codes belong to the factor they were issued for.
	if _, err := tx.Exec(ctx,
		`DELETE FROM recovery_codes WHERE account_id = $1`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to clear recovery codes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit promotion: %w", err)
	}
	return nil
}

func (s *Store) DeletePending(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM second_factors WHERE account_id = $1 AND status = 'pending'`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to delete pending factor: %w", err)
	}
	return nil
}

func (s *Store) DeleteActive(ctx context.Context, accountID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin removal: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx,
		`DELETE FROM second_factors WHERE account_id = $1 AND status = 'active'`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete active factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrFactorNotFound
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM recovery_codes WHERE account_id = $1`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to delete recovery codes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}
	return nil
}

func (s *Store) ReplaceRecoveryCodes(ctx context.Context, accountID uuid.UUID, hashes []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin recovery code replacement: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`DELETE FROM recovery_codes WHERE account_id = $1`,
		accountID,
	); err != nil {
		return fmt.Errorf("failed to clear recovery codes: %w", err)
	}

	for _, hash := range hashes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO recovery_codes (account_id, code_hash) VALUES ($1, $2)`,
			accountID, hash,
		); err != nil {
			return fmt.Errorf("failed to insert recovery code: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recovery code replacement: %w", err)
	}
	return nil
}

func (s *Store) ConsumeRecoveryCode(ctx context.Context, accountID uuid.UUID, hash string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM recovery_codes WHERE account_id = $1 AND code_hash = $2`,
		accountID, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to consume recovery code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrRecoveryCodeNotFound
	}
	return nil
}

// PruneStalePending deletes pending factors older than the given age,
// bounding the enroll-confirm window. Intended to be run periodically by
// the caller's scheduler.
func (s *Store) PruneStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM second_factors WHERE status = 'pending' AND created_at < $1`,
		time.Now().Add(-olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale pending factors: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface assertion
var _ twofactor.Storage = (*Store)(nil)
