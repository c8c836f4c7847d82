package twofactor_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofakit/pkg/twofactor"
)

// MockStorage is a mock implementation of twofactor.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetFactor(ctx context.Context, accountID uuid.UUID, status twofactor.FactorStatus) (*twofactor.SecondFactor, error) {
	args := m.Called(ctx, accountID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.SecondFactor), args.Error(1)
}

func (m *MockStorage) PutPending(ctx context.Context, factor *twofactor.SecondFactor) error {
	args := m.Called(ctx, factor)
	return args.Error(0)
}

func (m *MockStorage) PromotePending(ctx context.Context, accountID uuid.UUID, version int64) error {
	args := m.Called(ctx, accountID, version)
	return args.Error(0)
}

func (m *MockStorage) DeletePending(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockStorage) DeleteActive(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockStorage) ReplaceRecoveryCodes(ctx context.Context, accountID uuid.UUID, hashes []string) error {
	args := m.Called(ctx, accountID, hashes)
	return args.Error(0)
}

func (m *MockStorage) ConsumeRecoveryCode(ctx context.Context, accountID uuid.UUID, hash string) error {
	args := m.Called(ctx, accountID, hash)
	return args.Error(0)
}
