package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-engine/internal/scoring"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAssessment(ctx context.Context, borrowerID uuid.UUID) (*scoring.Assessment, bool, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*scoring.Assessment), args.Bool(1), args.Error(2)
}

func (m *MockStore) SetAssessment(ctx context.Context, borrowerID uuid.UUID, assessment *scoring.Assessment, ttl time.Duration) error {
	args := m.Called(ctx, borrowerID, assessment, ttl)
	return args.Error(0)
}

func (m *MockStore) InvalidateAssessment(ctx context.Context, borrowerID uuid.UUID) error {
	args := m.Called(ctx, borrowerID)
	return args.Error(0)
}

func (m *MockStore) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
