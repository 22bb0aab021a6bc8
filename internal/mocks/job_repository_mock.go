package mocks

import (
	"context"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryJobRepository is a mock type for the StoryJobRepository type
type MockStoryJobRepository struct {
	mock.Mock
}

func (_m *MockStoryJobRepository) Create(ctx context.Context, querier interfaces.DBTX, job *models.StoryJob) error {
	ret := _m.Called(ctx, querier, job)
	return ret.Error(0)
}

func (_m *MockStoryJobRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.StoryJob, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryJobRepository) ListBySessionID(ctx context.Context, querier interfaces.DBTX, sessionID string) ([]*models.StoryJob, error) {
	ret := _m.Called(ctx, querier, sessionID)

	var r0 []*models.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.StoryJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryJobRepository) MarkProcessing(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	ret := _m.Called(ctx, querier, id)
	return ret.Error(0)
}

func (_m *MockStoryJobRepository) MarkCompleted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, storyID uuid.UUID) error {
	ret := _m.Called(ctx, querier, id, storyID)
	return ret.Error(0)
}

func (_m *MockStoryJobRepository) MarkFailed(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, errMsg string) error {
	ret := _m.Called(ctx, querier, id, errMsg)
	return ret.Error(0)
}

// NewMockStoryJobRepository creates a new instance of MockStoryJobRepository. It also registers a testing interface on the mock.
func NewMockStoryJobRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryJobRepository {
	m := &MockStoryJobRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.StoryJobRepository = (*MockStoryJobRepository)(nil)
