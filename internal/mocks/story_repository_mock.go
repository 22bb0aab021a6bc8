package mocks

import (
	"context"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

func (_m *MockStoryRepository) CreateStory(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	ret := _m.Called(ctx, querier, story)
	return ret.Error(0)
}

func (_m *MockStoryRepository) GetStoryByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) CreateNode(ctx context.Context, querier interfaces.DBTX, node *models.StoryNode) error {
	ret := _m.Called(ctx, querier, node)
	return ret.Error(0)
}

func (_m *MockStoryRepository) UpdateNodeOptions(ctx context.Context, querier interfaces.DBTX, nodeID uuid.UUID, options []models.StoryOption) error {
	ret := _m.Called(ctx, querier, nodeID, options)
	return ret.Error(0)
}

func (_m *MockStoryRepository) ListNodesByStoryID(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.StoryNode, error) {
	ret := _m.Called(ctx, querier, storyID)

	var r0 []*models.StoryNode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.StoryNode)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) DeleteStory(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	ret := _m.Called(ctx, querier, id)
	return ret.Error(0)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)
