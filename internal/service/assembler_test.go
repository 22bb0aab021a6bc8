package service_test

import (
	"context"
	"errors"
	"testing"

	"adventure-server/internal/mocks"
	"adventure-server/internal/models"
	"adventure-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTreeAssembler_RoundTrip(t *testing.T) {
	store := mocks.NewMemStore()
	mockAI := mocks.NewMockAIClient(t)
	generator := newTestGenerator(t, store, mockAI)
	assembler := service.NewTreeAssembler(store, zap.NewNop())
	ctx := context.Background()

	mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(validStoryJSON, nil).Once()

	story, err := generator.Generate(ctx, mocks.NopQuerier{}, "session-1", testTheme)
	require.NoError(t, err)

	complete, err := assembler.Assemble(ctx, mocks.NopQuerier{}, story)
	require.NoError(t, err)

	// The assembled view mirrors exactly what expansion persisted.
	assert.Equal(t, story.ID, complete.ID)
	assert.Equal(t, story.Title, complete.Title)
	assert.Equal(t, story.SessionID, complete.SessionID)
	assert.Len(t, complete.AllNodes, len(store.Nodes))

	require.NotNil(t, complete.RootNode)
	assert.False(t, complete.RootNode.IsEnding)
	require.Len(t, complete.RootNode.Options, 2)

	// Every option target resolves within the same story's node set.
	for _, node := range complete.AllNodes {
		for _, opt := range node.Options {
			assert.Contains(t, complete.AllNodes, opt.NodeID)
		}
		assert.Equal(t, node.IsEnding, len(node.Options) == 0)
	}

	// Walking from the root reaches every persisted node.
	visited := map[uuid.UUID]bool{}
	var walk func(id uuid.UUID)
	walk = func(id uuid.UUID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, opt := range complete.AllNodes[id].Options {
			walk(opt.NodeID)
		}
	}
	walk(complete.RootNode.ID)
	assert.Len(t, visited, len(complete.AllNodes))
}

func TestTreeAssembler_IdempotentRead(t *testing.T) {
	store := mocks.NewMemStore()
	mockAI := mocks.NewMockAIClient(t)
	generator := newTestGenerator(t, store, mockAI)
	assembler := service.NewTreeAssembler(store, zap.NewNop())
	ctx := context.Background()

	mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(validStoryJSON, nil).Once()

	story, err := generator.Generate(ctx, mocks.NopQuerier{}, "session-1", testTheme)
	require.NoError(t, err)

	first, err := assembler.Assemble(ctx, mocks.NopQuerier{}, story)
	require.NoError(t, err)
	second, err := assembler.Assemble(ctx, mocks.NopQuerier{}, story)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTreeAssembler_LoadFailure(t *testing.T) {
	mockRepo := mocks.NewMockStoryRepository(t)
	assembler := service.NewTreeAssembler(mockRepo, zap.NewNop())

	story := &models.Story{ID: uuid.New(), Title: "T", SessionID: "session-1"}
	mockRepo.On("ListNodesByStoryID", mock.Anything, mock.Anything, story.ID).
		Return(nil, errors.New("connection reset")).Once()

	_, err := assembler.Assemble(context.Background(), mocks.NopQuerier{}, story)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	mockRepo.AssertExpectations(t)
}

func TestTreeAssembler_MissingRoot(t *testing.T) {
	store := mocks.NewMemStore()
	assembler := service.NewTreeAssembler(store, zap.NewNop())
	ctx := context.Background()

	story := &models.Story{ID: uuid.New(), Title: "Broken", SessionID: "session-1"}
	require.NoError(t, store.CreateStory(ctx, mocks.NopQuerier{}, story))

	// A node set with no root-flagged node is a prior integrity violation.
	node := &models.StoryNode{StoryID: story.ID, Content: "orphan", IsEnding: true}
	require.NoError(t, store.CreateNode(ctx, mocks.NopQuerier{}, node))

	_, err := assembler.Assemble(ctx, mocks.NopQuerier{}, story)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRootNodeNotFound))
}

func TestTreeAssembler_TrivialStoryView(t *testing.T) {
	store := mocks.NewMemStore()
	mockAI := mocks.NewMockAIClient(t)
	generator := newTestGenerator(t, store, mockAI)
	assembler := service.NewTreeAssembler(store, zap.NewNop())
	ctx := context.Background()

	mockAI.On("GenerateStoryJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"title": "T", "rootNode": {"content": "C", "isEnding": true, "isWinningEnding": true, "options": []}}`, nil).Once()

	story, err := generator.Generate(ctx, mocks.NopQuerier{}, "session-1", testTheme)
	require.NoError(t, err)

	complete, err := assembler.Assemble(ctx, mocks.NopQuerier{}, story)
	require.NoError(t, err)

	assert.Len(t, complete.AllNodes, 1)
	require.NotNil(t, complete.RootNode)
	assert.True(t, complete.RootNode.IsEnding)
	assert.True(t, complete.RootNode.IsWinning)
	assert.Empty(t, complete.RootNode.Options)
}
