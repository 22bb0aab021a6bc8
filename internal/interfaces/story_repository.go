package interfaces

import (
	"context"

	"adventure-server/internal/models"

	"github.com/google/uuid"
)

// StoryRepository persists and reads stories and their node trees.
type StoryRepository interface {
	// CreateStory inserts a new story row and assigns its identity.
	CreateStory(ctx context.Context, querier DBTX, story *models.Story) error

	// GetStoryByID returns models.ErrStoryNotFound when the story does not exist.
	GetStoryByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Story, error)

	// CreateNode inserts a new node row and assigns its identity. The node's
	// option list is persisted as given (typically empty at creation time).
	CreateNode(ctx context.Context, querier DBTX, node *models.StoryNode) error

	// UpdateNodeOptions replaces a node's option list with the resolved
	// child references.
	UpdateNodeOptions(ctx context.Context, querier DBTX, nodeID uuid.UUID, options []models.StoryOption) error

	// ListNodesByStoryID returns all nodes of a story in no particular order.
	ListNodesByStoryID(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]*models.StoryNode, error)

	// DeleteStory removes a story and, by cascade, all of its nodes.
	DeleteStory(ctx context.Context, querier DBTX, id uuid.UUID) error
}

// StoryJobRepository tracks generation jobs. The generation core only ever
// writes terminal outcomes; it never re-reads job state.
type StoryJobRepository interface {
	Create(ctx context.Context, querier DBTX, job *models.StoryJob) error

	// GetByID returns models.ErrJobNotFound when the job does not exist.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.StoryJob, error)

	// ListBySessionID returns the session's jobs, newest first.
	ListBySessionID(ctx context.Context, querier DBTX, sessionID string) ([]*models.StoryJob, error)

	MarkProcessing(ctx context.Context, querier DBTX, id uuid.UUID) error
	MarkCompleted(ctx context.Context, querier DBTX, id uuid.UUID, storyID uuid.UUID) error
	MarkFailed(ctx context.Context, querier DBTX, id uuid.UUID, errMsg string) error
}
