package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

const (
	createStoryQuery = `
INSERT INTO stories (id, title, session_id, created_at)
VALUES ($1, $2, $3, $4)`

	getStoryByIDQuery = `
SELECT id, title, session_id, created_at
FROM stories
WHERE id = $1`

	createStoryNodeQuery = `
INSERT INTO story_nodes (id, story_id, content, is_root, is_ending, is_winning, options)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateNodeOptionsQuery = `
UPDATE story_nodes SET options = $2 WHERE id = $1`

	listNodesByStoryIDQuery = `
SELECT id, story_id, content, is_root, is_ending, is_winning, options
FROM story_nodes
WHERE story_id = $1`

	deleteStoryQuery = `
DELETE FROM stories WHERE id = $1`
)

type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository creates a PostgreSQL-backed story repository.
func NewPgStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		logger: logger.Named("PgStoryRepo"),
	}
}

// CreateStory inserts a new story row, assigning its identity and creation
// timestamp when unset.
func (r *pgStoryRepository) CreateStory(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}

	_, err := querier.Exec(ctx, createStoryQuery,
		story.ID,
		story.Title,
		story.SessionID,
		story.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.String("sessionID", story.SessionID))
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Info("Story created", zap.String("storyID", story.ID.String()), zap.String("title", story.Title))
	return nil
}

// GetStoryByID retrieves a story by its unique ID.
func (r *pgStoryRepository) GetStoryByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	err := querier.QueryRow(ctx, getStoryByIDQuery, id).Scan(
		&story.ID,
		&story.Title,
		&story.SessionID,
		&story.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Story not found", zap.String("storyID", id.String()))
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.Error(err), zap.String("storyID", id.String()))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

// CreateNode inserts a new node row, assigning its identity when unset.
func (r *pgStoryRepository) CreateNode(ctx context.Context, querier interfaces.DBTX, node *models.StoryNode) error {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	if node.Options == nil {
		node.Options = []models.StoryOption{}
	}

	optionsJSON, err := json.Marshal(node.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal node options: %w", err)
	}

	_, err = querier.Exec(ctx, createStoryNodeQuery,
		node.ID,
		node.StoryID,
		node.Content,
		node.IsRoot,
		node.IsEnding,
		node.IsWinning,
		optionsJSON,
	)
	if err != nil {
		r.logger.Error("Failed to create story node",
			zap.Error(err),
			zap.String("storyID", node.StoryID.String()),
			zap.Bool("isRoot", node.IsRoot),
		)
		return fmt.Errorf("failed to create story node: %w", err)
	}
	r.logger.Debug("Story node created", zap.String("nodeID", node.ID.String()), zap.String("storyID", node.StoryID.String()))
	return nil
}

// UpdateNodeOptions replaces a node's option list with resolved child
// references after the children have been persisted.
func (r *pgStoryRepository) UpdateNodeOptions(ctx context.Context, querier interfaces.DBTX, nodeID uuid.UUID, options []models.StoryOption) error {
	if options == nil {
		options = []models.StoryOption{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal node options: %w", err)
	}

	tag, err := querier.Exec(ctx, updateNodeOptionsQuery, nodeID, optionsJSON)
	if err != nil {
		r.logger.Error("Failed to update node options", zap.Error(err), zap.String("nodeID", nodeID.String()))
		return fmt.Errorf("failed to update options for node %s: %w", nodeID, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Node options update affected no rows", zap.String("nodeID", nodeID.String()))
		return models.ErrNotFound
	}
	return nil
}

// ListNodesByStoryID returns every node belonging to a story. No ordering is
// guaranteed; callers key the result by node identity.
func (r *pgStoryRepository) ListNodesByStoryID(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.StoryNode, error) {
	var nodes []*models.StoryNode
	if err := pgxscan.Select(ctx, querier, &nodes, listNodesByStoryIDQuery, storyID); err != nil {
		r.logger.Error("Failed to list story nodes", zap.Error(err), zap.String("storyID", storyID.String()))
		return nil, fmt.Errorf("failed to list nodes for story %s: %w", storyID, err)
	}
	return nodes, nil
}

// DeleteStory removes a story; its nodes are removed by cascade.
func (r *pgStoryRepository) DeleteStory(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	tag, err := querier.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.Error(err), zap.String("storyID", id.String()))
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story deleted", zap.String("storyID", id.String()))
	return nil
}
