package service

import (
	"context"
	"fmt"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"
	"adventure-server/internal/schemas"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TreeExpander materializes an in-memory schema tree into persisted node
// rows. Expansion is depth-first and strictly sequential: a child's identity
// must exist before it can appear in its parent's option list, so recursion
// happens first and the parent's options are written last.
type TreeExpander struct {
	storyRepo interfaces.StoryRepository
	logger    *zap.Logger
}

// NewTreeExpander creates a tree expander over the given story repository.
func NewTreeExpander(storyRepo interfaces.StoryRepository, logger *zap.Logger) *TreeExpander {
	return &TreeExpander{
		storyRepo: storyRepo,
		logger:    logger.Named("TreeExpander"),
	}
}

// Expand persists one schema node and its whole subtree under the given
// story, returning the identity of the created node. Any store error aborts
// the expansion and propagates to the caller, which is expected to roll back
// the surrounding transaction.
func (e *TreeExpander) Expand(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID, node *schemas.StoryNode, isRoot bool) (uuid.UUID, error) {
	record := &models.StoryNode{
		StoryID:   storyID,
		Content:   node.Content,
		IsRoot:    isRoot,
		IsEnding:  node.IsEnding,
		IsWinning: node.IsEnding && node.IsWinningEnding,
		Options:   []models.StoryOption{},
	}

	if err := e.storyRepo.CreateNode(ctx, querier, record); err != nil {
		return uuid.Nil, fmt.Errorf("failed to persist node: %w", err)
	}

	// Ending wins: options attached to an ending node are dropped. A
	// non-ending node without options stays a dead-end.
	if node.IsEnding || len(node.Options) == 0 {
		return record.ID, nil
	}

	options := make([]models.StoryOption, 0, len(node.Options))
	for _, opt := range node.Options {
		childID, err := e.Expand(ctx, querier, storyID, opt.NextNode, false)
		if err != nil {
			return uuid.Nil, err
		}
		options = append(options, models.StoryOption{
			Text:   opt.Text,
			NodeID: childID,
		})
	}

	if err := e.storyRepo.UpdateNodeOptions(ctx, querier, record.ID, options); err != nil {
		return uuid.Nil, fmt.Errorf("failed to persist node options: %w", err)
	}

	e.logger.Debug("Node subtree expanded",
		zap.String("nodeID", record.ID.String()),
		zap.Int("options", len(options)),
		zap.Bool("isRoot", isRoot),
	)
	return record.ID, nil
}
