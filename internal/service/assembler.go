package service

import (
	"context"
	"fmt"

	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TreeAssembler is the read-side inverse of the TreeExpander: it loads the
// flat node rows of a story and reconstructs the identity-keyed tree view
// served to clients. It never mutates anything.
type TreeAssembler struct {
	storyRepo interfaces.StoryRepository
	logger    *zap.Logger
}

// NewTreeAssembler creates a tree assembler over the given story repository.
func NewTreeAssembler(storyRepo interfaces.StoryRepository, logger *zap.Logger) *TreeAssembler {
	return &TreeAssembler{
		storyRepo: storyRepo,
		logger:    logger.Named("TreeAssembler"),
	}
}

// Assemble loads every node of the story, keys the views by node identity
// and locates the unique root. A story without a root-flagged node is a
// prior integrity violation and surfaces as models.ErrRootNodeNotFound.
func (a *TreeAssembler) Assemble(ctx context.Context, querier interfaces.DBTX, story *models.Story) (*models.CompleteStoryResponse, error) {
	nodes, err := a.storyRepo.ListNodesByStoryID(ctx, querier, story.ID)
	if err != nil {
		return nil, err
	}

	allNodes := make(map[uuid.UUID]*models.CompleteStoryNodeResponse, len(nodes))
	var rootID uuid.UUID
	for _, node := range nodes {
		options := node.Options
		if options == nil {
			options = []models.StoryOption{}
		}
		allNodes[node.ID] = &models.CompleteStoryNodeResponse{
			ID:        node.ID,
			Content:   node.Content,
			IsEnding:  node.IsEnding,
			IsWinning: node.IsWinning,
			Options:   options,
		}
		if node.IsRoot {
			rootID = node.ID
		}
	}

	if rootID == uuid.Nil {
		a.logger.Error("Story has no root node", zap.String("storyID", story.ID.String()), zap.Int("nodes", len(nodes)))
		return nil, fmt.Errorf("%w: story %s", models.ErrRootNodeNotFound, story.ID)
	}

	return &models.CompleteStoryResponse{
		ID:        story.ID,
		Title:     story.Title,
		SessionID: story.SessionID,
		CreatedAt: story.CreatedAt,
		RootNode:  allNodes[rootID],
		AllNodes:  allNodes,
	}, nil
}
