package service

import (
	"context"
	"fmt"

	"adventure-server/internal/config"
	"adventure-server/internal/interfaces"
	"adventure-server/internal/models"
	"adventure-server/internal/schemas"

	"go.uber.org/zap"
)

// StoryGenerator orchestrates one end-to-end generation: theme in, one
// complete persisted story tree out, or an error. It performs exactly one
// model invocation per call and delegates persistence of the node tree to
// the TreeExpander.
type StoryGenerator struct {
	aiClient  AIClient
	storyRepo interfaces.StoryRepository
	expander  *TreeExpander
	cfg       *config.Config
	logger    *zap.Logger
}

// NewStoryGenerator wires a story generator from its collaborators.
func NewStoryGenerator(
	aiClient AIClient,
	storyRepo interfaces.StoryRepository,
	expander *TreeExpander,
	cfg *config.Config,
	logger *zap.Logger,
) *StoryGenerator {
	return &StoryGenerator{
		aiClient:  aiClient,
		storyRepo: storyRepo,
		expander:  expander,
		cfg:       cfg,
		logger:    logger.Named("StoryGenerator"),
	}
}

// Generate invokes the model once for the given theme, validates the
// response against the narrative schema, and persists the story with its
// whole node tree through the supplied querier. Schema violations surface
// as models.ErrInvalidStorySchema and transport failures as
// models.ErrGenerationFailed; neither is retried here.
func (g *StoryGenerator) Generate(ctx context.Context, querier interfaces.DBTX, sessionID, theme string) (*models.Story, error) {
	userPrompt := buildStoryUserPrompt(theme, g.cfg.StoryMaxDepth, g.cfg.StoryMaxOptions)

	raw, err := g.aiClient.GenerateStoryJSON(ctx, storySystemPrompt, userPrompt)
	if err != nil {
		g.logger.Error("AI invocation failed", zap.Error(err), zap.String("theme", theme))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	resp, err := schemas.ParseStoryResponse([]byte(raw))
	if err != nil {
		g.logger.Error("Model response failed schema validation", zap.Error(err), zap.String("theme", theme))
		return nil, err
	}

	story := &models.Story{
		Title:     resp.Title,
		SessionID: sessionID,
	}
	if err := g.storyRepo.CreateStory(ctx, querier, story); err != nil {
		return nil, err
	}

	rootID, err := g.expander.Expand(ctx, querier, story.ID, resp.RootNode, true)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Story generated",
		zap.String("storyID", story.ID.String()),
		zap.String("rootNodeID", rootID.String()),
		zap.String("title", story.Title),
	)
	return story, nil
}
