package schemas_test

import (
	"errors"
	"testing"

	"adventure-server/internal/models"
	"adventure-server/internal/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoryResponse_TrivialStory(t *testing.T) {
	raw := `{
		"title": "T",
		"rootNode": {
			"content": "C",
			"isEnding": true,
			"isWinningEnding": true,
			"options": []
		}
	}`

	resp, err := schemas.ParseStoryResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "T", resp.Title)
	assert.Equal(t, "C", resp.RootNode.Content)
	assert.True(t, resp.RootNode.IsEnding)
	assert.True(t, resp.RootNode.IsWinningEnding)
	assert.Empty(t, resp.RootNode.Options)
}

func TestParseStoryResponse_BranchingStory(t *testing.T) {
	raw := `{
		"title": "The Cave",
		"rootNode": {
			"content": "You stand at the mouth of a cave.",
			"isEnding": false,
			"isWinningEnding": false,
			"options": [
				{
					"text": "Enter the cave",
					"nextNode": {"content": "Treasure!", "isEnding": true, "isWinningEnding": true}
				},
				{
					"text": "Walk away",
					"nextNode": {"content": "You trip and fall.", "isEnding": true, "isWinningEnding": false}
				}
			]
		}
	}`

	resp, err := schemas.ParseStoryResponse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, resp.RootNode.Options, 2)
	assert.Equal(t, "Enter the cave", resp.RootNode.Options[0].Text)
	assert.True(t, resp.RootNode.Options[0].NextNode.IsWinningEnding)
	assert.False(t, resp.RootNode.Options[1].NextNode.IsWinningEnding)
}

func TestParseStoryResponse_InvalidJSON(t *testing.T) {
	_, err := schemas.ParseStoryResponse([]byte(`{"title": "broken`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidStorySchema))
}

func TestParseStoryResponse_Violations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "empty title",
			raw:  `{"title": " ", "rootNode": {"content": "C", "isEnding": true, "isWinningEnding": false}}`,
		},
		{
			name: "missing root node",
			raw:  `{"title": "T"}`,
		},
		{
			name: "empty content",
			raw:  `{"title": "T", "rootNode": {"content": "", "isEnding": true, "isWinningEnding": false}}`,
		},
		{
			name: "option without text",
			raw: `{"title": "T", "rootNode": {"content": "C", "isEnding": false, "isWinningEnding": false,
				"options": [{"text": "", "nextNode": {"content": "X", "isEnding": true, "isWinningEnding": false}}]}}`,
		},
		{
			name: "option without next node",
			raw: `{"title": "T", "rootNode": {"content": "C", "isEnding": false, "isWinningEnding": false,
				"options": [{"text": "Go"}]}}`,
		},
		{
			name: "invalid nested node",
			raw: `{"title": "T", "rootNode": {"content": "C", "isEnding": false, "isWinningEnding": false,
				"options": [{"text": "Go", "nextNode": {"content": "", "isEnding": true, "isWinningEnding": false}}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schemas.ParseStoryResponse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidStorySchema))
		})
	}
}

// An ending node carrying options is accepted: ending status wins and the
// options are dropped later, during expansion.
func TestParseStoryResponse_EndingWithOptionsAccepted(t *testing.T) {
	raw := `{
		"title": "T",
		"rootNode": {
			"content": "C",
			"isEnding": true,
			"isWinningEnding": false,
			"options": [
				{"text": "Ghost option", "nextNode": {"content": "X", "isEnding": true, "isWinningEnding": false}}
			]
		}
	}`

	resp, err := schemas.ParseStoryResponse([]byte(raw))
	require.NoError(t, err)
	assert.True(t, resp.RootNode.IsEnding)
}

// A non-ending node with no options is an accepted dead-end, not a
// validation error.
func TestParseStoryResponse_DeadEndAccepted(t *testing.T) {
	raw := `{
		"title": "T",
		"rootNode": {"content": "C", "isEnding": false, "isWinningEnding": false, "options": []}
	}`

	resp, err := schemas.ParseStoryResponse([]byte(raw))
	require.NoError(t, err)
	assert.False(t, resp.RootNode.IsEnding)
	assert.Empty(t, resp.RootNode.Options)
}

func TestResponseJSONSchema_Shape(t *testing.T) {
	schema, name := schemas.ResponseJSONSchema()
	assert.Equal(t, "generate_adventure_story", name)

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "title")
	assert.Contains(t, props, "rootNode")

	defs, ok := schema["$defs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, defs, "storyNode")
}
