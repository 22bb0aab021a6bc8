// Package schemas defines the shape contract for LLM-generated stories and
// validates raw model output against it before anything is persisted.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"adventure-server/internal/models"
)

// StoryOption is one choice offered to the player. NextNode embeds the full
// subtree this option leads to; the contract is recursive, not reference
// based.
type StoryOption struct {
	Text     string     `json:"text"`
	NextNode *StoryNode `json:"nextNode"`
}

// StoryNode is one narrative beat as produced by the model. Options must be
// non-empty exactly when IsEnding is false; an ending node's options are
// ignored.
type StoryNode struct {
	Content         string        `json:"content"`
	IsEnding        bool          `json:"isEnding"`
	IsWinningEnding bool          `json:"isWinningEnding"`
	Options         []StoryOption `json:"options,omitempty"`
}

// StoryResponse is the top-level generation result.
type StoryResponse struct {
	Title    string     `json:"title"`
	RootNode *StoryNode `json:"rootNode"`
}

// ParseStoryResponse decodes and validates one raw model response. It either
// returns a fully validated tree or an error wrapping
// models.ErrInvalidStorySchema; partial trees are never returned.
func ParseStoryResponse(raw []byte) (*StoryResponse, error) {
	var resp StoryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidStorySchema, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate checks the whole tree against the generation contract.
func (r *StoryResponse) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is empty", models.ErrInvalidStorySchema)
	}
	if r.RootNode == nil {
		return fmt.Errorf("%w: rootNode is missing", models.ErrInvalidStorySchema)
	}
	return validateNode(r.RootNode, "rootNode")
}

func validateNode(node *StoryNode, path string) error {
	if strings.TrimSpace(node.Content) == "" {
		return fmt.Errorf("%w: %s: content is empty", models.ErrInvalidStorySchema, path)
	}
	if node.IsEnding {
		// Ending wins: any options the model attached are dropped during
		// expansion, not rejected here.
		return nil
	}
	// A non-ending node without options is an implicit dead-end and is
	// accepted; only malformed options are rejected.
	for i, opt := range node.Options {
		optPath := fmt.Sprintf("%s.options[%d]", path, i)
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("%w: %s: text is empty", models.ErrInvalidStorySchema, optPath)
		}
		if opt.NextNode == nil {
			return fmt.Errorf("%w: %s: nextNode is missing", models.ErrInvalidStorySchema, optPath)
		}
		if err := validateNode(opt.NextNode, optPath+".nextNode"); err != nil {
			return err
		}
	}
	return nil
}

// ResponseJSONSchema returns the JSON schema object and its name, suitable
// for the OpenAI response_format.json_schema field. The node shape recurses
// through $defs so the model is constrained to the exact tree contract.
func ResponseJSONSchema() (schema map[string]interface{}, schemaName string) {
	schemaName = "generate_adventure_story"
	nodeDef := map[string]interface{}{
		"type":                 "object",
		"description":          "One narrative beat of the story.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"content":         map[string]interface{}{"type": "string", "description": "The main content of the story node."},
			"isEnding":        map[string]interface{}{"type": "boolean", "description": "Whether this node is an ending node."},
			"isWinningEnding": map[string]interface{}{"type": "boolean", "description": "Whether this ending node is a winning ending. Only meaningful when isEnding is true."},
			"options": map[string]interface{}{
				"type":        "array",
				"description": "Choices available at this node. MUST be empty when isEnding is true and non-empty otherwise.",
				"items": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"text":     map[string]interface{}{"type": "string", "description": "The option text shown to the player."},
						"nextNode": map[string]interface{}{"$ref": "#/$defs/storyNode"},
					},
					"required": []string{"text", "nextNode"},
				},
			},
		},
		"required": []string{"content", "isEnding", "isWinningEnding", "options"},
	}
	schema = map[string]interface{}{
		"type":                 "object",
		"description":          "A complete branching choose-your-own-adventure story.",
		"additionalProperties": false,
		"$defs":                map[string]interface{}{"storyNode": nodeDef},
		"properties": map[string]interface{}{
			"title":    map[string]interface{}{"type": "string", "description": "The title of the story."},
			"rootNode": map[string]interface{}{"$ref": "#/$defs/storyNode"},
		},
		"required": []string{"title", "rootNode"},
	}
	return schema, schemaName
}
