package service

import "fmt"

const storySystemPrompt = `You are a creative story writer that creates engaging choose-your-own-adventure stories.
Generate a complete branching story where every path eventually reaches an ending node.
Each non-ending node must offer meaningful, distinct choices. Ending nodes must offer no choices.
Mark exactly the successful conclusions with isWinningEnding; at least one path should be winnable.
Respond only with a story matching the required JSON structure.`

// buildStoryUserPrompt renders the user prompt for one generation: the theme
// plus the structural budget that bounds tree size. The budget is
// communicated to the model rather than enforced during expansion.
func buildStoryUserPrompt(theme string, maxDepth, maxOptions int) string {
	return fmt.Sprintf(
		"Create a choose-your-own-adventure story with this theme: %s.\n"+
			"Keep the story tree at most %d levels deep and give each non-ending node at most %d options.",
		theme, maxDepth, maxOptions,
	)
}
