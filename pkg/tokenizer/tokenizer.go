package tokenizer

import (
	"strings"
)

// CountTokens provides a rough token count estimate (~4 chars per token for
// English). Exact counts would require a model-specific tokenizer.
func CountTokens(text string) int {
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}
