package answer

import (
	"strings"

	"github.com/hyperifyio/goanswer/internal/rank"
)

// GroundedPrompt assembles the web-grounded prompt: each ranked source as a
// citation-tagged block, then the question. The trailing "You:" framing pairs
// with the generation stop sequence so the model does not invent the user's
// next turn.
func GroundedPrompt(query string, sources []rank.Ranked) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Answer the question using ONLY the web sources below. ")
	sb.WriteString("Mention which source supports each claim. If the sources do not cover the question, say so.\n")
	for _, s := range sources {
		sb.WriteString("\n[Source: ")
		sb.WriteString(s.URL)
		sb.WriteString("]\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nYou: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAssistant:")
	return sb.String()
}

// GeneralPrompt assembles the knowledge-only fallback prompt, used when the
// query is not a web search or when no usable sources were found.
func GeneralPrompt(query string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Answer from your general knowledge, concisely and factually.\n")
	sb.WriteString("\nYou: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAssistant:")
	return sb.String()
}
