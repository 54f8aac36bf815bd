package generative

import (
	"strings"

	"github.com/ebl-digital/chat-orchestrator/pkg/tokens"
)

// SystemPrompt is the deployment-time constant system prompt. It folds
// currency-preservation, out-of-scope refusal, and context-preference
// rules into one ordered, uniquely numbered list rather than the
// duplicated restatements.
const SystemPrompt = `You are the EBL virtual assistant.
1. Answer only questions about EBL products, services, fees, locations, staff directory, and published policy or reports.
2. If the user asks something outside that scope, politely decline and redirect to EBL customer service.
3. Prefer the information in the provided context block over any prior knowledge; if the context is empty and the question requires specific facts, say you do not have that information rather than guessing.
4. Preserve currency codes and amounts exactly as given in the context (e.g. "BDT 287.50" must never become "Tk 287.5" or "$287.50").
5. Keep responses concise and professional.`

// BuildContextBlock wraps a retrieval result (or empty context for small
// talk) with a header identifying its source.
func BuildContextBlock(context string) string {
	if strings.TrimSpace(context) == "" {
		return "[context: none (small talk)]"
	}
	return "[context: retrieval]\n" + context
}

// TruncateTranscript keeps the most recent turns that fit within
// maxTokens under model's tokenizer, dropping oldest first, then returns
// them in chronological order for prompt assembly.
func TruncateTranscript(turns []Turn, model string, maxTokens int) []Turn {
	var kept []Turn
	budget := maxTokens
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		n, err := tokens.Count(t.Content, model)
		if err != nil {
			n = len(t.Content) / 4
		}
		if n > budget && len(kept) > 0 {
			break
		}
		kept = append(kept, t)
		budget -= n
		if budget <= 0 {
			break
		}
	}
	// kept is newest-first; reverse to chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
