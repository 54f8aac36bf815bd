package retrieval

import (
	"strings"

	"github.com/ebl-digital/chat-orchestrator/pkg/shared/stringutil"
)

// format produces the canonical context string from a raw service
// response. If the service supplied a non-template response string, that
// string is authoritative; otherwise entities, relationships, and chunks
// are stitched in that order, so later instructions that reference
// "entities" can find them scanned before chunks.
func format(raw RawResponse) string {
	if isUsableResponse(raw.Response) {
		return stringutil.StripMarkup(raw.Response)
	}

	var b strings.Builder
	if len(raw.Entities) > 0 {
		b.WriteString("Entities:\n")
		for _, e := range raw.Entities {
			b.WriteString("- ")
			b.WriteString(e.Name)
			if e.Description != "" {
				b.WriteString(": ")
				b.WriteString(stringutil.StripMarkup(e.Description))
			}
			b.WriteString("\n")
		}
	}
	if len(raw.Relationships) > 0 {
		b.WriteString("Relationships:\n")
		for _, r := range raw.Relationships {
			b.WriteString("- ")
			b.WriteString(r.Source)
			b.WriteString(" -> ")
			b.WriteString(r.Target)
			if r.Description != "" {
				b.WriteString(": ")
				b.WriteString(stringutil.StripMarkup(r.Description))
			}
			b.WriteString("\n")
		}
	}
	if len(raw.Chunks) > 0 {
		b.WriteString("Chunks:\n")
		for _, c := range raw.Chunks {
			b.WriteString("- ")
			if c.Source != "" {
				b.WriteString("[" + c.Source + "] ")
			}
			b.WriteString(stringutil.StripMarkup(c.Content))
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// templateResponses lists known placeholder strings the service emits
// instead of a real answer, e.g. when nothing relevant was found.
var templateResponses = map[string]bool{
	"":                          true,
	"no relevant context found.": true,
	"{response}":                 true,
}

func isUsableResponse(response string) bool {
	return !templateResponses[strings.ToLower(strings.TrimSpace(response))]
}
