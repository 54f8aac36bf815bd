package directory

import (
	"fmt"
	"strings"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
)

// Render builds the verbatim RenderedAnswer for one or more matched
// employees: name, designation, email, mobile, and IP phone per row.
func Render(results []Employee) answer.RenderedAnswer {
	var b strings.Builder
	if len(results) == 1 {
		b.WriteString(describe(results[0]))
	} else {
		b.WriteString(fmt.Sprintf("I found %d matching entries in the directory:", len(results)))
		for _, e := range results {
			b.WriteString("\n- ")
			b.WriteString(describe(e))
		}
	}
	return answer.Authoritative(b.String())
}

func describe(e Employee) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s (%s)", e.FullName, nonEmpty(e.Designation, "designation not on file")))
	if e.Email != "" {
		parts = append(parts, "email: "+e.Email)
	}
	if e.Mobile != "" {
		parts = append(parts, "mobile: "+e.Mobile)
	}
	if e.IPPhone != "" {
		parts = append(parts, "IP phone: "+e.IPPhone)
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// RenderNotFound is the scripted "not found in directory" message.
func RenderNotFound() answer.RenderedAnswer {
	return answer.Authoritative("I couldn't find anyone matching that in the staff directory.")
}

// RenderUnavailable is the scripted, user-visible apology for a directory
// store error. The failure is user-visible, but retrieval fallback is
// still suppressed.
func RenderUnavailable() answer.RenderedAnswer {
	return answer.Authoritative("I couldn't reach the staff directory right now. Please try again in a moment.")
}
