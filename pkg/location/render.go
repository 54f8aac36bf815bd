package location

import (
	"fmt"
	"strings"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
)

const bankName = "EBL"

// Render builds the RenderedAnswer for a successful /locations response.
// Count-style queries begin with a count sentence so the number is
// prominent.
func Render(q Query, resp ServiceResponse) answer.RenderedAnswer {
	var b strings.Builder
	if q.IsCount {
		b.WriteString(fmt.Sprintf("%s has %d %s.", bankName, resp.Total, pluralizeType(q.Type, resp.Total)))
	} else {
		b.WriteString(fmt.Sprintf("%s has %d %s matching your request:", bankName, resp.Total, pluralizeType(q.Type, resp.Total)))
	}
	for _, loc := range resp.Locations {
		b.WriteString("\n- ")
		b.WriteString(loc.Name)
		if loc.Address.Line1 != "" {
			b.WriteString(", ")
			b.WriteString(loc.Address.Line1)
		}
		if loc.Address.City != "" {
			b.WriteString(", ")
			b.WriteString(loc.Address.City)
		}
	}
	return answer.Authoritative(b.String())
}

// RenderFailure is the scripted message for a location-service error,
// which the orchestrator treats as a location failure, never a retrieval
// fallback.
func RenderFailure() answer.RenderedAnswer {
	return answer.Authoritative("I couldn't reach the branch/ATM locator right now. Please try again shortly.")
}

func pluralizeType(t Type, n int) string {
	label := typeLabel(t)
	if n == 1 {
		return label
	}
	return label + "(s)"
}

func typeLabel(t Type) string {
	switch t {
	case TypeBranch:
		return "Branch"
	case TypeATM:
		return "ATM"
	case TypeCRM:
		return "CRM"
	case TypeRTDM:
		return "RTDM"
	case TypePriorityCenter:
		return "Priority Center"
	case TypeHeadOffice:
		return "Head Office"
	default:
		return string(t)
	}
}
