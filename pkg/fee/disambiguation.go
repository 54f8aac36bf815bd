package fee

import (
	"fmt"
	"strconv"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
)

// BuildPrompt turns an ambiguous Extraction into an AWAITING_SELECTION
// prompt, one Option per candidate network or product, carrying the
// already-known query attributes forward in Context so ResolveSelection
// can complete the query once the user picks one.
func BuildPrompt(e Extraction) answer.Prompt {
	var candidates []string
	var paramKey, promptText string
	switch e.Reason {
	case "ambiguous_product":
		candidates = e.Products
		paramKey = "product"
	case "ambiguous_category":
		for _, c := range e.Categories {
			candidates = append(candidates, string(c))
		}
		paramKey = "category"
	default:
		candidates = e.Networks
		paramKey = "network"
	}

	options := make([]answer.Option, 0, len(candidates))
	for i, c := range candidates {
		options = append(options, answer.Option{
			Label:      fmt.Sprintf("%d. %s", i+1, c),
			AnswerText: c,
			MatchKeys:  []string{c},
			Params:     map[string]string{paramKey: c},
		})
	}

	switch e.Reason {
	case "ambiguous_product":
		promptText = "Which product did you mean: " + joinOr(candidates) + "?"
	case "ambiguous_category":
		// "credit" and "debit" are selection-time stopwords, so token
		// matching cannot resolve these options; steer to a numeric reply.
		promptText = "Which card category did you mean: " + joinOr(candidates) + "? Reply with the number."
	default:
		promptText = "Which card network did you mean: " + joinOr(candidates) + "?"
	}

	return answer.Prompt{Kind: "card_product", PromptText: promptText, Options: options, Context: contextFromQuery(e.Query)}
}

// contextFromQuery serializes the already-resolved fields of a partial
// Query into the opaque carry-over map so a later ResolveSelection call can
// reconstruct it without re-parsing the original utterance.
func contextFromQuery(q Query) map[string]string {
	ctx := make(map[string]string)
	if q.ChargeType != "" {
		ctx["charge_type"] = string(q.ChargeType)
	}
	if q.Category != "" {
		ctx["category"] = string(q.Category)
	}
	if q.ProductLine != "" {
		ctx["product_line"] = q.ProductLine
	}
	if q.Currency != "" {
		ctx["currency"] = q.Currency
	}
	if q.Amount != nil {
		ctx["amount"] = strconv.FormatFloat(*q.Amount, 'f', -1, 64)
	}
	if q.Network != "" {
		ctx["network"] = q.Network
	}
	if q.Product != "" {
		ctx["product"] = q.Product
	}
	return ctx
}

// queryFromContext reconstructs a partial Query from a carry-over map
// produced by contextFromQuery.
func queryFromContext(ctx map[string]string) Query {
	q := Query{Category: CategoryAny}
	if v, ok := ctx["charge_type"]; ok {
		q.ChargeType = ChargeType(v)
	}
	if v, ok := ctx["category"]; ok && v != "" {
		q.Category = CardCategory(v)
	}
	if v, ok := ctx["product_line"]; ok {
		q.ProductLine = v
	}
	if v, ok := ctx["currency"]; ok {
		q.Currency = v
	}
	if v, ok := ctx["amount"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.Amount = &f
		}
	}
	if v, ok := ctx["network"]; ok {
		q.Network = v
	}
	if v, ok := ctx["product"]; ok {
		q.Product = v
	}
	return q
}

func joinOr(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			if i == len(items)-1 {
				out += " or "
			} else {
				out += ", "
			}
		}
		out += it
	}
	return out
}
