package fee

import "strings"

// canonicalNetworks maps every case-insensitive alias to the fee service's
// canonical network token.
var canonicalNetworks = map[string]string{
	"visa":              "VISA",
	"mastercard":        "MASTERCARD",
	"master card":       "MASTERCARD",
	"amex":              "AMEX",
	"american express":  "AMEX",
	"unionpay":          "UnionPay International",
	"union pay":         "UnionPay International",
}

// NormalizeNetwork converts a free-text network mention to its canonical
// service token, or "" if unrecognized.
func NormalizeNetwork(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	return canonicalNetworks[key]
}

// productVariations lists compound product names before their bare word,
// so compound names win extraction priority: a
// mention of "UnionPay Classic" must not be captured by the bare "Classic"
// rule in isolation, but a later lookup by bare "Classic" is also tried.
var productVariations = []string{
	"unionpay classic", "classic",
	"unionpay gold", "gold",
	"unionpay platinum", "platinum",
	"visa platinum", "platinum",
	"visa signature", "signature",
	"visa infinite", "infinite",
	"mastercard titanium", "titanium",
	"mastercard world", "world",
	"silver",
}

// SplitDisjunction splits a product name on "/" into its alternatives, e.g.
// "Platinum/Titanium" -> ["Platinum", "Titanium"].
func SplitDisjunction(raw string) []string {
	parts := strings.Split(raw, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesProduct reports whether candidate (a rule's product field, which
// may itself contain a "/" disjunction) matches requested, case-insensitive.
func matchesProduct(candidate, requested string) bool {
	if isAny(candidate) || isAny(requested) {
		return true
	}
	reqLower := strings.ToLower(requested)
	for _, alt := range SplitDisjunction(candidate) {
		if strings.EqualFold(alt, requested) {
			return true
		}
		if strings.Contains(strings.ToLower(alt), reqLower) || strings.Contains(reqLower, strings.ToLower(alt)) {
			return true
		}
	}
	return false
}

// ExpandProductMentions finds every known product name mentioned in text
// (longest compound names first), returning canonical product tokens with
// duplicates removed while preserving first-seen order.
func ExpandProductMentions(text string) []string {
	lower := strings.ReplaceAll(strings.ToLower(text), "union pay", "unionpay")
	seen := make(map[string]bool)
	var out []string
	i := 0
	for i < len(productVariations) {
		name := productVariations[i]
		if strings.Contains(lower, name) {
			canon := canonicalProductName(name)
			if !seen[canon] {
				seen[canon] = true
				out = append(out, canon)
			}
		}
		i++
	}
	return out
}

func canonicalProductName(name string) string {
	switch name {
	case "unionpay classic":
		return "Classic"
	case "unionpay gold":
		return "Gold"
	case "unionpay platinum", "visa platinum":
		return "Platinum"
	case "visa signature":
		return "Signature"
	case "visa infinite":
		return "Infinite"
	case "mastercard titanium":
		return "Titanium"
	case "mastercard world":
		return "World"
	default:
		return strings.ToUpper(name[:1]) + name[1:]
	}
}
