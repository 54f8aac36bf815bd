package fee

// SelectRule picks the winning rule among active rules matching the
// requested charge type: higher priority wins; tie-break on specificity
// score; further tie-break on most recent effective_from. fee_value is
// never consulted as a tie-breaker.
func SelectRule(rules []Rule, q Query) (*Rule, bool) {
	var candidates []Rule
	for _, r := range rules {
		if q.ChargeType != "" && r.ChargeType != q.ChargeType {
			continue
		}
		if !isAny(string(r.Category)) && !isAny(string(q.Category)) && r.Category != q.Category {
			continue
		}
		if !isAny(r.Network) && !isAny(q.Network) && r.Network != q.Network {
			continue
		}
		if !isAny(r.Product) && !isAny(q.Product) && !matchesProduct(r.Product, q.Product) {
			continue
		}
		if !q.AsOfDate.IsZero() {
			if !r.EffectiveFrom.IsZero() && q.AsOfDate.Before(r.EffectiveFrom) {
				continue
			}
			if !r.EffectiveTo.IsZero() && q.AsOfDate.After(r.EffectiveTo) {
				continue
			}
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if betterRule(c, best) {
			best = c
		}
	}
	return &best, true
}

func betterRule(a, b Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	aScore, bScore := specificity(a), specificity(b)
	if aScore != bScore {
		return aScore > bScore
	}
	return a.EffectiveFrom.After(b.EffectiveFrom)
}

// specificity = 2*(category != ANY) + 2*(network != ANY) + 2*(product not NULL/empty/ANY).
func specificity(r Rule) int {
	score := 0
	if !isAny(string(r.Category)) {
		score += 2
	}
	if !isAny(r.Network) {
		score += 2
	}
	if !isAny(r.Product) {
		score += 2
	}
	return score
}
