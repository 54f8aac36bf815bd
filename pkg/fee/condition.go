package fee

import (
	"errors"
	"fmt"
)

// ErrNoteResolutionRequired signals a NOTE_BASED condition: the caller must
// not guess and must surface the note reference instead.
type ErrNoteResolutionRequired struct {
	NoteReference string
}

func (e *ErrNoteResolutionRequired) Error() string {
	return fmt.Sprintf("fee requires note resolution: %s", e.NoteReference)
}

var errNoMatchingTier = errors.New("fee: no matching tiered step")

// Evaluate computes the fee amount and currency for a selected rule,
// interpreting its condition kind. rules is the full
// active rule set, needed for FREE_UPTO_N's re-run-selection chaining.
func Evaluate(rule Rule, q Query, rules []Rule) (amount float64, currency string, err error) {
	switch rule.Condition {
	case ConditionNone:
		return rule.FeeValue, rule.FeeCurrency, nil

	case ConditionWhicheverHigher:
		percentAmount := 0.0
		if q.Amount != nil {
			percentAmount = *q.Amount * rule.PercentRate / 100
		}
		if percentAmount > rule.FixedMinimum {
			return percentAmount, rule.FeeCurrency, nil
		}
		return rule.FixedMinimum, rule.FeeCurrency, nil

	case ConditionFreeUpToN:
		if q.UsageIndex != nil && *q.UsageIndex <= rule.FreeEntitlementCount {
			return 0, rule.FeeCurrency, nil
		}
		next, ok := selectNextTier(rule, rules, q)
		if !ok {
			return 0, rule.FeeCurrency, nil
		}
		return Evaluate(*next, q, rules)

	case ConditionTiered:
		return evaluateTiered(rule, q)

	case ConditionNoteBased:
		return 0, "", &ErrNoteResolutionRequired{NoteReference: rule.NoteReference}

	default:
		return rule.FeeValue, rule.FeeCurrency, nil
	}
}

// selectNextTier re-runs selection for the next matching rule of the same
// charge type, excluding the rule already consumed, preserving the same
// precedence rules.
func selectNextTier(consumed Rule, rules []Rule, q Query) (*Rule, bool) {
	var remaining []Rule
	for _, r := range rules {
		if r.RuleID == consumed.RuleID {
			continue
		}
		remaining = append(remaining, r)
	}
	return SelectRule(remaining, q)
}

func evaluateTiered(rule Rule, q Query) (float64, string, error) {
	if len(rule.TieredSteps) == 0 {
		return 0, "", errNoMatchingTier
	}
	amount := 0.0
	if q.Amount != nil {
		amount = *q.Amount
	}

	// Step 1: tier rate.
	step := rule.TieredSteps[0]
	value := step.Rate
	if step.IsPercent {
		value = amount * step.Rate / 100
	}

	// Step 2: tier-local max.
	if len(rule.TieredSteps) > 1 {
		if max := rule.TieredSteps[1].Max; max != nil && value > *max {
			value = *max
		}
	}
	// Step 3: global min.
	if len(rule.TieredSteps) > 2 {
		if min := rule.TieredSteps[2].Min; min != nil && value < *min {
			value = *min
		}
	}
	// Step 4: global max.
	if len(rule.TieredSteps) > 3 {
		if max := rule.TieredSteps[3].Max; max != nil && value > *max {
			value = *max
		}
	}

	return value, rule.FeeCurrency, nil
}
