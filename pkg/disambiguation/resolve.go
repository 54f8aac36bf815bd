package disambiguation

import (
	"strconv"
	"strings"
)

// stopwords is the fixed selection-time stopword list: generic words that
// must not participate in option matching.
var stopwords = map[string]bool{
	"fee": true, "card": true, "bdt": true, "usd": true, "per": true,
	"transaction": true, "amount": true, "annual": true, "fees": true,
	"charge": true, "charges": true, "year": true, "month": true,
	"rate": true, "percent": true, "with": true, "for": true, "the": true,
	"and": true, "of": true, "to": true, "is": true, "on": true,
	"a": true, "an": true, "interest": true, "loan": true, "credit": true,
	"debit": true,
}

// Outcome is the result of resolving a user utterance against a pending
// AWAITING_SELECTION state.
type Outcome string

const (
	OutcomeResolved   Outcome = "RESOLVED"
	OutcomeReprompted Outcome = "REPROMPTED"
)

// Resolve interprets an utterance as a selection among options: numeric
// selection first, then token/match-key scoring with strict-majority
// tie-breaking.
func Resolve(utterance string, options []Option) (Outcome, *Option) {
	if n, ok := parseOrdinal(utterance); ok && n >= 1 && n <= len(options) {
		return OutcomeResolved, &options[n-1]
	}

	tokens := contentTokens(utterance)
	if len(tokens) == 0 {
		return OutcomeReprompted, nil
	}

	scores := make([]int, len(options))
	for i, opt := range options {
		for _, tok := range tokens {
			for _, key := range opt.MatchKeys {
				if strings.Contains(strings.ToLower(key), tok) {
					scores[i]++
					break
				}
			}
		}
	}

	bestIdx, bestScore, ties := -1, 0, 0
	for i, s := range scores {
		if s > bestScore {
			bestIdx, bestScore, ties = i, s, 1
		} else if s == bestScore && s > 0 {
			ties++
		}
	}

	if bestScore > 0 && ties == 1 {
		return OutcomeResolved, &options[bestIdx]
	}
	return OutcomeReprompted, nil
}

func parseOrdinal(utterance string) (int, bool) {
	for _, tok := range strings.Fields(utterance) {
		tok = strings.Trim(tok, ".,!?")
		if n, err := strconv.Atoi(tok); err == nil {
			return n, true
		}
	}
	return 0, false
}

func contentTokens(utterance string) []string {
	fields := strings.Fields(strings.ToLower(utterance))
	var out []string
	for _, f := range fields {
		f = strings.Trim(f, ".,!?&")
		if len(f) < 3 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
