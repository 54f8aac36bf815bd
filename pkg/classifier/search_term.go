package classifier

import (
	"regexp"
	"strings"
)

var leadingInterrogativeRE = regexp.MustCompile(`^(who|what|where|when|why|how)\s+(is|are|was|were)?\s*`)
var courtesyRE = regexp.MustCompile(`^(please|could you|can you|tell me)\s+`)
var trailingOrgRE = regexp.MustCompile(`\s+(of|at)\s+(the\s+)?(bank|ebl|company|our\s+bank)\b.*$`)
var divisionWordRE = regexp.MustCompile(`\b(division|department|wing|desk)\b`)
var roleWordRE = regexp.MustCompile(`\b(head|manager|director|in-charge|incharge|chief|lead)\b`)
var leadingPrepositionRE = regexp.MustCompile(`^(of|for|about|is)\s+`)

// extractSearchTerm cleans an already-lowercased directory utterance down
// to the residual person/role search term.
func extractSearchTerm(lower string) string {
	s := lower

	if m := divisionHeadRE.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]) + " head"
	}
	if m := divisionHeadOfRE.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}

	s = leadingInterrogativeRE.ReplaceAllString(s, "")
	s = courtesyRE.ReplaceAllString(s, "")
	for _, cue := range directoryCues {
		s = strings.ReplaceAll(s, cue, "")
	}
	s = trailingOrgRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
	s = strings.Trim(s, "?.! ")
	s = leadingPrepositionRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	if divisionWordRE.MatchString(s) && !roleWordRE.MatchString(s) {
		s = strings.TrimSpace(s) + " head"
	}

	return s
}
