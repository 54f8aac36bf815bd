package location

import (
	"regexp"
	"strings"
)

var typeVocabulary = []struct {
	phrase string
	typ    Type
}{
	{"priority center", TypePriorityCenter},
	{"priority centre", TypePriorityCenter},
	{"head office", TypeHeadOffice},
	{"branch", TypeBranch},
	{"atm", TypeATM},
	{"crm", TypeCRM},
	{"rtdm", TypeRTDM},
}

var countRE = regexp.MustCompile(`\b(how many|count of|number of)\b`)

// Extract builds a Query from a location-tagged utterance, defaulting to
// TypeBranch if no specific type is mentioned. IsCount is set for
// "how many" phrasing, which renders count-first.
func Extract(utterance string) Query {
	lower := strings.ToLower(utterance)

	q := Query{Type: TypeBranch, Limit: 20}
	for _, tv := range typeVocabulary {
		if strings.Contains(lower, tv.phrase) {
			q.Type = tv.typ
			break
		}
	}
	q.IsCount = countRE.MatchString(lower)

	if city := extractAfterCue(lower, "in "); city != "" {
		q.City = city
	}
	return q
}

func extractAfterCue(lower, cue string) string {
	idx := strings.Index(lower, cue)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(lower[idx+len(cue):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "?.,!")
}
