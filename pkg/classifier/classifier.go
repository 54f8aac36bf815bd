// Package classifier implements the pure, total query classifier: a
// deterministic, case-insensitive mapping from an utterance to a
// Classification.
package classifier

import (
	"regexp"
	"strings"
)

// Classification is the tag set plus the extracted directory search term.
type Classification struct {
	SmallTalk       bool
	DirectoryLookup bool
	FeeQuery        bool
	LocationQuery   bool
	Management      bool
	Policy          bool
	FinancialReport bool
	Milestone       bool
	UserDocument    bool
	Generic         bool

	// SearchTerm is the normalized directory search term. Empty disables
	// the directory strategy even when DirectoryLookup is set.
	SearchTerm string

	// KnowledgeBase is the single surviving knowledge-base selector among
	// {management, policy, financial_report, milestone, user_document},
	// chosen by first match order, or "" if none fired.
	KnowledgeBase string
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Classify maps text to a Classification. It never fails: an empty or
// unparseable utterance simply classifies as Generic.
func Classify(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = whitespaceRE.ReplaceAllString(lower, " ")

	c := Classification{}

	c.DirectoryLookup = matchesAny(lower, directoryCues) || isWhoIsDivisionHead(lower)
	c.FeeQuery = matchesAny(lower, feeCues) || matchesAny(lower, chargeTypeNames)
	c.LocationQuery = matchesAny(lower, locationCues) || matchesLocationCountPattern(lower)

	c.SmallTalk = smallTalkRE.MatchString(lower) && !hasAuthoritativeVocabulary(lower)

	c.KnowledgeBase = firstKnowledgeBaseMatch(lower)

	// Tie-break: directory_lookup dominates any KB tag;
	// fee_query dominates a KB tag but not directory_lookup.
	if c.DirectoryLookup || c.FeeQuery {
		c.KnowledgeBase = ""
	}
	switch c.KnowledgeBase {
	case "management":
		c.Management = true
	case "policy":
		c.Policy = true
	case "financial_report":
		c.FinancialReport = true
	case "milestone":
		c.Milestone = true
	case "user_document":
		c.UserDocument = true
	}

	if c.DirectoryLookup {
		c.SmallTalk = false
		c.SearchTerm = extractSearchTerm(lower)
		if c.SearchTerm == "" {
			c.DirectoryLookup = false
		}
	}
	if c.FeeQuery || c.LocationQuery {
		c.SmallTalk = false
	}

	c.Generic = !c.SmallTalk && !c.DirectoryLookup && !c.FeeQuery && !c.LocationQuery &&
		c.Management == false && c.Policy == false && c.FinancialReport == false &&
		c.Milestone == false && c.UserDocument == false

	return c
}

func hasAuthoritativeVocabulary(lower string) bool {
	return matchesAny(lower, directoryCues) || matchesAny(lower, feeCues) ||
		matchesAny(lower, chargeTypeNames) || matchesAny(lower, locationCues)
}

func matchesAny(lower string, vocab []string) bool {
	for _, word := range vocab {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func firstKnowledgeBaseMatch(lower string) string {
	for _, kb := range knowledgeBaseOrder {
		if matchesAny(lower, knowledgeBaseVocabulary[kb]) {
			return kb
		}
	}
	return ""
}
