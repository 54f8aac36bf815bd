package classifier

import "regexp"

// smallTalkRE matches short greeting/courtesy openers.
var smallTalkRE = regexp.MustCompile(`^(hi|hello|hey|good (morning|afternoon|evening)|how are you|thanks|thank you|bye|goodbye)\b`)

var directoryCues = []string{
	"phone number", "telephone", "mobile number", "extension", "ip phone",
	"ip-phone", "email address", "employee id", "employee-id", "phonebook",
	"phone book", "directory",
}

var locationCues = []string{
	"branch", "atm", "crm", "rtdm", "priority center", "priority centre",
	"head office",
}

var feeCues = []string{
	"card fee", "supplementary fee", "issuance fee", "annual fee",
	"processing fee", "late payment", "cash advance", "cash withdrawal fee",
	"lounge", "loan charge", "loan processing", "replacement fee",
	"limit enhancement", "early settlement",
}

// chargeTypeNames lists the standardized charge-type vocabulary
// (illustrative superset, not exhaustive; extend here, not in the
// matching logic).
var chargeTypeNames = []string{
	"issuance annual", "supplementary annual", "free entitlement",
	"cash withdrawal", "late payment", "overlimit", "card replacement",
	"processing fee", "limit enhancement fee", "early settlement fee",
	"skybanking fee", "sms banking fee", "internet banking fee",
	"statement retrieval fee", "duplicate statement", "pin reissue",
	"cheque book fee", "stop payment fee", "fund transfer fee",
	"rtgs fee", "neft fee", "bill payment fee", "foreign transaction fee",
	"currency conversion fee", "balance inquiry fee", "account closure fee",
	"account maintenance fee", "debit card fee", "credit card fee",
	"prepaid card fee", "loan processing fee",
}

// knowledgeBaseOrder is the first-match precedence among KB selectors.
var knowledgeBaseOrder = []string{"management", "policy", "financial_report", "milestone", "user_document"}

var knowledgeBaseVocabulary = map[string][]string{
	"management":       {"management team", "board of directors", "ceo", "md", "managing director", "executive committee"},
	"policy":           {"policy", "compliance", "regulation", "circular", "guideline", "procedure"},
	"financial_report": {"financial report", "annual report", "balance sheet", "profit and loss", "quarterly result", "revenue", "earnings"},
	"milestone":        {"milestone", "anniversary", "history", "founded", "established", "timeline"},
	"user_document":    {"my document", "uploaded document", "attached file", "my file", "this document"},
}

var divisionHeadRE = regexp.MustCompile(`who\s+is\s+(?:the\s+)?(.+?)\s+division\s+head`)
var divisionHeadOfRE = regexp.MustCompile(`who\s+is\s+(.+?)\s+head\s+of`)
var locationCountRE = regexp.MustCompile(`\b(how many|count|where)\b`)

func isWhoIsDivisionHead(lower string) bool {
	return divisionHeadRE.MatchString(lower) || divisionHeadOfRE.MatchString(lower)
}

func matchesLocationCountPattern(lower string) bool {
	if !locationCountRE.MatchString(lower) {
		return false
	}
	return matchesAny(lower, locationCues)
}
