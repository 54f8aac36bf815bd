package fee

import (
	"regexp"
	"strconv"
	"strings"
)

var categoryVocabulary = []struct {
	cue      string
	category CardCategory
}{
	{"credit", CategoryCredit},
	{"debit", CategoryDebit},
	{"prepaid", CategoryPrepaid},
}

var chargeTypeVocabulary = []struct {
	phrase string
	charge ChargeType
}{
	{"supplementary annual", ChargeSupplementaryAnnual},
	{"supplementary card annual", ChargeSupplementaryAnnual},
	{"supplementary fee", ChargeSupplementaryAnnual},
	{"free entitlement", ChargeSupplementaryFreeEntitlement},
	{"issuance annual", ChargeIssuanceAnnualPrimary},
	{"annual fee", ChargeIssuanceAnnualPrimary},
	{"cash withdrawal", ChargeCashWithdrawalEBLATM},
	{"cash advance", ChargeCashWithdrawalEBLATM},
	{"late payment", ChargeLatePayment},
	{"overlimit", ChargeOverlimit},
	{"over limit", ChargeOverlimit},
	{"card replacement", ChargeCardReplacement},
	{"replacement fee", ChargeCardReplacement},
	{"processing fee", ChargeProcessingFee},
	{"limit enhancement", ChargeLimitEnhancementFee},
	{"early settlement", ChargeEarlySettlementFee},
}

var networkTokens = []string{"visa", "mastercard", "master card", "amex", "american express", "unionpay", "union pay"}

// loanProducts maps retail-asset product mentions to the canonical loan
// product names the fee service's retail-asset endpoint expects.
var loanProducts = []struct {
	phrase  string
	product string
}{
	{"personal loan", "Personal Loan"},
	{"home loan", "Home Loan"},
	{"auto loan", "Auto Loan"},
	{"car loan", "Auto Loan"},
	{"education loan", "Education Loan"},
	{"student loan", "Education Loan"},
	{"secured loan", "Secured Loan"},
}

var amountRE = regexp.MustCompile(`\b(\d[\d,]*(?:\.\d+)?)\s*(bdt|usd|taka|tk)?\b`)
var currencyRE = regexp.MustCompile(`(?i)\b(bdt|usd)\b`)

// Extraction is the outcome of extracting a fee Query from free text:
// either a Query ready to submit, or an ambiguity signal naming which
// attribute could not be determined.
type Extraction struct {
	Query      Query
	Ambiguous  bool
	Reason     string
	Networks   []string
	Products   []string
	Categories []CardCategory
}

// Extract builds a structured Query from a fee-tagged utterance. It
// never guesses: if network or category is ambiguous, it
// returns Ambiguous=true instead of a Query.
func Extract(utterance string) Extraction {
	lower := strings.ToLower(utterance)

	q := Query{Category: CategoryAny}

	for _, ct := range chargeTypeVocabulary {
		if strings.Contains(lower, ct.phrase) {
			q.ChargeType = ct.charge
			break
		}
	}

	var categoriesFound []CardCategory
	for _, cv := range categoryVocabulary {
		if strings.Contains(lower, cv.cue) {
			categoriesFound = append(categoriesFound, cv.category)
		}
	}

	for _, lp := range loanProducts {
		if strings.Contains(lower, lp.phrase) {
			q.ProductLine = lp.product
			break
		}
	}

	var networksFound []string
	for _, tok := range networkTokens {
		if strings.Contains(lower, tok) {
			canon := NormalizeNetwork(tok)
			if canon != "" && !containsStr(networksFound, canon) {
				networksFound = append(networksFound, canon)
			}
		}
	}

	products := ExpandProductMentions(lower)

	if m := currencyRE.FindString(lower); m != "" {
		q.Currency = strings.ToUpper(m)
	}
	if m := amountRE.FindStringSubmatch(lower); m != nil {
		cleaned := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			q.Amount = &v
		}
	}

	if len(networksFound) > 1 {
		return Extraction{Ambiguous: true, Reason: "ambiguous_network", Networks: networksFound, Products: products, Categories: categoriesFound}
	}
	if len(categoriesFound) > 1 {
		return Extraction{Ambiguous: true, Reason: "ambiguous_category", Networks: networksFound, Products: products, Categories: categoriesFound}
	}
	if len(products) > 1 {
		return Extraction{Ambiguous: true, Reason: "ambiguous_product", Networks: networksFound, Products: products, Categories: categoriesFound}
	}
	if len(networksFound) == 1 {
		q.Network = networksFound[0]
	}
	if len(categoriesFound) == 1 {
		q.Category = categoriesFound[0]
	}
	if len(products) == 1 {
		q.Product = products[0]
	}

	return Extraction{Query: q}
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
