package fee

import (
	"fmt"
	"strings"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
)

const scheduleHeader = "Per the current EBL schedule of charges:"

// freeThenPaidChargeTypes lists charge types that carry a "free for the
// first N, paid thereafter" structure, typified by supplementary card
// annual fee. Answers for these must always state both tiers.
var freeThenPaidChargeTypes = map[ChargeType]bool{
	ChargeSupplementaryAnnual: true,
}

// Render builds the verbatim RenderedAnswer for a single resolved rule and
// its computed amount. Free-then-paid charge types are rendered by
// RenderBothTiers instead, which takes the free-tier rule plus the paid
// amount and currency; Render alone is used for every other charge type.
func Render(rule Rule, amount float64, currency string) answer.RenderedAnswer {
	text := fmt.Sprintf("%s %s is %s %s.", scheduleHeader, describeCharge(rule), currency, formatAmount(amount))
	return answer.Authoritative(text)
}

// RenderDetailed appends the fee basis and any schedule remarks to the
// base rendering. Both come verbatim from the service payload: a
// percent-of-outstanding fee keeps whatever assessment period the
// schedule's remarks state rather than assuming monthly or annual.
func RenderDetailed(rule Rule, amount float64, currency, basis, remarks string) answer.RenderedAnswer {
	ans := Render(rule, amount, currency)
	var extras []string
	if basis != "" && basis != "FLAT" {
		extras = append(extras, "assessed "+strings.ToLower(strings.ReplaceAll(basis, "_", " ")))
	}
	if remarks != "" {
		extras = append(extras, remarks)
	}
	if len(extras) > 0 {
		ans.Text = strings.TrimSuffix(ans.Text, ".") + " (" + strings.Join(extras, "; ") + ")."
	}
	return ans
}

// RenderBothTiers implements the mandatory both-tiers rendering: the text
// always states the zero-fee threshold and the paid amount beyond it,
// regardless of which rule row was matched by the original query.
func RenderBothTiers(freeRule Rule, paidAmount float64, paidCurrency string) answer.RenderedAnswer {
	var b strings.Builder
	b.WriteString(scheduleHeader)
	b.WriteString(" ")
	b.WriteString(describeCharge(freeRule))
	b.WriteString(fmt.Sprintf(": the first %d %s are free (%s 0), and %s %s applies from the %s onward.",
		freeRule.FreeEntitlementCount,
		pluralizeCard(freeRule.FreeEntitlementCount),
		freeRule.FeeCurrency,
		paidCurrency,
		formatAmount(paidAmount),
		ordinal(freeRule.FreeEntitlementCount+1),
	))
	return answer.Authoritative(b.String())
}

func describeCharge(rule Rule) string {
	parts := []string{}
	if rule.ProductLine != "" {
		parts = append(parts, rule.ProductLine)
	}
	if rule.Network != "" {
		parts = append(parts, rule.Network)
	}
	if rule.Product != "" {
		parts = append(parts, rule.Product)
	}
	charge := strings.ToLower(strings.ReplaceAll(string(rule.ChargeType), "_", " "))
	label := strings.Join(parts, " ")
	if label == "" {
		return charge
	}
	return label + " " + charge
}

func pluralizeCard(n int) string {
	if n == 1 {
		return "supplementary card"
	}
	return "supplementary cards"
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderNotFound is the scripted "no fee rule matches" message.
func RenderNotFound() answer.RenderedAnswer {
	return answer.Authoritative("I couldn't find a fee rule matching that request. Could you confirm the card network and product?")
}
