package fee

import (
	"strings"
	"testing"
)

func TestRenderBothTiersStatesBothAmounts(t *testing.T) {
	rule := Rule{ChargeType: ChargeSupplementaryAnnual, Network: "VISA", Product: "Platinum", FreeEntitlementCount: 2, FeeCurrency: "BDT"}
	got := RenderBothTiers(rule, 2300, "BDT")
	if !got.IsAuthoritative || !got.SuppressGeneration {
		t.Fatalf("expected authoritative, suppress-generation answer, got %+v", got)
	}
	if !strings.Contains(got.Text, "first 2 supplementary cards are free") {
		t.Fatalf("expected free-tier statement, got %q", got.Text)
	}
	if !strings.Contains(got.Text, "BDT 2300") && !strings.Contains(got.Text, "BDT 2,300") {
		t.Fatalf("expected paid-tier amount present verbatim, got %q", got.Text)
	}
}

func TestRenderPreservesCurrencyVerbatim(t *testing.T) {
	rule := Rule{ChargeType: ChargeCashWithdrawalEBLATM, Network: "VISA"}
	got := Render(rule, 287.5, "BDT")
	if !strings.Contains(got.Text, "BDT 287.50") {
		t.Fatalf("expected currency preserved verbatim, got %q", got.Text)
	}
}
