package vendors

import (
	"regexp"
	"strings"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// TXUEnergy handles TXU Energy electricity bills. Unlike most issuers
// TXU uses the fill-if-missing discipline for provider identity: a
// generic value, when present, is trusted.
type TXUEnergy struct{}

var (
	txuSummaryRe   = regexp.MustCompile(`(?is)Account Summary.*?\n([^\n]+)\n([^\n]+)`)
	txuRowNumRe    = regexp.MustCompile(`\$?\d{1,3}(?:,\d{3})*\.\d{2}`)
	txuAmountDueRe = regexp.MustCompile(`(?i)\bAmount Due\b\s*\$?([\d,]+\.\d{2})`)
)

func (t *TXUEnergy) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "txu_energy",
		Keywords: []string{
			"txu",
			"energy",
			"account summary",
			"kwh",
			"esi id",
		},
		UtilityTypeHint: model.UtilityElectricity,
		UnitTypeHint:    "kWh",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (t *TXUEnergy) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	fillString(&out.ProviderName, "TXU Energy")
	fillString(&out.UtilityType, string(model.UtilityElectricity))
	fillString(&out.UsageUnit, "kWh")

	// The Account Summary table row carries, in order: previous
	// balance, credits, balance forward, current charges, amount due.
	// The amount due column is authoritative when the header confirms
	// it is the right table.
	if m := txuSummaryRe.FindStringSubmatch(txt); m != nil {
		header := strings.ToLower(m[1])
		row := m[2]
		if strings.Contains(header, "amount due") && strings.Contains(header, "current charges") {
			nums := txuRowNumRe.FindAllString(row, -1)
			if len(nums) >= 5 {
				if v := extract.CleanMoney(nums[4]); v != nil {
					out.TotalAmountDue = v
				}
			}
		}
	}

	// Non-table fallback.
	if out.TotalAmountDue == nil {
		if m := txuAmountDueRe.FindStringSubmatch(txt); m != nil {
			if v := extract.CleanMoney(m[1]); v != nil {
				out.TotalAmountDue = v
			}
		}
	}

	fillString(&out.VendorName, "TXU Energy")
	return out
}
