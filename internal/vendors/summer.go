package vendors

import (
	"regexp"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// SummerEnergy handles Summer Energy electricity invoices.
type SummerEnergy struct{}

var (
	summerCustomerRe = regexp.MustCompile(`(?i)Customer:\s*(.+)`)
	summerInvoiceRe  = regexp.MustCompile(`(?i)Invoice\s+Date:\s*([A-Za-z]{3}\s+\d{1,2},\s+\d{4})`)
	summerPrevRe     = regexp.MustCompile(`(?i)Previous\s+Statement\s+Amount\s*\$([\d,]+\.\d{2})`)
	summerCurrentRe  = regexp.MustCompile(`(?i)Current\s+Charges\s*\$([\d,]+\.\d{2})`)
	summerDueRe      = regexp.MustCompile(`(?i)Amount\s+Due\s+([A-Za-z]{3}\s+\d{1,2},\s+\d{4})\s*:\s*\$([\d,]+\.\d{2})`)
	summerBalanceRe  = regexp.MustCompile(`(?i)Current\s+Balance\s*\$([\d,]+\.\d{2})`)
)

func (s *SummerEnergy) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "summer_energy",
		Keywords: []string{
			"summer energy",
			"summerenergy.com",
			"billing account number",
			"invoice date",
			"amount due",
		},
		UtilityTypeHint: model.UtilityElectricity,
		UnitTypeHint:    "kWh",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (s *SummerEnergy) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Summer Energy")
	setString(&out.VendorName, "Summer Energy")
	setString(&out.UtilityType, string(model.UtilityElectricity))
	setString(&out.UsageUnit, "kWh")

	if m := summerCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}

	if m := summerInvoiceRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}

	if m := summerPrevRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			out.PreviousBalance = v
			out.BalanceForward = v
		}
	}

	if m := summerCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}
	if out.CurrentCharges != nil && out.ElectricCharges == nil {
		out.ElectricCharges = out.CurrentCharges
	}

	// "Amount Due Sep 05, 2024: $12202.63" carries both the due date
	// and the authoritative total.
	if m := summerDueRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
		out.TotalAmountDue = extract.CleanMoney(m[2])
	}
	if out.TotalAmountDue == nil {
		if m := summerBalanceRe.FindStringSubmatch(txt); m != nil {
			out.TotalAmountDue = extract.CleanMoney(m[1])
		}
	}

	// The generic address pattern latches onto meter table headers on
	// these bills.
	if out.ServiceAddress != nil {
		switch *out.ServiceAddress {
		case "Read    Read", "Read Read":
			out.ServiceAddress = nil
		}
	}

	// Summer Energy invoices do not show a service period.
	out.ServiceStart = nil
	out.ServiceEnd = nil

	return out
}
