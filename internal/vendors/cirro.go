package vendors

import (
	"regexp"
	"strconv"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// CirroEnergy handles Cirro Energy (US Retailers LLC) electricity bills.
type CirroEnergy struct{}

var (
	cirroCustomerRe = regexp.MustCompile(`(?i)Customer\s+Name:\s*(.*?)\s{2,}Bill\s+Date`)
	cirroAccountRe  = regexp.MustCompile(`(?i)Account\s+#:\s*([0-9\s\-]+)`)
	cirroBillDateRe = regexp.MustCompile(`Bill\s+Date:\s*(\d{2}/\d{2}/\d{4})`)
	cirroDueDateRe  = regexp.MustCompile(`Due\s+Date\s*(\d{2}/\d{2}/\d{4})`)
	cirroPeriodRe   = regexp.MustCompile(`From\s+(\d{2}/\d{2}/\d{4})\s+To\s+(\d{2}/\d{2}/\d{4})`)
	cirroMeterRe    = regexp.MustCompile(`Meter\s+Number:\s*(\S+)`)
	cirroUsageRe    = regexp.MustCompile(`(?i)kWh\s+Usage\s+(\d+)`)
	cirroPrevRe     = regexp.MustCompile(`Previous\s+Amount\s+Due\s*\$([\d.]+)`)
	cirroPaymentRe  = regexp.MustCompile(`Payment\s+([\d.]+)`)
	cirroBalFwdRe   = regexp.MustCompile(`Balance\s+Forward\s+([\d.]+)`)
	cirroCurrentRe  = regexp.MustCompile(`Current\s+Charges\s+([\d.]+)`)
	cirroTotalRe    = regexp.MustCompile(`(?i)Total\s+Amount\s+Due\s+by\s+\d{2}/\d{2}/\d{4}\s*\$([\d.]+)`)
	cirroRatePlanRe = regexp.MustCompile(`(Smart\s+Lock\s+Business)`)
	cirroDaysRe     = regexp.MustCompile(`(\d+)\s+Day\s+Billing\s+Period`)
)

func (c *CirroEnergy) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "cirro_energy",
		Keywords: []string{
			"cirro energy",
			"us retailers, llc dba cirro energy",
			"account summary",
			"electric usage detail",
			"kwh usage",
		},
		UtilityTypeHint: model.UtilityElectricity,
		UnitTypeHint:    "kWh",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (c *CirroEnergy) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Cirro Energy")
	setString(&out.VendorName, "Cirro Energy")
	setString(&out.UtilityType, string(model.UtilityElectricity))
	setString(&out.UsageUnit, "kWh")

	if m := cirroCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}

	// Account numbers print with spacing and a check digit:
	// "Account #: 19 495 161 - 2".
	if m := cirroAccountRe.FindStringSubmatch(txt); m != nil {
		acct := digitsOnly(m[1])
		if len(acct) >= 6 {
			setString(&out.AccountNumber, acct)
		}
	}

	if m := cirroBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}
	if m := cirroDueDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
	}
	if m := cirroPeriodRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceStart, m[1])
		setString(&out.ServiceEnd, m[2])
	}

	if m := cirroMeterRe.FindStringSubmatch(txt); m != nil {
		num := m[1]
		out.Meters = []model.RawMeter{{MeterNumber: &num}}
	}
	if m := cirroUsageRe.FindStringSubmatch(txt); m != nil {
		out.TotalUsage = extract.ParseAmount(m[1])
	}

	if m := cirroPrevRe.FindStringSubmatch(txt); m != nil {
		out.PreviousBalance = extract.CleanMoney(m[1])
	}
	if m := cirroPaymentRe.FindStringSubmatch(txt); m != nil {
		out.Payments = extract.CleanMoney(m[1])
	}
	if m := cirroBalFwdRe.FindStringSubmatch(txt); m != nil {
		out.BalanceForward = extract.CleanMoney(m[1])
	}
	if m := cirroCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
		out.ElectricCharges = extract.CleanMoney(m[1])
	}

	if m := cirroTotalRe.FindStringSubmatch(txt); m != nil {
		out.TotalAmountDue = extract.CleanMoney(m[1])
	}

	if m := cirroRatePlanRe.FindStringSubmatch(txt); m != nil {
		setString(&out.RatePlan, m[1])
	}
	if m := cirroDaysRe.FindStringSubmatch(txt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			setInt(&out.ServiceDays, n)
		}
	}

	return out
}
