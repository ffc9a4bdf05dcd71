package vendors

import (
	"math"
	"regexp"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// AtmosEnergy handles Atmos Energy natural gas bills (CCF metered).
type AtmosEnergy struct{}

var (
	atmosCustomerRe = regexp.MustCompile(`Customer\s+Name:\s*([A-Z0-9 &()]+?)\s{2,}`)
	atmosAccountRe  = regexp.MustCompile(`Account\s+Number:\s*(\d{6,})`)
	atmosBillDateRe = regexp.MustCompile(`Billing\s+Date:\s*(\d{2}/\d{2}/\d{2,4})`)
	atmosPeriodRe   = regexp.MustCompile(`From\s+(\d{2}/\d{2}/\d{2,4})\s+To\s+(\d{2}/\d{2}/\d{2,4})`)
	atmosMeterRe    = regexp.MustCompile(`(?is)Meter\s+Serial\s+#.*?\n.*?\n\s*([A-Z0-9]{6,})\s+\d{2}/\d{2}/\d{2,4}\s+\d{2}/\d{2}/\d{2,4}`)
	atmosUsageRe    = regexp.MustCompile(`(?is)Consumption\s+\(CCF\).*?\n\s*(\d+)`)
	atmosRatePlanRe = regexp.MustCompile(`Rate\s+Plan:\s*([A-Z0-9 ]+)`)
	atmosPrevBalRe  = regexp.MustCompile(`Previous\s+Balance\s+([\d,]+\.\d{2})`)
	atmosPaymentRe  = regexp.MustCompile(`Payment\(s\)\s+(-[\d,]+\.\d{2})`)
	atmosCurrentRe  = regexp.MustCompile(`Current\s+Charges\s+([\d,]+\.\d{2})`)
	atmosGasRe      = regexp.MustCompile(`Gas\s+Charges\s+([\d,]+\.\d{2})`)
	atmosTotalRe    = regexp.MustCompile(`(?i)TOTAL\s+AMOUNT\s+DUE\s+\$([\d,]+\.\d{2})`)
	atmosDueDateRe  = regexp.MustCompile(`\d{6,}\s+(\d{2}/\d{2}/\d{2,4})\s+\$[\d,]+\.\d{2}`)
)

func (a *AtmosEnergy) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "atmos",
		Keywords: []string{
			"atmos energy",
			"natural gas",
			"ccf",
			"gas usage",
			"total amount due",
		},
		UtilityTypeHint: model.UtilityGas,
		UnitTypeHint:    "CCF",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (a *AtmosEnergy) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Atmos Energy")
	setString(&out.VendorName, "Atmos Energy")
	setString(&out.UtilityType, string(model.UtilityGas))
	setString(&out.UsageUnit, "CCF")

	if m := atmosCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}

	if m := atmosAccountRe.FindStringSubmatch(txt); m != nil {
		setString(&out.AccountNumber, m[1])
	}

	if m := atmosBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}

	if m := atmosPeriodRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceStart, m[1])
		setString(&out.ServiceEnd, m[2])
	}

	// Meter serial sits in a table row two lines below the header.
	if m := atmosMeterRe.FindStringSubmatch(txt); m != nil {
		num := m[1]
		out.Meters = []model.RawMeter{{MeterNumber: &num}}
	}

	if m := atmosUsageRe.FindStringSubmatch(txt); m != nil {
		if v := extract.ParseAmount(m[1]); v != nil {
			out.TotalUsage = v
		}
	}

	if m := atmosRatePlanRe.FindStringSubmatch(txt); m != nil {
		setString(&out.RatePlan, trim(m[1]))
	}

	if m := atmosPrevBalRe.FindStringSubmatch(txt); m != nil {
		out.PreviousBalance = extract.CleanMoney(m[1])
	}

	// Payments print as negative in the account summary; store the
	// magnitude.
	if m := atmosPaymentRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			setFloat(&out.Payments, math.Abs(*v))
		}
	}

	if m := atmosCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}

	if m := atmosGasRe.FindStringSubmatch(txt); m != nil {
		out.GasCharges = extract.CleanMoney(m[1])
	}

	if m := atmosTotalRe.FindStringSubmatch(txt); m != nil {
		out.TotalAmountDue = extract.CleanMoney(m[1])
	}

	// Page-1 summary table: "Account Number  Due Date  Total Amount Due".
	if m := atmosDueDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
	}

	if out.CurrentCharges != nil && out.GasCharges == nil {
		out.GasCharges = out.CurrentCharges
	}

	return out
}
