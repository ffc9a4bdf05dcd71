package vendors

import (
	"regexp"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// PiedmontNaturalGas handles Piedmont Natural Gas final bills. Final
// bills print no meter table or usage, and the due date prints without
// a year ("Total amount due Sep 22") so the year is borrowed from the
// bill date.
type PiedmontNaturalGas struct{}

var (
	piedmontCustomerRe = regexp.MustCompile(`(?is)Service\s+address\s+Bill\s+date.*?\n([A-Z0-9 &]+)`)
	piedmontAddressRe  = regexp.MustCompile(`(?i)\n([0-9]+\s+[A-Z0-9\s]+)\nNASHVILLE`)
	piedmontAccountRe  = regexp.MustCompile(`(?i)Account\s+number\s+([0-9\s]{10,})`)
	piedmontBillDateRe = regexp.MustCompile(`Bill\s+date\s+([A-Za-z]{3}\s+\d{1,2},\s+\d{4})`)
	piedmontDueMonthRe = regexp.MustCompile(`(?i)Total\s+amount\s+due\s+([A-Za-z]{3}\s+\d{1,2})`)
	piedmontPrevBalRe  = regexp.MustCompile(`(?i)Previous\s+balance\s+([\d.]+)`)
	piedmontPaymentRe  = regexp.MustCompile(`(?i)Payment\(s\)\s+received\s+as\s+of\s+[A-Za-z]{3}\s+\d{1,2}\s+([\d]+\.\d{2})`)
	piedmontCurrentRe  = regexp.MustCompile(`(?i)Total\s+current\s+charges\s+([\d.]+)`)
	piedmontTotalRe    = regexp.MustCompile(`(?i)Total\s+amount\s+due\s+([A-Za-z]{3})\s+(\d{1,2})\s+\$([\d,]+\.\d{2})`)
	piedmontYearRe     = regexp.MustCompile(`\d{4}`)
)

func (p *PiedmontNaturalGas) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "piedmont_natural_gas",
		Keywords: []string{
			"piedmont natural gas",
			"your natural gas bill",
			"piedmontng.com",
			"account summary - final bill",
		},
		UtilityTypeHint: model.UtilityGas,
		UnitTypeHint:    "CCF",
		ExpectsMeters:   false,
		ExpectsUsage:    false,
	}
}

func (p *PiedmontNaturalGas) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Piedmont Natural Gas")
	setString(&out.VendorName, "Piedmont Natural Gas")
	setString(&out.UtilityType, string(model.UtilityGas))
	setString(&out.UsageUnit, "CCF")

	if m := piedmontCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}
	if m := piedmontAddressRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceAddress, trim(m[1]))
	}

	// "6100 1204 9648" collapses to "610012049648".
	if m := piedmontAccountRe.FindStringSubmatch(txt); m != nil {
		acct := digitsOnly(m[1])
		if len(acct) >= 6 {
			setString(&out.AccountNumber, acct)
		}
	}

	if m := piedmontBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}

	if m := piedmontDueMonthRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
	}

	if m := piedmontPrevBalRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			out.PreviousBalance = v
			out.PastDueBalance = v
		}
	}
	if m := piedmontPaymentRe.FindStringSubmatch(txt); m != nil {
		out.Payments = extract.CleanMoney(m[1])
	}
	if m := piedmontCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}

	// "Total amount due Sep 22      $600.51" is authoritative for both
	// the amount and, combined with the bill-date year, the due date.
	if m := piedmontTotalRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[3]); v != nil && *v > 0 {
			out.TotalAmountDue = v
			out.AmountDue = v
		}
		if out.StatementIssued != nil {
			if year := piedmontYearRe.FindString(*out.StatementIssued); year != "" {
				setString(&out.DueDate, m[1]+" "+m[2]+", "+year)
			}
		}
	}

	// Final bill: no usage, no meters.
	out.Meters = nil
	out.TotalUsage = nil

	return out
}
