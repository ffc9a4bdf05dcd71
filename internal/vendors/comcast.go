package vendors

import (
	"regexp"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// Comcast handles Comcast Business telecom bills. These are "other"
// utility bills: never meters, never usage.
type Comcast struct{}

const monthDate = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},\s+\d{4}`

var (
	comcastCustomerRe = regexp.MustCompile(`\n\s*([A-Z][A-Za-z0-9 &.'\-]+)\s*\n`)
	comcastAccountRe  = regexp.MustCompile(`(?i)Account\s*number\s*[\r\n]+([0-9][0-9\s]{10,})`)
	comcastBillDateRe = regexp.MustCompile(`(?i)Bill\s*date\s*(` + monthDate + `)`)
	comcastPeriodRe   = regexp.MustCompile(`(?i)Services\s+from\s+(` + monthDate + `)\s+to\s+(` + monthDate + `)`)
	comcastPrevBalRe  = regexp.MustCompile(`(?i)Previous\s+balance\s+([\d,]+\.\d{2})`)
	comcastNoPayRe    = regexp.MustCompile(`(?i)No\s+payment\s+received\s+([\d,]+\.\d{2})`)
	comcastNewChgRe   = regexp.MustCompile(`(?i)New\s+charges\s+([\-$\d,\.]+(?:\s*cr)?)`)
	comcastTotalRe    = regexp.MustCompile(`(?i)Total\s+amount\s+due\s+.*?[$]\s*([\d,]+\.\d{2})`)
	comcastPayRe      = regexp.MustCompile(`(?i)Please\s+pay\s+.*?[$]\s*([\d,]+\.\d{2})`)
)

func (c *Comcast) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "comcast",
		Keywords: []string{
			"comcast",
			"comcast business",
			"final bill for service",
			"voice network investment",
			"equipment fee",
		},
		UtilityTypeHint: model.UtilityOther,
		ExpectsMeters:   false,
		ExpectsUsage:    false,
	}
}

func (c *Comcast) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Comcast")
	setString(&out.VendorName, "Comcast")
	setString(&out.UtilityType, string(model.UtilityOther))

	if m := comcastCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}

	if m := comcastAccountRe.FindStringSubmatch(txt); m != nil {
		acct := digitsOnly(m[1])
		if len(acct) >= 6 {
			setString(&out.AccountNumber, acct)
		}
	}

	if m := comcastBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}

	if m := comcastPeriodRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceStart, m[1])
		setString(&out.ServiceEnd, m[2])
	}

	if m := comcastPrevBalRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			out.PreviousBalance = v
			out.BalanceForward = v
		}
	}

	if m := comcastNoPayRe.FindStringSubmatch(txt); m != nil {
		out.Payments = extract.CleanMoney(m[1])
	}

	// "New charges" can carry a trailing credit marker ("-115.60 cr").
	if m := comcastNewChgRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}

	m := comcastTotalRe.FindStringSubmatch(txt)
	if m == nil {
		m = comcastPayRe.FindStringSubmatch(txt)
	}
	if m != nil {
		out.TotalAmountDue = extract.CleanMoney(m[1])
	}

	// Telecom bills never carry meters or usage.
	out.Meters = nil
	out.TotalUsage = nil

	return out
}
