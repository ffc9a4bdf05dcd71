package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ledgerline/billparse/internal/model"
)

// Generic is the issuer-agnostic pattern extractor. It produces the
// baseline RawExtraction that vendor enhancers correct, and the only
// extraction when no fingerprint matches.
type Generic struct{}

// NewGeneric creates a generic text extractor.
func NewGeneric() *Generic {
	return &Generic{}
}

const rawTextSampleLen = 2000

var (
	providerLineRe = regexp.MustCompile(`(?im)^(.*?(Utilities|Energy|Water|Power).*)$`)

	// Disclaimer boilerplate that disqualifies a loosely matched
	// provider line.
	boilerplateRe = regexp.MustCompile(`(?i)amount\s*due|keep this portion|please return|and\s+services|help\s+your\s+neighbors|sharing\s+the\s+warmth|please\s+pay\s+past\s+due`)

	// Second-pass tight matches for known issuers.
	tightProviderRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(ATMOS\s+ENERGY)\b.*$`),
		regexp.MustCompile(`(?im)^\s*(Dallas\s+Water\s+Utilities)\b.*$`),
		regexp.MustCompile(`(?im)^\s*(City\s+of\s+Dallas(?:\s+Water\s+Utilities)?)\b.*$`),
		regexp.MustCompile(`(?im)^\s*(TXU\s+Energy)\b.*$`),
		regexp.MustCompile(`(?im)^\s*(Reliant\s+Energy)\b.*$`),
	}

	customerNameRe     = regexp.MustCompile(`(?i)Customer\s*Name:\s*(.+)`)
	customerNameTrimRe = regexp.MustCompile(`(?i)\s{2,}DUE\s*DATE.*$`)

	accountRe        = regexp.MustCompile(`(?i)(?:Account(?:\s*Number)?|Acct\.?\s*No\.?)\s*[:#]?\s*([A-Za-z0-9\-]{6,})`)
	numericAccountRe = regexp.MustCompile(`(?i)\bAccount\s*number\s*([0-9][0-9\s]{5,})`)
	nonDigitRe       = regexp.MustCompile(`\D+`)

	serviceAddressRe = regexp.MustCompile(`(?i)Service\s*Address:\s*(.+)`)
	mailingAddressRe = regexp.MustCompile(`(?i)Mail(?:ing)?\s*Address:\s*(.+)`)

	statementIssuedRe  = regexp.MustCompile(`(?i)(?:Invoice\s*Issued|Issued|Statement\s*Date|Bill\s*Date)\s*([0-9/.\-]+)`)
	billingDateRe      = regexp.MustCompile(`(?i)Billing\s*Date\s*[:\-]?\s*([0-9/.\-]+)`)
	amountDueByRe      = regexp.MustCompile(`(?i)Amount\s*Due\s*by\s*([0-9/.\-]+)`)
	dueDateRe          = regexp.MustCompile(`(?i)\bDUE\s*DATE\s*[:\-]?\s*([0-9/.\-]+)`)
	amountDueAfterRe   = regexp.MustCompile(`(?i)Amount\s*Due\s*after\s*([0-9/.\-]+)`)
	serviceStartRe     = regexp.MustCompile(`(?i)Service\s*(?:Period\s*)?(?:From)?\s*([0-9/.\-]+)\s*to`)
	serviceEndRe       = regexp.MustCompile(`(?i)\bto\b\s*([0-9/.\-]+)\s*(?:for\s*\d+\s*days)?`)
	servicePeriodRowRe = regexp.MustCompile(`(?im)^\s*\d{5,}\s+([0-9/.\-]+)\s+([0-9/.\-]+)\s+\d+`)

	totalAmountDueRe  = regexp.MustCompile(`(?i)(?:Total\s*Amount\s*Due|Amount\s*Due|Total\s*Due)\s*[:$]?\s*([\d,]+\.\d{2})`)
	currentChargesRe  = regexp.MustCompile(`(?i)(?:Total\s*Current\s*Charges|Current\s*Charges)\s*[:$]?\s*([\d,]+\.\d{2})`)
	previousBalanceRe = regexp.MustCompile(`(?i)Previous\s*Balance\s*[:$]?\s*([\d,]+\.\d{2})`)
	paymentsRe        = regexp.MustCompile(`(?i)Payment\(s\)\s*\(?\$?\s*([\d,]+\.\d{2})\)?`)
	balanceForwardRe  = regexp.MustCompile(`(?i)Balance\s*Forward\s*[:$]?\s*([\d,]+\.\d{2})`)
	pastDueRe         = regexp.MustCompile(`(?i)(?:Past\s*Due|Past\s*Due\s*Balance)\s*[:$]?\s*([\d,]+\.\d{2})`)

	waterChargesRe = regexp.MustCompile(`(?i)Water\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)
	sewerChargesRe = regexp.MustCompile(`(?i)Sewer\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)
	stormWaterRe   = regexp.MustCompile(`(?i)Storm\s*Water\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)
	envFeeRe       = regexp.MustCompile(`(?i)Environmental\s*(?:Cleanup\s*)?Fee\s*[:$]?\s*([\d,]+\.\d{2})`)
	trashChargesRe = regexp.MustCompile(`(?i)(?:Trash|Refuse)\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)
	gasChargesRe   = regexp.MustCompile(`(?i)Gas\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)
	electricRe     = regexp.MustCompile(`(?i)(?:Electric|Electricity)\s*Charges\s*[:$]?\s*([\d,]+\.\d{2})`)

	invoiceIDPatternRe = regexp.MustCompile(`(?i)(\bINVOICE-\d{5}-\d{6,}\b)`)
	invoiceIDLabelRe   = regexp.MustCompile(`(?i)\bInvoice\s*ID[:#]?\s*([A-Z0-9\-]+)`)
	issueIDPatternRe   = regexp.MustCompile(`(?i)(\bID-\d{8}\b)`)
	issueIDLabelRe     = regexp.MustCompile(`(?i)\bIssue\s*ID[:#]?\s*([A-Z0-9\-]+)`)

	meterRowRe = regexp.MustCompile(`(?im)^\s*([0-9]{5,})[^\n]*?(?:Prev(?:ious)?\s*Read)?[^\n]*?([0-9,\.]+)?[^\n]*?(?:Usage|Units|100\s*GALS)\s*[^\n]*?([0-9,\.]+)[^\n]*?(?:Base\s*Charge)?[^\n]*?(\$?[0-9,\.]+)?[^\n]*?(?:Usage\s*Charge)?[^\n]*?(\$?[0-9,\.]+)?[^\n]*?(?:Total)\s*[^\n]*?(\$?[0-9,\.]+)?[^\n]*?$`)

	ratePlanRe   = regexp.MustCompile(`(?i)(?:Rate\s*Plan|Rate\s*Code)\s*[:#]?\s*([A-Za-z0-9\-]+)`)
	daysRe       = regexp.MustCompile(`(?i)\bfor\s*(\d+)\s*days\b`)
	totalUsageRe = regexp.MustCompile(`(?i)Total\s*Usage\s*[:#]?\s*([\d,\.]+)`)
)

// find returns the first capture group of the first match, trimmed, or
// nil when the pattern does not match.
func find(re *regexp.Regexp, txt string) *string {
	m := re.FindStringSubmatch(txt)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	return &v
}

func findMoney(re *regexp.Regexp, txt string) *float64 {
	if v := find(re, txt); v != nil {
		return CleanMoney(*v)
	}
	return nil
}

// Parse runs the issuer-agnostic extraction patterns over bill text.
// Pattern failures leave fields nil; Parse never fails.
func (g *Generic) Parse(txt string) *model.RawExtraction {
	raw := &model.RawExtraction{}

	raw.ProviderName = g.detectProvider(txt)

	raw.CustomerName = find(customerNameRe, txt)
	if raw.CustomerName != nil {
		name := strings.TrimSpace(customerNameTrimRe.ReplaceAllString(*raw.CustomerName, ""))
		raw.CustomerName = &name
	}

	raw.AccountNumber = find(accountRe, txt)
	// Prefer numeric account numbers when present: the generic pattern
	// can latch onto words like "summary".
	if m := numericAccountRe.FindStringSubmatch(txt); m != nil {
		acct := nonDigitRe.ReplaceAllString(m[1], "")
		if len(acct) >= 6 {
			raw.AccountNumber = &acct
		}
	}

	raw.ServiceAddress = find(serviceAddressRe, txt)
	raw.MailingAddress = find(mailingAddressRe, txt)

	raw.StatementIssued = find(statementIssuedRe, txt)
	if raw.StatementIssued == nil {
		raw.StatementIssued = find(billingDateRe, txt)
	}
	raw.AmountDueBy = find(amountDueByRe, txt)
	raw.DueDate = find(dueDateRe, txt)
	if raw.DueDate == nil {
		raw.DueDate = raw.AmountDueBy
	}
	raw.AmountDueAfter = find(amountDueAfterRe, txt)
	raw.ServiceStart = find(serviceStartRe, txt)
	raw.ServiceEnd = find(serviceEndRe, txt)
	if raw.ServiceStart == nil || raw.ServiceEnd == nil {
		if m := servicePeriodRowRe.FindStringSubmatch(txt); m != nil {
			if raw.ServiceStart == nil {
				raw.ServiceStart = &m[1]
			}
			if raw.ServiceEnd == nil {
				raw.ServiceEnd = &m[2]
			}
		}
	}

	raw.TotalAmountDue = findMoney(totalAmountDueRe, txt)
	raw.CurrentCharges = findMoney(currentChargesRe, txt)
	raw.PreviousBalance = findMoney(previousBalanceRe, txt)
	raw.Payments = findMoney(paymentsRe, txt)
	raw.BalanceForward = findMoney(balanceForwardRe, txt)
	raw.PastDueBalance = findMoney(pastDueRe, txt)

	raw.WaterCharges = findMoney(waterChargesRe, txt)
	raw.SewerCharges = findMoney(sewerChargesRe, txt)
	raw.StormWaterCharges = findMoney(stormWaterRe, txt)
	raw.EnvironmentalFee = findMoney(envFeeRe, txt)
	raw.TrashCharges = findMoney(trashChargesRe, txt)
	raw.GasCharges = findMoney(gasChargesRe, txt)
	raw.ElectricCharges = findMoney(electricRe, txt)

	raw.InvoiceID = find(invoiceIDPatternRe, txt)
	if raw.InvoiceID == nil {
		raw.InvoiceID = find(invoiceIDLabelRe, txt)
	}
	raw.IssueID = find(issueIDPatternRe, txt)
	if raw.IssueID == nil {
		raw.IssueID = find(issueIDLabelRe, txt)
	}

	raw.Meters = g.parseMeterRows(txt)

	raw.RatePlan = find(ratePlanRe, txt)
	if d := find(daysRe, txt); d != nil {
		if n, err := strconv.Atoi(*d); err == nil {
			raw.ServiceDays = &n
		}
	}
	raw.TotalUsage = findMoney(totalUsageRe, txt)

	raw.UtilityType = g.inferUtilityType(raw)

	conf := 0.7
	raw.Confidence = &conf
	raw.RawTextSample = sample(txt, rawTextSampleLen)

	return raw
}

// detectProvider prefers a tightly-matched known-issuer line over a
// loose line match containing disclaimer boilerplate.
func (g *Generic) detectProvider(txt string) *string {
	provider := find(providerLineRe, txt)

	if provider == nil || boilerplateRe.MatchString(*provider) {
		for _, re := range tightProviderRes {
			if tight := find(re, txt); tight != nil {
				return tight
			}
		}
	}
	return provider
}

func (g *Generic) parseMeterRows(txt string) []model.RawMeter {
	rows := meterRowRe.FindAllStringSubmatch(txt, -1)
	if rows == nil {
		return nil
	}

	var meters []model.RawMeter
	for _, row := range rows {
		var m model.RawMeter
		if row[1] != "" {
			num := row[1]
			m.MeterNumber = &num
		}
		if row[2] != "" {
			prev := row[2]
			m.PreviousRead = &prev
		}
		if row[3] != "" {
			m.Usage = CleanMoney(row[3])
		}
		if row[4] != "" {
			m.BaseCharge = CleanMoney(row[4])
		}
		if row[5] != "" {
			m.UsageCharge = CleanMoney(row[5])
		}
		if row[6] != "" {
			m.Total = CleanMoney(row[6])
		}
		meters = append(meters, m)
	}
	return meters
}

// inferUtilityType derives the utility type from charges first, then
// issuer-name keywords. Priority: gas, electric, water/sewer/storm,
// trash, then provider-name hints.
func (g *Generic) inferUtilityType(raw *model.RawExtraction) *string {
	pn := ""
	if raw.ProviderName != nil {
		pn = strings.ToLower(*raw.ProviderName)
	}

	// A charge only counts when present and non-zero. A literal $0.00
	// line item must not decide the type.
	var ut model.UtilityType
	switch {
	case nonZero(raw.GasCharges):
		ut = model.UtilityGas
	case nonZero(raw.ElectricCharges):
		ut = model.UtilityElectricity
	case nonZero(raw.WaterCharges) || nonZero(raw.SewerCharges) || nonZero(raw.StormWaterCharges) ||
		strings.Contains(pn, "water") || strings.Contains(pn, "sewer"):
		ut = model.UtilityWater
	case nonZero(raw.TrashCharges):
		ut = model.UtilityTrash
	case strings.Contains(pn, "reliant") || strings.Contains(pn, "txu") ||
		strings.Contains(pn, "electric") || strings.Contains(pn, "power"):
		ut = model.UtilityElectricity
	case strings.Contains(pn, "atmos"):
		ut = model.UtilityGas
	default:
		return nil
	}

	s := string(ut)
	return &s
}

func nonZero(p *float64) bool {
	return p != nil && *p != 0
}

func sample(txt string, n int) string {
	if len(txt) <= n {
		return txt
	}
	return txt[:n]
}
