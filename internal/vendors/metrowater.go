package vendors

import (
	"regexp"
	"strconv"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// MetroWaterNashville handles Metro Water Services (Nashville) bills.
// Charge categories carry two-letter service prefixes (WA/SW/ST).
type MetroWaterNashville struct{}

var (
	metroCustomerRe = regexp.MustCompile(`(?i)Customer\s+Name:\s*(.*?)\s{2,}(?:www\.|BillingDate:|AccountNumber:)`)
	metroAccountRe  = regexp.MustCompile(`(?i)Account\s*Number[:\s]*([0-9]{6,})`)
	metroAddressRe  = regexp.MustCompile(`(?i)Service\s+Address:\s*(.+)`)
	metroBillDateRe = regexp.MustCompile(`BillingDate:\s*(\d{2}/\d{2}/\d{4})`)
	metroDueDateRe  = regexp.MustCompile(`Due\s+Date:\s*(\d{2}/\d{2}/\d{4})`)
	metroPeriodRe   = regexp.MustCompile(`(?i)Service\s+From\s+(\d{2}/\d{2}/\d{2})\s*-\s*(\d{2}/\d{2}/\d{2}).*?\((\d+)\s+Days\)`)
	metroUsageRe    = regexp.MustCompile(`NOV\s+\d{4}\s*-\s*(\d+)\s+CCF`)
	metroCurrentRe  = regexp.MustCompile(`Current\s+Charges\s*\$([\d,]+\.\d{2})`)
	metroPriorRe    = regexp.MustCompile(`Prior\s+Balance\s+-\s+Past\s+Due\s*\$([\d,]+\.\d{2})`)
	metroTotalRe    = regexp.MustCompile(`Total\s+Amount\s+Due\s+Upon\s+Receipt\s*\$([\d,]+\.\d{2})`)
	metroWaterRe    = regexp.MustCompile(`WA\s+Water\s+Charges\s*\$([\d,]+\.\d{2})`)
	metroSewerRe    = regexp.MustCompile(`SW\s+Sewer\s+Charges\s*\$([\d,]+\.\d{2})`)
	metroStormRe    = regexp.MustCompile(`ST\s+Stormwater\s+Charges\s*\$([\d,]+\.\d{2})`)
	metroInfraRe    = regexp.MustCompile(`Water\s+Infrastructure\s+Replacement\s+Fee\s*\$([\d,]+\.\d{2})`)
)

func (m *MetroWaterNashville) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "metro_water_nashville",
		Keywords: []string{
			"metro water services",
			"mws customer service center",
			"nashville.gov/water",
			"account summary as of",
			"wa water charges",
		},
		UtilityTypeHint: model.UtilityWater,
		UnitTypeHint:    "CCF",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (m *MetroWaterNashville) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Metro Water Services")
	setString(&out.VendorName, "Metro Water Services")
	setString(&out.UtilityType, string(model.UtilityWater))
	setString(&out.UsageUnit, "CCF")

	if g := metroCustomerRe.FindStringSubmatch(txt); g != nil {
		setString(&out.CustomerName, trim(g[1]))
	}
	if g := metroAccountRe.FindStringSubmatch(txt); g != nil {
		setString(&out.AccountNumber, g[1])
	}
	if g := metroAddressRe.FindStringSubmatch(txt); g != nil {
		setString(&out.ServiceAddress, trim(g[1]))
	}
	if g := metroBillDateRe.FindStringSubmatch(txt); g != nil {
		setString(&out.StatementIssued, g[1])
	}
	if g := metroDueDateRe.FindStringSubmatch(txt); g != nil {
		setString(&out.DueDate, g[1])
	}

	// "Service From 10/16/25 - 11/13/25 (28 Days)"
	if g := metroPeriodRe.FindStringSubmatch(txt); g != nil {
		setString(&out.ServiceStart, g[1])
		setString(&out.ServiceEnd, g[2])
		if days, err := strconv.Atoi(g[3]); err == nil {
			setInt(&out.ServiceDays, days)
		}
	}

	if g := metroUsageRe.FindStringSubmatch(txt); g != nil {
		out.TotalUsage = extract.ParseAmount(g[1])
	}

	if g := metroCurrentRe.FindStringSubmatch(txt); g != nil {
		out.CurrentCharges = extract.CleanMoney(g[1])
	}
	if g := metroPriorRe.FindStringSubmatch(txt); g != nil {
		if v := extract.CleanMoney(g[1]); v != nil {
			out.PreviousBalance = v
			out.PastDueBalance = v
		}
	}
	if g := metroTotalRe.FindStringSubmatch(txt); g != nil {
		out.TotalAmountDue = extract.CleanMoney(g[1])
	}

	if g := metroWaterRe.FindStringSubmatch(txt); g != nil {
		out.WaterCharges = extract.CleanMoney(g[1])
	}
	if g := metroSewerRe.FindStringSubmatch(txt); g != nil {
		out.SewerCharges = extract.CleanMoney(g[1])
	}
	if g := metroStormRe.FindStringSubmatch(txt); g != nil {
		out.StormWaterCharges = extract.CleanMoney(g[1])
	}
	if g := metroInfraRe.FindStringSubmatch(txt); g != nil {
		out.EnvironmentalFee = extract.CleanMoney(g[1])
	}

	return out
}
