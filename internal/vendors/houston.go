package vendors

import (
	"regexp"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// HoustonWater handles City of Houston multifamily water bills. Water
// and sewer charges each split into base + consumption line items that
// are summed here.
type HoustonWater struct{}

var (
	houstonCustomerRe  = regexp.MustCompile(`(?i)Customer\s+Name:\s*(.+)`)
	houstonAccountRe   = regexp.MustCompile(`(?i)Account\s+Number:\s*([\d\-]+)`)
	houstonAddressRe   = regexp.MustCompile(`(?i)Service\s+Address:\s*(.+)`)
	houstonBillDateRe  = regexp.MustCompile(`Bill\s+Date:\s*(\d{2}/\d{2}/\d{4})`)
	houstonDueDateRe   = regexp.MustCompile(`Due\s+Date:\s*(\d{2}/\d{2}/\d{4})`)
	houstonPeriodRe    = regexp.MustCompile(`(?s)Previous\s+Read\s+Date\s+(\d{2}/\d{2}/\d{4}).*?Current\s+Read\s+Date\s+(\d{2}/\d{2}/\d{4})`)
	houstonMeterRe     = regexp.MustCompile(`WATER\s+MULTIF\s+([A-Z0-9\-\.]+)`)
	houstonUsageRe     = regexp.MustCompile(`Gallons\s+in\s+Thousands\s+(\d+)`)
	houstonPrevBalRe   = regexp.MustCompile(`Previous\s+Balance\s*\$([\d,]+\.\d{2})`)
	houstonPaymentRe   = regexp.MustCompile(`Payment\s*\$([\d,]+\.\d{2})`)
	houstonPastDueRe   = regexp.MustCompile(`Past\s+Due\s+Amount.*?\$([\d,]+\.\d{2})`)
	houstonCurrentRe   = regexp.MustCompile(`Current\s+Charges\s*\$([\d,]+\.\d{2})`)
	houstonTotalRe     = regexp.MustCompile(`(?i)Total\s+Amount\s+Due\s*\$([\d,]+\.\d{2})`)
	houstonBaseWaterRe = regexp.MustCompile(`Multifamily\s+Base\s+Water\s+Charge\s*\$([\d,]+\.\d{2})`)
	houstonConsWaterRe = regexp.MustCompile(`Multifamily\s+Consumption\s+Water\s+Charge\s*\$([\d,]+\.\d{2})`)
	houstonBaseSewerRe = regexp.MustCompile(`Multifamily\s+Base\s+Sewer\s+Charge\s*\$([\d,]+\.\d{2})`)
	houstonConsSewerRe = regexp.MustCompile(`Multifamily\s+Consumption\s+Sewer\s+Charge\s*\$([\d,]+\.\d{2})`)
	houstonDrainageRe  = regexp.MustCompile(`Drainage\s+Charge\s*\$([\d,]+\.\d{2})`)
	houstonTCEQRe      = regexp.MustCompile(`TCEQ\s+Fee\s*\$([\d,]+\.\d{2})`)
)

func (h *HoustonWater) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "houston_water",
		Keywords: []string{
			"city of houston",
			"houston water",
			"utility bill",
			"billed usage history",
			"detailed meter usage",
		},
		UtilityTypeHint: model.UtilityWater,
		UnitTypeHint:    "KGAL",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (h *HoustonWater) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "City of Houston")
	setString(&out.VendorName, "City of Houston")
	setString(&out.UtilityType, string(model.UtilityWater))
	setString(&out.UsageUnit, "KGAL")

	if m := houstonCustomerRe.FindStringSubmatch(txt); m != nil {
		setString(&out.CustomerName, trim(m[1]))
	}
	if m := houstonAccountRe.FindStringSubmatch(txt); m != nil {
		setString(&out.AccountNumber, m[1])
	}
	if m := houstonAddressRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceAddress, trim(m[1]))
	}
	if m := houstonBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}
	if m := houstonDueDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
	}

	// Billing period comes from the meter read dates.
	if m := houstonPeriodRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceStart, m[1])
		setString(&out.ServiceEnd, m[2])
	}

	if m := houstonMeterRe.FindStringSubmatch(txt); m != nil {
		num := m[1]
		out.Meters = []model.RawMeter{{MeterNumber: &num}}
	}
	if m := houstonUsageRe.FindStringSubmatch(txt); m != nil {
		out.TotalUsage = extract.ParseAmount(m[1])
	}

	if m := houstonPrevBalRe.FindStringSubmatch(txt); m != nil {
		out.PreviousBalance = extract.CleanMoney(m[1])
	}
	if m := houstonPaymentRe.FindStringSubmatch(txt); m != nil {
		out.Payments = extract.CleanMoney(m[1])
	}
	if m := houstonPastDueRe.FindStringSubmatch(txt); m != nil {
		out.PastDueBalance = extract.CleanMoney(m[1])
	}
	if m := houstonCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}
	if m := houstonTotalRe.FindStringSubmatch(txt); m != nil {
		out.TotalAmountDue = extract.CleanMoney(m[1])
	}

	baseWater := moneyOrZero(houstonBaseWaterRe, txt)
	consWater := moneyOrZero(houstonConsWaterRe, txt)
	if baseWater != 0 || consWater != 0 {
		setFloat(&out.WaterCharges, baseWater+consWater)
	}

	baseSewer := moneyOrZero(houstonBaseSewerRe, txt)
	consSewer := moneyOrZero(houstonConsSewerRe, txt)
	if baseSewer != 0 || consSewer != 0 {
		setFloat(&out.SewerCharges, baseSewer+consSewer)
	}

	if m := houstonDrainageRe.FindStringSubmatch(txt); m != nil {
		out.StormWaterCharges = extract.CleanMoney(m[1])
	}
	if m := houstonTCEQRe.FindStringSubmatch(txt); m != nil {
		out.EnvironmentalFee = extract.CleanMoney(m[1])
	}

	return out
}

func moneyOrZero(re *regexp.Regexp, txt string) float64 {
	if m := re.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			return *v
		}
	}
	return 0
}
