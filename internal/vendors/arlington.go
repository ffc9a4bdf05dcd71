package vendors

import (
	"regexp"
	"strconv"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// ArlingtonUtilities handles City of Arlington combined utility bills.
// A single meter table row carries meter id, service period, day count
// and usage.
type ArlingtonUtilities struct{}

var (
	arlingtonNameBlockRe = regexp.MustCompile(`(?is)Name\s+and\s+Service\s+Address.*?\n([^\n]+)`)
	arlingtonColSplitRe  = regexp.MustCompile(`\s{2,}`)
	arlingtonNoiseRe     = regexp.MustCompile(`(?i)\bemergency\b|\bgarbage\b|\bdrinking\b|817-`)
	arlingtonAccountRe   = regexp.MustCompile(`Account\s+Number\s+([\d\-\.]+)`)
	arlingtonAddressRe   = regexp.MustCompile(`Name\s+and\s+Service\s+Address\s*\n([^\n]+)`)
	arlingtonBillDateRe  = regexp.MustCompile(`Billing\s+Date\s+(\d{1,2}/\d{1,2}/\d{4})`)
	arlingtonDueDateRe   = regexp.MustCompile(`Due\s+Date\s+(\d{1,2}/\d{1,2}/\d{4})`)
	arlingtonMeterRowRe  = regexp.MustCompile(`(M\d+)\s+(\d{2}/\d{2}/\d{4})\s*-\s*(\d{2}/\d{2}/\d{4})\s+(\d+)\s+\d+\s+\d+\s+(\d+)`)
	arlingtonPrevBalRe   = regexp.MustCompile(`Previous\s+Balance\s*\$([\d,]+\.\d{2})`)
	arlingtonPaymentsRe  = regexp.MustCompile(`Payments\s*\$\-([\d,]+\.\d{2})`)
	arlingtonBalFwdRe    = regexp.MustCompile(`Balance\s+Forward\s*\$([\d,]+\.\d{2})`)
	arlingtonCurrentRe   = regexp.MustCompile(`Current\s+Charges\s*\$([\d,]+\.\d{2})`)
	arlingtonTotalRe     = regexp.MustCompile(`TOTAL\s+AMOUNT\s+DUE\s*\$([\d,]+\.\d{2})`)
	arlingtonWaterRe     = regexp.MustCompile(`Total\s+Water\s+Charges\s*\$([\d,]+\.\d{2})`)
	arlingtonSewerRe     = regexp.MustCompile(`Total\s+Sewer\s+Charges\s*\$([\d,]+\.\d{2})`)
	arlingtonDrainageRe  = regexp.MustCompile(`Total\s+Drainage\s+Charges\s*\$([\d,]+\.\d{2})`)
)

func (a *ArlingtonUtilities) Fingerprint() Fingerprint {
	return Fingerprint{
		Name: "arlington_utilities",
		Keywords: []string{
			"arlington utilities",
			"combined utility billing",
			"arlingtontx.gov/water",
			"meter information (in 1000 gallons)",
		},
		UtilityTypeHint: model.UtilityWater,
		UnitTypeHint:    "KGAL",
		ExpectsMeters:   true,
		ExpectsUsage:    true,
	}
}

func (a *ArlingtonUtilities) Enhance(raw model.RawExtraction, txt string) model.RawExtraction {
	out := raw

	setString(&out.ProviderName, "Arlington Utilities")
	setString(&out.VendorName, "Arlington Utilities")
	setString(&out.UtilityType, string(model.UtilityWater))
	setString(&out.UsageUnit, "KGAL")

	// Customer name sits in the right column under "Name and Service
	// Address"; the left column is contact-info noise.
	if m := arlingtonNameBlockRe.FindStringSubmatch(txt); m != nil {
		parts := arlingtonColSplitRe.Split(m[1], -1)
		if len(parts) >= 2 {
			candidate := trim(parts[len(parts)-1])
			if !arlingtonNoiseRe.MatchString(candidate) {
				setString(&out.CustomerName, candidate)
			}
		}
	}

	if m := arlingtonAccountRe.FindStringSubmatch(txt); m != nil {
		setString(&out.AccountNumber, m[1])
	}
	if m := arlingtonAddressRe.FindStringSubmatch(txt); m != nil {
		setString(&out.ServiceAddress, trim(m[1]))
	}
	if m := arlingtonBillDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.StatementIssued, m[1])
	}
	if m := arlingtonDueDateRe.FindStringSubmatch(txt); m != nil {
		setString(&out.DueDate, m[1])
	}

	if m := arlingtonMeterRowRe.FindStringSubmatch(txt); m != nil {
		num := m[1]
		out.Meters = []model.RawMeter{{MeterNumber: &num}}
		setString(&out.ServiceStart, m[2])
		setString(&out.ServiceEnd, m[3])
		if days, err := strconv.Atoi(m[4]); err == nil {
			setInt(&out.ServiceDays, days)
		}
		out.TotalUsage = extract.ParseAmount(m[5])
	}

	if m := arlingtonPrevBalRe.FindStringSubmatch(txt); m != nil {
		out.PreviousBalance = extract.CleanMoney(m[1])
	}
	if m := arlingtonPaymentsRe.FindStringSubmatch(txt); m != nil {
		if v := extract.CleanMoney(m[1]); v != nil {
			setFloat(&out.Payments, -*v)
		}
	}
	if m := arlingtonBalFwdRe.FindStringSubmatch(txt); m != nil {
		out.BalanceForward = extract.CleanMoney(m[1])
	}
	if m := arlingtonCurrentRe.FindStringSubmatch(txt); m != nil {
		out.CurrentCharges = extract.CleanMoney(m[1])
	}
	if m := arlingtonTotalRe.FindStringSubmatch(txt); m != nil {
		out.TotalAmountDue = extract.CleanMoney(m[1])
	}

	if m := arlingtonWaterRe.FindStringSubmatch(txt); m != nil {
		out.WaterCharges = extract.CleanMoney(m[1])
	}
	if m := arlingtonSewerRe.FindStringSubmatch(txt); m != nil {
		out.SewerCharges = extract.CleanMoney(m[1])
	}
	if m := arlingtonDrainageRe.FindStringSubmatch(txt); m != nil {
		out.StormWaterCharges = extract.CleanMoney(m[1])
	}

	return out
}
