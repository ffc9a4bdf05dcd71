// Package normalize maps raw extraction output onto the canonical bill
// record. Field mappings and fallback chains are part of the downstream
// contract and must not change shape.
package normalize

import (
	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
)

// Normalizer converts RawExtraction payloads into NormalizedBill
// records. It never fails: unparseable values become nils.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize builds the canonical record. Fallback chains, in order:
// property name falls back to customer name, provider to vendor name,
// billing date to statement-issued, due date to amount-due-by, total to
// plain amount due, meter serial to the first meter record. Dates are
// coerced to ISO or dropped. The raw payload rides along verbatim.
func (n *Normalizer) Normalize(raw *model.RawExtraction) *model.NormalizedBill {
	bill := &model.NormalizedBill{
		PropertyName:      firstString(raw.PropertyName, raw.CustomerName),
		UtilityProvider:   firstString(raw.ProviderName, raw.VendorName),
		UtilityType:       utilityType(raw.UtilityType),
		AccountNumber:     raw.AccountNumber,
		MeterSerialNumber: firstString(raw.MeterNumber, raw.FirstMeterNumber()),

		BillingDate:      parseDatePtr(firstString(raw.InvoiceDate, raw.StatementIssued)),
		BillingStartDate: parseDatePtr(raw.ServiceStart),
		BillingEndDate:   parseDatePtr(raw.ServiceEnd),
		DueDate:          parseDatePtr(firstString(raw.DueDate, raw.AmountDueBy)),

		CurrentCharges:  raw.CurrentCharges,
		PreviousBalance: raw.PreviousBalance,
		PastDueBalance:  raw.PastDueBalance,
		TotalAmountDue:  firstFloat(raw.TotalAmountDue, raw.AmountDue),

		UnitsUsed: raw.TotalUsage,
		UnitType:  raw.UsageUnit,

		Payments:       raw.Payments,
		BalanceForward: raw.BalanceForward,

		WaterCharges:      raw.WaterCharges,
		SewerCharges:      raw.SewerCharges,
		StormWaterCharges: raw.StormWaterCharges,
		EnvironmentalFee:  raw.EnvironmentalFee,
		TrashCharges:      raw.TrashCharges,
		GasCharges:        raw.GasCharges,
		ElectricCharges:   raw.ElectricCharges,

		RatePlan:    raw.RatePlan,
		ServiceDays: raw.ServiceDays,

		ConfidenceScore:  0.70,
		RawExtractedData: raw,
	}

	if raw.Confidence != nil {
		bill.ConfidenceScore = *raw.Confidence
	}

	return bill
}

func utilityType(s *string) model.UtilityType {
	if s == nil || *s == "" {
		return model.UtilityUnknown
	}
	switch t := model.UtilityType(*s); t {
	case model.UtilityGas, model.UtilityWater, model.UtilityElectricity,
		model.UtilityTrash, model.UtilitySewer, model.UtilityOther:
		return t
	}
	return model.UtilityUnknown
}

func parseDatePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return extract.ParseDate(*s)
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
