package model

// UtilityType classifies the service a bill covers.
type UtilityType string

const (
	UtilityGas         UtilityType = "gas"
	UtilityWater       UtilityType = "water"
	UtilityElectricity UtilityType = "electricity"
	UtilityTrash       UtilityType = "trash"
	UtilitySewer       UtilityType = "sewer"
	UtilityOther       UtilityType = "other"
	UtilityUnknown     UtilityType = "unknown"
)

// NormalizedBill is the canonical record downstream billing systems
// depend on. Every key is always present in the JSON encoding; a nil
// pointer encodes as null, never as an omitted key. Date fields are ISO
// YYYY-MM-DD strings. The normalizer creates the record; only the
// orchestrator overwrites ConfidenceScore afterwards.
type NormalizedBill struct {
	PropertyName      *string     `json:"property_name"`
	UtilityProvider   *string     `json:"utility_provider"`
	UtilityType       UtilityType `json:"utility_type"`
	AccountNumber     *string     `json:"account_number"`
	MeterSerialNumber *string     `json:"meter_serial_number"`

	BillingDate      *string `json:"billing_date"`
	BillingStartDate *string `json:"billing_start_date"`
	BillingEndDate   *string `json:"billing_end_date"`
	DueDate          *string `json:"due_date"`

	CurrentCharges  *float64 `json:"current_charges"`
	PreviousBalance *float64 `json:"previous_balance"`
	PastDueBalance  *float64 `json:"past_due_balance"`
	TotalAmountDue  *float64 `json:"total_amount_due"`

	UnitsUsed *float64 `json:"units_used"`
	UnitType  *string  `json:"unit_type"`

	Payments       *float64 `json:"payments"`
	BalanceForward *float64 `json:"balance_forward"`

	WaterCharges      *float64 `json:"water_charges"`
	SewerCharges      *float64 `json:"sewer_charges"`
	StormWaterCharges *float64 `json:"storm_water_charges"`
	EnvironmentalFee  *float64 `json:"environmental_fee"`
	TrashCharges      *float64 `json:"trash_charges"`
	GasCharges        *float64 `json:"gas_charges"`
	ElectricCharges   *float64 `json:"electric_charges"`

	RatePlan    *string `json:"rate_plan"`
	ServiceDays *int    `json:"service_days"`

	ConfidenceScore  float64        `json:"confidence_score"`
	RawExtractedData *RawExtraction `json:"raw_extracted_data"`
}

// RequiresReview reports whether the record should be flagged for
// manual review before reconciliation.
func (b *NormalizedBill) RequiresReview() bool {
	return b.ConfidenceScore < 0.70
}
