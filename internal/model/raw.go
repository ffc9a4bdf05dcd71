package model

// RawExtraction is the loosely-typed output of an extraction backend,
// before normalization. Every field is optional: a nil pointer means the
// backend (or a vendor enhancer) never produced the field. Field names
// follow the wire schema shared by both backends, so the struct
// round-trips through JSON unchanged.
type RawExtraction struct {
	ProviderName   *string `json:"provider_name"`
	VendorName     *string `json:"vendor_name,omitempty"`
	UtilityType    *string `json:"utility_type"`
	CustomerName   *string `json:"customer_name"`
	PropertyName   *string `json:"property_name,omitempty"`
	AccountNumber  *string `json:"account_number"`
	ServiceAddress *string `json:"service_address"`
	MailingAddress *string `json:"mailing_address"`
	InvoiceID      *string `json:"invoice_id"`
	IssueID        *string `json:"issue_id"`

	// Dates are kept as raw text here; coercion to ISO happens in the
	// normalizer and must never fail loudly.
	InvoiceDate     *string `json:"invoice_date,omitempty"`
	StatementIssued *string `json:"statement_issued"`
	ServiceStart    *string `json:"service_start"`
	ServiceEnd      *string `json:"service_end"`
	AmountDueBy     *string `json:"amount_due_by"`
	DueDate         *string `json:"due_date"`
	AmountDueAfter  *string `json:"amount_due_after"`

	PreviousBalance   *float64 `json:"previous_balance"`
	Payments          *float64 `json:"payments"`
	BalanceForward    *float64 `json:"balance_forward"`
	PastDueBalance    *float64 `json:"past_due_balance"`
	CurrentCharges    *float64 `json:"current_charges"`
	WaterCharges      *float64 `json:"water_charges"`
	SewerCharges      *float64 `json:"sewer_charges"`
	StormWaterCharges *float64 `json:"storm_water_charges"`
	EnvironmentalFee  *float64 `json:"environmental_fee"`
	TrashCharges      *float64 `json:"trash_charges"`
	GasCharges        *float64 `json:"gas_charges"`
	ElectricCharges   *float64 `json:"electric_charges"`
	TotalAmountDue    *float64 `json:"total_amount_due"`
	AmountDue         *float64 `json:"amount_due,omitempty"`

	RatePlan    *string  `json:"rate_plan"`
	ServiceDays *int     `json:"service_days"`
	TotalUsage  *float64 `json:"total_usage"`
	UsageUnit   *string  `json:"usage_unit,omitempty"`

	MeterNumber *string    `json:"meter_number,omitempty"`
	Meters      []RawMeter `json:"meters"`

	Confidence    *float64 `json:"confidence,omitempty"`
	RawTextSample string   `json:"raw_text_sample,omitempty"`
}

// RawMeter is a single meter line item as reported by a backend.
type RawMeter struct {
	MeterNumber  *string  `json:"meter_number"`
	PreviousRead *string  `json:"previous_read"`
	Usage        *float64 `json:"usage"`
	BaseCharge   *float64 `json:"base_charge"`
	UsageCharge  *float64 `json:"usage_charge"`
	Total        *float64 `json:"total"`
}

// FirstMeterNumber returns the identifier of the first meter record, or
// nil when no meter carries one.
func (r *RawExtraction) FirstMeterNumber() *string {
	if len(r.Meters) == 0 {
		return nil
	}
	return r.Meters[0].MeterNumber
}
