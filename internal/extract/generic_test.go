package extract

import (
	"strings"
	"testing"
)

const gasBillText = `ATMOS ENERGY
Customer Name: OAKWOOD HEIGHTS LLC    DUE DATE 09/20/2024
Account number 304 666 3356
Service Address: 4512 Maple Ave, Dallas TX
Bill Date 09/03/2024
Previous Balance 75.10
Payment(s) ($75.10)
Current Charges 81.45
Total Amount Due $81.45
Gas Charges 81.45
Billed for 30 days
`

func TestGeneric_Parse_GasBill(t *testing.T) {
	raw := NewGeneric().Parse(gasBillText)

	if raw.ProviderName == nil || *raw.ProviderName != "ATMOS ENERGY" {
		t.Errorf("provider = %v, want ATMOS ENERGY", raw.ProviderName)
	}
	if raw.CustomerName == nil || *raw.CustomerName != "OAKWOOD HEIGHTS LLC" {
		t.Errorf("customer = %v, want OAKWOOD HEIGHTS LLC (due-date tail stripped)", raw.CustomerName)
	}
	if raw.AccountNumber == nil || *raw.AccountNumber != "3046663356" {
		t.Errorf("account = %v, want 3046663356 (spaces collapsed)", raw.AccountNumber)
	}
	if raw.ServiceAddress == nil || !strings.Contains(*raw.ServiceAddress, "Maple Ave") {
		t.Errorf("service address = %v", raw.ServiceAddress)
	}
	if raw.StatementIssued == nil || *raw.StatementIssued != "09/03/2024" {
		t.Errorf("statement issued = %v, want 09/03/2024", raw.StatementIssued)
	}
	if raw.DueDate == nil || *raw.DueDate != "09/20/2024" {
		t.Errorf("due date = %v, want 09/20/2024", raw.DueDate)
	}
	if raw.TotalAmountDue == nil || *raw.TotalAmountDue != 81.45 {
		t.Errorf("total = %v, want 81.45", raw.TotalAmountDue)
	}
	if raw.CurrentCharges == nil || *raw.CurrentCharges != 81.45 {
		t.Errorf("current charges = %v, want 81.45", raw.CurrentCharges)
	}
	if raw.PreviousBalance == nil || *raw.PreviousBalance != 75.10 {
		t.Errorf("previous balance = %v, want 75.10", raw.PreviousBalance)
	}
	if raw.Payments == nil || *raw.Payments != 75.10 {
		t.Errorf("payments = %v, want 75.10", raw.Payments)
	}
	if raw.GasCharges == nil || *raw.GasCharges != 81.45 {
		t.Errorf("gas charges = %v, want 81.45", raw.GasCharges)
	}
	if raw.UtilityType == nil || *raw.UtilityType != "gas" {
		t.Errorf("utility type = %v, want gas", raw.UtilityType)
	}
	if raw.ServiceDays == nil || *raw.ServiceDays != 30 {
		t.Errorf("service days = %v, want 30", raw.ServiceDays)
	}
	if raw.Confidence == nil || *raw.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", raw.Confidence)
	}
	if raw.RawTextSample == "" {
		t.Error("raw text sample not captured")
	}
}

func TestGeneric_Parse_EmptyText(t *testing.T) {
	raw := NewGeneric().Parse("")

	if raw.ProviderName != nil {
		t.Errorf("provider = %v, want nil", raw.ProviderName)
	}
	if raw.TotalAmountDue != nil {
		t.Errorf("total = %v, want nil", raw.TotalAmountDue)
	}
	if raw.UtilityType != nil {
		t.Errorf("utility type = %v, want nil", raw.UtilityType)
	}
	if raw.Meters != nil {
		t.Errorf("meters = %v, want nil", raw.Meters)
	}
}

func TestGeneric_DetectProvider_BoilerplateFallback(t *testing.T) {
	// The loose provider line is disclaimer boilerplate; the tight
	// known-issuer pass should win.
	txt := "Pay your Energy amount due promptly\nTXU Energy\nTotal Amount Due $50.00\n"

	raw := NewGeneric().Parse(txt)
	if raw.ProviderName == nil || *raw.ProviderName != "TXU Energy" {
		t.Errorf("provider = %v, want TXU Energy", raw.ProviderName)
	}
}

func TestGeneric_Parse_UtilityTypeFromWaterCharges(t *testing.T) {
	txt := "City of Dallas\nWater Charges 32.10\nSewer Charges 18.40\nTotal Amount Due $50.50\n"

	raw := NewGeneric().Parse(txt)
	if raw.UtilityType == nil || *raw.UtilityType != "water" {
		t.Errorf("utility type = %v, want water", raw.UtilityType)
	}
}

func TestGeneric_Parse_ZeroChargeDoesNotDecideType(t *testing.T) {
	txt := "City of Dallas\nGas Charges 0.00\nWater Charges 32.10\nTotal Amount Due $32.10\n"

	raw := NewGeneric().Parse(txt)
	if raw.UtilityType == nil || *raw.UtilityType != "water" {
		t.Errorf("utility type = %v, want water despite a $0.00 gas line", raw.UtilityType)
	}

	txt = "Some Provider\nTrash Charges 0.00\nTotal Amount Due $10.00\n"
	raw = NewGeneric().Parse(txt)
	if raw.UtilityType != nil {
		t.Errorf("utility type = %v, want nil when every charge is zero", *raw.UtilityType)
	}
}

func TestGeneric_Parse_TruncatesSample(t *testing.T) {
	long := strings.Repeat("x", rawTextSampleLen*2)
	raw := NewGeneric().Parse(long)
	if len(raw.RawTextSample) != rawTextSampleLen {
		t.Errorf("sample length = %d, want %d", len(raw.RawTextSample), rawTextSampleLen)
	}
}
