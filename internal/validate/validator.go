// Package validate checks normalized bill records against the rules
// downstream reconciliation depends on.
package validate

import (
	"time"

	"github.com/ledgerline/billparse/internal/model"
)

// Issue codes, in the order the validator emits them.
const (
	IssueMissingProvider       = "missing_utility_provider"
	IssueInvalidAccountNumber  = "invalid_account_number"
	IssueInvalidTotalAmountDue = "invalid_total_amount_due"
	IssueServicePeriodInverted = "service_period_inverted"
	IssueUsageMissingUnit      = "usage_missing_unit"
	IssueTrashHasMeter         = "trash_has_meter"
	IssueTrashHasUsage         = "trash_has_usage"
)

// minAccountNumberLen is the shortest account number any known issuer
// uses.
const minAccountNumberLen = 6

// Validator evaluates the full rule set against a record.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns whether the record passes and the list of issue
// codes, in fixed rule order. Each rule emits at most one code.
func (v *Validator) Validate(bill *model.NormalizedBill) (bool, []string) {
	var issues []string

	if bill.UtilityProvider == nil || *bill.UtilityProvider == "" {
		issues = append(issues, IssueMissingProvider)
	}

	if bill.AccountNumber == nil || len(*bill.AccountNumber) < minAccountNumberLen {
		issues = append(issues, IssueInvalidAccountNumber)
	}

	if bill.TotalAmountDue == nil || *bill.TotalAmountDue <= 0 {
		issues = append(issues, IssueInvalidTotalAmountDue)
	}

	if bill.BillingStartDate != nil && bill.BillingEndDate != nil {
		if !periodOrdered(*bill.BillingStartDate, *bill.BillingEndDate) {
			issues = append(issues, IssueServicePeriodInverted)
		}
	}

	if bill.UnitsUsed != nil && (bill.UnitType == nil || *bill.UnitType == "") {
		issues = append(issues, IssueUsageMissingUnit)
	}

	if bill.UtilityType == model.UtilityTrash {
		if bill.MeterSerialNumber != nil && *bill.MeterSerialNumber != "" {
			issues = append(issues, IssueTrashHasMeter)
		}
		if bill.UnitsUsed != nil {
			issues = append(issues, IssueTrashHasUsage)
		}
	}

	return len(issues) == 0, issues
}

// periodOrdered reports whether end is on or after start. Dates that do
// not parse as ISO count as inverted.
func periodOrdered(start, end string) bool {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return false
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return false
	}
	return !e.Before(s)
}
