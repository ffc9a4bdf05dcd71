// Package score computes the confidence score for an extracted bill.
// The score drives the fallback decision and the requires-review flag,
// so the arithmetic here is a compatibility contract.
package score

import (
	"github.com/ledgerline/billparse/internal/model"
	"github.com/ledgerline/billparse/internal/validate"
)

// Backend tags as the scorer sees them.
const (
	MethodPrimary   = "primary"
	MethodSecondary = "secondary"
)

const (
	basePrimary   = 0.70
	baseSecondary = 0.80

	penaltyMissingField   = 0.20
	penaltyInvertedPeriod = 0.10
	penaltyMissingUnit    = 0.05
	bonusCorroboration    = 0.05
)

// Scorer converts validation issues plus corroboration signals into a
// confidence score in [0, 1].
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the confidence for a record extracted by the given
// method. Secondary extractions start higher because the fallback model
// reads the document whole instead of pattern-matching fragments.
func (s *Scorer) Score(method string, bill *model.NormalizedBill, issues []string) float64 {
	conf := basePrimary
	if method == MethodSecondary {
		conf = baseSecondary
	}

	for _, issue := range issues {
		switch issue {
		case validate.IssueMissingProvider,
			validate.IssueInvalidAccountNumber,
			validate.IssueInvalidTotalAmountDue:
			conf -= penaltyMissingField
		case validate.IssueServicePeriodInverted:
			conf -= penaltyInvertedPeriod
		case validate.IssueUsageMissingUnit:
			conf -= penaltyMissingUnit
		}
	}

	if corroboration(bill) >= 2 {
		conf += bonusCorroboration
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// corroboration counts independent field pairs that agree on the bill
// being internally consistent.
func corroboration(bill *model.NormalizedBill) int {
	n := 0
	if bill.BillingDate != nil && bill.BillingEndDate != nil {
		n++
	}
	if bill.PreviousBalance != nil && bill.BalanceForward != nil {
		n++
	}
	return n
}
