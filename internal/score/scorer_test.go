package score

import (
	"testing"

	"github.com/ledgerline/billparse/internal/model"
	"github.com/ledgerline/billparse/internal/validate"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

// approx absorbs float drift from the penalty arithmetic.
func approx(got, want float64) bool {
	d := got - want
	return d < 1e-9 && d > -1e-9
}

func TestScorer_Score_BaseByMethod(t *testing.T) {
	s := NewScorer()
	bill := &model.NormalizedBill{}

	if got := s.Score(MethodPrimary, bill, nil); !approx(got, 0.70) {
		t.Errorf("expected primary base 0.70, got %v", got)
	}
	if got := s.Score(MethodSecondary, bill, nil); !approx(got, 0.80) {
		t.Errorf("expected secondary base 0.80, got %v", got)
	}
}

func TestScorer_Score_MissingFieldPenalty(t *testing.T) {
	s := NewScorer()
	bill := &model.NormalizedBill{}

	got := s.Score(MethodPrimary, bill, []string{validate.IssueMissingProvider})
	if !approx(got, 0.50) {
		t.Errorf("expected 0.70 - 0.20 = 0.50, got %v", got)
	}
}

func TestScorer_Score_PenaltiesStack(t *testing.T) {
	s := NewScorer()
	bill := &model.NormalizedBill{}

	issues := []string{
		validate.IssueMissingProvider,
		validate.IssueInvalidAccountNumber,
		validate.IssueInvalidTotalAmountDue,
		validate.IssueServicePeriodInverted,
		validate.IssueUsageMissingUnit,
	}

	// 0.70 - 3*0.20 - 0.10 - 0.05 clamps at 0.
	if got := s.Score(MethodPrimary, bill, issues); got != 0 {
		t.Errorf("expected clamp at 0, got %v", got)
	}
}

func TestScorer_Score_TrashIssuesCarryNoPenalty(t *testing.T) {
	s := NewScorer()
	bill := &model.NormalizedBill{}

	issues := []string{validate.IssueTrashHasMeter, validate.IssueTrashHasUsage}
	if got := s.Score(MethodSecondary, bill, issues); !approx(got, 0.80) {
		t.Errorf("trash structure issues should not change the score, got %v", got)
	}
}

func TestScorer_Score_CorroborationBonus(t *testing.T) {
	s := NewScorer()

	// One pair only: no bonus.
	one := &model.NormalizedBill{
		BillingDate:    strp("2024-01-02"),
		BillingEndDate: strp("2024-01-31"),
	}
	if got := s.Score(MethodPrimary, one, nil); !approx(got, 0.70) {
		t.Errorf("single corroboration pair must not earn the bonus, got %v", got)
	}

	// Both pairs present: +0.05.
	two := &model.NormalizedBill{
		BillingDate:     strp("2024-01-02"),
		BillingEndDate:  strp("2024-01-31"),
		PreviousBalance: fp(120),
		BalanceForward:  fp(120),
	}
	if got := s.Score(MethodPrimary, two, nil); !approx(got, 0.75) {
		t.Errorf("expected 0.70 + 0.05 = 0.75, got %v", got)
	}
}

func TestScorer_Score_ClampsToUpperBound(t *testing.T) {
	s := NewScorer()

	bill := &model.NormalizedBill{
		BillingDate:     strp("2024-01-02"),
		BillingEndDate:  strp("2024-01-31"),
		PreviousBalance: fp(120),
		BalanceForward:  fp(120),
	}

	got := s.Score(MethodSecondary, bill, nil)
	if !approx(got, 0.85) {
		t.Errorf("expected 0.85, got %v", got)
	}
	if got < 0 || got > 1 {
		t.Errorf("score out of [0,1]: %v", got)
	}
}

func TestScorer_Score_UnknownIssueCodesIgnored(t *testing.T) {
	s := NewScorer()
	bill := &model.NormalizedBill{}

	if got := s.Score(MethodPrimary, bill, []string{"some_future_code"}); !approx(got, 0.70) {
		t.Errorf("unknown codes must not affect the score, got %v", got)
	}
}
