package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLoanStandardPayment(t *testing.T) {
	res := Loan(LoanParams{Principal: 250000, InterestRate: 6.5, TermYears: 30})

	r := 0.065 / 12
	g := math.Pow(1+r, 360)
	want := 250000 * r * g / (g - 1)
	if !approx(res.MonthlyPayment, want, 0.005) {
		t.Fatalf("expected payment %.2f, got %.2f", want, res.MonthlyPayment)
	}
	if !approx(res.MonthlyPayment, 1580.17, 0.005) {
		t.Fatalf("expected payment 1580.17, got %.4f", res.MonthlyPayment)
	}
	if res.InterestSaved != 0 || res.YearsSaved != 0 {
		t.Fatalf("expected no savings without extra payment, got %+v", res)
	}
	if res.PayoffYearStandard != 30 {
		t.Fatalf("expected payoff in year 30, got %v", res.PayoffYearStandard)
	}
}

func TestLoanExtraPaymentMonotonic(t *testing.T) {
	prevSaved, prevYears := -1.0, -1.0
	for _, extra := range []float64{0, 100, 200, 500, 1000, 2000} {
		res := Loan(LoanParams{Principal: 250000, InterestRate: 6.5, TermYears: 30, ExtraPayment: extra})
		if res.InterestSaved < prevSaved {
			t.Fatalf("interestSaved decreased at extra=%v: %v < %v", extra, res.InterestSaved, prevSaved)
		}
		if res.YearsSaved < prevYears {
			t.Fatalf("yearsSaved decreased at extra=%v: %v < %v", extra, res.YearsSaved, prevYears)
		}
		if res.YearsSaved > 30 {
			t.Fatalf("yearsSaved exceeds term: %v", res.YearsSaved)
		}
		prevSaved, prevYears = res.InterestSaved, res.YearsSaved
	}
}

func TestLoanSeriesMergeAndDownsample(t *testing.T) {
	res := Loan(LoanParams{Principal: 250000, InterestRate: 6.5, TermYears: 30, ExtraPayment: 200})

	if res.PayoffYearAccelerated != 23 || res.YearsSaved != 7 {
		t.Fatalf("expected accelerated payoff in year 23, got %+v", res)
	}
	if len(res.Series) > maxChartPoints+1 {
		t.Fatalf("expected at most %d points, got %d", maxChartPoints+1, len(res.Series))
	}
	last := res.Series[len(res.Series)-1]
	if last.Year != 30 || last.StandardBalance != 0 {
		t.Fatalf("expected final point year 30 at zero, got %+v", last)
	}

	byYear := map[int]LoanPoint{}
	for _, p := range res.Series {
		byYear[p.Year] = p
	}
	if p := byYear[23]; p.AcceleratedBalance != 0 {
		t.Fatalf("expected accelerated balance 0 at payoff year, got %+v", p)
	}
	if p := byYear[25]; p.AcceleratedBalance != p.StandardBalance {
		t.Fatalf("expected accelerated to carry standard balance after payoff, got %+v", p)
	}
}

func TestLoanZeroRate(t *testing.T) {
	res := Loan(LoanParams{Principal: 12000, InterestRate: 0, TermYears: 1})
	if res.MonthlyPayment != 1000 {
		t.Fatalf("expected 1000, got %v", res.MonthlyPayment)
	}
	if res.StandardTotalInterest != 0 {
		t.Fatalf("expected no interest, got %v", res.StandardTotalInterest)
	}
}

func TestDownsampleKeepsLast(t *testing.T) {
	in := make([]int, 31)
	for i := range in {
		in[i] = i
	}
	out := downsample(in, 15)
	if out[0] != 0 || out[len(out)-1] != 30 {
		t.Fatalf("unexpected endpoints: %v", out)
	}
	if len(out) != 11 {
		t.Fatalf("expected 11 points with step 3, got %d: %v", len(out), out)
	}
}

func TestSavingsZeroReturn(t *testing.T) {
	res := Savings(SavingsParams{MonthlyContribution: 1000, YearsToGrow: 1})
	if res.TotalValue != 12000 || res.TotalContributions != 12000 || res.TotalInterest != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Series) != 1 || res.Series[0].Year != 1 {
		t.Fatalf("expected one yearly point, got %+v", res.Series)
	}
}

func TestSavingsAccountingIdentity(t *testing.T) {
	cases := []SavingsParams{
		{InitialDeposit: 10000, MonthlyContribution: 500, AnnualReturn: 7, YearsToGrow: 20},
		{InitialDeposit: 0, MonthlyContribution: 50, AnnualReturn: 15, YearsToGrow: 40},
		{InitialDeposit: 100000, MonthlyContribution: 0, AnnualReturn: 0.5, YearsToGrow: 3},
	}
	for _, p := range cases {
		res := Savings(p)
		if !approx(res.TotalValue-res.TotalContributions, res.TotalInterest, 1e-6) {
			t.Fatalf("identity broken for %+v: %+v", p, res)
		}
		for _, pt := range res.Series {
			if !approx(pt.TotalValue-pt.Contributions, pt.InterestEarned, 1e-6) {
				t.Fatalf("identity broken at year %d for %+v", pt.Year, p)
			}
		}
		if got := len(res.Series); got != int(p.YearsToGrow) {
			t.Fatalf("expected %v points, got %d", p.YearsToGrow, got)
		}
	}
}

func TestBudgetAllocation(t *testing.T) {
	res := Budget(BudgetParams{Income: 6000, HousingPct: 30, TransportPct: 15, FoodPct: 12, SavingsPct: 20})

	if res.RemainingPct != 23 {
		t.Fatalf("expected remaining 23, got %v", res.RemainingPct)
	}
	if res.SavingsAmount != 1200 || res.AnnualSavings != 14400 {
		t.Fatalf("unexpected savings: %+v", res)
	}
	if res.FiveYearProjection != 75600 {
		t.Fatalf("expected 75600, got %v", res.FiveYearProjection)
	}
	if res.OverBudget {
		t.Fatalf("expected within budget")
	}
	if n := len(res.Categories); n != 5 || res.Categories[4].Key != "remaining" {
		t.Fatalf("expected remaining category appended, got %+v", res.Categories)
	}
}

func TestBudgetOverAllocation(t *testing.T) {
	res := Budget(BudgetParams{Income: 6000, HousingPct: 60, TransportPct: 15, FoodPct: 12, SavingsPct: 20})
	if !res.OverBudget {
		t.Fatalf("expected over budget")
	}
	if len(res.Categories) != 4 {
		t.Fatalf("expected no remaining category, got %+v", res.Categories)
	}

	out := res.result()
	if len(out.Alerts) != 1 {
		t.Fatalf("expected an over-budget alert, got %v", out.Alerts)
	}
	if out.Series != nil {
		t.Fatalf("budget has no series")
	}
}

func TestRetirementZeroReturn(t *testing.T) {
	res := Retirement(RetirementParams{CurrentAge: 30, RetirementAge: 65, CurrentSavings: 50000})

	if res.FinalBalance != 50000 || res.TotalGrowth != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !approx(res.MonthlyRetirementIncome, 166.67, 0.005) {
		t.Fatalf("expected 166.67, got %v", res.MonthlyRetirementIncome)
	}
	if len(res.Series) != 36 {
		t.Fatalf("expected 36 yearly points, got %d", len(res.Series))
	}
	if first, last := res.Series[0], res.Series[35]; first.Age != 30 || last.Age != 65 {
		t.Fatalf("unexpected ages %v..%v", first.Age, last.Age)
	}
}

func TestRetirementTerminalYearNotGrown(t *testing.T) {
	res := Retirement(RetirementParams{CurrentAge: 60, RetirementAge: 62, MonthlyContribution: 100})
	if res.FinalBalance != 2400 {
		t.Fatalf("expected two years of contributions, got %v", res.FinalBalance)
	}
	if res.Series[2].Savings != res.FinalBalance {
		t.Fatalf("terminal point should equal final balance")
	}
}

func TestRetirementPastAge(t *testing.T) {
	res := Retirement(RetirementParams{CurrentAge: 70, RetirementAge: 65, CurrentSavings: 1000})
	if res.YearsToRetirement != 0 || len(res.Series) != 1 || res.FinalBalance != 1000 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEmergencyFundGoal(t *testing.T) {
	res := EmergencyFund(EmergencyParams{MonthlyExpenses: 4000, TargetMonths: 6, CurrentSavings: 5000, MonthlySavings: 500})

	if res.TargetAmount != 24000 || res.Remaining != 19000 {
		t.Fatalf("unexpected amounts: %+v", res)
	}
	if res.MonthsToGoal == nil || *res.MonthsToGoal != 38 {
		t.Fatalf("expected 38 months, got %v", res.MonthsToGoal)
	}
	if !approx(res.Progress, 20.83, 0.01) {
		t.Fatalf("expected ~20.83%%, got %v", res.Progress)
	}
	if last := res.Series[len(res.Series)-1]; last.Month != 36 {
		t.Fatalf("expected series capped at month 36, got %d", last.Month)
	}
}

func TestEmergencyFundNoSavings(t *testing.T) {
	res := EmergencyFund(EmergencyParams{MonthlyExpenses: 1000, TargetMonths: 3})
	if res.MonthsToGoal != nil {
		t.Fatalf("expected unbounded months to goal")
	}
	if last := res.Series[len(res.Series)-1]; last.Month != 36 {
		t.Fatalf("expected cap at 36, got %d", last.Month)
	}

	m, ok := res.result().Metric("monthsToGoal")
	if !ok || !m.Unbounded {
		t.Fatalf("expected unbounded metric, got %+v", m)
	}
}

func TestEmergencyFundSavingsCeiling(t *testing.T) {
	res := EmergencyFund(EmergencyParams{MonthlyExpenses: 1000, TargetMonths: 3, MonthlySavings: 1000})
	// goal in 3 months, series runs to month 9
	if n := len(res.Series); n != 10 {
		t.Fatalf("expected 10 points, got %d", n)
	}
	for _, p := range res.Series {
		if p.Savings > 3600 {
			t.Fatalf("savings above 1.2x target at month %d: %v", p.Month, p.Savings)
		}
	}
}

func TestSimulateUnknownType(t *testing.T) {
	_, err := Simulate("crypto_moonshot", Params{})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if Known("crypto_moonshot") {
		t.Fatalf("unknown type reported as known")
	}
}

func TestSimulateEveryTypeWithDefaults(t *testing.T) {
	for _, st := range models.SimulationTypes {
		p, err := DefaultParams(st)
		if err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		res, err := Simulate(st, p)
		if err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		if res.Type != st || len(res.Metrics) == 0 {
			t.Fatalf("%s: unexpected result %+v", st, res)
		}
		for _, m := range res.Metrics {
			if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
				t.Fatalf("%s: metric %s is not finite", st, m.Key)
			}
		}
	}
}

func TestControlsReturnsCopy(t *testing.T) {
	a, _ := Controls(models.SimLoanRepayment)
	a[0].Value = -1
	b, _ := Controls(models.SimLoanRepayment)
	if b[0].Value == -1 {
		t.Fatalf("controls share backing storage")
	}
}
