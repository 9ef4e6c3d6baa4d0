package simulation

import (
	"math"

	"github.com/GregMSThompson/finance-widgets/internal/models"
)

const (
	// maxChartPoints bounds the merged loan series handed to the renderer.
	maxChartPoints = 15
	// balanceEpsilon treats sub-micro-cent float residue as a paid-off balance.
	balanceEpsilon = 1e-6
)

var loanSliders = []Slider{
	{Key: "principal", Label: "Loan Amount", Value: 250000, Min: 10000, Max: 1000000, Step: 5000, Prefix: "$"},
	{Key: "interestRate", Label: "Interest Rate", Value: 6.5, Min: 1, Max: 15, Step: 0.125, Unit: "%"},
	{Key: "termYears", Label: "Loan Term", Value: 30, Min: 5, Max: 30, Step: 1, Unit: "years"},
	{Key: "extraPayment", Label: "Extra Monthly Payment", Value: 0, Min: 0, Max: 2000, Step: 25, Prefix: "$"},
}

type LoanParams struct {
	Principal    float64
	InterestRate float64 // annual, percent
	TermYears    float64
	ExtraPayment float64
}

func loanParamsFrom(p Params) LoanParams {
	return LoanParams{
		Principal:    p.get("principal"),
		InterestRate: p.get("interestRate"),
		TermYears:    p.get("termYears"),
		ExtraPayment: p.get("extraPayment"),
	}
}

type LoanPoint struct {
	Year               int
	StandardBalance    float64
	AcceleratedBalance float64
}

type LoanResult struct {
	MonthlyPayment           float64
	StandardTotalInterest    float64
	AcceleratedTotalInterest float64
	InterestSaved            float64
	PayoffYearStandard       float64
	PayoffYearAccelerated    float64
	YearsSaved               float64
	// Series is the merged, downsampled yearly schedule.
	Series []LoanPoint
}

type loanSnapshot struct {
	year    int
	balance float64
}

type loanTrack struct {
	snapshots     []loanSnapshot
	totalInterest float64
	payoffMonth   int // 0 when the balance never reached zero
}

// Loan amortizes the principal twice, once at the standard payment and once
// with the extra payment added, and compares the two schedules.
func Loan(p LoanParams) LoanResult {
	n := int(math.Round(p.TermYears * 12))
	if n <= 0 || p.Principal <= 0 {
		return LoanResult{PayoffYearStandard: p.TermYears, PayoffYearAccelerated: p.TermYears}
	}

	r := p.InterestRate / 100 / 12
	payment := monthlyPayment(p.Principal, r, n)

	standard := amortize(p.Principal, r, payment, n)
	accelerated := amortize(p.Principal, r, payment+p.ExtraPayment, n)

	res := LoanResult{
		MonthlyPayment:           payment,
		StandardTotalInterest:    standard.totalInterest,
		AcceleratedTotalInterest: accelerated.totalInterest,
		InterestSaved:            standard.totalInterest - accelerated.totalInterest,
		PayoffYearStandard:       payoffYear(standard, p.TermYears),
		PayoffYearAccelerated:    payoffYear(accelerated, p.TermYears),
	}
	res.YearsSaved = res.PayoffYearStandard - res.PayoffYearAccelerated
	res.Series = downsample(mergeTracks(standard, accelerated), maxChartPoints)
	return res
}

func monthlyPayment(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return principal * r * growth / (growth - 1)
}

func amortize(principal, r, payment float64, n int) loanTrack {
	var t loanTrack
	balance := principal
	for month := 1; month <= n; month++ {
		interest := balance * r
		principalPaid := math.Min(payment-interest, balance)
		balance = math.Max(0, balance-principalPaid)
		if balance < balanceEpsilon {
			balance = 0
		}
		t.totalInterest += interest

		if month%12 == 0 || month == n || balance == 0 {
			t.snapshots = append(t.snapshots, loanSnapshot{year: yearOfMonth(month), balance: balance})
		}
		if balance == 0 {
			t.payoffMonth = month
			break
		}
	}
	return t
}

func yearOfMonth(month int) int {
	return (month + 11) / 12
}

func payoffYear(t loanTrack, termYears float64) float64 {
	if t.payoffMonth == 0 {
		return termYears
	}
	return float64(yearOfMonth(t.payoffMonth))
}

// mergeTracks joins both schedules by year. Years after the accelerated
// payoff have no accelerated snapshot and carry the standard balance.
func mergeTracks(standard, accelerated loanTrack) []LoanPoint {
	accByYear := make(map[int]float64, len(accelerated.snapshots))
	for _, s := range accelerated.snapshots {
		accByYear[s.year] = s.balance
	}

	points := make([]LoanPoint, 0, len(standard.snapshots))
	for _, s := range standard.snapshots {
		acc, ok := accByYear[s.year]
		if !ok {
			acc = s.balance
		}
		points = append(points, LoanPoint{Year: s.year, StandardBalance: s.balance, AcceleratedBalance: acc})
	}
	return points
}

// downsample keeps every ceil(len/limit)-th point plus the last one.
func downsample[T any](points []T, limit int) []T {
	if len(points) <= limit || limit <= 0 {
		return points
	}
	step := (len(points) + limit - 1) / limit
	out := make([]T, 0, limit+1)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	if (len(points)-1)%step != 0 {
		out = append(out, points[len(points)-1])
	}
	return out
}

func (r LoanResult) result() Result {
	series := make([]models.Row, len(r.Series))
	for i, p := range r.Series {
		series[i] = models.NewRow(
			models.F("year", p.Year),
			models.F("standardBalance", p.StandardBalance),
			models.F("acceleratedBalance", p.AcceleratedBalance),
		)
	}
	return Result{
		Type: models.SimLoanRepayment,
		Metrics: []Metric{
			{Key: "monthlyPayment", Label: "Monthly Payment", Value: r.MonthlyPayment, Unit: UnitCurrency},
			{Key: "interestSaved", Label: "Interest Saved", Value: r.InterestSaved, Unit: UnitCurrency},
			{Key: "yearsSaved", Label: "Years Saved", Value: r.YearsSaved, Unit: UnitYears},
			{Key: "totalInterest", Label: "Total Interest", Value: r.AcceleratedTotalInterest, Unit: UnitCurrency},
		},
		Series: series,
	}
}
