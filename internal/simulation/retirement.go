package simulation

import (
	"math"

	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// withdrawalRate is the 4% rule used to estimate retirement income.
const withdrawalRate = 0.04

var retirementSliders = []Slider{
	{Key: "currentAge", Label: "Current Age", Value: 30, Min: 18, Max: 70, Step: 1, Unit: "years"},
	{Key: "retirementAge", Label: "Retirement Age", Value: 65, Min: 50, Max: 75, Step: 1, Unit: "years"},
	{Key: "currentSavings", Label: "Current Savings", Value: 50000, Min: 0, Max: 2000000, Step: 5000, Prefix: "$"},
	{Key: "monthlyContribution", Label: "Monthly Contribution", Value: 1000, Min: 0, Max: 10000, Step: 100, Prefix: "$"},
	{Key: "expectedReturn", Label: "Expected Return", Value: 7, Min: 0, Max: 12, Step: 0.5, Unit: "%"},
}

type RetirementParams struct {
	CurrentAge          float64
	RetirementAge       float64
	CurrentSavings      float64
	MonthlyContribution float64
	ExpectedReturn      float64 // percent
}

func retirementParamsFrom(p Params) RetirementParams {
	return RetirementParams{
		CurrentAge:          p.get("currentAge"),
		RetirementAge:       p.get("retirementAge"),
		CurrentSavings:      p.get("currentSavings"),
		MonthlyContribution: p.get("monthlyContribution"),
		ExpectedReturn:      p.get("expectedReturn"),
	}
}

type RetirementPoint struct {
	Age     float64
	Savings float64
}

type RetirementResult struct {
	YearsToRetirement       int
	FinalBalance            float64
	TotalContributions      float64
	TotalGrowth             float64
	MonthlyRetirementIncome float64
	Series                  []RetirementPoint
}

// Retirement records the balance at the start of each year up to and
// including the retirement year, compounding monthly in between.
func Retirement(p RetirementParams) RetirementResult {
	years := int(math.Round(p.RetirementAge - p.CurrentAge))
	if years < 0 {
		years = 0
	}
	r := p.ExpectedReturn / 100 / 12

	balance := nonNegative(p.CurrentSavings)
	series := make([]RetirementPoint, 0, years+1)
	for year := 0; year <= years; year++ {
		series = append(series, RetirementPoint{Age: p.CurrentAge + float64(year), Savings: balance})
		if year == years {
			break
		}
		for m := 0; m < 12; m++ {
			balance = nonNegative(balance*(1+r) + p.MonthlyContribution)
		}
	}

	totalMonths := float64(years * 12)
	contributions := p.CurrentSavings + p.MonthlyContribution*totalMonths
	return RetirementResult{
		YearsToRetirement:       years,
		FinalBalance:            balance,
		TotalContributions:      contributions,
		TotalGrowth:             balance - contributions,
		MonthlyRetirementIncome: balance * withdrawalRate / 12,
		Series:                  series,
	}
}

func (r RetirementResult) result() Result {
	series := make([]models.Row, len(r.Series))
	for i, p := range r.Series {
		series[i] = models.NewRow(
			models.F("age", p.Age),
			models.F("savings", p.Savings),
		)
	}
	return Result{
		Type: models.SimRetirementCalculator,
		Metrics: []Metric{
			{Key: "finalBalance", Label: "Balance at Retirement", Value: r.FinalBalance, Unit: UnitCurrency},
			{Key: "totalContributions", Label: "Total Contributions", Value: r.TotalContributions, Unit: UnitCurrency},
			{Key: "totalGrowth", Label: "Investment Growth", Value: r.TotalGrowth, Unit: UnitCurrency},
			{Key: "monthlyRetirementIncome", Label: "Monthly Income (4% rule)", Value: r.MonthlyRetirementIncome, Unit: UnitCurrency},
		},
		Series: series,
	}
}
