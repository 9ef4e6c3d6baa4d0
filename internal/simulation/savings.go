package simulation

import (
	"math"

	"github.com/GregMSThompson/finance-widgets/internal/models"
)

var savingsSliders = []Slider{
	{Key: "initialDeposit", Label: "Initial Deposit", Value: 10000, Min: 0, Max: 100000, Step: 1000, Prefix: "$"},
	{Key: "monthlyContribution", Label: "Monthly Contribution", Value: 500, Min: 0, Max: 5000, Step: 50, Prefix: "$"},
	{Key: "annualReturn", Label: "Annual Return", Value: 7, Min: 0, Max: 15, Step: 0.5, Unit: "%"},
	{Key: "yearsToGrow", Label: "Years to Grow", Value: 20, Min: 1, Max: 40, Step: 1, Unit: "years"},
}

type SavingsParams struct {
	InitialDeposit      float64
	MonthlyContribution float64
	AnnualReturn        float64 // percent
	YearsToGrow         float64
}

func savingsParamsFrom(p Params) SavingsParams {
	return SavingsParams{
		InitialDeposit:      p.get("initialDeposit"),
		MonthlyContribution: p.get("monthlyContribution"),
		AnnualReturn:        p.get("annualReturn"),
		YearsToGrow:         p.get("yearsToGrow"),
	}
}

type SavingsPoint struct {
	Year           int
	TotalValue     float64
	Contributions  float64
	InterestEarned float64
}

type SavingsResult struct {
	TotalValue         float64
	TotalContributions float64
	TotalInterest      float64
	Series             []SavingsPoint
}

// Savings compounds monthly, adding the contribution after each month's growth.
func Savings(p SavingsParams) SavingsResult {
	r := p.AnnualReturn / 100 / 12
	months := int(math.Round(p.YearsToGrow * 12))

	balance := nonNegative(p.InitialDeposit)
	contributions := balance
	series := make([]SavingsPoint, 0, months/12)

	for month := 1; month <= months; month++ {
		balance = nonNegative(balance*(1+r) + p.MonthlyContribution)
		contributions += p.MonthlyContribution

		if month%12 == 0 {
			series = append(series, SavingsPoint{
				Year:           month / 12,
				TotalValue:     balance,
				Contributions:  contributions,
				InterestEarned: balance - contributions,
			})
		}
	}

	return SavingsResult{
		TotalValue:         balance,
		TotalContributions: contributions,
		TotalInterest:      balance - contributions,
		Series:             series,
	}
}

func (r SavingsResult) result() Result {
	series := make([]models.Row, len(r.Series))
	for i, p := range r.Series {
		series[i] = models.NewRow(
			models.F("year", p.Year),
			models.F("totalValue", p.TotalValue),
			models.F("contributions", p.Contributions),
			models.F("interestEarned", p.InterestEarned),
		)
	}
	return Result{
		Type: models.SimSavingsProjector,
		Metrics: []Metric{
			{Key: "totalValue", Label: "Final Balance", Value: r.TotalValue, Unit: UnitCurrency},
			{Key: "totalContributions", Label: "Total Contributions", Value: r.TotalContributions, Unit: UnitCurrency},
			{Key: "totalInterest", Label: "Interest Earned", Value: r.TotalInterest, Unit: UnitCurrency},
		},
		Series: series,
	}
}
