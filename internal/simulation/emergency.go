package simulation

import (
	"math"

	"github.com/GregMSThompson/finance-widgets/internal/models"
)

const (
	emergencyMaxMonth = 36
	emergencyTrailing = 6
	emergencyCeilingX = 1.2
)

var emergencySliders = []Slider{
	{Key: "monthlyExpenses", Label: "Monthly Expenses", Value: 4000, Min: 500, Max: 20000, Step: 100, Prefix: "$"},
	{Key: "targetMonths", Label: "Target Coverage", Value: 6, Min: 3, Max: 12, Step: 1, Unit: "months"},
	{Key: "currentSavings", Label: "Current Savings", Value: 5000, Min: 0, Max: 100000, Step: 500, Prefix: "$"},
	{Key: "monthlySavings", Label: "Monthly Savings", Value: 500, Min: 0, Max: 5000, Step: 50, Prefix: "$"},
}

type EmergencyParams struct {
	MonthlyExpenses float64
	TargetMonths    float64
	CurrentSavings  float64
	MonthlySavings  float64
}

func emergencyParamsFrom(p Params) EmergencyParams {
	return EmergencyParams{
		MonthlyExpenses: p.get("monthlyExpenses"),
		TargetMonths:    p.get("targetMonths"),
		CurrentSavings:  p.get("currentSavings"),
		MonthlySavings:  p.get("monthlySavings"),
	}
}

type EmergencyPoint struct {
	Month   int
	Savings float64
	Target  float64
}

type EmergencyResult struct {
	TargetAmount float64
	Remaining    float64
	// MonthsToGoal is nil when the goal is never reached.
	MonthsToGoal *int
	Progress     float64
	Series       []EmergencyPoint
}

// EmergencyFund projects linear saving toward a multiple of monthly expenses.
func EmergencyFund(p EmergencyParams) EmergencyResult {
	target := p.MonthlyExpenses * p.TargetMonths
	remaining := math.Max(0, target-p.CurrentSavings)

	res := EmergencyResult{
		TargetAmount: target,
		Remaining:    remaining,
		Progress:     100,
	}
	if target > 0 {
		res.Progress = math.Min(100, p.CurrentSavings/target*100)
	}

	lastMonth := emergencyMaxMonth
	if p.MonthlySavings > 0 {
		months := int(math.Ceil(remaining / p.MonthlySavings))
		res.MonthsToGoal = &months
		lastMonth = min(months+emergencyTrailing, emergencyMaxMonth)
	}

	ceiling := target * emergencyCeilingX
	res.Series = make([]EmergencyPoint, 0, lastMonth+1)
	for month := 0; month <= lastMonth; month++ {
		res.Series = append(res.Series, EmergencyPoint{
			Month:   month,
			Savings: math.Min(p.CurrentSavings+p.MonthlySavings*float64(month), ceiling),
			Target:  target,
		})
	}
	return res
}

func (r EmergencyResult) result() Result {
	series := make([]models.Row, len(r.Series))
	for i, p := range r.Series {
		series[i] = models.NewRow(
			models.F("month", p.Month),
			models.F("savings", p.Savings),
			models.F("target", p.Target),
		)
	}

	monthsToGoal := Metric{Key: "monthsToGoal", Label: "Months to Goal", Unit: UnitMonths}
	if r.MonthsToGoal != nil {
		monthsToGoal.Value = float64(*r.MonthsToGoal)
	} else {
		monthsToGoal.Unbounded = true
	}

	return Result{
		Type: models.SimEmergencyFund,
		Metrics: []Metric{
			{Key: "targetAmount", Label: "Target Fund", Value: r.TargetAmount, Unit: UnitCurrency},
			{Key: "remaining", Label: "Still Needed", Value: r.Remaining, Unit: UnitCurrency},
			monthsToGoal,
			{Key: "progress", Label: "Progress", Value: r.Progress, Unit: UnitPercent},
		},
		Series: series,
	}
}
