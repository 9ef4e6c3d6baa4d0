package simulation

import (
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// fiveYearGrowthPct is a flat growth assumption over the whole five years,
// not a compounded annual rate.
const fiveYearGrowthPct = 105

var budgetSliders = []Slider{
	{Key: "income", Label: "Monthly Income", Value: 6000, Min: 1000, Max: 30000, Step: 100, Prefix: "$"},
	{Key: "housing", Label: "Housing", Value: 30, Min: 0, Max: 60, Step: 1, Unit: "%"},
	{Key: "transportation", Label: "Transportation", Value: 15, Min: 0, Max: 40, Step: 1, Unit: "%"},
	{Key: "food", Label: "Food", Value: 12, Min: 0, Max: 30, Step: 1, Unit: "%"},
	{Key: "savings", Label: "Savings", Value: 20, Min: 0, Max: 50, Step: 1, Unit: "%"},
}

type BudgetParams struct {
	Income       float64
	HousingPct   float64
	TransportPct float64
	FoodPct      float64
	SavingsPct   float64
}

func budgetParamsFrom(p Params) BudgetParams {
	return BudgetParams{
		Income:       p.get("income"),
		HousingPct:   p.get("housing"),
		TransportPct: p.get("transportation"),
		FoodPct:      p.get("food"),
		SavingsPct:   p.get("savings"),
	}
}

// BudgetCategory is one slice of the monthly allocation.
type BudgetCategory struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

type BudgetResult struct {
	Categories         []BudgetCategory
	AllocatedPct       float64
	RemainingPct       float64
	RemainingAmount    float64
	SavingsAmount      float64
	AnnualSavings      float64
	FiveYearProjection float64
	OverBudget         bool
}

// Budget splits monthly income across the fixed categories.
func Budget(p BudgetParams) BudgetResult {
	amount := func(pct float64) float64 { return p.Income * pct / 100 }

	allocated := p.HousingPct + p.TransportPct + p.FoodPct + p.SavingsPct
	remaining := 100 - allocated

	res := BudgetResult{
		Categories: []BudgetCategory{
			{Key: "housing", Name: "Housing", Percent: p.HousingPct, Amount: amount(p.HousingPct)},
			{Key: "transportation", Name: "Transportation", Percent: p.TransportPct, Amount: amount(p.TransportPct)},
			{Key: "food", Name: "Food", Percent: p.FoodPct, Amount: amount(p.FoodPct)},
			{Key: "savings", Name: "Savings", Percent: p.SavingsPct, Amount: amount(p.SavingsPct)},
		},
		AllocatedPct:    allocated,
		RemainingPct:    remaining,
		RemainingAmount: amount(remaining),
		SavingsAmount:   amount(p.SavingsPct),
		OverBudget:      allocated > 100,
	}
	if remaining > 0 {
		res.Categories = append(res.Categories, BudgetCategory{
			Key: "remaining", Name: "Other / Remaining", Percent: remaining, Amount: res.RemainingAmount,
		})
	}

	res.AnnualSavings = res.SavingsAmount * 12
	res.FiveYearProjection = res.AnnualSavings * 5 * fiveYearGrowthPct / 100
	return res
}

func (r BudgetResult) result() Result {
	out := Result{
		Type: models.SimBudgetPlanner,
		Metrics: []Metric{
			{Key: "remainingPct", Label: "Unallocated", Value: r.RemainingPct, Unit: UnitPercent},
			{Key: "remainingAmount", Label: "Unallocated Amount", Value: r.RemainingAmount, Unit: UnitCurrency},
			{Key: "savingsAmount", Label: "Monthly Savings", Value: r.SavingsAmount, Unit: UnitCurrency},
			{Key: "annualSavings", Label: "Annual Savings", Value: r.AnnualSavings, Unit: UnitCurrency},
			{Key: "fiveYearProjection", Label: "5-Year Projection", Value: r.FiveYearProjection, Unit: UnitCurrency},
		},
		Breakdown: r.Categories,
	}
	if r.OverBudget {
		out.Alerts = append(out.Alerts, "over budget: allocations exceed 100% of income")
	}
	return out
}
