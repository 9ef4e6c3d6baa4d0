// Package simulation holds the what-if calculators behind simulation widgets.
// Every calculator is a pure function of its parameters: no I/O, no clocks,
// and safe to call on every slider change.
package simulation

import (
	"fmt"
	"math"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// Params is the live parameter vector of a simulator, keyed by slider key.
type Params map[string]float64

func (p Params) get(key string) float64 {
	return p[key]
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Metric is one headline number of a simulation.
type Metric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	// Unbounded marks a metric with no finite value, such as a savings goal
	// that is never reached.
	Unbounded bool `json:"unbounded,omitempty"`
}

// Result is the generic output of Simulate.
type Result struct {
	Type      models.SimulationType `json:"type"`
	Metrics   []Metric              `json:"metrics"`
	Series    []models.Row          `json:"series,omitempty"`
	Breakdown []BudgetCategory      `json:"breakdown,omitempty"`
	Alerts    []string              `json:"alerts,omitempty"`
}

// Metric looks up a metric by key.
func (r Result) Metric(key string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// Metric units.
const (
	UnitCurrency = "currency"
	UnitPercent  = "percent"
	UnitYears    = "years"
	UnitMonths   = "months"
)

// Known reports whether t is one of the built-in simulators.
func Known(t models.SimulationType) bool {
	switch t {
	case models.SimLoanRepayment, models.SimSavingsProjector, models.SimBudgetPlanner,
		models.SimRetirementCalculator, models.SimEmergencyFund:
		return true
	}
	return false
}

// Simulate runs the named simulator over p. Parameters missing from p are
// read as zero; callers normally go through a Session, which always supplies
// the full set.
func Simulate(t models.SimulationType, p Params) (Result, error) {
	switch t {
	case models.SimLoanRepayment:
		return Loan(loanParamsFrom(p)).result(), nil
	case models.SimSavingsProjector:
		return Savings(savingsParamsFrom(p)).result(), nil
	case models.SimBudgetPlanner:
		return Budget(budgetParamsFrom(p)).result(), nil
	case models.SimRetirementCalculator:
		return Retirement(retirementParamsFrom(p)).result(), nil
	case models.SimEmergencyFund:
		return EmergencyFund(emergencyParamsFrom(p)).result(), nil
	}
	return Result{}, errs.NewValidationError(fmt.Sprintf("unknown simulation type: %q", t))
}

// Controls returns a fresh copy of the slider set for t.
func Controls(t models.SimulationType) ([]Slider, error) {
	var src []Slider
	switch t {
	case models.SimLoanRepayment:
		src = loanSliders
	case models.SimSavingsProjector:
		src = savingsSliders
	case models.SimBudgetPlanner:
		src = budgetSliders
	case models.SimRetirementCalculator:
		src = retirementSliders
	case models.SimEmergencyFund:
		src = emergencySliders
	default:
		return nil, errs.NewValidationError(fmt.Sprintf("unknown simulation type: %q", t))
	}
	return append([]Slider(nil), src...), nil
}

// DefaultParams returns the slider default values for t.
func DefaultParams(t models.SimulationType) (Params, error) {
	sliders, err := Controls(t)
	if err != nil {
		return nil, err
	}
	p := make(Params, len(sliders))
	for _, s := range sliders {
		p[s.Key] = s.Value
	}
	return p, nil
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
