package models

import (
	"fmt"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
)

// Validate checks the structural invariants of a widget before it is written.
// Unknown chart and simulation types are allowed; they render as a fallback.
func (w *Widget) Validate() error {
	switch w.Kind {
	case KindChart, KindTable, KindMetric, KindCustom, KindSimulation:
	default:
		return errs.NewValidationError(fmt.Sprintf("unknown widget kind: %q", w.Kind))
	}

	if w.IsSimulation() {
		if w.SimulationConfig == nil {
			return errs.NewValidationError("simulationConfig is required for simulation widgets")
		}
		return nil
	}

	switch w.DataMode {
	case DataModeDynamic:
		if w.QueryConfig == nil {
			return errs.NewValidationError("queryConfig is required for dynamic widgets")
		}
	case DataModeStatic:
		if w.LastRefreshed != nil {
			return errs.NewValidationError("static widgets cannot carry lastRefreshed")
		}
	default:
		return errs.NewValidationError(fmt.Sprintf("unknown data mode: %q", w.DataMode))
	}
	return nil
}
