package simulation

import (
	"fmt"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// Session is the live parameter state of one open simulator. It is seeded
// from the widget's defaults, never written back to the widget, and is not
// safe for concurrent use.
type Session struct {
	simType models.SimulationType
	sliders []Slider
	index   map[string]int
	params  Params

	cached *Result
}

// NewSession seeds every slider from its built-in default, then overlays the
// widget's defaults clamped to each slider's bounds. Unknown default keys are
// ignored.
func NewSession(cfg models.SimulationConfig) (*Session, error) {
	sliders, err := Controls(cfg.SimulationType)
	if err != nil {
		return nil, err
	}

	s := &Session{
		simType: cfg.SimulationType,
		sliders: sliders,
		index:   make(map[string]int, len(sliders)),
		params:  make(Params, len(sliders)),
	}
	for i := range s.sliders {
		sl := &s.sliders[i]
		if v, ok := cfg.Defaults[sl.Key]; ok {
			sl.Value = sl.Clamp(v)
		}
		s.index[sl.Key] = i
		s.params[sl.Key] = sl.Value
	}
	return s, nil
}

func (s *Session) Type() models.SimulationType { return s.simType }

// Set clamps v into the slider's range and recomputes with the full parameter set.
func (s *Session) Set(key string, v float64) (Result, error) {
	i, ok := s.index[key]
	if !ok {
		return Result{}, errs.NewValidationError(fmt.Sprintf("unknown parameter %q for %s", key, s.simType))
	}
	clamped := s.sliders[i].Clamp(v)
	s.sliders[i].Value = clamped
	s.params[key] = clamped
	s.cached = nil
	return s.Result(), nil
}

// Result returns the simulation over the current parameters. The value is
// recomputed after every Set.
func (s *Session) Result() Result {
	if s.cached == nil {
		// the type was validated in NewSession
		res, _ := Simulate(s.simType, s.params)
		s.cached = &res
	}
	return *s.cached
}

// Params returns a copy of the current parameter vector.
func (s *Session) Params() Params {
	return s.params.Clone()
}

// Sliders returns a copy of the controls with their current values.
func (s *Session) Sliders() []Slider {
	return append([]Slider(nil), s.sliders...)
}
