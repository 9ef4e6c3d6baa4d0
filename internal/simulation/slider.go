package simulation

import "math"

// Slider is a bounded numeric control for one simulator parameter.
type Slider struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Step   float64 `json:"step"`
	Unit   string  `json:"unit,omitempty"`
	Prefix string  `json:"prefix,omitempty"`
}

// Clamp bounds v to [Min, Max] and snaps it to the nearest Min + k*Step.
// Out-of-range input is never an error.
func (s Slider) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Min
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Step <= 0 {
		return v
	}

	snapped := s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	// rounding up can overshoot a max that is not on the step grid
	if snapped > s.Max {
		snapped -= s.Step
	}
	// trim float noise from steps like 0.125
	return math.Round(snapped*1e9) / 1e9
}
