// Package render turns a widget and its data rows into a render-ready view.
//
// The dispatcher never mutates the widget and never returns an error: empty
// data, unknown types and panics all degrade to a view of their own.
package render

import (
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

// View is one of ChartView, PieView, EmptyView, SimulationView, UnknownView
// or ErrorView.
type View interface {
	Kind() string
	view()
}

const (
	ViewChart      = "chart"
	ViewPie        = "pie"
	ViewEmpty      = "empty"
	ViewSimulation = "simulation"
	ViewUnknown    = "unknown"
	ViewError      = "error"
)

// Series is one plotted line/bar/area/scatter series.
type Series struct {
	Key   string `json:"key"`
	Color string `json:"color"`
}

type ChartView struct {
	ChartType   models.ChartType `json:"chartType"`
	Title       string           `json:"title,omitempty"`
	CategoryKey string           `json:"categoryKey"`
	Series      []Series         `json:"series"`
	Rows        []models.Row     `json:"rows"`
}

type PieSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type PieView struct {
	Title  string     `json:"title,omitempty"`
	Slices []PieSlice `json:"slices"`
}

type EmptyView struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// SimulationView carries the controls, headline metrics and the chart of a
// simulator at its current parameters.
type SimulationView struct {
	Title          string                      `json:"title,omitempty"`
	SimulationType models.SimulationType       `json:"simulationType"`
	Sliders        []simulation.Slider         `json:"sliders"`
	Metrics        []simulation.Metric         `json:"metrics"`
	Breakdown      []simulation.BudgetCategory `json:"breakdown,omitempty"`
	Alerts         []string                    `json:"alerts,omitempty"`
	Chart          View                        `json:"-"`
}

// UnknownView is the labeled fallback for a chart or simulation type outside
// the supported set.
type UnknownView struct {
	Title string `json:"title,omitempty"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// ErrorView replaces a widget whose render panicked. Retry re-runs the same
// render over the same inputs.
type ErrorView struct {
	WidgetID string      `json:"widgetId,omitempty"`
	Message  string      `json:"message"`
	Retry    func() View `json:"-"`
}

func (ChartView) Kind() string      { return ViewChart }
func (PieView) Kind() string        { return ViewPie }
func (EmptyView) Kind() string      { return ViewEmpty }
func (SimulationView) Kind() string { return ViewSimulation }
func (UnknownView) Kind() string    { return ViewUnknown }
func (ErrorView) Kind() string      { return ViewError }

func (ChartView) view()      {}
func (PieView) view()        {}
func (EmptyView) view()      {}
func (SimulationView) view() {}
func (UnknownView) view()    {}
func (ErrorView) view()      {}
