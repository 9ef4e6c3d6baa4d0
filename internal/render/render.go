package render

import (
	"fmt"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

// DefaultPalette is the "mixed" palette used when a widget names no colors.
var DefaultPalette = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6"}

const emptyMessage = "No data available for this widget yet."

// simulationCharts picks the chart used for each simulator's series.
var simulationCharts = map[models.SimulationType]models.ChartType{
	models.SimLoanRepayment:        models.ChartLine,
	models.SimSavingsProjector:     models.ChartArea,
	models.SimRetirementCalculator: models.ChartArea,
	models.SimEmergencyFund:        models.ChartLine,
}

// Render dispatches on the simulation type for simulation widgets and on the
// chart type otherwise. Simulation widgets ignore rows and render at their
// seeded defaults.
func Render(w *models.Widget, rows []models.Row) View {
	if w.IsSimulation() {
		if w.SimulationConfig == nil {
			return unknown(w.Title, "", "simulation")
		}
		sess, err := simulation.NewSession(*w.SimulationConfig)
		if err != nil {
			return unknown(w.Title, string(w.SimulationConfig.SimulationType), "simulation")
		}
		return RenderSession(w.Title, sess)
	}

	cfg := w.VisualConfig
	title := cfg.Title
	if title == "" {
		title = w.Title
	}

	switch cfg.ChartType {
	case models.ChartLine, models.ChartBar, models.ChartArea, models.ChartScatter:
		if len(rows) == 0 {
			return EmptyView{Title: title, Message: emptyMessage}
		}
		return chart(cfg.ChartType, title, cfg.CategoryKey(), palette(cfg.Colors), rows)
	case models.ChartPie:
		if len(rows) == 0 {
			return EmptyView{Title: title, Message: emptyMessage}
		}
		return pie(title, cfg.CategoryKey(), cfg.ValueKey(), palette(cfg.Colors), rows)
	}
	return unknown(title, string(cfg.ChartType), "chart")
}

// RenderSession renders a simulator at the session's live parameters.
func RenderSession(title string, sess *simulation.Session) View {
	res := sess.Result()
	v := SimulationView{
		Title:          title,
		SimulationType: res.Type,
		Sliders:        sess.Sliders(),
		Metrics:        res.Metrics,
		Breakdown:      res.Breakdown,
		Alerts:         res.Alerts,
	}

	switch {
	case len(res.Breakdown) > 0:
		v.Chart = breakdownPie(title, res.Breakdown)
	case len(res.Series) > 0:
		ct, ok := simulationCharts[res.Type]
		if !ok {
			ct = models.ChartLine
		}
		// simulator series lead with their axis field
		axis := res.Series[0].Keys()[0]
		v.Chart = chart(ct, title, axis, DefaultPalette, res.Series)
	default:
		v.Chart = EmptyView{Title: title, Message: emptyMessage}
	}
	return v
}

// chart plots every field of the first row except the category key, in field
// order. An extra field in the data becomes an extra series.
func chart(ct models.ChartType, title, categoryKey string, colors []string, rows []models.Row) ChartView {
	var series []Series
	for _, key := range rows[0].Keys() {
		if key == categoryKey {
			continue
		}
		series = append(series, Series{Key: key, Color: colors[len(series)%len(colors)]})
	}
	return ChartView{
		ChartType:   ct,
		Title:       title,
		CategoryKey: categoryKey,
		Series:      series,
		Rows:        rows,
	}
}

func pie(title, labelKey, valueKey string, colors []string, rows []models.Row) PieView {
	slices := make([]PieSlice, len(rows))
	for i, row := range rows {
		v, _ := row.Number(valueKey)
		slices[i] = PieSlice{
			Label: row.String(labelKey),
			Value: v,
			Color: colors[i%len(colors)],
		}
	}
	return PieView{Title: title, Slices: slices}
}

func breakdownPie(title string, cats []simulation.BudgetCategory) PieView {
	slices := make([]PieSlice, len(cats))
	for i, c := range cats {
		slices[i] = PieSlice{Label: c.Name, Value: c.Amount, Color: DefaultPalette[i%len(DefaultPalette)]}
	}
	return PieView{Title: title, Slices: slices}
}

func palette(colors []string) []string {
	if len(colors) == 0 {
		return DefaultPalette
	}
	return colors
}

func unknown(title, typ, family string) UnknownView {
	label := fmt.Sprintf("Unsupported %s type", family)
	if typ != "" {
		label = fmt.Sprintf("Unsupported %s type: %s", family, typ)
	}
	return UnknownView{Title: title, Type: typ, Label: label}
}
