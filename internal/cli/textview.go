package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/render"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

const (
	minBarWidth = 10
	maxLabelLen = 18
)

var numbers = message.NewPrinter(language.English)

// formatMetric renders a metric value the way the dashboard shows it.
func formatMetric(m simulation.Metric) string {
	if m.Unbounded {
		return "never"
	}
	switch m.Unit {
	case simulation.UnitCurrency:
		return formatMoney(m.Value)
	case simulation.UnitPercent:
		return fmt.Sprintf("%.1f%%", m.Value)
	case simulation.UnitYears, simulation.UnitMonths:
		return fmt.Sprintf("%s %s", trimFloat(m.Value), m.Unit)
	default:
		return trimFloat(m.Value)
	}
}

func formatMoney(v float64) string {
	if v < 0 {
		return "-" + numbers.Sprintf("$%.2f", -v)
	}
	return numbers.Sprintf("$%.2f", v)
}

func formatSlider(s simulation.Slider) string {
	return s.Prefix + numbers.Sprintf("%v", s.Value) + unitSuffix(s.Unit)
}

func unitSuffix(unit string) string {
	switch unit {
	case "":
		return ""
	case "%":
		return "%"
	default:
		return " " + unit
	}
}

// trimFloat prints up to two decimals without trailing zeros.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// renderText draws a view for a terminal of the given width.
func renderText(v render.View, width int) string {
	switch t := v.(type) {
	case render.ChartView:
		return renderChart(t, width)
	case render.PieView:
		return renderPie(t, width)
	case render.EmptyView:
		return joinLines(titleStyle.Render(t.Title), mutedStyle.Render(t.Message))
	case render.SimulationView:
		return renderSimulation(t, width)
	case render.UnknownView:
		return joinLines(titleStyle.Render(t.Title), warnStyle.Render(t.Label))
	case render.ErrorView:
		return joinLines(errorStyle.Render(t.Message), mutedStyle.Render("Run again with --retry to re-render."))
	default:
		return warnStyle.Render(fmt.Sprintf("cannot display %T", v))
	}
}

func joinLines(lines ...string) string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func barWidth(width, labelLen int) int {
	w := width - labelLen - 16
	if w < minBarWidth {
		return minBarWidth
	}
	return w
}

func bar(value, peak float64, width int, color string) string {
	n := 0
	if peak > 0 && value > 0 {
		n = int(math.Round(value / peak * float64(width)))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", n))
}

// renderChart draws one horizontal bar group per row, one bar per series.
// Every chart type is drawn this way; the chart type only shows in the header.
func renderChart(c render.ChartView, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Title))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  (%s)", c.ChartType)))
	b.WriteByte('\n')

	var legend []string
	for _, s := range c.Series {
		legend = append(legend, lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("■ "+s.Key))
	}
	b.WriteString(strings.Join(legend, "  "))
	b.WriteByte('\n')

	peak := 0.0
	for _, row := range c.Rows {
		for _, s := range c.Series {
			if v, ok := row.Number(s.Key); ok && v > peak {
				peak = v
			}
		}
	}

	bw := barWidth(width, maxLabelLen)
	for _, row := range c.Rows {
		label := truncate(row.String(c.CategoryKey), maxLabelLen)
		for i, s := range c.Series {
			if i > 0 {
				label = ""
			}
			v, _ := row.Number(s.Key)
			fmt.Fprintf(&b, "%-*s %s %s\n", maxLabelLen, label, bar(v, peak, bw, s.Color), labelStyle.Render(trimFloat(v)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPie(p render.PieView, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteByte('\n')

	total := 0.0
	for _, s := range p.Slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	bw := barWidth(width, maxLabelLen)
	for _, s := range p.Slices {
		share := 0.0
		if total > 0 && s.Value > 0 {
			share = s.Value / total * 100
		}
		fmt.Fprintf(&b, "%-*s %s %s\n", maxLabelLen, truncate(s.Label, maxLabelLen),
			bar(share, 100, bw, s.Color),
			labelStyle.Render(fmt.Sprintf("%s (%.1f%%)", trimFloat(s.Value), share)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMetrics(metrics []simulation.Metric) string {
	var b strings.Builder
	for _, m := range metrics {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-26s", m.Label)), valueStyle.Render(formatMetric(m)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSliders(sliders []simulation.Slider) string {
	var b strings.Builder
	for _, s := range sliders {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-26s", s.Label)), formatSlider(s))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAlerts(alerts []string) string {
	var lines []string
	for _, a := range alerts {
		lines = append(lines, warnStyle.Render("! "+a))
	}
	return strings.Join(lines, "\n")
}

func renderSimulation(s render.SimulationView, width int) string {
	title := s.Title
	if title == "" {
		title = string(s.SimulationType)
	}
	parts := []string{
		titleStyle.Render(title),
		headerStyle.Render("Inputs"),
		renderSliders(s.Sliders),
		headerStyle.Render("Results"),
		renderMetrics(s.Metrics),
		renderAlerts(s.Alerts),
	}
	if s.Chart != nil {
		parts = append(parts, renderText(s.Chart, width))
	}
	return joinLines(parts...)
}

// widgetSummary is the one-line status of a widget in list output.
func widgetSummary(w models.Widget) (kind, mode, refreshed string) {
	kind = string(w.Kind)
	if w.IsSimulation() && w.SimulationConfig != nil {
		kind = string(w.SimulationConfig.SimulationType)
	} else if w.VisualConfig.ChartType != "" {
		kind = fmt.Sprintf("%s/%s", w.Kind, w.VisualConfig.ChartType)
	}
	mode = string(w.DataMode)
	refreshed = "-"
	if w.LastRefreshed != nil {
		refreshed = w.LastRefreshed.Local().Format("2006-01-02 15:04")
	}
	return kind, mode, refreshed
}
