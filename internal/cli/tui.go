package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GregMSThompson/finance-widgets/internal/render"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

const (
	trackWidth = 24
	bigStep    = 10
)

type simulatorKeys struct {
	Up       key.Binding
	Down     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Jump     key.Binding
	Drop     key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func (k simulatorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Decrease, k.Increase, k.Reset, k.Quit}
}

func (k simulatorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Decrease, k.Increase, k.Drop, k.Jump},
		{k.Reset, k.Quit},
	}
}

var defaultSimulatorKeys = simulatorKeys{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous input")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next input")),
	Increase: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
	Decrease: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
	Jump:     key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "increase ×10")),
	Drop:     key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "decrease ×10")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// simulatorModel owns the session while the TUI runs. Every slider move
// recomputes the whole result.
type simulatorModel struct {
	sess    *simulation.Session
	initial simulation.Params
	cursor  int
	keys    simulatorKeys
	help    help.Model
	width   int
	err     error
}

func newSimulatorModel(sess *simulation.Session) simulatorModel {
	return simulatorModel{
		sess:    sess,
		initial: sess.Params(),
		keys:    defaultSimulatorKeys,
		help:    help.New(),
		width:   defaultWidth,
	}
}

func runSimulatorTUI(sess *simulation.Session) error {
	p := tea.NewProgram(newSimulatorModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running simulator: %w", err)
	}
	return nil
}

func (m simulatorModel) Init() tea.Cmd {
	return nil
}

func (m simulatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		n := len(m.sess.Sliders())
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case n == 0:
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor - 1 + n) % n
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % n
		case key.Matches(msg, m.keys.Increase):
			m.nudge(1)
		case key.Matches(msg, m.keys.Decrease):
			m.nudge(-1)
		case key.Matches(msg, m.keys.Jump):
			m.nudge(bigStep)
		case key.Matches(msg, m.keys.Drop):
			m.nudge(-bigStep)
		case key.Matches(msg, m.keys.Reset):
			for k, v := range m.initial {
				if _, err := m.sess.Set(k, v); err != nil {
					m.err = err
				}
			}
		}
	}
	return m, nil
}

// nudge moves the focused slider by steps; the session clamps at the ends.
func (m *simulatorModel) nudge(steps int) {
	sl := m.sess.Sliders()[m.cursor]
	_, m.err = m.sess.Set(sl.Key, sl.Value+float64(steps)*sl.Step)
}

func (m simulatorModel) View() string {
	view := render.RenderSession(string(m.sess.Type()), m.sess)
	sv, _ := view.(render.SimulationView)

	var inputs []string
	for i, s := range sv.Sliders {
		cursor := "  "
		label := labelStyle.Render(fmt.Sprintf("%-22s", s.Label))
		if i == m.cursor {
			cursor = titleStyle.Render("▸ ")
			label = valueStyle.Render(fmt.Sprintf("%-22s", s.Label))
		}
		inputs = append(inputs, fmt.Sprintf("%s%s %s %s", cursor, label, track(s), formatSlider(s)))
	}

	left := focusedPanelStyle.Render(joinLines(headerStyle.Render("Inputs"), strings.Join(inputs, "\n")))
	right := panelStyle.Render(joinLines(headerStyle.Render("Results"), renderMetrics(sv.Metrics), renderAlerts(sv.Alerts)))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	if lipgloss.Width(body) > m.width {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	parts := []string{titleStyle.Render(simulationHeading(sv)), body}
	if sv.Chart != nil {
		parts = append(parts, renderText(sv.Chart, m.width))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n\n")
}

func simulationHeading(sv render.SimulationView) string {
	if sv.Title != "" && sv.Title != string(sv.SimulationType) {
		return sv.Title
	}
	return strings.ReplaceAll(string(sv.SimulationType), "_", " ")
}

// track draws the slider's position between its bounds.
func track(s simulation.Slider) string {
	pos := 0
	if s.Max > s.Min {
		pos = int(math.Round((s.Value - s.Min) / (s.Max - s.Min) * float64(trackWidth-1)))
	}
	return labelStyle.Render(strings.Repeat("─", pos)) +
		titleStyle.Render("●") +
		labelStyle.Render(strings.Repeat("─", trackWidth-1-pos))
}
