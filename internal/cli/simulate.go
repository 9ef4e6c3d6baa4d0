package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/render"
	"github.com/GregMSThompson/finance-widgets/internal/simulation"
)

var (
	simulateSets []string
	simulateTUI  bool
	simulateJSON bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <type>",
	Short: "Run a what-if simulator locally",
	Long: `Simulate runs one of the built-in calculators with its default inputs,
overridden by --set key=value. Values outside a slider's range are clamped.
With --tui the inputs can be adjusted interactively.

Types: ` + simulationTypeList(),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseSets(simulateSets)
		if err != nil {
			return err
		}
		sess, err := simulation.NewSession(models.SimulationConfig{SimulationType: models.SimulationType(args[0])})
		if err != nil {
			return err
		}
		// Set rather than seed so an unknown key is reported
		for _, kv := range overrides {
			if _, err := sess.Set(kv.key, kv.value); err != nil {
				return err
			}
		}

		if simulateTUI {
			return runSimulatorTUI(sess)
		}
		if simulateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Params simulation.Params `json:"params"`
				Result simulation.Result `json:"result"`
			}{sess.Params(), sess.Result()})
		}
		fmt.Println(renderText(render.RenderSession(args[0], sess), terminalWidth()))
		return nil
	},
}

var controlsCmd = &cobra.Command{
	Use:   "controls <type>",
	Short: "Show a simulator's inputs and their ranges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sliders, err := simulation.Controls(models.SimulationType(args[0]))
		if err != nil {
			return err
		}
		for _, s := range sliders {
			fmt.Printf("%s %s %s\n",
				valueStyle.Render(fmt.Sprintf("%-20s", s.Key)),
				fmt.Sprintf("%-24s", s.Label),
				labelStyle.Render(fmt.Sprintf("default %s, %v..%v step %v", formatSlider(s), s.Min, s.Max, s.Step)))
		}
		return nil
	},
}

type paramOverride struct {
	key   string
	value float64
}

// parseSets reads repeated key=value flags in order.
func parseSets(sets []string) ([]paramOverride, error) {
	out := make([]paramOverride, 0, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %v is not a number", s, raw)
		}
		out = append(out, paramOverride{key: key, value: v})
	}
	return out, nil
}

func simulationTypeList() string {
	names := make([]string, len(models.SimulationTypes))
	for i, t := range models.SimulationTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func init() {
	simulateCmd.Flags().StringArrayVar(&simulateSets, "set", nil, "override an input, e.g. --set interestRate=5.5 (repeatable)")
	simulateCmd.Flags().BoolVar(&simulateTUI, "tui", false, "adjust inputs interactively")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print parameters and result as JSON")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(controlsCmd)
}
