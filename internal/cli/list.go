package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-widgets/internal/models"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List dashboard widgets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}
		widgets := ctl.Widgets()

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(widgets)
		}
		if len(widgets) == 0 {
			fmt.Println(mutedStyle.Render("No widgets yet. Try: widgetctl create \"chart my spending by category\""))
			return nil
		}
		fmt.Println(widgetTable(widgets))
		return nil
	},
}

func widgetTable(widgets []models.Widget) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("ID", "TITLE", "TYPE", "MODE", "REFRESHED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, w := range widgets {
		kind, mode, refreshed := widgetSummary(w)
		t.Row(w.WidgetID, truncate(w.Title, 40), kind, mode, refreshed)
	}
	return t.Render()
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output widgets as JSON")
	rootCmd.AddCommand(listCmd)
}
