package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
)

var refreshAll bool

var refreshCmd = &cobra.Command{
	Use:   "refresh [widget-id]",
	Short: "Re-run a dynamic widget's query",
	Long: `Refresh asks the widget store to re-run the query behind a dynamic
widget and stores the new data points. With --all every dynamic widget is
refreshed concurrently; one failure does not stop the others.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if refreshAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}

		if !refreshAll {
			w, err := ctl.Refresh(ctx, args[0])
			if err != nil {
				return describeRefreshError(args[0], err)
			}
			fmt.Printf("%s %s (%d data points)\n", okStyle.Render("refreshed"), w.Title, len(w.VisualConfig.EmbeddedData))
			return nil
		}

		failures := ctl.RefreshAll(ctx)
		refreshed := 0
		for _, w := range ctl.Widgets() {
			if w.Refreshable() {
				if _, failed := failures[w.WidgetID]; !failed {
					refreshed++
				}
			}
		}
		fmt.Printf("%s %d widget(s)\n", okStyle.Render("refreshed"), refreshed)

		ids := make([]string, 0, len(failures))
		for id := range failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Println(errorStyle.Render("failed"), describeRefreshError(id, failures[id]))
		}
		if len(failures) > 0 {
			return fmt.Errorf("%d widget(s) failed to refresh", len(failures))
		}
		return nil
	},
}

// describeRefreshError names the widget and says whether trying again may help.
func describeRefreshError(id string, err error) error {
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) && ext.Transient {
		return fmt.Errorf("%s: %w (temporary, try again)", id, err)
	}
	return fmt.Errorf("%s: %w", id, err)
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "refresh every dynamic widget")
	rootCmd.AddCommand(refreshCmd)
}
