package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/internal/render"
)

const defaultWidth = 80

var (
	viewJSON  bool
	viewRetry bool
)

var viewCmd = &cobra.Command{
	Use:   "view <widget-id>",
	Short: "Draw a widget in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}
		w, ok := ctl.Widget(args[0])
		if !ok {
			return fmt.Errorf("widget %s not found", args[0])
		}
		return printWidget(ctx, &w, viewJSON)
	},
}

func printWidget(ctx context.Context, w *models.Widget, asJSON bool) error {
	v := render.Safe(ctx, w, w.VisualConfig.EmbeddedData)
	if ev, ok := v.(render.ErrorView); ok && viewRetry && ev.Retry != nil {
		v = ev.Retry()
	}

	if asJSON {
		body, err := render.Envelope(v)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(renderText(v, terminalWidth()))
	return nil
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func init() {
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "print the tagged view as JSON")
	viewCmd.Flags().BoolVar(&viewRetry, "retry", false, "re-render once if drawing fails")
	rootCmd.AddCommand(viewCmd)
}
