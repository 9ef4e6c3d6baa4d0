package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const replyWidth = 80

var createCmd = &cobra.Command{
	Use:   "create <prompt>",
	Short: "Ask the assistant to build a new widget",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}
		resp, err := ctl.Create(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printReply(resp)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <widget-id> <instruction>",
	Short: "Ask the assistant to change a widget",
	Long: `Edit sends the instruction together with the widget's full current
definition to the assistant. The widget list is reloaded when the assistant
reports an update.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}
		resp, err := ctl.Edit(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printReply(resp)

		if resp.WidgetUpdated {
			if _, err := ctl.List(ctx); err != nil {
				logger.FromContext(ctx).Warn("reload after edit failed", "error", err)
				return nil
			}
			if w, ok := ctl.Widget(args[0]); ok {
				fmt.Println(labelStyle.Render("now:"), w.Title)
			}
		}
		return nil
	},
}

func printReply(resp *dto.ChatbotResponse) {
	fmt.Println(renderMarkdown(resp.Response, replyWidth))

	switch {
	case resp.WidgetCreated:
		what := string(resp.WidgetType)
		if resp.SimulationType != "" {
			what = string(resp.SimulationType)
		}
		fmt.Println(okStyle.Render("widget created"), labelStyle.Render(strings.TrimSpace(what+" "+string(resp.WidgetMode))))
	case resp.WidgetUpdated:
		fmt.Println(okStyle.Render("widget updated"))
	}
}

// renderMarkdown formats an assistant reply; on any renderer error the raw
// text is returned.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
}
