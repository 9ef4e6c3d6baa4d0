package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <widget-id>",
	Short: "Delete a widget after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctl, err := newController(ctx)
		if err != nil {
			return err
		}

		id := args[0]
		w, ok := ctl.Widget(id)
		if !ok {
			return fmt.Errorf("widget %s not found", id)
		}
		token, err := ctl.RequestDelete(id)
		if err != nil {
			return err
		}

		if !deleteYes && !confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete %q? This cannot be undone.", w.Title)) {
			ctl.CancelDelete(token)
			fmt.Println(mutedStyle.Render("cancelled"))
			return nil
		}
		if err := ctl.ConfirmDelete(ctx, token); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("deleted"), w.Title)
		return nil
	},
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s %s ", warnStyle.Render(question), labelStyle.Render("[y/N]"))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
