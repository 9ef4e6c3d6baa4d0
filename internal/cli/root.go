// Package cli is the widgetctl command tree: an operator's view of the widget
// store, the assistant and the local simulators.
package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GregMSThompson/finance-widgets/internal/client/widgetstore"
	"github.com/GregMSThompson/finance-widgets/internal/lifecycle"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const envPrefix = "WIDGETCTL"

var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "widgetctl",
	Short: "Manage finance dashboard widgets",
	Long: `widgetctl lists, refreshes and deletes dashboard widgets, asks the
assistant to create or edit them, and runs the what-if simulators locally.

Settings come from flags, WIDGETCTL_* environment variables or a
widgetctl.yaml file in the working directory or $HOME/.config/widgetctl.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
}

// Execute runs the command tree; ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./widgetctl.yaml)")
	pf.String("api-url", "http://localhost:8080", "widget store base URL")
	pf.String("chat-url", "", "assistant base URL (defaults to --api-url)")
	pf.String("token", "", "bearer token sent to the widget store")
	pf.String("session-id", "", "assistant session id (generated when empty)")
	pf.String("user-id", "", "user id sent to the assistant")
	pf.Duration("timeout", 30*time.Second, "per-request timeout")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")

	for _, name := range []string{"api-url", "chat-url", "token", "session-id", "user-id", "timeout", "log-level"} {
		_ = viper.BindPFlag(configKey(name), pf.Lookup(name))
	}
}

// configKey maps a flag name to its config file key: api-url → api_url.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("widgetctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/widgetctl")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// commandContext carries the console logger every command logs through.
func commandContext(cmd *cobra.Command) context.Context {
	log := logger.New(viper.GetString("log_level"), logger.NewConsoleHandler)
	if f := viper.ConfigFileUsed(); f != "" {
		log.Debug("config loaded", "file", f)
	}
	return logger.ToContext(cmd.Context(), log)
}

func storeClient() *widgetstore.Client {
	return widgetstore.NewClient(widgetstore.Config{
		APIURL:  viper.GetString("api_url"),
		ChatURL: viper.GetString("chat_url"),
		Token:   viper.GetString("token"),
		Timeout: viper.GetDuration("timeout"),
	})
}

// newController builds a controller and loads the widget list into it.
func newController(ctx context.Context) (*lifecycle.Controller, error) {
	client := storeClient()
	sessionID := viper.GetString("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctl := lifecycle.NewController(client, client, sessionID, viper.GetString("user_id"))
	if _, err := ctl.List(ctx); err != nil {
		logger.FromContext(ctx).Debug("initial widget load failed", "error", err)
		return nil, err
	}
	return ctl, nil
}
