package commands

import (
	"github.com/spf13/cobra"

	"github.com/perchdesk/perch/internal/app"
	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
)

var (
	serveDataDir    string
	serveHidden     bool
	serveDisableDev bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the configuration daemon",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "directory for the JSON record files (overrides PERCH_DATA_DIR)")
	serveCmd.Flags().BoolVar(&serveHidden, "hidden", false, "the shell launched hidden, keep the window closed at startup")
	serveCmd.Flags().BoolVar(&serveDisableDev, "disable-dev-mode", false, "ignore developer-mode overrides")
}

func runServe(cmd *cobra.Command, args []string) error {
	return app.New(launchArgs(cmd)).Run()
}

// launchArgs funnels the shell's flags through the same validation as any
// other record. Only flags that were actually set end up in the record,
// and a rejected record degrades to empty instead of stopping the daemon.
func launchArgs(cmd *cobra.Command) map[string]any {
	raw := map[string]any{}
	if cmd.Flags().Changed("data-dir") {
		raw["dataDir"] = serveDataDir
	}
	if cmd.Flags().Changed("hidden") {
		raw["hidden"] = serveHidden
	}
	if cmd.Flags().Changed("disable-dev-mode") {
		raw["disableDevMode"] = serveDisableDev
	}

	v := domain.NewValidator(logger.New("warn", true))
	if rec := v.Args(raw); rec != nil {
		return rec
	}
	return map[string]any{}
}
