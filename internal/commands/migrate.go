package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate FILE",
	Short: "Migrate a config file to the latest schema version and print it",
	Long: `Migrate detects the schema version of a config file, upgrades it step
by step to the latest version and prints the validated result. The file
itself is never modified; redirect stdout to persist the upgrade.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	data, err := readJSONFile(args[0])
	if err != nil {
		return err
	}

	v := domain.NewValidator(logger.New("warn", true))
	rec := v.MigrateConfig(data)
	if rec == nil {
		return fmt.Errorf("config record rejected")
	}
	return printJSON(rec)
}
