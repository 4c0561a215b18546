package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perchdesk/perch/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "perchd",
	Short: "Configuration daemon for the Perch desktop shell",
	Long: `perchd owns the validated state of the Perch desktop shell: the server
list, window geometry, pinned certificates, trusted origins and the
external protocol allowlist.

Records live as JSON files in the data directory. Every read is migrated
to the latest schema and validated, every write is validated before it
touches disk, and the settings UI talks to perchd over a loopback-only
HTTP API.

Running perchd without a subcommand starts the daemon, same as
'perchd serve'.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.Version
}

// readJSONFile loads one record file for the offline subcommands.
func readJSONFile(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	return data, nil
}

// printJSON writes a record to stdout, indented for humans but still
// valid input for the next tool in a pipe.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
