package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perchdesk/perch/internal/domain"
)

var defaultsKind string

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default record for a kind",
	Args:  cobra.NoArgs,
	RunE:  runDefaults,
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
	defaultsCmd.Flags().StringVar(&defaultsKind, "kind", "config",
		"record kind: config, bounds, app-state, certificates, trusted-origins, allowed-protocols, args")
}

func runDefaults(cmd *cobra.Command, args []string) error {
	switch domain.Kind(defaultsKind) {
	case domain.KindConfig:
		return printJSON(domain.DefaultConfigData())
	case domain.KindBounds:
		return printJSON(domain.DefaultBoundsInfo())
	case domain.KindAppState:
		return printJSON(domain.DefaultAppState())
	case domain.KindCertificates:
		return printJSON(domain.DefaultCertificateStore())
	case domain.KindTrustedOrigins:
		return printJSON(domain.DefaultTrustedOrigins())
	case domain.KindAllowedProtocols:
		return printJSON(domain.DefaultAllowedProtocols())
	case domain.KindArgs:
		return printJSON(domain.DefaultArgs())
	default:
		return fmt.Errorf("unknown record kind %q", defaultsKind)
	}
}
