package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity to the configured Azure SQL database",
	Long: `Connect to the Azure SQL database from datamove.yaml and run a
round-trip query. Exercises the same authentication and retry path as
every other command.

Examples:
  datamove ping
  datamove ping --verbose`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	manager, err := connectAzure(cmd, cfg)
	if err != nil {
		return err
	}
	if err := manager.ConnectivityTest(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "connection to %s verified (%d attempts)\n", cfg.Azure.Server, manager.AttemptCount())
	return nil
}
