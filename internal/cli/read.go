package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <table>",
	Short: "Read an Azure SQL table and write it as CSV",
	Long: `Read every row of an Azure SQL table in the configured schema and
write it as CSV to stdout or to --out.

Examples:
  datamove read customers
  datamove read customers --out ./customers.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringP("out", "o", "", "Write CSV to this file instead of stdout")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	manager, err := connectAzure(cmd, cfg)
	if err != nil {
		return err
	}

	frame, err := manager.ReadFrame(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return frame.WriteCSV(cmd.OutOrStdout())
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()
	if err := frame.WriteCSV(f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", frame.RowCount(), out)
	return nil
}
