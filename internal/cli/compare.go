package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/mining"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var compareCmd = &cobra.Command{
	Use:   "compare <left.csv> <right.csv>",
	Short: "Compare two CSV files column by column",
	Long: `Compare two CSV frames: row and column counts, per-column value
coverage, and with --records the number of identical and differing
distinct rows.

Examples:
  datamove compare ./before.csv ./after.csv
  datamove compare ./before.csv ./after.csv --records`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Bool("records", false, "Also compare whole rows (requires identical columns)")
	rootCmd.AddCommand(compareCmd)
}

func loadCSVFrame(path string) (*datamove.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	frame, err := datamove.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return frame, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	left, err := loadCSVFrame(args[0])
	if err != nil {
		return err
	}
	right, err := loadCSVFrame(args[1])
	if err != nil {
		return err
	}

	result := mining.CompareFrames(left, right)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rows: %d vs %d (%d comparable)\n", result.RowsA, result.RowsB, result.RowsBoth)
	fmt.Fprintf(out, "columns: %d vs %d (%d shared, %d fully matching)\n", result.ColsA, result.ColsB, result.ColsBoth, result.ColsMatching)
	for col, rate := range result.MatchRates {
		fmt.Fprintf(out, "  %s: %.1f%%\n", col, rate*100)
	}

	withRecords, _ := cmd.Flags().GetBool("records")
	if withRecords {
		same, different, err := mining.CompareRecords(left, right)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "records: %d identical, %d differing\n", same, different)
	}
	return nil
}
