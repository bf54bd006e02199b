package cli

import (
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/mining"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Inspect the configured SQLite database",
	Long: `Schema inspection for the SQLite database named by mining.path in
datamove.yaml.

Available commands:
  columns     List every table column with datatype and key role
  find-value  Locate a value across all columns of a datatype
  find-key    Rank candidate primary keys for a foreign-key column

Examples:
  datamove mine columns
  datamove mine find-value --datatype INTEGER --value 42
  datamove mine find-key orders customer_id`,
}

var mineColumnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List every table column with datatype and key role",
	Args:  cobra.NoArgs,
	RunE:  runMineColumns,
}

var mineFindValueCmd = &cobra.Command{
	Use:   "find-value",
	Short: "Locate a value across all columns of a datatype",
	Args:  cobra.NoArgs,
	RunE:  runMineFindValue,
}

var mineFindKeyCmd = &cobra.Command{
	Use:   "find-key <table> <column>",
	Short: "Rank candidate primary keys for a foreign-key column",
	Long: `Treat <table>.<column> as a foreign key and rank every other column
by how completely it covers the foreign key's distinct values.

Examples:
  datamove mine find-key orders customer_id
  datamove mine find-key orders customer_id --keys-only=false --strict-type=false`,
	Args: cobra.ExactArgs(2),
	RunE: runMineFindKey,
}

func init() {
	mineFindValueCmd.Flags().String("datatype", "", "Column datatype to search (e.g. INTEGER, TEXT)")
	mineFindValueCmd.Flags().String("value", "", "Value to look for")
	mineFindValueCmd.MarkFlagRequired("datatype")
	mineFindValueCmd.MarkFlagRequired("value")

	mineFindKeyCmd.Flags().Bool("keys-only", true, "Only consider columns marked as keys")
	mineFindKeyCmd.Flags().Bool("strict-type", true, "Compare values without coercing them to strings")

	mineCmd.AddCommand(mineColumnsCmd)
	mineCmd.AddCommand(mineFindValueCmd)
	mineCmd.AddCommand(mineFindKeyCmd)
	rootCmd.AddCommand(mineCmd)
}

// openMiningDB opens the configured SQLite database and loads its schema.
// The caller owns the returned handle.
func openMiningDB(cmd *cobra.Command) (*sql.DB, []mining.Column, error) {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Mining.Path == "" {
		return nil, nil, fmt.Errorf("mining.path is required: %w", datamove.ErrInvalidConfig)
	}
	db, err := mining.Open(cfg.Mining.Path)
	if err != nil {
		return nil, nil, err
	}
	columns, err := mining.SchemaColumns(cmd.Context(), db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, columns, nil
}

func runMineColumns(cmd *cobra.Command, args []string) error {
	db, columns, err := openMiningDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tCOLUMN\tDATATYPE\tKEY")
	for _, c := range columns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Table, c.Name, c.Datatype, c.Key)
	}
	return w.Flush()
}

func runMineFindValue(cmd *cobra.Command, args []string) error {
	datatype, _ := cmd.Flags().GetString("datatype")
	value, _ := cmd.Flags().GetString("value")

	db, columns, err := openMiningDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := mining.FindValue(cmd.Context(), db, columns, datatype, value)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%s.%s\n", m.Table, m.Column)
	}
	return nil
}

func runMineFindKey(cmd *cobra.Command, args []string) error {
	keysOnly, _ := cmd.Flags().GetBool("keys-only")
	strictType, _ := cmd.Flags().GetBool("strict-type")

	db, columns, err := openMiningDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	candidates, err := mining.FindPrimaryKey(cmd.Context(), db, args[0], args[1], columns, mining.KeySearchOptions{
		KeysOnly:   keysOnly,
		StrictType: strictType,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tCOLUMN\tMATCHED\tUNUSED\tPERCENT")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", c.Table, c.Column, c.MatchedValues, c.UnusedValues, c.PercentMatch*100)
	}
	return w.Flush()
}
