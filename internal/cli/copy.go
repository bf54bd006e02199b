package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/mining"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var copyCmd = &cobra.Command{
	Use:   "copy <table>",
	Short: "Copy a CSV file or SQLite table into Azure SQL",
	Long: `Load a frame from a CSV file or a table of the configured SQLite
database and write it to an Azure SQL table. All values are written as
text into varchar(255) columns.

With --staging the data lands in a uniquely suffixed staging table
instead, leaving the target untouched.

Examples:
  datamove copy customers --from-csv ./customers.csv
  datamove copy customers --from-sqlite customers
  datamove copy customers --from-csv ./customers.csv --staging`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

func init() {
	copyCmd.Flags().String("from-csv", "", "Path of the CSV file to load")
	copyCmd.Flags().String("from-sqlite", "", "Name of the SQLite table to load (uses mining.path)")
	copyCmd.Flags().Bool("staging", false, "Write to a uniquely suffixed staging table")
	copyCmd.Flags().Bool("no-create", false, "Insert into an existing table instead of recreating it")
	copyCmd.Flags().Int("batch-rows", 0, "Rows per insert transaction (default 10000)")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	table := args[0]
	csvPath, _ := cmd.Flags().GetString("from-csv")
	sqliteTable, _ := cmd.Flags().GetString("from-sqlite")
	staging, _ := cmd.Flags().GetBool("staging")
	noCreate, _ := cmd.Flags().GetBool("no-create")
	batchRows, _ := cmd.Flags().GetInt("batch-rows")

	if (csvPath == "") == (sqliteTable == "") {
		return fmt.Errorf("exactly one of --from-csv and --from-sqlite is required: %w", datamove.ErrInvalidConfig)
	}

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}

	var frame *datamove.Frame
	switch {
	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", csvPath, err)
		}
		frame, err = datamove.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", csvPath, err)
		}
	default:
		frame, err = sqliteFrame(cmd, cfg.Mining.Path, sqliteTable)
		if err != nil {
			return err
		}
	}

	target := table
	if staging {
		suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
		target = fmt.Sprintf("%s_staging_%s", table, suffix)
	}

	manager, err := connectAzure(cmd, cfg)
	if err != nil {
		return err
	}
	if err := manager.WriteTable(cmd.Context(), frame, target, !noCreate, batchRows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", frame.RowCount(), target)
	return nil
}

// sqliteFrame loads one whole SQLite table as a text frame.
func sqliteFrame(cmd *cobra.Command, path, table string) (*datamove.Frame, error) {
	if path == "" {
		return nil, fmt.Errorf("mining.path is required for --from-sqlite: %w", datamove.ErrInvalidConfig)
	}
	db, err := mining.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	columns, err := mining.SchemaColumns(cmd.Context(), db)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, c := range columns {
		if c.Table == table {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("table %q not found in %s: %w", table, path, datamove.ErrInvalidConfig)
	}

	valuesByColumn := make([][]any, len(names))
	for i, name := range names {
		values, err := mining.ColumnValues(cmd.Context(), db, table, name)
		if err != nil {
			return nil, err
		}
		valuesByColumn[i] = values
	}

	var rows [][]any
	for row := range valuesByColumn[0] {
		record := make([]any, len(names))
		for col := range names {
			record[col] = valuesByColumn[col][row]
		}
		rows = append(rows, record)
	}
	return datamove.FrameFromRows(names, rows), nil
}
