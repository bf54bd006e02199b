package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/sheets"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Push frames to Google Sheets and manage spreadsheets",
	Long: `Google Sheets operations using the service account named by
sheets.credentials_file in datamove.yaml.

Available commands:
  push   Write a CSV file or Azure SQL table to a worksheet
  list   List every spreadsheet the service account can reach
  purge  Delete spreadsheets not explicitly kept

Examples:
  datamove sheets push --from-csv ./customers.csv
  datamove sheets list
  datamove sheets purge --keep 1AbCdEf`,
}

var sheetsPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write a CSV file or Azure SQL table to the configured worksheet",
	Args:  cobra.NoArgs,
	RunE:  runSheetsPush,
}

var sheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every spreadsheet the service account can reach",
	Args:  cobra.NoArgs,
	RunE:  runSheetsList,
}

var sheetsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete spreadsheets not explicitly kept",
	Long: `Delete every spreadsheet the service account can reach except the
ids passed with --keep. Service-account drives have no trash review, so
this is the only way to reclaim their quota.`,
	Args: cobra.NoArgs,
	RunE: runSheetsPurge,
}

func init() {
	sheetsPushCmd.Flags().String("from-csv", "", "Path of the CSV file to push")
	sheetsPushCmd.Flags().String("from-table", "", "Azure SQL table to push")
	sheetsPushCmd.Flags().Bool("no-clear", false, "Keep existing worksheet values outside the written range")
	sheetsPushCmd.Flags().Bool("no-resize", false, "Keep the worksheet's current grid size")
	sheetsPushCmd.Flags().String("leading-char", "'", "Character prepended to values to stop reinterpretation")

	sheetsPurgeCmd.Flags().StringSlice("keep", nil, "Spreadsheet ids to keep")

	sheetsCmd.AddCommand(sheetsPushCmd)
	sheetsCmd.AddCommand(sheetsListCmd)
	sheetsCmd.AddCommand(sheetsPurgeCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func runSheetsPush(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("from-csv")
	table, _ := cmd.Flags().GetString("from-table")
	if (csvPath == "") == (table == "") {
		return fmt.Errorf("exactly one of --from-csv and --from-table is required: %w", datamove.ErrInvalidConfig)
	}

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Sheets.CredentialsFile == "" || cfg.Sheets.SpreadsheetID == "" || cfg.Sheets.Worksheet == "" {
		return fmt.Errorf("sheets.credentials_file, sheets.spreadsheet_id and sheets.worksheet are required: %w", datamove.ErrInvalidConfig)
	}

	var frame *datamove.Frame
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", csvPath, err)
		}
		frame, err = datamove.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", csvPath, err)
		}
	} else {
		manager, err := connectAzure(cmd, cfg)
		if err != nil {
			return err
		}
		frame, err = manager.ReadFrame(cmd.Context(), table)
		if err != nil {
			return err
		}
	}

	client, err := sheets.NewClient(cmd.Context(), cfg.Sheets.CredentialsFile, newLogger(cmd))
	if err != nil {
		return err
	}

	noClear, _ := cmd.Flags().GetBool("no-clear")
	noResize, _ := cmd.Flags().GetBool("no-resize")
	leading, _ := cmd.Flags().GetString("leading-char")
	opts := sheets.WriteOptions{
		ClearExisting:    !noClear,
		ResizeExisting:   !noResize,
		LeadingCharacter: leading,
	}

	if err := client.WriteFrame(cmd.Context(), cfg.Sheets.SpreadsheetID, cfg.Sheets.Worksheet, frame, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to worksheet %s\n", frame.RowCount(), cfg.Sheets.Worksheet)
	return nil
}

func runSheetsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets.credentials_file is required: %w", datamove.ErrInvalidConfig)
	}
	client, err := sheets.NewClient(cmd.Context(), cfg.Sheets.CredentialsFile, newLogger(cmd))
	if err != nil {
		return err
	}

	all, err := client.ListSpreadsheets(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMODIFIED")
	for _, s := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Title, s.Modified.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSheetsPurge(cmd *cobra.Command, args []string) error {
	keep, _ := cmd.Flags().GetStringSlice("keep")

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets.credentials_file is required: %w", datamove.ErrInvalidConfig)
	}
	client, err := sheets.NewClient(cmd.Context(), cfg.Sheets.CredentialsFile, newLogger(cmd))
	if err != nil {
		return err
	}

	deleted, err := client.PurgeSpreadsheets(cmd.Context(), keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d spreadsheets\n", deleted)
	return nil
}
