package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/config"
	"github.com/crestline-data/datamove/internal/mysqltunnel"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var mysqlCmd = &cobra.Command{
	Use:   "mysql",
	Short: "Move tables to and from MySQL over an SSH tunnel",
	Long: `MySQL operations through the SSH bastion configured under mysql.ssh
in datamove.yaml. Passwords come from DATAMOVE_SSH_PASSWORD and
DATAMOVE_MYSQL_PASSWORD, or terminal prompts.

Available commands:
  pull  Read a MySQL table and write it as CSV
  push  Write a CSV file into a MySQL table

Examples:
  datamove mysql pull customers --out ./customers.csv
  datamove mysql push customers --from-csv ./customers.csv`,
}

var mysqlPullCmd = &cobra.Command{
	Use:   "pull <table>",
	Short: "Read a MySQL table and write it as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runMySQLPull,
}

var mysqlPushCmd = &cobra.Command{
	Use:   "push <table>",
	Short: "Write a CSV file into a MySQL table",
	Long: `Replace the named MySQL table with the contents of a CSV file. The
table is recreated with VARCHAR(255) columns and all values written as
text.`,
	Args: cobra.ExactArgs(1),
	RunE: runMySQLPush,
}

func init() {
	mysqlPullCmd.Flags().StringP("out", "o", "", "Write CSV to this file instead of stdout")
	mysqlPushCmd.Flags().String("from-csv", "", "Path of the CSV file to load")
	mysqlPushCmd.MarkFlagRequired("from-csv")

	mysqlCmd.AddCommand(mysqlPullCmd)
	mysqlCmd.AddCommand(mysqlPushCmd)
	rootCmd.AddCommand(mysqlCmd)
}

// connectMySQL dials the bastion and opens the MySQL session. The caller
// closes both, session first.
func connectMySQL(cmd *cobra.Command, cfg *config.ProjectConfig) (*mysqltunnel.Tunnel, *mysqltunnel.DB, error) {
	if cfg.MySQL.Host == "" || cfg.MySQL.SSH.Host == "" {
		return nil, nil, fmt.Errorf("mysql.host and mysql.ssh.host are required: %w", datamove.ErrInvalidConfig)
	}

	sshPassword, err := resolvePassword("DATAMOVE_SSH_PASSWORD", fmt.Sprintf("SSH password for %s@%s: ", cfg.MySQL.SSH.User, cfg.MySQL.SSH.Host))
	if err != nil {
		return nil, nil, err
	}
	tunnel, err := mysqltunnel.Dial(mysqltunnel.SSHConfig{
		Host:     cfg.MySQL.SSH.Host,
		Port:     cfg.MySQL.SSH.Port,
		User:     cfg.MySQL.SSH.User,
		Password: sshPassword,
	})
	if err != nil {
		return nil, nil, err
	}

	mysqlPassword, err := resolvePassword("DATAMOVE_MYSQL_PASSWORD", fmt.Sprintf("MySQL password for %s@%s: ", cfg.MySQL.Username, cfg.MySQL.Host))
	if err != nil {
		tunnel.Close()
		return nil, nil, err
	}
	db, err := mysqltunnel.Connect(cmd.Context(), mysqltunnel.MySQLConfig{
		Host:     cfg.MySQL.Host,
		Port:     cfg.MySQL.Port,
		Database: cfg.MySQL.Database,
		Username: cfg.MySQL.Username,
		Password: mysqlPassword,
	}, newLogger(cmd))
	if err != nil {
		tunnel.Close()
		return nil, nil, err
	}
	return tunnel, db, nil
}

func runMySQLPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	tunnel, db, err := connectMySQL(cmd, cfg)
	if err != nil {
		return err
	}
	defer tunnel.Close()
	defer db.Close()

	frame, err := db.FetchTable(cmd.Context(), args[0])
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

func runMySQLPush(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("from-csv")

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", csvPath, err)
	}
	frame, err := datamove.ReadCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", csvPath, err)
	}

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	tunnel, db, err := connectMySQL(cmd, cfg)
	if err != nil {
		return err
	}
	defer tunnel.Close()
	defer db.Close()

	if err := db.WriteTable(cmd.Context(), args[0], frame); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", frame.RowCount(), args[0])
	return nil
}
