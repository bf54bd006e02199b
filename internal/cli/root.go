package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crestline-data/datamove/internal/azsql"
	"github.com/crestline-data/datamove/internal/config"
	"github.com/crestline-data/datamove/internal/logging"
	"github.com/crestline-data/datamove/pkg/datamove"
)

var rootCmd = &cobra.Command{
	Use:   "datamove",
	Short: "Move tables between Azure SQL, MySQL, SQLite and Google Sheets",
	Long: `datamove copies tabular data between an Azure SQL database, a MySQL
server behind an SSH bastion, local SQLite files and Google Sheets.

Azure SQL connections authenticate with the ambient Azure identity by
default; set a username and password to use SQL authentication instead.
Transient connection failures are retried with a fixed delay.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Authentication failed
  13 - SQL execution failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for datamove")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringP("config", "c", ".", "Directory containing datamove.yaml")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func newLogger(cmd *cobra.Command) datamove.Logger {
	return logging.NewConsoleLogger(getVerboseFlag(cmd))
}

// loadProjectConfig loads .env and datamove.yaml from the --config dir.
// A missing config file is an error here: every command needs at least
// one target section.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	dir, err := cmd.Flags().GetString("config")
	if err != nil {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("no %s in %s: %w", config.ConfigFileName, dir, datamove.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("loading %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// azureManagerConfig maps the yaml azure section to a manager config,
// resolving the password from DATAMOVE_SQL_PASSWORD or a terminal prompt
// when a username is configured.
func azureManagerConfig(cfg *config.ProjectConfig) (azsql.Config, error) {
	if cfg.Azure.Server == "" || cfg.Azure.Database == "" {
		return azsql.Config{}, fmt.Errorf("azure.server and azure.database are required: %w", datamove.ErrInvalidConfig)
	}

	mc := azsql.Config{
		Server:       cfg.Azure.Server,
		Database:     cfg.Azure.Database,
		Schema:       cfg.Azure.Schema,
		Username:     cfg.Azure.Username,
		AttemptLimit: cfg.Azure.AttemptLimit,
	}
	if cfg.Azure.AttemptDelay != "" {
		delay, err := time.ParseDuration(cfg.Azure.AttemptDelay)
		if err != nil {
			return azsql.Config{}, fmt.Errorf("invalid azure.attempt_delay %q: %w", cfg.Azure.AttemptDelay, datamove.ErrInvalidConfig)
		}
		mc.AttemptDelay = delay
	}

	if mc.Username != "" {
		password, err := resolvePassword("DATAMOVE_SQL_PASSWORD", fmt.Sprintf("Password for %s@%s: ", mc.Username, mc.Server))
		if err != nil {
			return azsql.Config{}, err
		}
		mc.Password = password
	}
	return mc, nil
}

// connectAzure builds a manager from config and connects it.
func connectAzure(cmd *cobra.Command, cfg *config.ProjectConfig) (*azsql.ConnectionManager, error) {
	mc, err := azureManagerConfig(cfg)
	if err != nil {
		return nil, err
	}
	manager := azsql.NewConnectionManager(mc, azsql.NewMSSQLDriver(), nil, newLogger(cmd))
	if _, err := manager.Connect(cmd.Context()); err != nil {
		return nil, err
	}
	return manager, nil
}
