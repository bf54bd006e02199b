package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// AzureConfig describes the Azure SQL target. Username is optional; when
// set (together with a password from the environment or a prompt) the
// connection uses SQL authentication instead of an Azure identity token.
type AzureConfig struct {
	Server       string `yaml:"server"`
	Database     string `yaml:"database"`
	Schema       string `yaml:"schema,omitempty"`
	Username     string `yaml:"username,omitempty"`
	AttemptLimit int    `yaml:"attempt_limit,omitempty"`
	AttemptDelay string `yaml:"attempt_delay,omitempty"`
}

// SSHConfig describes the bastion host used to reach MySQL.
type SSHConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port,omitempty"`
	User string `yaml:"user"`
}

// MySQLConfig describes a MySQL server behind an SSH bastion.
type MySQLConfig struct {
	Host     string    `yaml:"host"`
	Port     int       `yaml:"port,omitempty"`
	Database string    `yaml:"database"`
	Username string    `yaml:"username"`
	SSH      SSHConfig `yaml:"ssh"`
}

// SheetsConfig describes the Google Sheets target.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	Worksheet       string `yaml:"worksheet,omitempty"`
}

// MiningConfig points at the local SQLite database to inspect.
type MiningConfig struct {
	Path string `yaml:"path"`
}

type ProjectConfig struct {
	Azure  AzureConfig  `yaml:"azure"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	Sheets SheetsConfig `yaml:"sheets"`
	Mining MiningConfig `yaml:"mining"`
}

const ConfigFileName = "datamove.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
