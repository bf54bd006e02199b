package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `azure:
  server: acme-sql.database.windows.net
  database: warehouse
  schema: staging
  username: loader
  attempt_limit: 5
  attempt_delay: 30s

mysql:
  host: db.internal
  port: 3307
  database: legacy
  username: reader
  ssh:
    host: bastion.internal
    port: 2222
    user: ops

sheets:
  credentials_file: /etc/datamove/service-account.json
  spreadsheet_id: 1AbCdEf
  worksheet: export

mining:
  path: /data/app.sqlite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "acme-sql.database.windows.net", cfg.Azure.Server)
	assert.Equal(t, "warehouse", cfg.Azure.Database)
	assert.Equal(t, "staging", cfg.Azure.Schema)
	assert.Equal(t, "loader", cfg.Azure.Username)
	assert.Equal(t, 5, cfg.Azure.AttemptLimit)
	assert.Equal(t, "30s", cfg.Azure.AttemptDelay)

	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, 3307, cfg.MySQL.Port)
	assert.Equal(t, "legacy", cfg.MySQL.Database)
	assert.Equal(t, "reader", cfg.MySQL.Username)
	assert.Equal(t, "bastion.internal", cfg.MySQL.SSH.Host)
	assert.Equal(t, 2222, cfg.MySQL.SSH.Port)
	assert.Equal(t, "ops", cfg.MySQL.SSH.User)

	assert.Equal(t, "/etc/datamove/service-account.json", cfg.Sheets.CredentialsFile)
	assert.Equal(t, "1AbCdEf", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "export", cfg.Sheets.Worksheet)

	assert.Equal(t, "/data/app.sqlite", cfg.Mining.Path)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `azure:
  server: acme-sql.database.windows.net
  database: warehouse
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "warehouse", cfg.Azure.Database)
	assert.Equal(t, "", cfg.Azure.Username)
	assert.Equal(t, 0, cfg.Azure.AttemptLimit)
	assert.Equal(t, "", cfg.MySQL.Host)
	assert.Equal(t, "", cfg.Sheets.CredentialsFile)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())

	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("azure: [broken"), 0644))

	cfg, err := Load(dir)

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}
