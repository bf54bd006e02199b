package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline-data/datamove/internal/azsql"
	"github.com/crestline-data/datamove/internal/config"
	"github.com/crestline-data/datamove/pkg/datamove"
)

func TestRootCommandRegistration(t *testing.T) {
	expected := []string{"ping", "copy", "read", "mine", "sheets", "mysql", "compare", "version"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestAzureManagerConfig_RequiresServerAndDatabase(t *testing.T) {
	_, err := azureManagerConfig(&config.ProjectConfig{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, datamove.ErrInvalidConfig))
}

func TestAzureManagerConfig_Passwordless(t *testing.T) {
	cfg := &config.ProjectConfig{}
	cfg.Azure.Server = "acme-sql.database.windows.net"
	cfg.Azure.Database = "warehouse"

	mc, err := azureManagerConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "", mc.Username)
	assert.Equal(t, "", mc.Password)
	assert.Equal(t, azsql.AuthPasswordless, azsql.NewConnectionManager(mc, azsql.NewMSSQLDriver(), nil, nil).AuthMethod())
}

func TestAzureManagerConfig_PasswordFromEnvironment(t *testing.T) {
	t.Setenv("DATAMOVE_SQL_PASSWORD", "hunter2")

	cfg := &config.ProjectConfig{}
	cfg.Azure.Server = "acme-sql.database.windows.net"
	cfg.Azure.Database = "warehouse"
	cfg.Azure.Username = "loader"

	mc, err := azureManagerConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "loader", mc.Username)
	assert.Equal(t, "hunter2", mc.Password)
}

func TestAzureManagerConfig_AttemptSettings(t *testing.T) {
	cfg := &config.ProjectConfig{}
	cfg.Azure.Server = "acme-sql.database.windows.net"
	cfg.Azure.Database = "warehouse"
	cfg.Azure.AttemptLimit = 7
	cfg.Azure.AttemptDelay = "90s"

	mc, err := azureManagerConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, 7, mc.AttemptLimit)
	assert.Equal(t, 90*time.Second, mc.AttemptDelay)
}

func TestAzureManagerConfig_InvalidAttemptDelay(t *testing.T) {
	cfg := &config.ProjectConfig{}
	cfg.Azure.Server = "acme-sql.database.windows.net"
	cfg.Azure.Database = "warehouse"
	cfg.Azure.AttemptDelay = "ninety seconds"

	_, err := azureManagerConfig(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, datamove.ErrInvalidConfig))
}

func TestResolvePassword_FromEnvironment(t *testing.T) {
	t.Setenv("DATAMOVE_TEST_SECRET", "s3cret")

	got, err := resolvePassword("DATAMOVE_TEST_SECRET", "ignored: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}
