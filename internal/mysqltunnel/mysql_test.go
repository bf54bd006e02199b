package mysqltunnel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(MySQLConfig{
		Host:     "db.internal",
		Database: "analytics",
		Username: "reader",
		Password: "hunter2",
	})

	assert.Contains(t, dsn, "ssh+tcp(db.internal:3306)")
	assert.Contains(t, dsn, "reader:hunter2@")
	assert.Contains(t, dsn, "/analytics")
}

func TestBuildDSN_CustomPort(t *testing.T) {
	dsn := buildDSN(MySQLConfig{Host: "db", Port: 3307, Database: "x"})

	assert.Contains(t, dsn, "db:3307")
}

func TestSSHConfigDefaults(t *testing.T) {
	cfg := SSHConfig{Host: "bastion", User: "ops"}
	cfg.applyDefaults()

	assert.Equal(t, 22, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.NotNil(t, cfg.HostKeyCallback)
}

func TestDial_RequiresHostAndUser(t *testing.T) {
	_, err := Dial(SSHConfig{User: "ops"})
	assert.Error(t, err)

	_, err = Dial(SSHConfig{Host: "bastion"})
	assert.Error(t, err)
}

func TestCreateTableSQL(t *testing.T) {
	ddl := createTableSQL("people", []string{"id", "name"})

	assert.Equal(t, "CREATE TABLE `people` (`id` VARCHAR(255), `name` VARCHAR(255))", ddl)
}

func TestInsertSQL(t *testing.T) {
	stmt := insertSQL("people", []string{"id", "name"})

	assert.Equal(t, "INSERT INTO `people` (`id`, `name`) VALUES (?, ?)", stmt)
}
