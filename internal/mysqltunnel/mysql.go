package mysqltunnel

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/crestline-data/datamove/internal/logging"
	"github.com/crestline-data/datamove/pkg/datamove"
)

// MySQLConfig describes the database behind the tunnel.
type MySQLConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// DB is a MySQL session running through an SSH tunnel.
type DB struct {
	db  *sql.DB
	log datamove.Logger
}

// buildDSN assembles the driver config pointed at the tunnel network.
func buildDSN(cfg MySQLConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = sshNetwork
	mc.Addr = net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))
	mc.DBName = cfg.Database
	return mc.FormatDSN()
}

// Connect opens a MySQL session over an already-dialed tunnel.
func Connect(ctx context.Context, cfg MySQLConfig, log datamove.Logger) (*DB, error) {
	if log == nil {
		log = logging.NewNullLogger()
	}
	db, err := sql.Open("mysql", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening mysql session: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql %s/%s: %w", cfg.Host, cfg.Database, err)
	}
	log.Verbose("connected to mysql %s/%s through ssh tunnel", cfg.Host, cfg.Database)
	return &DB{db: db, log: log}, nil
}

// Close releases the MySQL session. The tunnel is closed separately.
func (d *DB) Close() error {
	return d.db.Close()
}

// FetchTable reads an entire table into a frame.
func (d *DB) FetchTable(ctx context.Context, table string) (*datamove.Frame, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM `%s`", table))
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}

	var records [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning row of %s: %w", table, err)
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %s: %w", table, err)
	}
	d.log.Verbose("fetched %d rows from %s", len(records), table)
	return datamove.FrameFromRows(columns, records), nil
}

// WriteTable replaces a table with the frame's contents. Every column is
// created as VARCHAR(255) and every value is written as text.
func (d *DB) WriteTable(ctx context.Context, table string, frame *datamove.Frame) error {
	if frame.ColumnCount() == 0 {
		return fmt.Errorf("frame has no columns: %w", datamove.ErrInvalidConfig)
	}

	if _, err := d.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)); err != nil {
		return fmt.Errorf("dropping table %s: %w", table, err)
	}
	if _, err := d.db.ExecContext(ctx, createTableSQL(table, frame.Columns)); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	insert := insertSQL(table, frame.Columns)
	for i, rec := range frame.Records {
		args := make([]any, len(rec))
		for j, v := range rec {
			args[j] = v
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting row %d into %s: %w", i, table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing writes to %s: %w", table, err)
	}
	d.log.Info("wrote %d rows to table %s", frame.RowCount(), table)
	return nil
}

func createTableSQL(table string, columns []string) string {
	ddl := fmt.Sprintf("CREATE TABLE `%s` (", table)
	for i, c := range columns {
		if i > 0 {
			ddl += ", "
		}
		ddl += fmt.Sprintf("`%s` VARCHAR(255)", c)
	}
	return ddl + ")"
}

func insertSQL(table string, columns []string) string {
	stmt := fmt.Sprintf("INSERT INTO `%s` (", table)
	for i, c := range columns {
		if i > 0 {
			stmt += ", "
		}
		stmt += fmt.Sprintf("`%s`", c)
	}
	stmt += ") VALUES ("
	for i := range columns {
		if i > 0 {
			stmt += ", "
		}
		stmt += "?"
	}
	return stmt + ")"
}
