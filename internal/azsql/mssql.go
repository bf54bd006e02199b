package azsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

// Connection pool tuning for the utility's serial, single-owner usage.
const (
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// MSSQLDriver is the production Driver backed by microsoft/go-mssqldb.
// When the attribute map carries an access token, the token connector is
// used; otherwise the credential-bearing DSN is opened directly.
type MSSQLDriver struct{}

// NewMSSQLDriver creates the production driver.
func NewMSSQLDriver() *MSSQLDriver {
	return &MSSQLDriver{}
}

func (d *MSSQLDriver) Connect(ctx context.Context, dsn string, attrs PreSessionAttributes) (Conn, error) {
	db, err := d.open(dsn, attrs)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &TransportError{Kind: classifyConnectError(err), Err: err}
	}
	return &sqlConn{db: db}, nil
}

func (d *MSSQLDriver) open(dsn string, attrs PreSessionAttributes) (*sql.DB, error) {
	encoded, ok := attrs[sqlCoptSSAccessToken]
	if !ok {
		db, err := sql.Open("sqlserver", dsn)
		if err != nil {
			return nil, &TransportError{Kind: KindInvalid, Err: err}
		}
		return db, nil
	}

	// go-mssqldb consumes the bearer string directly; unwrap the
	// pre-session attribute form.
	bearer, err := DecodeAccessToken(encoded)
	if err != nil {
		return nil, &TransportError{Kind: KindInvalid, Err: err}
	}
	connector, err := mssql.NewAccessTokenConnector(dsn, func() (string, error) {
		return bearer, nil
	})
	if err != nil {
		return nil, &TransportError{Kind: KindInvalid, Err: fmt.Errorf("building token connector: %w", err)}
	}
	return sql.OpenDB(connector), nil
}

// sqlConn adapts *sql.DB to the Conn interface.
type sqlConn struct {
	db *sql.DB
}

func (c *sqlConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (c *sqlConn) Close() error { return c.db.Close() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *sqlRows) Err() error                 { return r.rows.Err() }
func (r *sqlRows) Close() error               { return r.rows.Close() }
