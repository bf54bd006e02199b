// Package mining inspects SQLite databases for ad-hoc schema discovery:
// listing columns with their declared types, searching for values, and
// scoring candidate primary keys for a known foreign key column.
package mining

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go sqlite driver
)

// Column describes one column discovered in the database schema.
// Datatype and Key come from the raw CREATE TABLE text and may be empty.
type Column struct {
	Table    string
	Name     string
	Datatype string
	Key      string
}

// Open opens a SQLite database file. ":memory:" is accepted for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	return db, nil
}

// SchemaColumns lists every column of every table by parsing the stored
// CREATE TABLE text in sqlite_master. The parse is deliberately crude: it
// splits the parenthesized body on commas and whitespace, which is enough
// for the plain DDL this tool targets.
func SchemaColumns(ctx context.Context, db *sql.DB) ([]Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, sql FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var table, ddl string
		if err := rows.Scan(&table, &ddl); err != nil {
			return nil, fmt.Errorf("scanning sqlite_master row: %w", err)
		}
		columns = append(columns, parseCreateTable(table, ddl)...)
	}
	return columns, rows.Err()
}

// parseCreateTable extracts column records from a CREATE TABLE statement.
func parseCreateTable(table, ddl string) []Column {
	open := strings.Index(ddl, "(")
	close := strings.LastIndex(ddl, ")")
	if open < 0 || close <= open {
		return nil
	}
	var columns []Column
	for _, field := range strings.Split(ddl[open+1:close], ",") {
		parts := strings.Fields(strings.TrimSpace(field))
		if len(parts) == 0 {
			continue
		}
		col := Column{Table: table, Name: strings.Trim(parts[0], `"`)}
		if len(parts) > 1 {
			col.Datatype = parts[1]
		}
		if len(parts) > 2 {
			col.Key = parts[2]
		}
		columns = append(columns, col)
	}
	return columns
}

// ColumnValues returns every value of one column in row order.
func ColumnValues(ctx context.Context, db *sql.DB, table, column string) ([]any, error) {
	query := fmt.Sprintf(`SELECT %q FROM %q`, column, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s.%s: %w", table, column, err)
		}
		values = append(values, normalizeValue(v))
	}
	return values, rows.Err()
}

// normalizeValue makes driver values comparable: byte slices become
// strings, everything else passes through.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
