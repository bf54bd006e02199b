package azsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/crestline-data/datamove/pkg/datamove"
)

// Result holds the rows and column metadata of one execution. Executions
// that do not request results return an empty Result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Execute runs one SQL statement in its own transaction. When params is
// non-nil the statement is executed once per parameter row (batch form).
// When returnResults is true the produced rows and column metadata are
// fetched; result retrieval is only available for the single-statement
// form. Every call commits its own transaction; on any error the
// transaction is rolled back and the error propagates without retry.
func (m *ConnectionManager) Execute(ctx context.Context, query string, params [][]any, returnResults bool) (*Result, error) {
	if m.handle == nil {
		return nil, fmt.Errorf("cannot execute SQL: %w", datamove.ErrNoConnection)
	}

	tx, err := m.handle.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %v: %w", err, datamove.ErrExecutionFailed)
	}

	result := &Result{}
	switch {
	case params != nil:
		for i, row := range params {
			if err := tx.Exec(ctx, query, row...); err != nil {
				_ = tx.Rollback()
				m.log.Error("error executing SQL batch row %d: %v", i+1, err)
				return nil, fmt.Errorf("executing batch row %d: %v: %w", i+1, err, datamove.ErrExecutionFailed)
			}
		}
		m.log.Verbose("executed SQL with %d parameter rows: %s", len(params), query)

	case returnResults:
		rows, err := tx.Query(ctx, query)
		if err != nil {
			_ = tx.Rollback()
			m.log.Error("error executing SQL: %v", err)
			return nil, fmt.Errorf("executing query: %v: %w", err, datamove.ErrExecutionFailed)
		}
		result, err = collectRows(rows)
		if err != nil {
			_ = tx.Rollback()
			m.log.Error("error fetching results: %v", err)
			return nil, fmt.Errorf("fetching results: %v: %w", err, datamove.ErrExecutionFailed)
		}
		m.log.Verbose("executed SQL, %d rows returned: %s", len(result.Rows), query)

	default:
		if err := tx.Exec(ctx, query); err != nil {
			_ = tx.Rollback()
			m.log.Error("error executing SQL: %v", err)
			return nil, fmt.Errorf("executing statement: %v: %w", err, datamove.ErrExecutionFailed)
		}
		m.log.Verbose("executed SQL: %s", query)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %v: %w", err, datamove.ErrExecutionFailed)
	}
	return result, nil
}

// collectRows drains a cursor into a Result.
func collectRows(rows Rows) (*Result, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// ConnectivityTest round-trips a trivial query against the live handle.
func (m *ConnectionManager) ConnectivityTest(ctx context.Context) error {
	result, err := m.Execute(ctx, "SELECT CURRENT_TIMESTAMP;", nil, true)
	if err != nil {
		return err
	}
	for _, row := range result.Rows {
		if len(row) > 0 {
			m.log.Verbose("server time: %v", row[0])
		}
	}
	return nil
}

// WriteTable writes a frame into schema.table. With create, the target is
// dropped and recreated with every column typed varchar(255); all values
// travel as text. Rows are inserted in batches of maxRows (default
// datamove.DefaultBatchRows) through the batch form of Execute. The text
// coercion is a deliberate simplification: this path does not preserve
// numeric or date fidelity.
func (m *ConnectionManager) WriteTable(ctx context.Context, frame *datamove.Frame, table string, create bool, maxRows int) error {
	if maxRows <= 0 {
		maxRows = datamove.DefaultBatchRows
	}
	qualified := m.qualify(table)
	m.log.Verbose("writing %d rows to %s (create=%t, maxRows=%d)", frame.RowCount(), qualified, create, maxRows)

	quoted := make([]string, len(frame.Columns))
	placeholders := make([]string, len(frame.Columns))
	for i, c := range frame.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}

	if create {
		if _, err := m.Execute(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", qualified), nil, false); err != nil {
			return err
		}
		defs := make([]string, len(quoted))
		for i, q := range quoted {
			defs[i] = q + " varchar(255)"
		}
		createSQL := fmt.Sprintf("CREATE TABLE %s (\n%s\n);", qualified, strings.Join(defs, ",\n"))
		if _, err := m.Execute(ctx, createSQL, nil, false); err != nil {
			return err
		}
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	data := make([][]any, frame.RowCount())
	for i, rec := range frame.Records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		data[i] = row
	}

	for start := 0; start < len(data); start += maxRows {
		end := start + maxRows
		if end > len(data) {
			end = len(data)
		}
		m.log.Info("inserting rows %d to %d of %d", start+1, end, len(data))
		if _, err := m.Execute(ctx, insertSQL, data[start:end], false); err != nil {
			return err
		}
	}
	return nil
}

// ReadTable selects every row of schema.table and zips column metadata
// with values into one map per row.
func (m *ConnectionManager) ReadTable(ctx context.Context, table string) ([]map[string]any, error) {
	qualified := m.qualify(table)
	m.log.Verbose("reading all rows from %s", qualified)

	result, err := m.Execute(ctx, fmt.Sprintf("SELECT * FROM %s", qualified), nil, true)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(result.Rows))
	for _, values := range result.Rows {
		row := make(map[string]any, len(result.Columns))
		for i, column := range result.Columns {
			row[column] = values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFrame reads schema.table into a Frame, coercing values to text.
func (m *ConnectionManager) ReadFrame(ctx context.Context, table string) (*datamove.Frame, error) {
	result, err := m.Execute(ctx, fmt.Sprintf("SELECT * FROM %s", m.qualify(table)), nil, true)
	if err != nil {
		return nil, err
	}
	return datamove.FrameFromRows(result.Columns, result.Rows), nil
}

func (m *ConnectionManager) qualify(table string) string {
	if m.schema == "" {
		return table
	}
	return m.schema + "." + table
}
