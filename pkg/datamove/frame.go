package datamove

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Frame is an in-memory rectangular table: named columns and string-typed
// records. It is the interchange format between the database, spreadsheet
// and mining helpers. Values are always text; backends that care about
// types coerce on their side.
type Frame struct {
	Columns []string
	Records [][]string
}

// NewFrame creates an empty frame with the given column names.
func NewFrame(columns []string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// Append adds one record. The record must have exactly one value per column.
func (f *Frame) Append(record []string) error {
	if len(record) != len(f.Columns) {
		return fmt.Errorf("record has %d values, frame has %d columns: %w",
			len(record), len(f.Columns), ErrInvalidConfig)
	}
	f.Records = append(f.Records, append([]string(nil), record...))
	return nil
}

// RowCount returns the number of records.
func (f *Frame) RowCount() int { return len(f.Records) }

// ColumnCount returns the number of columns.
func (f *Frame) ColumnCount() int { return len(f.Columns) }

// Column returns all values of the named column in record order.
func (f *Frame) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	values := make([]string, 0, len(f.Records))
	for _, rec := range f.Records {
		values = append(values, rec[idx])
	}
	return values, true
}

// FrameFromRows builds a frame from loosely-typed rows, coercing every
// value to text. Nil values become empty strings.
func FrameFromRows(columns []string, rows [][]any) *Frame {
	f := NewFrame(columns)
	for _, row := range rows {
		rec := make([]string, len(columns))
		for i := range columns {
			if i < len(row) && row[i] != nil {
				rec[i] = fmt.Sprint(row[i])
			}
		}
		f.Records = append(f.Records, rec)
	}
	return f
}

// ReadCSV reads a frame from CSV content. The first row is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty: %w", ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	f := NewFrame(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record %d: %w", len(f.Records)+1, err)
		}
		f.Records = append(f.Records, record)
	}
	return f, nil
}

// WriteCSV writes the frame as CSV with a header row.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, rec := range f.Records {
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("writing csv record %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
