package mining

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// ErrColumnNotFound is returned when the requested foreign key column does
// not exist in the mined schema.
var ErrColumnNotFound = errors.New("column not found in database")

// ValueMatch records a table.column where a searched value appeared.
type ValueMatch struct {
	Table  string
	Column string
}

// FindValue scans candidate columns for a specific value. When datatype is
// non-empty only columns with that declared type are scanned.
func FindValue(ctx context.Context, db *sql.DB, columns []Column, datatype string, value any) ([]ValueMatch, error) {
	needle := normalizeValue(value)
	var matches []ValueMatch
	for _, col := range columns {
		if datatype != "" && col.Datatype != datatype {
			continue
		}
		values, err := ColumnValues(ctx, db, col.Table, col.Name)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			if v == needle {
				matches = append(matches, ValueMatch{Table: col.Table, Column: col.Name})
				break
			}
		}
	}
	return matches, nil
}

// KeyCandidate scores one column as a potential primary key for a foreign
// key: how many of the foreign key's distinct values it covers, how many
// of its own values go unused, and the ratio of covered values.
type KeyCandidate struct {
	Table         string
	Column        string
	MatchedValues int
	UnusedValues  int
	PercentMatch  float64
}

// KeySearchOptions tunes FindPrimaryKey.
type KeySearchOptions struct {
	// KeysOnly restricts candidates to columns carrying key metadata in
	// their DDL (e.g. PRIMARY KEY).
	KeysOnly bool

	// StrictType restricts candidates to the foreign key's declared
	// datatype. When false, values are compared as strings.
	StrictType bool
}

// FindPrimaryKey scores every other column in the schema as a primary-key
// candidate for fkTable.fkColumn, best match first.
func FindPrimaryKey(ctx context.Context, db *sql.DB, fkTable, fkColumn string, columns []Column, opts KeySearchOptions) ([]KeyCandidate, error) {
	var foreign *Column
	for i := range columns {
		if columns[i].Table == fkTable && columns[i].Name == fkColumn {
			foreign = &columns[i]
			break
		}
	}
	if foreign == nil {
		return nil, fmt.Errorf("%s.%s: %w", fkTable, fkColumn, ErrColumnNotFound)
	}

	var candidates []Column
	for _, col := range columns {
		if col.Table == fkTable && col.Name == fkColumn {
			continue
		}
		if opts.StrictType && col.Datatype != foreign.Datatype {
			continue
		}
		if opts.KeysOnly && col.Key == "" {
			continue
		}
		candidates = append(candidates, col)
	}

	fkValues, err := ColumnValues(ctx, db, fkTable, fkColumn)
	if err != nil {
		return nil, err
	}
	fkSet := valueSet(fkValues, !opts.StrictType)
	if len(fkSet) == 0 {
		return nil, fmt.Errorf("%s.%s has no values to match", fkTable, fkColumn)
	}

	results := make([]KeyCandidate, 0, len(candidates))
	for _, col := range candidates {
		values, err := ColumnValues(ctx, db, col.Table, col.Name)
		if err != nil {
			return nil, err
		}
		keySet := valueSet(values, !opts.StrictType)

		matched, unused := 0, 0
		for v := range keySet {
			if _, ok := fkSet[v]; ok {
				matched++
			} else {
				unused++
			}
		}
		results = append(results, KeyCandidate{
			Table:         col.Table,
			Column:        col.Name,
			MatchedValues: matched,
			UnusedValues:  unused,
			PercentMatch:  float64(matched) / float64(len(fkSet)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PercentMatch > results[j].PercentMatch
	})
	return results, nil
}

// valueSet builds a distinct-value set, optionally stringifying values so
// that loosely-typed columns compare across types.
func valueSet(values []any, asStrings bool) map[any]struct{} {
	set := make(map[any]struct{}, len(values))
	for _, v := range values {
		if asStrings {
			v = fmt.Sprint(v)
		}
		set[v] = struct{}{}
	}
	return set
}
