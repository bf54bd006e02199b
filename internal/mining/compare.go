package mining

import (
	"fmt"
	"strings"

	"github.com/crestline-data/datamove/pkg/datamove"
)

// CompareResult summarizes how two frames line up: row and column counts,
// overlap, and per-column value match rates.
type CompareResult struct {
	RowsA    int
	RowsB    int
	RowsBoth int

	ColsA    int
	ColsB    int
	ColsBoth int

	// MatchRates maps each common column to the fraction of frame A's
	// rows whose value also appears somewhere in frame B's column.
	MatchRates map[string]float64

	// ColsMatching counts common columns with a match rate of exactly 1.
	ColsMatching int
}

// CompareFrames compares two frames after normalizing every value
// (trimmed, with missing values as empty strings). Records are paired by
// position, so RowsBoth is the shared row range.
func CompareFrames(a, b *datamove.Frame) *CompareResult {
	result := &CompareResult{
		RowsA:      a.RowCount(),
		RowsB:      b.RowCount(),
		ColsA:      a.ColumnCount(),
		ColsB:      b.ColumnCount(),
		MatchRates: make(map[string]float64),
	}
	result.RowsBoth = min(a.RowCount(), b.RowCount())

	common := commonColumns(a.Columns, b.Columns)
	result.ColsBoth = len(common)

	for _, col := range common {
		valsA, _ := a.Column(col)
		valsB, _ := b.Column(col)

		seen := make(map[string]struct{}, len(valsB))
		for _, v := range valsB {
			seen[normalizeField(v)] = struct{}{}
		}

		matched := 0
		for _, v := range valsA {
			if _, ok := seen[normalizeField(v)]; ok {
				matched++
			}
		}
		rate := 0.0
		if len(valsA) > 0 {
			rate = float64(matched) / float64(len(valsA))
		}
		result.MatchRates[col] = rate
		if rate == 1.0 {
			result.ColsMatching++
		}
	}
	return result
}

// CompareRecords counts whole records present in both frames versus
// records present in only one, over distinct normalized rows. The frames
// must have identical columns.
func CompareRecords(a, b *datamove.Frame) (same, different int, err error) {
	if len(a.Columns) != len(b.Columns) {
		return 0, 0, fmt.Errorf("frames must have the same columns: %w", datamove.ErrInvalidConfig)
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return 0, 0, fmt.Errorf("frames must have the same columns: %w", datamove.ErrInvalidConfig)
		}
	}

	keysA := recordKeys(a)
	keysB := recordKeys(b)
	for k := range keysA {
		if _, ok := keysB[k]; ok {
			same++
		} else {
			different++
		}
	}
	for k := range keysB {
		if _, ok := keysA[k]; !ok {
			different++
		}
	}
	return same, different, nil
}

func recordKeys(f *datamove.Frame) map[string]struct{} {
	keys := make(map[string]struct{}, len(f.Records))
	for _, rec := range f.Records {
		fields := make([]string, len(rec))
		for i, v := range rec {
			fields[i] = normalizeField(v)
		}
		keys[strings.Join(fields, "\x1f")] = struct{}{}
	}
	return keys
}

func normalizeField(v string) string {
	return strings.TrimSpace(v)
}

func commonColumns(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}
	var common []string
	for _, c := range a {
		if _, ok := inB[c]; ok {
			common = append(common, c)
		}
	}
	return common
}
