package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline-data/datamove/pkg/datamove"
)

func buildFrame(t *testing.T, columns []string, records [][]string) *datamove.Frame {
	t.Helper()
	f := datamove.NewFrame(columns)
	for _, rec := range records {
		require.NoError(t, f.Append(rec))
	}
	return f
}

func TestCompareFrames(t *testing.T) {
	a := buildFrame(t, []string{"id", "name", "extra"}, [][]string{
		{"1", "alice", "x"},
		{"2", "bob", "y"},
		{"3", "carol", "z"},
	})
	b := buildFrame(t, []string{"id", "name"}, [][]string{
		{"1", "alice "}, // trailing whitespace normalizes away
		{"2", "robert"},
	})

	result := CompareFrames(a, b)

	assert.Equal(t, 3, result.RowsA)
	assert.Equal(t, 2, result.RowsB)
	assert.Equal(t, 2, result.RowsBoth)
	assert.Equal(t, 3, result.ColsA)
	assert.Equal(t, 2, result.ColsB)
	assert.Equal(t, 2, result.ColsBoth)

	// id: 1 and 2 appear in b, 3 does not.
	assert.InDelta(t, 2.0/3.0, result.MatchRates["id"], 1e-9)
	// name: only alice matches after trimming.
	assert.InDelta(t, 1.0/3.0, result.MatchRates["name"], 1e-9)
	assert.Equal(t, 0, result.ColsMatching)
}

func TestCompareFrames_FullMatch(t *testing.T) {
	a := buildFrame(t, []string{"id"}, [][]string{{"1"}, {"2"}})
	b := buildFrame(t, []string{"id"}, [][]string{{"2"}, {"1"}})

	result := CompareFrames(a, b)
	assert.Equal(t, 1, result.ColsMatching)
	assert.Equal(t, 1.0, result.MatchRates["id"])
}

func TestCompareRecords(t *testing.T) {
	a := buildFrame(t, []string{"id", "name"}, [][]string{
		{"1", "alice"},
		{"2", "bob"},
	})
	b := buildFrame(t, []string{"id", "name"}, [][]string{
		{"1", "alice"},
		{"3", "carol"},
	})

	same, different, err := CompareRecords(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, same)
	assert.Equal(t, 2, different)
}

func TestCompareRecords_ColumnMismatch(t *testing.T) {
	a := buildFrame(t, []string{"id"}, nil)
	b := buildFrame(t, []string{"other"}, nil)

	_, _, err := CompareRecords(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, datamove.ErrInvalidConfig)
}
