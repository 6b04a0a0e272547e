package campuscard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumn(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		candidates []string
		want       string
		wantOK     bool
	}{
		{"first candidate wins by priority", []string{"C", "B"}, []string{"A", "B", "C"}, "B", true},
		{"exact first", []string{"A", "B"}, []string{"A", "B"}, "A", true},
		{"none present", []string{"x", "y"}, []string{"A", "B"}, "", false},
		{"empty columns", nil, []string{"A"}, "", false},
		{"time priority", []string{"regdate", "occtime", "txdate"}, TimeColumnCandidates(), "txdate", true},
		{"later time candidate", []string{"regdate", "opdt"}, TimeColumnCandidates(), "opdt", true},
		{"type priority", []string{"trantype", "trandescname"}, TypeColumnCandidates(), "trandescname", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindColumn(tt.columns, tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSchema(t *testing.T) {
	rs := &RecordSet{Rows: []RawRecord{
		{"occtime": "2024-03-01 12:00:00", "txamt": 100, "mername": "A"},
		{"consmtime": "2024-03-01 12:00:00", "txamt": 100, "mername": "B", "txname": "消费"},
	}}

	schema, err := ResolveSchema(rs)
	require.NoError(t, err)
	assert.Equal(t, "occtime", schema.TimeColumn)
	assert.Equal(t, "txname", schema.TypeColumn)
	assert.True(t, schema.HasTypeColumn())
	assert.Equal(t, []string{"consmtime", "mername", "occtime", "txamt", "txname"}, schema.Columns)
}

func TestResolveSchema_NoTypeColumn(t *testing.T) {
	rs := &RecordSet{Rows: []RawRecord{{"txdate": "2024-03-01", "txamt": 1, "mername": "A"}}}

	schema, err := ResolveSchema(rs)
	require.NoError(t, err)
	assert.Equal(t, "", schema.TypeColumn)
	assert.False(t, schema.HasTypeColumn())
}

func TestResolveSchema_NoTimeColumnIsFatal(t *testing.T) {
	rs := &RecordSet{Rows: []RawRecord{{"when": "2024-03-01", "txamt": 1, "mername": "A"}}}

	_, err := ResolveSchema(rs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTimeColumn)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"mername", "txamt", "when"}, schemaErr.Available)
	assert.Contains(t, err.Error(), "when")
	assert.Contains(t, err.Error(), "txdate")
}

func TestResolveSchema_MissingFixedColumn(t *testing.T) {
	tests := []struct {
		name    string
		row     RawRecord
		missing string
	}{
		{"no amount", RawRecord{"txdate": "2024-03-01", "mername": "A"}, AmountColumn},
		{"no merchant", RawRecord{"txdate": "2024-03-01", "txamt": 1}, MerchantColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSchema(&RecordSet{Rows: []RawRecord{tt.row}})
			assert.ErrorIs(t, err, ErrMissingColumn)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.missing, schemaErr.Field)
		})
	}
}
