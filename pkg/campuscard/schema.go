package campuscard

// Fixed column names that every API version uses
const (
	AmountColumn   = "txamt"
	MerchantColumn = "mername"
)

// TimeColumnCandidates returns the time-like column names in priority order
func TimeColumnCandidates() []string {
	return []string{"txdate", "occtime", "consmtime", "transtime", "opdt", "regdate"}
}

// TypeColumnCandidates returns the transaction-type column names in priority order
func TypeColumnCandidates() []string {
	return []string{"txname", "trandescname", "trantype"}
}

// Schema is the column mapping resolved once for a whole record set
type Schema struct {
	TimeColumn string   `json:"timeColumn"`
	TypeColumn string   `json:"typeColumn,omitempty"`
	Columns    []string `json:"columns"`
}

// HasTypeColumn reports whether a type column resolved
func (s *Schema) HasTypeColumn() bool {
	return s != nil && s.TypeColumn != ""
}

// FindColumn returns the first candidate present in columns
func FindColumn(columns []string, candidates []string) (string, bool) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, candidate := range candidates {
		if _, ok := present[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// ResolveSchema identifies the time and type columns of a non-empty record
// set. A missing time, amount, or merchant column is fatal; a missing type
// column is not.
func ResolveSchema(rs *RecordSet) (*Schema, error) {
	columns := rs.Columns()

	timeColumn, ok := FindColumn(columns, TimeColumnCandidates())
	if !ok {
		return nil, &SchemaError{
			Field:      "time",
			Candidates: TimeColumnCandidates(),
			Available:  columns,
			Err:        ErrNoTimeColumn,
		}
	}

	for _, fixed := range []string{AmountColumn, MerchantColumn} {
		if _, ok := FindColumn(columns, []string{fixed}); !ok {
			return nil, &SchemaError{
				Field:      fixed,
				Candidates: []string{fixed},
				Available:  columns,
				Err:        ErrMissingColumn,
			}
		}
	}

	typeColumn, _ := FindColumn(columns, TypeColumnCandidates())

	return &Schema{
		TimeColumn: timeColumn,
		TypeColumn: typeColumn,
		Columns:    columns,
	}, nil
}
