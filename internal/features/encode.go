package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	championPrefix = "champion_"
	rolePrefix     = "role_"
)

// numericColumns is the fixed, ordered numeric part of every encoding.
var numericColumns = []string{
	"kills", "deaths", "assists", "kda", "duration",
	"gold", "damage", "cs", "vision", "first_blood",
}

// Schema is the ordered column set produced by encoding a table. It is
// captured at training time and must be reused unmodified for every later
// prediction against the same model.
type Schema struct {
	Columns []string
}

// Equal reports whether two schemas have identical columns in identical
// order.
func (s *Schema) Equal(other *Schema) bool {
	if len(s.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range s.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	return true
}

// SchemaMismatchError reports a prediction attempted against a model trained
// on a different column set. Correct pipeline sequencing never produces it;
// it exists as a defensive invariant check.
type SchemaMismatchError struct {
	Want, Got *Schema
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("encoding schema mismatch: model has %d columns, table has %d",
		len(e.Want.Columns), len(e.Got.Columns))
}

// Encoded is the one-hot representation of a Table: one feature vector and
// one label per row, in table order.
type Encoded struct {
	Schema *Schema
	X      [][]float64
	Y      []bool
}

// Encode expands the table's categorical columns (champion, role) into
// indicator columns and returns the numeric matrix plus the captured schema.
func Encode(t *Table) (*Encoded, error) {
	if t.Len() == 0 {
		return nil, errors.New("cannot encode an empty feature table")
	}

	champSet := make(map[string]struct{})
	roleSet := make(map[Role]struct{})
	for _, row := range t.Rows {
		champSet[row.Champion] = struct{}{}
		roleSet[row.Role] = struct{}{}
	}

	columns := make([]string, 0, len(numericColumns)+len(champSet)+len(roleSet))
	columns = append(columns, numericColumns...)
	for c := range champSet {
		columns = append(columns, championPrefix+c)
	}
	for r := range roleSet {
		columns = append(columns, rolePrefix+string(r))
	}
	// Indicator columns in deterministic order regardless of row order.
	sort.Strings(columns[len(numericColumns):])

	schema := &Schema{Columns: columns}

	enc := &Encoded{
		Schema: schema,
		X:      make([][]float64, 0, t.Len()),
		Y:      make([]bool, 0, t.Len()),
	}
	for _, row := range t.Rows {
		enc.X = append(enc.X, encodeRow(schema, &row))
		enc.Y = append(enc.Y, row.Win)
	}

	return enc, nil
}

func encodeRow(schema *Schema, row *Row) []float64 {
	numeric := map[string]float64{
		"kills":       float64(row.Kills),
		"deaths":      float64(row.Deaths),
		"assists":     float64(row.Assists),
		"kda":         row.KDA,
		"duration":    row.DurationMin,
		"gold":        float64(row.Gold),
		"damage":      float64(row.Damage),
		"cs":          float64(row.CS),
		"vision":      float64(row.Vision),
		"first_blood": boolToFloat(row.FirstBlood),
	}
	return ProjectRow(schema, numeric, row.Champion, row.Role)
}

// ProjectRow builds a feature vector for the given schema. Every schema
// column is present in the result (zero-filled when the value is absent) and
// categories unknown to the schema never introduce new columns.
func ProjectRow(schema *Schema, numeric map[string]float64, champion string, role Role) []float64 {
	vec := make([]float64, len(schema.Columns))
	for i, col := range schema.Columns {
		switch {
		case strings.HasPrefix(col, championPrefix):
			if col == championPrefix+champion {
				vec[i] = 1
			}
		case strings.HasPrefix(col, rolePrefix):
			if col == rolePrefix+string(role) {
				vec[i] = 1
			}
		default:
			vec[i] = numeric[col]
		}
	}
	return vec
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
