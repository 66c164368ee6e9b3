package features

import (
	"strings"
	"testing"
)

func smallTable() *Table {
	return &Table{Rows: []Row{
		{Champion: "Jinx", Role: RoleADC, Kills: 5, Deaths: 2, Assists: 7, KDA: 6, DurationMin: 30, Win: true},
		{Champion: "Lux", Role: RoleSupport, Kills: 1, Deaths: 4, Assists: 12, KDA: 3.25, DurationMin: 25, Win: false},
		{Champion: "Jinx", Role: RoleADC, Kills: 9, Deaths: 1, Assists: 4, KDA: 13, DurationMin: 35, Win: true},
	}}
}

func TestEncode_EmptyTable(t *testing.T) {
	if _, err := Encode(&Table{}); err == nil {
		t.Error("Expected error encoding an empty table")
	}
}

// TestEncode_SchemaContents verifies the column layout: fixed numeric
// columns first, then sorted champion and role indicators.
func TestEncode_SchemaContents(t *testing.T) {
	enc, err := Encode(smallTable())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := append(append([]string{}, numericColumns...),
		"champion_Jinx", "champion_Lux", "role_ADC", "role_SUPPORT")
	if len(enc.Schema.Columns) != len(want) {
		t.Fatalf("Expected %d columns, got %d: %v", len(want), len(enc.Schema.Columns), enc.Schema.Columns)
	}
	for i, col := range want {
		if enc.Schema.Columns[i] != col {
			t.Errorf("Column %d = %q, want %q", i, enc.Schema.Columns[i], col)
		}
	}

	if len(enc.X) != 3 || len(enc.Y) != 3 {
		t.Errorf("Expected 3 vectors and 3 labels, got %d/%d", len(enc.X), len(enc.Y))
	}
}

// TestEncode_Deterministic verifies the schema does not depend on map
// iteration order.
func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode(smallTable())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(smallTable())
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !first.Schema.Equal(again.Schema) {
			t.Fatalf("Schema changed between runs: %v vs %v", first.Schema.Columns, again.Schema.Columns)
		}
	}
}

func TestEncode_IndicatorValues(t *testing.T) {
	enc, err := Encode(smallTable())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	col := func(name string) int {
		for i, c := range enc.Schema.Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("Column %q missing from schema", name)
		return -1
	}

	// Row 0 is Jinx/ADC.
	if enc.X[0][col("champion_Jinx")] != 1 || enc.X[0][col("champion_Lux")] != 0 {
		t.Error("Champion indicators wrong for row 0")
	}
	if enc.X[0][col("role_ADC")] != 1 || enc.X[0][col("role_SUPPORT")] != 0 {
		t.Error("Role indicators wrong for row 0")
	}
	if enc.X[0][col("kda")] != 6 {
		t.Errorf("kda = %v, want 6", enc.X[0][col("kda")])
	}
	if !enc.Y[0] || enc.Y[1] {
		t.Error("Labels out of order")
	}
}

// TestProjectRow_SchemaClosed verifies the projection invariants: the output
// has exactly the schema's columns, zero-filled where absent, and unknown
// categories never add columns.
func TestProjectRow_SchemaClosed(t *testing.T) {
	enc, err := Encode(smallTable())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	schema := enc.Schema

	// Champion the schema has never seen.
	vec := ProjectRow(schema, map[string]float64{"kda": 4.5, "duration": 28}, "Teemo", RoleTop)

	if len(vec) != len(schema.Columns) {
		t.Fatalf("Projected row has %d values for %d schema columns", len(vec), len(schema.Columns))
	}

	for i, col := range schema.Columns {
		isIndicator := strings.HasPrefix(col, championPrefix) || strings.HasPrefix(col, rolePrefix)
		if isIndicator && vec[i] != 0 {
			t.Errorf("Unknown category set indicator %q = %v, want 0", col, vec[i])
		}
	}
}

func TestProjectRow_KnownCategory(t *testing.T) {
	enc, err := Encode(smallTable())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	schema := enc.Schema

	vec := ProjectRow(schema, map[string]float64{"kda": 6.5}, "Jinx", RoleADC)

	for i, col := range schema.Columns {
		var want float64
		switch col {
		case "champion_Jinx", "role_ADC":
			want = 1
		case "kda":
			want = 6.5
		}
		if vec[i] != want {
			t.Errorf("Column %q = %v, want %v", col, vec[i], want)
		}
	}
}

func TestSchemaEqual(t *testing.T) {
	a := &Schema{Columns: []string{"kda", "champion_Jinx"}}
	b := &Schema{Columns: []string{"kda", "champion_Jinx"}}
	c := &Schema{Columns: []string{"kda", "champion_Lux"}}
	d := &Schema{Columns: []string{"kda"}}

	if !a.Equal(b) {
		t.Error("Identical schemas reported unequal")
	}
	if a.Equal(c) {
		t.Error("Different columns reported equal")
	}
	if a.Equal(d) {
		t.Error("Different lengths reported equal")
	}
}
