package model

import (
	"errors"
	"testing"

	"win-predictor/internal/features"
)

// TestPredictTopScenarios_CountAndOrder checks that topN=3 yields exactly 3
// scenarios ordered by descending champion frequency.
func TestPredictTopScenarios_CountAndOrder(t *testing.T) {
	table := balancedTable()
	model, _, err := Train(table, TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	scenarios, err := PredictTopScenarios(model, table, 3)
	if err != nil {
		t.Fatalf("PredictTopScenarios failed: %v", err)
	}

	if len(scenarios) != 3 {
		t.Fatalf("Expected 3 scenarios, got %d", len(scenarios))
	}

	wantOrder := []string{"Jinx", "Lux", "Ahri"}
	for i, want := range wantOrder {
		if scenarios[i].Champion != want {
			t.Errorf("Scenario %d champion = %q, want %q", i, scenarios[i].Champion, want)
		}
	}

	for _, s := range scenarios {
		if s.WinProbability < 0 || s.WinProbability > 1 {
			t.Errorf("%s probability = %v, want value in [0,1]", s.Champion, s.WinProbability)
		}
	}
}

func TestPredictTopScenarios_DefaultTopN(t *testing.T) {
	table := balancedTable()
	model, _, err := Train(table, TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	scenarios, err := PredictTopScenarios(model, table, 0)
	if err != nil {
		t.Fatalf("PredictTopScenarios failed: %v", err)
	}
	if len(scenarios) != DefaultTopScenarios {
		t.Errorf("Expected default of %d scenarios, got %d", DefaultTopScenarios, len(scenarios))
	}
}

func TestPredictTopScenarios_PairedRole(t *testing.T) {
	table := balancedTable()
	model, _, err := Train(table, TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	scenarios, err := PredictTopScenarios(model, table, 3)
	if err != nil {
		t.Fatalf("PredictTopScenarios failed: %v", err)
	}

	wantRoles := map[string]features.Role{
		"Jinx": features.RoleADC,
		"Lux":  features.RoleSupport,
		"Ahri": features.RoleMid,
	}
	for _, s := range scenarios {
		if s.Role != wantRoles[s.Champion] {
			t.Errorf("%s role = %v, want %v", s.Champion, s.Role, wantRoles[s.Champion])
		}
	}
}

// TestPredictTopScenarios_GlobalFallback verifies that a pair with a single
// observation uses the player's global averages instead of its own.
func TestPredictTopScenarios_GlobalFallback(t *testing.T) {
	table := balancedTable()
	// One-off champion with a distinctive KDA.
	table.Rows = append(table.Rows, features.Row{
		MatchID: "solo_1", Champion: "Teemo", Role: features.RoleTop,
		KDA: 99, DurationMin: 60, Win: true,
	})

	model, _, err := Train(table, TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// topN large enough to reach the one-game champion.
	scenarios, err := PredictTopScenarios(model, table, 10)
	if err != nil {
		t.Fatalf("PredictTopScenarios failed: %v", err)
	}

	var teemo *Scenario
	for i := range scenarios {
		if scenarios[i].Champion == "Teemo" {
			teemo = &scenarios[i]
		}
	}
	if teemo == nil {
		t.Fatal("Expected a Teemo scenario")
	}
	if teemo.Games != 1 {
		t.Errorf("Teemo pair observations = %d, want 1", teemo.Games)
	}

	var kdaSum float64
	for _, row := range table.Rows {
		kdaSum += row.KDA
	}
	globalKDA := kdaSum / float64(len(table.Rows))
	if teemo.KDA != globalKDA {
		t.Errorf("Teemo scenario KDA = %v, want global average %v", teemo.KDA, globalKDA)
	}
}

// TestPredictTopScenarios_SchemaMismatch verifies the defensive check when a
// model is applied to a table with a different encoding.
func TestPredictTopScenarios_SchemaMismatch(t *testing.T) {
	model, _, err := Train(balancedTable(), TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	other := &features.Table{}
	for i := 0; i < 8; i++ {
		other.Rows = append(other.Rows, features.Row{
			Champion: "Teemo", Role: features.RoleTop,
			KDA: float64(i), DurationMin: 30, Win: i%2 == 0,
		})
	}

	_, err = PredictTopScenarios(model, other, 3)
	var sme *features.SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("Expected SchemaMismatchError, got %v", err)
	}
}

func TestPredictTopScenarios_EmptyTable(t *testing.T) {
	model, _, err := Train(balancedTable(), TrainOptions{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	_, err = PredictTopScenarios(model, &features.Table{}, 3)
	var ide *InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("Expected InsufficientDataError, got %v", err)
	}
}

// TestRankChampions_RecencyTieBreak verifies that equal play counts favor
// the champion seen earlier in the most-recent-first table.
func TestRankChampions_RecencyTieBreak(t *testing.T) {
	table := &features.Table{Rows: []features.Row{
		{Champion: "Ahri", Role: features.RoleMid},
		{Champion: "Zed", Role: features.RoleMid},
		{Champion: "Zed", Role: features.RoleMid},
		{Champion: "Ahri", Role: features.RoleMid},
	}}

	ranked := rankChampions(table, 2)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 champions, got %d", len(ranked))
	}
	if ranked[0] != "Ahri" || ranked[1] != "Zed" {
		t.Errorf("Expected [Ahri Zed] (recency tie break), got %v", ranked)
	}
}
