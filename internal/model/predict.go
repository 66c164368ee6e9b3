package model

import (
	"sort"

	"win-predictor/internal/features"
)

// DefaultTopScenarios matches the original top-3 most-played champions.
const DefaultTopScenarios = 3

// minPairObservations is the floor below which a (champion, role) pair's own
// averages are considered unrepresentative and the player's global averages
// are used instead.
const minPairObservations = 2

// Scenario is one hypothetical (champion, role) query with the model's win
// probability for it.
type Scenario struct {
	Champion string
	Role     features.Role
	Games    int // observations of this exact pair in the table

	// Synthesized representative stats the query row was built from.
	KDA         float64
	DurationMin float64

	WinProbability float64 // in [0, 1]
}

// PredictTopScenarios estimates win probability for the player's most-played
// champions, each paired with its most frequent role. Results are ordered by
// champion frequency (descending, ties broken by most recent occurrence) and
// are deterministic for a fixed model and table.
func PredictTopScenarios(m *TrainedModel, table *features.Table, topN int) ([]Scenario, error) {
	if topN <= 0 {
		topN = DefaultTopScenarios
	}
	if table.Len() == 0 {
		return nil, &InsufficientDataError{Reason: "feature table is empty"}
	}

	// Defensive invariant: the table must encode to the exact schema the
	// model was trained on.
	enc, err := features.Encode(table)
	if err != nil {
		return nil, err
	}
	if !m.Schema.Equal(enc.Schema) {
		return nil, &features.SchemaMismatchError{Want: m.Schema, Got: enc.Schema}
	}

	champions := rankChampions(table, topN)
	global := averageStats(table.Rows)

	scenarios := make([]Scenario, 0, len(champions))
	for _, champ := range champions {
		role := mostFrequentRole(table, champ)

		pairRows := make([]features.Row, 0)
		for _, row := range table.Rows {
			if row.Champion == champ && row.Role == role {
				pairRows = append(pairRows, row)
			}
		}

		stats := global
		if len(pairRows) >= minPairObservations {
			stats = averageStats(pairRows)
		}

		vec := features.ProjectRow(m.Schema, stats, champ, role)
		scenarios = append(scenarios, Scenario{
			Champion:       champ,
			Role:           role,
			Games:          len(pairRows),
			KDA:            stats["kda"],
			DurationMin:    stats["duration"],
			WinProbability: m.forest.predictProba(vec),
		})
	}

	return scenarios, nil
}

// rankChampions returns up to topN distinct champions ordered by play count
// descending. Rows are most-recent-first, so a lower first-occurrence index
// breaks frequency ties in favor of the more recently played champion.
func rankChampions(table *features.Table, topN int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, row := range table.Rows {
		if _, ok := firstSeen[row.Champion]; !ok {
			firstSeen[row.Champion] = i
		}
		counts[row.Champion]++
	}

	names := make([]string, 0, len(counts))
	for c := range counts {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return firstSeen[names[i]] < firstSeen[names[j]]
	})

	if len(names) > topN {
		names = names[:topN]
	}
	return names
}

// mostFrequentRole picks the role this champion was played in most often,
// ties broken by most recent occurrence.
func mostFrequentRole(table *features.Table, champion string) features.Role {
	counts := make(map[features.Role]int)
	firstSeen := make(map[features.Role]int)
	for i, row := range table.Rows {
		if row.Champion != champion {
			continue
		}
		if _, ok := firstSeen[row.Role]; !ok {
			firstSeen[row.Role] = i
		}
		counts[row.Role]++
	}

	var best features.Role
	bestCount, bestSeen := -1, -1
	for role, n := range counts {
		if n > bestCount || (n == bestCount && firstSeen[role] < bestSeen) {
			best, bestCount, bestSeen = role, n, firstSeen[role]
		}
	}
	return best
}

// averageStats computes the numeric feature means over a set of rows, keyed
// by encoding column name.
func averageStats(rows []features.Row) map[string]float64 {
	sums := map[string]float64{}
	for _, row := range rows {
		sums["kills"] += float64(row.Kills)
		sums["deaths"] += float64(row.Deaths)
		sums["assists"] += float64(row.Assists)
		sums["kda"] += row.KDA
		sums["duration"] += row.DurationMin
		sums["gold"] += float64(row.Gold)
		sums["damage"] += float64(row.Damage)
		sums["cs"] += float64(row.CS)
		sums["vision"] += float64(row.Vision)
		if row.FirstBlood {
			sums["first_blood"]++
		}
	}

	n := float64(len(rows))
	if n == 0 {
		return sums
	}
	for k := range sums {
		sums[k] /= n
	}
	return sums
}
