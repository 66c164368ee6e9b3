package features

import "sort"

// ChampionWinRate summarizes a player's record on one champion, for the
// general-stats display.
type ChampionWinRate struct {
	Champion string
	Games    int
	Wins     int
	WinRate  float64
}

// WinRateByChampion aggregates the table per champion, most-played first
// (ties by name for a stable order).
func WinRateByChampion(t *Table) []ChampionWinRate {
	byChamp := make(map[string]*ChampionWinRate)
	for _, row := range t.Rows {
		s, ok := byChamp[row.Champion]
		if !ok {
			s = &ChampionWinRate{Champion: row.Champion}
			byChamp[row.Champion] = s
		}
		s.Games++
		if row.Win {
			s.Wins++
		}
	}

	out := make([]ChampionWinRate, 0, len(byChamp))
	for _, s := range byChamp {
		s.WinRate = float64(s.Wins) / float64(s.Games)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Champion < out[j].Champion
	})
	return out
}

// RoleCount is one slice of the role-distribution display.
type RoleCount struct {
	Role  Role
	Games int
}

// RoleDistribution counts matches per role, most-played first.
func RoleDistribution(t *Table) []RoleCount {
	byRole := make(map[Role]int)
	for _, row := range t.Rows {
		byRole[row.Role]++
	}

	out := make([]RoleCount, 0, len(byRole))
	for r, n := range byRole {
		out = append(out, RoleCount{Role: r, Games: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Role < out[j].Role
	})
	return out
}
