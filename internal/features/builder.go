package features

import (
	"win-predictor/internal/riot"
)

// Role is the closed set of positions the model knows about. Riot's
// teamPosition vocabulary is mapped in; anything unmapped becomes
// RoleUnknown rather than erroring.
type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleADC     Role = "ADC"
	RoleSupport Role = "SUPPORT"
	RoleUnknown Role = "UNKNOWN"
)

var roleByPosition = map[string]Role{
	"TOP":     RoleTop,
	"JUNGLE":  RoleJungle,
	"MIDDLE":  RoleMid,
	"BOTTOM":  RoleADC,
	"UTILITY": RoleSupport,
}

// MapRole converts a raw teamPosition value into the fixed role set.
func MapRole(teamPosition string) Role {
	if r, ok := roleByPosition[teamPosition]; ok {
		return r
	}
	return RoleUnknown
}

// Row is one match reduced to the target player's performance. Exactly one
// Row exists per match where the player appears with parseable data.
type Row struct {
	MatchID     string
	Champion    string
	Role        Role
	Kills       int
	Deaths      int
	Assists     int
	KDA         float64 // (kills+assists)/max(deaths,1)
	DurationMin float64 // whole minutes, truncated from gameDuration seconds
	Gold        int
	Damage      int
	CS          int
	Vision      int
	FirstBlood  bool
	Win         bool
}

// Table is the ordered feature set for one analysis run. Rows keep the
// most-recent-first order of the match id list they were built from.
type Table struct {
	Rows []Row
}

func (t *Table) Len() int { return len(t.Rows) }

// BuildTable extracts one Row per match in which the identity appears.
// Matches without the player, or with unparseable participant data, are
// skipped and counted; the returned skip count plus len(Rows) always equals
// len(matches).
func BuildTable(identity *riot.Identity, matches []*riot.Match) (*Table, int) {
	table := &Table{Rows: make([]Row, 0, len(matches))}
	skipped := 0

	for _, m := range matches {
		if m == nil {
			skipped++
			continue
		}

		row, ok := extractRow(identity.PUUID, m)
		if !ok {
			skipped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, skipped
}

// extractRow locates the target participant inside a match document. This is
// the single place raw Riot fields become model features, so a schema change
// upstream only touches here and the riot types.
func extractRow(puuid string, m *riot.Match) (Row, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID != puuid {
			continue
		}
		// A participant entry without a champion is unparseable; drop it
		// rather than defaulting.
		if p.ChampionName == "" {
			return Row{}, false
		}

		deaths := p.Deaths
		if deaths < 1 {
			deaths = 1
		}

		return Row{
			MatchID:     m.Metadata.MatchID,
			Champion:    p.ChampionName,
			Role:        MapRole(p.TeamPosition),
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			Assists:     p.Assists,
			KDA:         float64(p.Kills+p.Assists) / float64(deaths),
			DurationMin: float64(m.Info.GameDuration / 60),
			Gold:        p.GoldEarned,
			Damage:      p.TotalDamage,
			CS:          p.MinionsKilled,
			Vision:      p.VisionScore,
			FirstBlood:  p.FirstBloodKill,
			Win:         p.Win,
		}, true
	}
	return Row{}, false
}
