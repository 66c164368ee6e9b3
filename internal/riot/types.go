package riot

// Identity is a resolved player account from /riot/account/v1/accounts/by-riot-id.
// Resolved once per analysis request and immutable afterwards.
type Identity struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Match represents the response from /lol/match/v5/matches/{matchId}.
// Only the fields the feature builder extracts are decoded; the remote
// document schema is externally versioned, so field extraction is isolated
// here and in the features package.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int           `json:"gameDuration"` // seconds
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
}

// Participant holds the per-player slice of a match document.
type Participant struct {
	PUUID          string `json:"puuid"`
	RiotIDGameName string `json:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline"`
	ChampionName   string `json:"championName"`
	TeamPosition   string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Win            bool   `json:"win"`
	Kills          int    `json:"kills"`
	Deaths         int    `json:"deaths"`
	Assists        int    `json:"assists"`
	GoldEarned     int    `json:"goldEarned"`
	TotalDamage    int    `json:"totalDamageDealtToChampions"`
	MinionsKilled  int    `json:"totalMinionsKilled"`
	VisionScore    int    `json:"visionScore"`
	FirstBloodKill bool   `json:"firstBloodKill"`
}
