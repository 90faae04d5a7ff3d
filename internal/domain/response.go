package domain

import "time"

// NextGameInfo describes the upcoming game from the focus team's side.
type NextGameInfo struct {
	GameID     string      `json:"gameId"`
	DateTime   time.Time   `json:"dateTime"`
	Status     string      `json:"status"`
	Team       TeamInfo    `json:"team"`
	Opponent   TeamInfo    `json:"opponent"`
	Location   string      `json:"location"`
	IsHome     bool        `json:"isHome"`
	Broadcasts []Broadcast `json:"broadcasts"`
}

// StandingsPair holds both sides' standings.
type StandingsPair struct {
	Team     StandingsEntry `json:"team"`
	Opponent StandingsEntry `json:"opponent"`
}

// InjuryPair holds both sides' injury lists.
type InjuryPair struct {
	Team     []InjuryEntry `json:"team"`
	Opponent []InjuryEntry `json:"opponent"`
}

// LineupPair holds both sides' projected starters.
type LineupPair struct {
	Team     []Player `json:"team"`
	Opponent []Player `json:"opponent"`
}

// NextGameResponse is the aggregate returned to callers. It is rebuilt from scratch on every refresh.
type NextGameResponse struct {
	TeamID                 int              `json:"teamId"`
	Game                   NextGameInfo     `json:"game"`
	Standings              StandingsPair    `json:"standings"`
	Injuries               InjuryPair       `json:"injuries"`
	ProjectedLineups       LineupPair       `json:"projectedLineups"`
	TeamRecentGames        []GameSummary    `json:"teamRecentGames"`
	OpponentRecentGames    []GameSummary    `json:"opponentRecentGames"`
	HeadToHead             []GameSummary    `json:"headToHead"`
	LastHeadToHeadBoxScore *LastH2HBoxScore `json:"lastHeadToHeadBoxScore"`
	LastUpdated            time.Time        `json:"lastUpdated"`
}
