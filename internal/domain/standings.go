package domain

// StandingsEntry is one team's position in the league table.
type StandingsEntry struct {
	TeamID         int        `json:"teamId"`
	TeamName       string     `json:"teamName"`
	TeamCity       string     `json:"teamCity"`
	Tricode        string     `json:"teamTricode"`
	Wins           int        `json:"wins"`
	Losses         int        `json:"losses"`
	WinPct         float64    `json:"winPct"`
	LeagueRank     int        `json:"leagueRank"`
	ConferenceRank int        `json:"conferenceRank"`
	DivisionRank   int        `json:"divisionRank"`
	Conference     Conference `json:"conference"`
	Division       string     `json:"division"`
}
