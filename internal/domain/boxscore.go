package domain

// Leader is one row of a top-3 leaderboard.
type Leader struct {
	PlayerName   string `json:"playerName"`
	PersonID     int    `json:"personId"`
	Value        int    `json:"value"`
	JerseyNumber string `json:"jerseyNumber,omitempty"`
}

// LastH2HBoxScore holds per-side top performers for one completed game.
type LastH2HBoxScore struct {
	GameID     string   `json:"gameId"`
	HomeTeamID int      `json:"homeTeamId"`
	AwayTeamID int      `json:"awayTeamId"`
	HomeTopPts []Leader `json:"homeTopPts"`
	HomeTopReb []Leader `json:"homeTopReb"`
	HomeTopAst []Leader `json:"homeTopAst"`
	AwayTopPts []Leader `json:"awayTopPts"`
	AwayTopReb []Leader `json:"awayTopReb"`
	AwayTopAst []Leader `json:"awayTopAst"`

	GameHighPtsPersonID *int `json:"gameHighPtsPersonId"`
	GameHighRebPersonID *int `json:"gameHighRebPersonId"`
	GameHighAstPersonID *int `json:"gameHighAstPersonId"`
}
