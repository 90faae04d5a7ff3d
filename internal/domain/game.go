package domain

import "time"

// GameStatus mirrors the league's numeric game lifecycle codes.
type GameStatus int

const (
	StatusScheduled  GameStatus = 1
	StatusInProgress GameStatus = 2
	StatusFinal      GameStatus = 3
)

func (s GameStatus) String() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusInProgress:
		return "In Progress"
	case StatusFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

// Venue is where a game is played.
type Venue struct {
	Arena string `json:"arenaName"`
	City  string `json:"arenaCity"`
	State string `json:"arenaState,omitempty"`
}

// Location renders "Arena, City[, State]".
func (v Venue) Location() string {
	loc := v.Arena + ", " + v.City
	if v.State != "" {
		loc += ", " + v.State
	}
	return loc
}

// Broadcast is one TV/radio/OTT carrier for a game.
type Broadcast struct {
	Scope        string `json:"broadcasterScope"`
	Media        string `json:"broadcasterMedia"`
	ID           int    `json:"broadcasterId"`
	Display      string `json:"broadcasterDisplay"`
	Abbreviation string `json:"broadcasterAbbreviation"`
	Description  string `json:"broadcasterDescription"`
	VideoLink    string `json:"broadcasterVideoLink,omitempty"`
}

// Game is one scheduled, live or finished contest from the league schedule.
type Game struct {
	GameID      string      `json:"gameId"`
	GameCode    string      `json:"gameCode,omitempty"`
	Status      GameStatus  `json:"gameStatus"`
	StatusText  string      `json:"gameStatusText,omitempty"`
	KickoffUTC  time.Time   `json:"gameDateTimeUTC"`
	KickoffEst  string      `json:"gameDateTimeEst,omitempty"`
	HomeTeam    TeamInfo    `json:"homeTeam"`
	AwayTeam    TeamInfo    `json:"awayTeam"`
	HomeScore   *int        `json:"homeScore,omitempty"`
	AwayScore   *int        `json:"awayScore,omitempty"`
	HomeRecord  Record      `json:"homeRecord"`
	AwayRecord  Record      `json:"awayRecord"`
	Venue       Venue       `json:"venue"`
	Broadcasts  []Broadcast `json:"broadcasts,omitempty"`
}

// Record is a win/loss snapshot reported alongside a scheduled game.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Involves reports whether teamID plays in the game.
func (g Game) Involves(teamID int) bool {
	return g.HomeTeam.TeamID == teamID || g.AwayTeam.TeamID == teamID
}

// Result is a win or loss from one team's perspective.
type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
)

// GameSummary is a completed or displayable game reduced for "recent form" and head-to-head lists.
type GameSummary struct {
	GameID    string   `json:"gameId"`
	GameDate  string   `json:"gameDate"`
	HomeTeam  TeamInfo `json:"homeTeam"`
	AwayTeam  TeamInfo `json:"awayTeam"`
	HomeScore *int     `json:"homeScore,omitempty"`
	AwayScore *int     `json:"awayScore,omitempty"`
	Status    string   `json:"status"`
	Result    Result   `json:"result,omitempty"`
}

// ForTeam returns a copy with Result computed from focusTeamID's side.
// A tie leaves Result empty. With only one side scored (a game-log row) the
// logged Result is kept for that side and flipped for the other.
func (g GameSummary) ForTeam(focusTeamID int) GameSummary {
	if g.HomeScore == nil || g.AwayScore == nil {
		g.Result = oneSidedResult(g, focusTeamID)
		return g
	}
	g.Result = ""
	focus, other := *g.HomeScore, *g.AwayScore
	if g.HomeTeam.TeamID != focusTeamID {
		focus, other = other, focus
	}
	switch {
	case focus > other:
		g.Result = ResultWin
	case focus < other:
		g.Result = ResultLoss
	}
	return g
}

func oneSidedResult(g GameSummary, focusTeamID int) Result {
	var logged TeamInfo
	switch {
	case g.HomeScore != nil:
		logged = g.HomeTeam
	case g.AwayScore != nil:
		logged = g.AwayTeam
	default:
		return ""
	}
	if g.Result != ResultWin && g.Result != ResultLoss {
		return ""
	}
	if logged.TeamID == focusTeamID {
		return g.Result
	}
	if g.Result == ResultWin {
		return ResultLoss
	}
	return ResultWin
}

// SummariesForTeam applies ForTeam to every entry.
func SummariesForTeam(games []GameSummary, focusTeamID int) []GameSummary {
	out := make([]GameSummary, len(games))
	for i, g := range games {
		out[i] = g.ForTeam(focusTeamID)
	}
	return out
}

// IntPtr is a convenience for optional scores.
func IntPtr(v int) *int {
	return &v
}
