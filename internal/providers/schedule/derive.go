package schedule

import (
	"sort"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/standings"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// MaxHeadToHead caps the head-to-head list.
const MaxHeadToHead = 4

// FindNextGame returns the team's earliest game that has not tipped off yet or is in progress.
func FindNextGame(s Schedule, teamID int, now time.Time) (domain.Game, bool) {
	var next domain.Game
	found := false
	for _, g := range s.Games {
		if !g.Involves(teamID) {
			continue
		}
		if g.KickoffUTC.Before(now) && g.Status != domain.StatusInProgress {
			continue
		}
		if !found || g.KickoffUTC.Before(next.KickoffUTC) {
			next, found = g, true
		}
	}
	return next, found
}

// RecentGames returns the team's last n final games, newest first.
func RecentGames(s Schedule, teamID, n int) []domain.GameSummary {
	var finals []domain.Game
	for _, g := range s.Games {
		if g.Status == domain.StatusFinal && g.Involves(teamID) {
			finals = append(finals, g)
		}
	}
	return summarize(finals, n)
}

// HeadToHead returns completed meetings between two teams, newest first, capped at four.
func HeadToHead(s Schedule, teamA, teamB int, now time.Time) []domain.GameSummary {
	var meetings []domain.Game
	for _, g := range s.Games {
		if g.Status != domain.StatusFinal || !g.Involves(teamA) || !g.Involves(teamB) {
			continue
		}
		if g.KickoffUTC.After(now) {
			continue
		}
		meetings = append(meetings, g)
	}
	return summarize(meetings, MaxHeadToHead)
}

func summarize(games []domain.Game, n int) []domain.GameSummary {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].KickoffUTC.After(games[j].KickoffUTC)
	})
	if n >= 0 && len(games) > n {
		games = games[:n]
	}
	out := make([]domain.GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, Summary(g))
	}
	return out
}

// Summary reduces a game to its list form. GameDate is the Eastern calendar date.
func Summary(g domain.Game) domain.GameSummary {
	status := g.StatusText
	if g.Status == domain.StatusFinal || status == "" {
		status = g.Status.String()
	}
	return domain.GameSummary{
		GameID:    g.GameID,
		GameDate:  GameDate(g),
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Status:    status,
	}
}

// GameDate is the game's date in league (Eastern) time.
func GameDate(g domain.Game) string {
	if len(g.KickoffEst) >= len(timeutil.DateLayout) {
		if _, err := timeutil.ParseDate(g.KickoffEst[:len(timeutil.DateLayout)]); err == nil {
			return g.KickoffEst[:len(timeutil.DateLayout)]
		}
	}
	if g.KickoffUTC.IsZero() {
		return ""
	}
	return timeutil.FormatDate(g.KickoffUTC.In(timeutil.ResolveLocation(timeutil.DefaultZone)))
}

// IsGameDay reports whether the game falls on today's date in loc.
func IsGameDay(g domain.Game, now time.Time, loc *time.Location) bool {
	if g.KickoffUTC.IsZero() {
		return false
	}
	return timeutil.SameDay(g.KickoffUTC, now, loc)
}

// IsHome reports whether teamID is the home side.
func IsHome(g domain.Game, teamID int) bool {
	return g.HomeTeam.TeamID == teamID
}

// Opponent returns the side teamID is playing against.
func Opponent(g domain.Game, teamID int) domain.TeamInfo {
	if IsHome(g, teamID) {
		return g.AwayTeam
	}
	return g.HomeTeam
}

// Team returns teamID's own side.
func Team(g domain.Game, teamID int) domain.TeamInfo {
	if IsHome(g, teamID) {
		return g.HomeTeam
	}
	return g.AwayTeam
}

// Location renders the venue as "arena, city[, state]".
func Location(g domain.Game) string {
	return g.Venue.Location()
}

type recordSnapshot struct {
	team   domain.TeamInfo
	record domain.Record
	played bool
	at     time.Time
}

// StandingsFromSchedule derives standings from the records the schedule reports
// with each game. The latest played game wins; scheduled games only fill gaps.
func StandingsFromSchedule(s Schedule) []domain.StandingsEntry {
	latest := make(map[int]recordSnapshot)
	var order []int
	observe := func(team domain.TeamInfo, rec domain.Record, g domain.Game) {
		if team.TeamID == 0 {
			return
		}
		snap := recordSnapshot{team: team, record: rec, played: g.Status != domain.StatusScheduled, at: g.KickoffUTC}
		prev, seen := latest[team.TeamID]
		if !seen {
			order = append(order, team.TeamID)
			latest[team.TeamID] = snap
			return
		}
		if snap.played != prev.played {
			if snap.played {
				latest[team.TeamID] = snap
			}
			return
		}
		if !snap.at.Before(prev.at) {
			latest[team.TeamID] = snap
		}
	}
	for _, g := range s.Games {
		observe(g.HomeTeam, g.HomeRecord, g)
		observe(g.AwayTeam, g.AwayRecord, g)
	}

	entries := make([]domain.StandingsEntry, 0, len(order))
	for _, id := range order {
		snap := latest[id]
		entry := domain.StandingsEntry{
			TeamID:     id,
			TeamName:   snap.team.TeamName,
			TeamCity:   snap.team.TeamCity,
			Tricode:    snap.team.Tricode,
			Wins:       snap.record.Wins,
			Losses:     snap.record.Losses,
			WinPct:     standings.WinPct(snap.record.Wins, snap.record.Losses),
			Conference: domain.ConferenceOf(id),
		}
		if meta, ok := domain.TeamByID(id); ok {
			entry.Division = meta.Division
		}
		entries = append(entries, entry)
	}
	standings.ApplyComputedRanks(entries)
	return entries
}
