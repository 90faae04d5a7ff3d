package cache

import (
	"strconv"
	"time"
)

// Fixed keys and key prefixes.
const (
	KeySchedule        = "schedule"
	KeyStandings       = "standings"
	PrefixAggregate    = "aggregate"
	PrefixInjuries     = "injuries"
	PrefixStale        = "aggregate:stale:"
	prefixRoster       = "roster:"
	prefixGameLog      = "gamelog:"
	prefixH2H          = "h2h:"
	prefixBoxTops      = "boxscore-tops:"
	prefixBoxScore     = "boxscore:"
	prefixLineups      = "lineups:"
	prefixRecentStarts = "recent-starters:"
)

// TTLs per resource.
const (
	TTLSchedule        = 6 * time.Hour
	TTLStandings       = 6 * time.Hour
	TTLInjuriesOffDay  = 6 * time.Hour
	TTLInjuriesMorning = 30 * time.Minute
	TTLInjuriesTipoff  = 10 * time.Minute
	TTLHeadToHead      = 6 * time.Hour
	TTLOpponentGames   = 6 * time.Hour
	TTLRoster          = 6 * time.Hour
	TTLLineups         = 15 * time.Minute
	TTLBoxScore        = 2 * time.Minute
	TTLStale           = 24 * time.Hour
	TTLAggregateGame   = 30 * time.Minute
	TTLAggregateOffDay = 6 * time.Hour
)

// AggregateTTL is short on game day so injuries and lineups stay fresh.
func AggregateTTL(isGameDay bool) time.Duration {
	if isGameDay {
		return TTLAggregateGame
	}
	return TTLAggregateOffDay
}

func AggregateKey(teamID int) string { return PrefixAggregate + ":" + strconv.Itoa(teamID) }

func StaleAggregateKey(teamID int) string { return PrefixStale + strconv.Itoa(teamID) }

func InjuriesKey(teamID int, date string) string {
	return PrefixInjuries + ":" + strconv.Itoa(teamID) + ":" + date
}

func LeagueInjuriesKey(date string) string { return PrefixInjuries + ":league:" + date }

func RosterKey(teamID int) string { return prefixRoster + strconv.Itoa(teamID) }

func GameLogKey(teamID int) string { return prefixGameLog + strconv.Itoa(teamID) }

func HeadToHeadKey(a, b int) string { return prefixH2H + strconv.Itoa(a) + ":" + strconv.Itoa(b) }

func BoxScoreTopsKey(gameID string) string { return prefixBoxTops + gameID }

func BoxScoreKey(gameID string) string { return prefixBoxScore + gameID }

func LineupsKey(gameID string, teamID int) string {
	return prefixLineups + gameID + ":" + strconv.Itoa(teamID)
}

func RecentStartersKey(teamID int) string { return prefixRecentStarts + strconv.Itoa(teamID) }

// Resource returns the metric label for a key: everything before the first ':'.
func Resource(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
