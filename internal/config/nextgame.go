package config

import "strings"

// NextGameConfig controls aggregation behavior.
type NextGameConfig struct {
	DefaultTeamID    int
	AggregateTimeout Duration
	// LineupOrder is "position" (PG..C, unknown last) or "minutes".
	LineupOrder string
	Timezone    string
}

func loadNextGame() NextGameConfig {
	order := strings.ToLower(strings.TrimSpace(envOrDefault(envLineupOrder, defaultLineupOrder)))
	if order != "position" && order != "minutes" {
		order = defaultLineupOrder
	}
	return NextGameConfig{
		DefaultTeamID:    intEnvOrDefault(envDefaultTeam, defaultTeamID),
		AggregateTimeout: durationEnvOrDefault(envAggregateTimeout, defaultAggregateTimeout),
		LineupOrder:      order,
		Timezone:         envOrDefault(envTimezone, defaultTimezone),
	}
}
