package domain

import "errors"

var (
	// ErrNoUpcomingGame means the schedule holds no future or live game for the team.
	ErrNoUpcomingGame = errors.New("no upcoming game found")
	// ErrTimeout means aggregation exceeded its deadline and no stale copy was available.
	ErrTimeout = errors.New("request timed out, please try again in a moment")
	// ErrUnknownTeam means the requested team id is not an NBA franchise.
	ErrUnknownTeam = errors.New("unknown team id")
)
