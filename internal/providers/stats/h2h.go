package stats

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// MaxHeadToHead caps every head-to-head list.
const MaxHeadToHead = 4

var validGameID = regexp.MustCompile(`^\d{10,}$`)

// FetchHeadToHead lists this season's meetings between two teams, newest first.
// The result is cached even when empty.
func (s *Source) FetchHeadToHead(ctx context.Context, teamA, teamB int) ([]domain.GameSummary, error) {
	key := cache.HeadToHeadKey(teamA, teamB)
	if cached, ok := cache.GetJSON[[]domain.GameSummary](ctx, s.cache, key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("Season", timeutil.Season(s.now()))
	q.Set("SeasonType", seasonTypeRegular)
	q.Set("TeamID", fmt.Sprint(teamA))
	q.Set("vsTeamID", fmt.Sprint(teamB))
	q.Set("PlayerOrTeam", "T")
	q.Set("OrderBy", "GAME_DATE DESC")

	var resp Response
	if err := s.client.GetJSON(ctx, s.endpoint("leaguegamefinder", q), &resp); err != nil {
		return nil, fmt.Errorf("fetch head-to-head %d vs %d: %w", teamA, teamB, err)
	}
	games := []domain.GameSummary{}
	if rs, ok := resp.Find("LeagueGameFinderResults"); ok {
		games = pairGameFinderRows(rs)
	}
	cache.SetJSON(ctx, s.cache, key, games, cache.TTLHeadToHead)
	return games, nil
}

// pairGameFinderRows joins the two per-team rows of each game into one summary.
func pairGameFinderRows(rs ResultSet) []domain.GameSummary {
	var order []string
	groups := make(map[string][][]any)
	for _, row := range rs.Rows {
		id := rs.String(row, "GAME_ID")
		if !validGameID.MatchString(id) {
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	games := make([]domain.GameSummary, 0, len(order))
	for _, id := range order {
		rows := groups[id]
		if len(rows) < 2 {
			continue
		}
		homeRow, awayRow := rows[0], rows[1]
		if strings.Contains(rs.String(awayRow, "MATCHUP"), " vs. ") {
			homeRow, awayRow = awayRow, homeRow
		}
		games = append(games, domain.GameSummary{
			GameID:    id,
			GameDate:  parseStatsDate(rs.String(homeRow, "GAME_DATE")),
			HomeTeam:  finderTeam(rs, homeRow),
			AwayTeam:  finderTeam(rs, awayRow),
			HomeScore: domain.IntPtr(rs.Int(homeRow, "PTS")),
			AwayScore: domain.IntPtr(rs.Int(awayRow, "PTS")),
			Status:    "Final",
		})
	}
	sortByDateDesc(games)
	if len(games) > MaxHeadToHead {
		games = games[:MaxHeadToHead]
	}
	return games
}

func finderTeam(rs ResultSet, row []any) domain.TeamInfo {
	code := rs.String(row, "TEAM_ABBREVIATION")
	if code == "" {
		code, _, _ = ParseMatchup(rs.String(row, "MATCHUP"))
	}
	info := teamFromTricode(code, rs.Int(row, "TEAM_ID"))
	if id := rs.Int(row, "TEAM_ID"); id != 0 {
		info.TeamID = id
	}
	if name := rs.String(row, "TEAM_NAME"); name != "" && info.TeamName == domain.Placeholder {
		info.TeamName = name
	}
	if city := rs.String(row, "TEAM_CITY"); city != "" && info.TeamCity == domain.Placeholder {
		info.TeamCity = city
	}
	return info
}

func sortByDateDesc(games []domain.GameSummary) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].GameDate > games[j].GameDate
	})
}
