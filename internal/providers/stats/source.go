package stats

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

const (
	seasonTypeRegular = "Regular Season"
	leagueID          = "00"
	// maxGameLogGames bounds what one game log read keeps; callers take a prefix.
	maxGameLogGames = 10
)

// Source reads the stats API through a shared upstream client and the cache.
type Source struct {
	client  providers.Fetcher
	baseURL string
	cache   cache.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewSource builds a stats Source. A nil store disables caching.
func NewSource(client providers.Fetcher, baseURL string, store cache.Store, logger *slog.Logger) *Source {
	return &Source{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// FetchRoster lists a team's current players. Empty rosters are not cached.
func (s *Source) FetchRoster(ctx context.Context, teamID int) ([]domain.Player, error) {
	key := cache.RosterKey(teamID)
	if cached, ok := cache.GetJSON[[]domain.Player](ctx, s.cache, key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("LeagueID", leagueID)
	q.Set("Season", timeutil.Season(s.now()))
	q.Set("TeamID", fmt.Sprint(teamID))

	var resp Response
	if err := s.client.GetJSON(ctx, s.endpoint("commonteamroster", q), &resp); err != nil {
		return nil, fmt.Errorf("fetch roster %d: %w", teamID, err)
	}
	rs, ok := resp.Find("CommonTeamRoster")
	if !ok {
		return []domain.Player{}, nil
	}
	players := parseRoster(rs)
	if len(players) > 0 {
		cache.SetJSON(ctx, s.cache, key, players, cache.TTLRoster)
	}
	return players, nil
}

func parseRoster(rs ResultSet) []domain.Player {
	players := make([]domain.Player, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id := rs.Int(row, "PLAYER_ID")
		name := rs.String(row, "PLAYER")
		if id == 0 || name == "" {
			continue
		}
		first, last := domain.SplitName(name)
		players = append(players, domain.Player{
			PersonID:     id,
			FirstName:    first,
			LastName:     last,
			Position:     rs.String(row, "POSITION"),
			JerseyNumber: rs.String(row, "NUM"),
		})
	}
	return players
}

// FetchGameLog returns the team's most recent regular-season games, newest first.
// Only the logging team's score is known; the opponent score stays nil.
func (s *Source) FetchGameLog(ctx context.Context, teamID int) ([]domain.GameSummary, error) {
	key := cache.GameLogKey(teamID)
	if cached, ok := cache.GetJSON[[]domain.GameSummary](ctx, s.cache, key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("DateFrom", "")
	q.Set("DateTo", "")
	q.Set("LeagueID", leagueID)
	q.Set("Season", timeutil.Season(s.now()))
	q.Set("SeasonType", seasonTypeRegular)
	q.Set("TeamID", fmt.Sprint(teamID))

	var resp Response
	if err := s.client.GetJSON(ctx, s.endpoint("teamgamelog", q), &resp); err != nil {
		return nil, fmt.Errorf("fetch game log %d: %w", teamID, err)
	}
	rs, ok := resp.Find("TeamGameLog")
	if !ok {
		return []domain.GameSummary{}, nil
	}

	games := make([]domain.GameSummary, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		g, ok := gameLogRow(rs, row, teamID)
		if !ok {
			continue
		}
		games = append(games, g)
		if len(games) == maxGameLogGames {
			break
		}
	}
	sortByDateDesc(games)
	cache.SetJSON(ctx, s.cache, key, games, cache.TTLOpponentGames)
	return games, nil
}

func gameLogRow(rs ResultSet, row []any, teamID int) (domain.GameSummary, bool) {
	gameID := rs.String(row, "Game_ID", "GAME_ID")
	if gameID == "" {
		return domain.GameSummary{}, false
	}
	self, opp, home := ParseMatchup(rs.String(row, "MATCHUP"))
	if code := rs.String(row, "TEAM_ABBREVIATION"); code != "" {
		self = code
	}
	us := teamFromTricode(self, teamID)
	them := teamFromTricode(opp, 0)

	g := domain.GameSummary{
		GameID:   gameID,
		GameDate: parseStatsDate(rs.String(row, "GAME_DATE")),
		Status:   "Final",
	}
	pts := domain.IntPtr(rs.Int(row, "PTS"))
	if home {
		g.HomeTeam, g.AwayTeam = us, them
		g.HomeScore = pts
	} else {
		g.HomeTeam, g.AwayTeam = them, us
		g.AwayScore = pts
	}
	if wl := rs.String(row, "WL"); wl == "W" || wl == "L" {
		g.Result = domain.Result(wl)
	}
	return g, true
}

// ParseMatchup splits "ABC vs. XYZ" (ABC at home) or "ABC @ XYZ" (ABC away).
func ParseMatchup(matchup string) (self, opponent string, home bool) {
	m := strings.TrimSpace(matchup)
	if a, b, ok := strings.Cut(m, " vs. "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(b), true
	}
	if a, b, ok := strings.Cut(m, " @ "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(b), false
	}
	return m, "", false
}

func teamFromTricode(code string, fallbackID int) domain.TeamInfo {
	tri := strings.ToUpper(strings.TrimSpace(code))
	if meta, ok := domain.TeamByTricode(tri); ok {
		return meta.Info()
	}
	if meta, ok := domain.TeamByID(fallbackID); ok {
		return meta.Info()
	}
	if tri == "" {
		tri = domain.Placeholder
	}
	return domain.TeamInfo{
		TeamID:   fallbackID,
		TeamName: domain.Placeholder,
		TeamCity: domain.Placeholder,
		Tricode:  tri,
	}
}

var statsDateLayouts = []string{
	timeutil.DateLayout,
	"2006-01-02T15:04:05",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// parseStatsDate normalizes "OCT 22, 2025" and ISO forms to YYYY-MM-DD.
// Unparseable values are returned as-is.
func parseStatsDate(raw string) string {
	for _, layout := range statsDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(timeutil.DateLayout)
		}
	}
	return raw
}

func (s *Source) endpoint(name string, q url.Values) string {
	return s.baseURL + "/" + name + "?" + q.Encode()
}

func (s *Source) warn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, s.logger), msg, append(args, logging.FieldUpstream, providers.UpstreamStats)...)
}
