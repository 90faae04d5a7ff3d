// Package standings reads league standings and owns the shared rank computation.
package standings

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers/stats"
	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

// Source reads leaguestandingsv3 through the stats client.
type Source struct {
	client  providers.Fetcher
	baseURL string
	cache   cache.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewSource builds a standings Source. A nil store disables caching.
func NewSource(client providers.Fetcher, statsBaseURL string, store cache.Store, logger *slog.Logger) *Source {
	return &Source{
		client:  client,
		baseURL: strings.TrimRight(statsBaseURL, "/"),
		cache:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch returns this season's standings. An empty table is returned but not cached.
func (s *Source) Fetch(ctx context.Context) ([]domain.StandingsEntry, error) {
	if cached, ok := cache.GetJSON[[]domain.StandingsEntry](ctx, s.cache, cache.KeyStandings); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("LeagueID", "00")
	q.Set("Season", timeutil.Season(s.now()))
	q.Set("SeasonType", "Regular Season")

	var resp stats.Response
	if err := s.client.GetJSON(ctx, s.baseURL+"/leaguestandingsv3?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}
	rs, ok := resp.Find("Standings")
	if !ok || len(rs.Rows) == 0 {
		logging.Warn(logging.FromContext(ctx, s.logger), "standings table empty", logging.FieldUpstream, providers.UpstreamStats)
		return []domain.StandingsEntry{}, nil
	}

	entries := Parse(rs)
	cache.SetJSON(ctx, s.cache, cache.KeyStandings, entries, cache.TTLStandings)
	return entries, nil
}

// Parse maps standings rows by header name. When any league rank is missing
// every rank is recomputed from the records.
func Parse(rs stats.ResultSet) []domain.StandingsEntry {
	entries := make([]domain.StandingsEntry, 0, len(rs.Rows))
	missingRank := false
	for _, row := range rs.Rows {
		id := rs.Int(row, "TeamID")
		if id == 0 {
			continue
		}
		leagueRank := rs.Int(row, "LeagueRank")
		confRank := rs.Int(row, "PlayoffRank")
		if confRank == 0 {
			confRank = leagueRank
		}
		if leagueRank == 0 {
			missingRank = true
		}
		conf := domain.ConferenceEast
		if rs.String(row, "Conference") == string(domain.ConferenceWest) {
			conf = domain.ConferenceWest
		}
		entries = append(entries, domain.StandingsEntry{
			TeamID:         id,
			TeamName:       orPlaceholder(rs.String(row, "TeamName")),
			TeamCity:       orPlaceholder(rs.String(row, "TeamCity")),
			Tricode:        tricodeFor(id, rs.String(row, "TeamSlug")),
			Wins:           rs.Int(row, "WINS"),
			Losses:         rs.Int(row, "LOSSES"),
			WinPct:         rs.Float(row, "WinPCT"),
			LeagueRank:     leagueRank,
			ConferenceRank: confRank,
			DivisionRank:   rs.Int(row, "DivisionRank"),
			Conference:     conf,
			Division:       rs.String(row, "Division"),
		})
	}
	if missingRank {
		ApplyComputedRanks(entries)
	}
	return entries
}

func tricodeFor(id int, slug string) string {
	if meta, ok := domain.TeamByID(id); ok {
		return meta.Tricode
	}
	if len(slug) >= 3 {
		return strings.ToUpper(slug[:3])
	}
	return domain.Placeholder
}

func orPlaceholder(s string) string {
	if s == "" {
		return domain.Placeholder
	}
	return s
}

// ApplyComputedRanks orders entries by win percentage (wins break ties) and
// assigns league ranks 1..N and conference ranks 1..N within each conference.
// The slice is reordered in place.
func ApplyComputedRanks(entries []domain.StandingsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WinPct != entries[j].WinPct {
			return entries[i].WinPct > entries[j].WinPct
		}
		return entries[i].Wins > entries[j].Wins
	})
	confRank := make(map[domain.Conference]int, 2)
	for i := range entries {
		entries[i].LeagueRank = i + 1
		confRank[entries[i].Conference]++
		entries[i].ConferenceRank = confRank[entries[i].Conference]
	}
}

// WinPct is wins over games played, rounded to three places.
func WinPct(wins, losses int) float64 {
	played := wins + losses
	if played == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(played)*1000) / 1000
}

// Find returns the entry for teamID.
func Find(entries []domain.StandingsEntry, teamID int) (domain.StandingsEntry, bool) {
	for _, e := range entries {
		if e.TeamID == teamID {
			return e, true
		}
	}
	return domain.StandingsEntry{}, false
}

// Placeholder is the zero-record entry used when a team is missing from every source.
func Placeholder(team domain.TeamInfo) domain.StandingsEntry {
	entry := domain.StandingsEntry{
		TeamID:     team.TeamID,
		TeamName:   team.TeamName,
		TeamCity:   team.TeamCity,
		Tricode:    team.Tricode,
		Conference: domain.ConferenceEast,
	}
	if meta, ok := domain.TeamByID(team.TeamID); ok {
		entry.Division = meta.Division
	}
	return entry
}
