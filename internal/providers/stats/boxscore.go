package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/normalize"
	"github.com/preston-bernstein/nba-next-game-service/internal/providers"
)

// Canonical box score columns. MIN is decimal minutes.
const (
	ColTeamID        = "TEAM_ID"
	ColPlayerID      = "PLAYER_ID"
	ColPlayerName    = "PLAYER_NAME"
	ColPosition      = "POSITION"
	ColStartPosition = "START_POSITION"
	ColMinutes       = "MIN"
	ColPoints        = "PTS"
	ColRebounds      = "REB"
	ColAssists       = "AST"
	ColJersey        = "JERSEY_NUM"
)

// CanonicalHeaders is the column order every adapter emits.
var CanonicalHeaders = []string{
	ColTeamID, ColPlayerID, ColPlayerName, ColPosition, ColStartPosition,
	ColMinutes, ColPoints, ColRebounds, ColAssists, ColJersey,
}

// ErrUnknownBoxScore is returned when a payload matches no known box score shape.
var ErrUnknownBoxScore = errors.New("stats: unrecognized box score payload")

// BoxScore is one upstream box score shape reduced to canonical player rows.
type BoxScore interface {
	Version() string
	CanonicalRows() ResultSet
}

// DetectBoxScore picks the adapter by structural fingerprint: a nested
// boxScoreTraditional object is v3, tabular resultSets are v2.
func DetectBoxScore(raw []byte) (BoxScore, error) {
	var probe struct {
		BoxScoreTraditional json.RawMessage `json:"boxScoreTraditional"`
		ResultSets          json.RawMessage `json:"resultSets"`
		ResultSet           json.RawMessage `json:"resultSet"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &providers.ParseError{Provider: providers.UpstreamStats, Err: err}
	}
	switch {
	case present(probe.BoxScoreTraditional):
		var v3 SchemaV3
		if err := json.Unmarshal(probe.BoxScoreTraditional, &v3); err != nil {
			return nil, &providers.ParseError{Provider: providers.UpstreamStats, Err: err}
		}
		return v3, nil
	case present(probe.ResultSets), present(probe.ResultSet):
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &providers.ParseError{Provider: providers.UpstreamStats, Err: err}
		}
		return SchemaV2{Response: resp}, nil
	default:
		return nil, ErrUnknownBoxScore
	}
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// SchemaV2 is the legacy tabular box score. Starters carry START_POSITION.
type SchemaV2 struct {
	Response Response
}

func (SchemaV2) Version() string { return "v2" }

// CanonicalRows reads PlayerStats, or the split home/away player sets some
// mirrors return instead.
func (s SchemaV2) CanonicalRows() ResultSet {
	out := ResultSet{Name: "PlayerStats", Headers: CanonicalHeaders}
	var sets []ResultSet
	for _, rs := range s.Response.ResultSets {
		name := strings.ToLower(rs.Name)
		if name == "playerstats" {
			sets = []ResultSet{rs}
			break
		}
		if name == "home_team_player_traditional" || name == "away_team_player_traditional" {
			sets = append(sets, rs)
		}
	}
	if len(sets) == 0 && s.Response.ResultSet != nil {
		sets = []ResultSet{*s.Response.ResultSet}
	}
	for _, rs := range sets {
		for _, row := range rs.Rows {
			id := rs.Int(row, "PLAYER_ID", "personId")
			if id == 0 {
				continue
			}
			name := rs.String(row, "PLAYER_NAME", "name")
			if name == "" {
				name = strings.TrimSpace(rs.String(row, "firstName") + " " + rs.String(row, "familyName"))
			}
			start := rs.String(row, "START_POSITION")
			pos := rs.String(row, "POSITION", "position")
			if pos == "" {
				pos = start
			}
			if !rs.Has("START_POSITION") && rs.Has("position") {
				start = pos
			}
			out.Rows = append(out.Rows, []any{
				rs.Int(row, "TEAM_ID"),
				id,
				name,
				pos,
				start,
				ParseMinutes(rs.String(row, "MIN", "minutes")),
				rs.Int(row, "PTS", "points"),
				rs.Int(row, "REB", "reboundsTotal"),
				rs.Int(row, "AST", "assists"),
				rs.String(row, "JERSEY_NUM", "NUM", "jerseyNum"),
			})
		}
	}
	return out
}

// SchemaV3 is the nested boxscoretraditionalv3 shape.
type SchemaV3 struct {
	GameID     string            `json:"gameId"`
	HomeTeamID normalize.FlexInt `json:"homeTeamId"`
	AwayTeamID normalize.FlexInt `json:"awayTeamId"`
	HomeTeam   v3Team            `json:"homeTeam"`
	AwayTeam   v3Team            `json:"awayTeam"`
}

type v3Team struct {
	TeamID  normalize.FlexInt `json:"teamId"`
	Players []v3Player        `json:"players"`
}

type v3Player struct {
	PersonID   normalize.FlexInt `json:"personId"`
	FirstName  string            `json:"firstName"`
	FamilyName string            `json:"familyName"`
	Name       string            `json:"name"`
	Position   string            `json:"position"`
	JerseyNum  string            `json:"jerseyNum"`
	Statistics *v3Stats          `json:"statistics"`

	// Some mirrors flatten the statistics onto the player.
	v3Stats
}

type v3Stats struct {
	Minutes       string            `json:"minutes"`
	Points        normalize.FlexInt `json:"points"`
	ReboundsTotal normalize.FlexInt `json:"reboundsTotal"`
	Assists       normalize.FlexInt `json:"assists"`
}

func (SchemaV3) Version() string { return "v3" }

// CanonicalRows flattens both teams. v3 only fills position for starters,
// so position doubles as the start flag.
func (s SchemaV3) CanonicalRows() ResultSet {
	out := ResultSet{Name: "PlayerStats", Headers: CanonicalHeaders}
	sides := []struct {
		id   int
		team v3Team
	}{
		{firstValid(s.HomeTeamID, s.HomeTeam.TeamID), s.HomeTeam},
		{firstValid(s.AwayTeamID, s.AwayTeam.TeamID), s.AwayTeam},
	}
	for _, side := range sides {
		for _, p := range side.team.Players {
			if !p.PersonID.Valid {
				continue
			}
			stats := p.v3Stats
			if p.Statistics != nil {
				stats = *p.Statistics
			}
			name := strings.TrimSpace(p.FirstName + " " + p.FamilyName)
			if name == "" {
				name = strings.TrimSpace(p.Name)
			}
			pos := strings.TrimSpace(p.Position)
			out.Rows = append(out.Rows, []any{
				side.id,
				p.PersonID.Value,
				name,
				pos,
				pos,
				ParseMinutes(stats.Minutes),
				stats.Points.Value,
				stats.ReboundsTotal.Value,
				stats.Assists.Value,
				strings.TrimSpace(p.JerseyNum),
			})
		}
	}
	return out
}

func firstValid(vals ...normalize.FlexInt) int {
	for _, v := range vals {
		if v.Valid && v.Value != 0 {
			return v.Value
		}
	}
	return 0
}

var isoMinutes = regexp.MustCompile(`^PT(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseMinutes accepts "MM:SS", ISO "PT34M12.00S" or a plain number.
func ParseMinutes(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if m := isoMinutes.FindStringSubmatch(raw); m != nil {
		mins, _ := strconv.ParseFloat(m[1], 64)
		secs, _ := strconv.ParseFloat(m[2], 64)
		return mins + secs/60
	}
	if mm, ss, ok := strings.Cut(raw, ":"); ok {
		mins, err := strconv.ParseFloat(mm, 64)
		if err != nil {
			return 0
		}
		secs, _ := strconv.ParseFloat(ss, 64)
		return mins + secs/60
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// FetchBoxScore returns canonical player rows for a game. Non-empty results are cached briefly.
func (s *Source) FetchBoxScore(ctx context.Context, gameID string) (ResultSet, error) {
	key := cache.BoxScoreKey(gameID)
	if cached, ok := cache.GetJSON[ResultSet](ctx, s.cache, key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("StartPeriod", "0")
	q.Set("EndPeriod", "14")
	q.Set("StartRange", "0")
	q.Set("EndRange", "2147483647")
	q.Set("RangeType", "0")

	raw, err := s.client.Get(ctx, s.endpoint("boxscoretraditionalv3", q))
	if err != nil {
		return ResultSet{}, fmt.Errorf("fetch box score %s: %w", gameID, err)
	}
	box, err := DetectBoxScore(raw)
	if err != nil {
		s.warn(ctx, "box score payload not recognized", logging.FieldGameID, gameID)
		return ResultSet{}, fmt.Errorf("decode box score %s: %w", gameID, err)
	}
	rows := box.CanonicalRows()
	if len(rows.Rows) > 0 {
		cache.SetJSON(ctx, s.cache, key, rows, cache.TTLBoxScore)
	}
	return rows, nil
}

// PlayerRow is one canonical row read back into typed fields.
type PlayerRow struct {
	TeamID        int
	PersonID      int
	Name          string
	Position      string
	StartPosition string
	Minutes       float64
	Points        int
	Rebounds      int
	Assists       int
	JerseyNumber  string
}

// PlayerRows reads canonical rows, optionally filtered to one team (0 keeps all).
func PlayerRows(rs ResultSet, teamID int) []PlayerRow {
	out := make([]PlayerRow, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		r := PlayerRow{
			TeamID:        rs.Int(row, ColTeamID),
			PersonID:      rs.Int(row, ColPlayerID),
			Name:          rs.String(row, ColPlayerName),
			Position:      rs.String(row, ColPosition),
			StartPosition: rs.String(row, ColStartPosition),
			Minutes:       rs.Float(row, ColMinutes),
			Points:        rs.Int(row, ColPoints),
			Rebounds:      rs.Int(row, ColRebounds),
			Assists:       rs.Int(row, ColAssists),
			JerseyNumber:  rs.String(row, ColJersey, "NUM"),
		}
		if teamID != 0 && r.TeamID != teamID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Player converts a row into the roster shape.
func (r PlayerRow) Player() domain.Player {
	first, last := domain.SplitName(r.Name)
	pos := r.StartPosition
	if pos == "" {
		pos = r.Position
	}
	return domain.Player{
		PersonID:     r.PersonID,
		FirstName:    first,
		LastName:     last,
		Position:     pos,
		JerseyNumber: r.JerseyNumber,
	}
}
