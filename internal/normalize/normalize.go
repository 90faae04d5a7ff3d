// Package normalize converts loosely typed upstream team and score fields into canonical shapes.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
)

// RawTeam is a team object as it arrives from any upstream. Every field is optional.
type RawTeam struct {
	TeamID   FlexInt `json:"teamId"`
	TeamName string  `json:"teamName"`
	TeamCity string  `json:"teamCity"`
	Tricode  string  `json:"teamTricode"`
	Slug     string  `json:"teamSlug"`
	Score    FlexInt `json:"score"`
	Wins     FlexInt `json:"wins"`
	Losses   FlexInt `json:"losses"`
}

// NormalizeTeam produces a TeamInfo whose display fields are never empty and whose tricode is never numeric.
func NormalizeTeam(raw RawTeam) domain.TeamInfo {
	name := strings.TrimSpace(raw.TeamName)
	city := strings.TrimSpace(raw.TeamCity)

	tricode := strings.TrimSpace(raw.Tricode)
	if tricode == "" {
		tricode = strings.TrimSpace(raw.Slug)
	}
	tricode = truncate(strings.ToUpper(tricode), 3)
	if tricode == "" || allDigits(tricode) {
		tricode = deriveTricode(city, name)
	}

	slug := strings.ToLower(strings.TrimSpace(raw.Slug))
	if slug == "" && tricode != domain.Placeholder {
		slug = strings.ToLower(tricode)
	}

	return domain.TeamInfo{
		TeamID:   raw.TeamID.Value,
		TeamName: orPlaceholder(name),
		TeamCity: orPlaceholder(city),
		Tricode:  tricode,
		Slug:     slug,
	}
}

func deriveTricode(city, name string) string {
	for _, src := range []string{city, name} {
		var letters []rune
		for _, r := range src {
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
				if len(letters) == 3 {
					break
				}
			}
		}
		if len(letters) > 0 {
			return string(letters)
		}
	}
	return domain.Placeholder
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func orPlaceholder(s string) string {
	if s == "" {
		return domain.Placeholder
	}
	return s
}

// ToScore accepts a number or a numeric string and rejects everything else.
func ToScore(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		return parseNumeric(string(x))
	case string:
		return parseNumeric(x)
	case json.RawMessage:
		return scoreFromJSON(x)
	case []byte:
		return scoreFromJSON(x)
	case FlexInt:
		return x.Value, x.Valid
	case *int:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

func scoreFromJSON(raw []byte) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return parseNumeric(s)
	}
	return parseNumeric(string(raw))
}

func parseNumeric(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return ToScore(f)
}

// ScorePtr returns a pointer to the score, or nil when the value is not a score.
func ScorePtr(v any) *int {
	n, ok := ToScore(v)
	if !ok {
		return nil
	}
	return &n
}
