// Package stats reads the tabular stats.nba.com endpoints: rosters, game logs,
// head-to-head finders and box scores.
package stats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ResultSet is the row/column table every stats endpoint returns.
// Column order is never assumed; every read goes through a header lookup.
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rowSet"`
}

// Response is the envelope: a single resultSet or a list of resultSets.
type Response struct {
	ResultSet  *ResultSet  `json:"resultSet"`
	ResultSets []ResultSet `json:"resultSets"`
}

// Find picks the singular resultSet, else the set named name, else the first set with rows.
func (r Response) Find(name string) (ResultSet, bool) {
	if r.ResultSet != nil && len(r.ResultSet.Headers) > 0 {
		return *r.ResultSet, true
	}
	for _, rs := range r.ResultSets {
		if name != "" && strings.EqualFold(rs.Name, name) {
			return rs, true
		}
	}
	for _, rs := range r.ResultSets {
		if len(rs.Rows) > 0 {
			return rs, true
		}
	}
	if len(r.ResultSets) > 0 {
		return r.ResultSets[0], true
	}
	return ResultSet{}, false
}

// Index returns the column index for name, ignoring case and underscores so
// "TEAM_ID" also finds a "teamId" header. -1 when absent.
func (rs ResultSet) Index(name string) int {
	want := foldKey(name)
	for i, h := range rs.Headers {
		if foldKey(h) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the column exists.
func (rs ResultSet) Has(name string) bool {
	return rs.Index(name) >= 0
}

// Value returns the raw cell for the first of names present in the row.
func (rs ResultSet) Value(row []any, names ...string) (any, bool) {
	for _, name := range names {
		i := rs.Index(name)
		if i >= 0 && i < len(row) && row[i] != nil {
			return row[i], true
		}
	}
	return nil, false
}

// String reads a cell as trimmed text.
func (rs ResultSet) String(row []any, names ...string) string {
	v, ok := rs.Value(row, names...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellString(v))
}

// Float reads a numeric cell; anything unparseable is 0.
func (rs ResultSet) Float(row []any, names ...string) float64 {
	v, ok := rs.Value(row, names...)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int reads a numeric cell truncated to an int.
func (rs ResultSet) Int(row []any, names ...string) int {
	f := rs.Float(row, names...)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func foldKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}
