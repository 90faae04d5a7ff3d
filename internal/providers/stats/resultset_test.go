package stats

import (
	"encoding/json"
	"testing"
)

func TestResultSetIndexIgnoresCaseAndUnderscores(t *testing.T) {
	rs := ResultSet{Headers: []string{"TEAM_ID", "personId", "WinPCT"}}
	cases := map[string]int{
		"team_id":   0,
		"teamId":    0,
		"PERSON_ID": 1,
		"winpct":    2,
		"missing":   -1,
	}
	for name, want := range cases {
		if got := rs.Index(name); got != want {
			t.Fatalf("Index(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestResultSetTypedAccessors(t *testing.T) {
	var rs ResultSet
	raw := `{"headers":["ID","NAME","PCT","NUM"],"rowSet":[[1610612739," Cavaliers ",0.651,"23"]]}`
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	row := rs.Rows[0]
	if got := rs.Int(row, "id"); got != 1610612739 {
		t.Fatalf("unexpected id %d", got)
	}
	if got := rs.String(row, "name"); got != "Cavaliers" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := rs.Float(row, "pct"); got != 0.651 {
		t.Fatalf("unexpected pct %v", got)
	}
	if got := rs.Int(row, "NUM"); got != 23 {
		t.Fatalf("expected numeric string parsed, got %d", got)
	}
	if got := rs.String(row, "ID"); got != "1610612739" {
		t.Fatalf("expected number formatted without exponent, got %q", got)
	}
	if got := rs.String(row, "MISSING", "NAME"); got != "Cavaliers" {
		t.Fatalf("expected fallback column, got %q", got)
	}
	if got := rs.Int([]any{}, "ID"); got != 0 {
		t.Fatalf("expected 0 for short row, got %d", got)
	}
}

func TestResponseFindOrder(t *testing.T) {
	single := ResultSet{Name: "Single", Headers: []string{"A"}}
	named := ResultSet{Name: "Standings", Headers: []string{"B"}}
	withRows := ResultSet{Name: "Other", Headers: []string{"C"}, Rows: [][]any{{1}}}
	empty := ResultSet{Name: "Empty", Headers: []string{"D"}}

	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"singular wins", Response{ResultSet: &single, ResultSets: []ResultSet{named}}, "Single"},
		{"named set", Response{ResultSets: []ResultSet{withRows, named}}, "Standings"},
		{"first with rows", Response{ResultSets: []ResultSet{empty, withRows}}, "Other"},
		{"first set", Response{ResultSets: []ResultSet{empty}}, "Empty"},
	}
	for _, tt := range tests {
		got, ok := tt.resp.Find("standings")
		if !ok || got.Name != tt.want {
			t.Fatalf("%s: got %q ok=%v, want %q", tt.name, got.Name, ok, tt.want)
		}
	}
	if _, ok := (Response{}).Find("x"); ok {
		t.Fatalf("expected no set in empty response")
	}
}
