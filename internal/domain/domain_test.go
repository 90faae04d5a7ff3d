package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestTeamsTableCoversLeague(t *testing.T) {
	if len(Teams) != 30 {
		t.Fatalf("expected 30 teams, got %d", len(Teams))
	}
	west := 0
	for _, team := range Teams {
		if team.Conference == ConferenceWest {
			west++
		}
		if got, ok := TeamByTricode(team.Tricode); !ok || got.ID != team.ID {
			t.Fatalf("tricode lookup failed for %s", team.Tricode)
		}
	}
	if west != 15 {
		t.Fatalf("expected 15 western teams, got %d", west)
	}
}

func TestTeamMetaInfo(t *testing.T) {
	meta, ok := TeamByID(1610612739)
	if !ok {
		t.Fatalf("expected cavaliers in table")
	}
	info := meta.Info()
	if info.Tricode != "CLE" || info.Slug != "cle" || info.TeamCity != "Cleveland" {
		t.Fatalf("unexpected info %+v", info)
	}
	if meta.FullName() != "Cleveland Cavaliers" {
		t.Fatalf("unexpected full name %q", meta.FullName())
	}
}

func TestConferenceOfUnknownDefaultsEast(t *testing.T) {
	if got := ConferenceOf(42); got != ConferenceEast {
		t.Fatalf("expected East, got %s", got)
	}
	if got := ConferenceOf(1610612747); got != ConferenceWest {
		t.Fatalf("expected West for Lakers, got %s", got)
	}
}

func TestGameSummaryForTeam(t *testing.T) {
	home := TeamInfo{TeamID: 1}
	away := TeamInfo{TeamID: 2}
	tests := []struct {
		name  string
		home  *int
		away  *int
		focus int
		want  Result
	}{
		{"home win for home", IntPtr(110), IntPtr(100), 1, ResultWin},
		{"home win for away", IntPtr(110), IntPtr(100), 2, ResultLoss},
		{"away win for away", IntPtr(90), IntPtr(100), 2, ResultWin},
		{"no scores", nil, nil, 1, ""},
		{"game log for focus team", IntPtr(110), nil, 1, ResultWin},
		{"game log for opponent", nil, IntPtr(100), 1, ResultLoss},
		{"tie", IntPtr(100), IntPtr(100), 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GameSummary{HomeTeam: home, AwayTeam: away, HomeScore: tt.home, AwayScore: tt.away, Result: ResultWin}
			if got := g.ForTeam(tt.focus).Result; got != tt.want {
				t.Fatalf("expected %q got %q", tt.want, got)
			}
		})
	}
}

func TestSummariesForTeamDoesNotMutateInput(t *testing.T) {
	in := []GameSummary{{HomeTeam: TeamInfo{TeamID: 1}, AwayTeam: TeamInfo{TeamID: 2}, HomeScore: IntPtr(1), AwayScore: IntPtr(2)}}
	out := SummariesForTeam(in, 1)
	if in[0].Result != "" {
		t.Fatalf("input mutated")
	}
	if out[0].Result != ResultLoss {
		t.Fatalf("expected loss, got %q", out[0].Result)
	}
}

func TestSummariesForTeamKeepsGameLogResult(t *testing.T) {
	cavs := TeamInfo{TeamID: 1610612739, Tricode: "CLE"}
	celtics := TeamInfo{TeamID: 1610612738, Tricode: "BOS"}
	in := []GameSummary{
		{GameID: "0022400101", HomeTeam: cavs, AwayTeam: celtics, HomeScore: IntPtr(110), Result: ResultWin},
		{GameID: "0022400090", HomeTeam: celtics, AwayTeam: cavs, AwayScore: IntPtr(98), Result: ResultLoss},
	}
	out := SummariesForTeam(in, 1610612739)
	if out[0].Result != ResultWin || out[1].Result != ResultLoss {
		t.Fatalf("expected game-log W/L kept, got %q %q", out[0].Result, out[1].Result)
	}
}

func TestVenueLocation(t *testing.T) {
	if got := (Venue{Arena: "Rocket Arena", City: "Cleveland", State: "OH"}).Location(); got != "Rocket Arena, Cleveland, OH" {
		t.Fatalf("unexpected location %q", got)
	}
	if got := (Venue{Arena: "Scotiabank Arena", City: "Toronto"}).Location(); got != "Scotiabank Arena, Toronto" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestInjuryStatusKeepsOutOfLineup(t *testing.T) {
	want := map[InjuryStatus]bool{
		InjuryOut:          true,
		InjuryDoubtful:     true,
		InjuryQuestionable: true,
		InjuryProbable:     false,
		InjuryAvailable:    false,
	}
	for _, s := range InjuryStatuses {
		if got := s.KeepsOutOfLineup(); got != want[s] {
			t.Fatalf("%s: expected %v got %v", s, want[s], got)
		}
	}
}

func TestPlayerNames(t *testing.T) {
	p := Player{FirstName: " Nikola ", LastName: "Jokić"}
	if p.FullName() != "Nikola Jokić" {
		t.Fatalf("unexpected full name %q", p.FullName())
	}
	first, last := SplitName("Karl-Anthony  Towns Jr.")
	if first != "Karl-Anthony" || last != "Towns Jr." {
		t.Fatalf("unexpected split %q %q", first, last)
	}
	if first, last := SplitName("Nene"); first != "Nene" || last != "" {
		t.Fatalf("unexpected single-name split %q %q", first, last)
	}
}

func TestNextGameResponseRoundTrip(t *testing.T) {
	resp := NextGameResponse{
		TeamID: 1610612739,
		Game: NextGameInfo{
			GameID:   "0022500123",
			DateTime: time.Date(2025, 11, 1, 23, 30, 0, 0, time.UTC),
			Team:     TeamInfo{TeamID: 1610612739, Tricode: "CLE"},
			Opponent: TeamInfo{TeamID: 1610612738, Tricode: "BOS"},
			Location: "Rocket Arena, Cleveland, OH",
			IsHome:   true,
		},
		Injuries:        InjuryPair{Team: []InjuryEntry{{PlayerName: "A", Status: InjuryOut}}, Opponent: []InjuryEntry{}},
		HeadToHead:      []GameSummary{{GameID: "1", HomeScore: IntPtr(101)}},
		LastUpdated:     time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC),
		TeamRecentGames: []GameSummary{},
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got NextGameResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(resp, got) {
		t.Fatalf("round trip mismatch\nwant %+v\ngot  %+v", resp, got)
	}
}

func TestNextGameResponseNullBoxScore(t *testing.T) {
	raw, err := json.Marshal(NextGameResponse{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, ok := generic["lastHeadToHeadBoxScore"]
	if !ok || v != nil {
		t.Fatalf("expected explicit null box score, got %v (present=%v)", v, ok)
	}
}
