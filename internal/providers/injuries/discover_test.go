package injuries

import (
	"testing"
	"time"
)

const landingPage = `<html><body>
<a href="https://ak-static.cms.nba.com/referee/injury/Injury-Report_2025-11-08_01_30PM.pdf">1:30 PM</a>
<a href="/referee/injury/Injury-Report_2025-11-08_05_30PM.pdf">5:30 PM</a>
<a href="/referee/injury/Injury-Report_2025-11-08_11AM.pdf">11 AM</a>
<a href="/referee/injury/Injury-Report_2025-11-07_08_30PM.pdf">yesterday</a>
<a href="/referee/injury/Injury-Report_2025-11-08_05_30PM.pdf">dup</a>
<a href="/other.pdf">other</a>
</body></html>`

func TestDiscoverLinksAndLatest(t *testing.T) {
	links, err := discoverLinks([]byte(landingPage), "https://official.nba.com/nba-injury-report-2025-26-season/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 4 {
		t.Fatalf("expected 4 unique report links, got %d: %+v", len(links), links)
	}
	best, ok := latestFor(links, "2025-11-08")
	if !ok {
		t.Fatalf("expected a report for the date")
	}
	if best.URL != "https://official.nba.com/referee/injury/Injury-Report_2025-11-08_05_30PM.pdf" {
		t.Fatalf("expected latest resolved against the page, got %s", best.URL)
	}
	if _, ok := latestFor(links, "2025-11-09"); ok {
		t.Fatalf("expected no report for another date")
	}
}

func TestParseReportLinkTimes(t *testing.T) {
	cases := map[string]int{
		"Injury-Report_2025-11-08_12AM.pdf":    0,
		"Injury-Report_2025-11-08_12_15PM.pdf": 12*60 + 15,
		"Injury-Report_2025-11-08_07_45PM.pdf": 19*60 + 45,
		"Injury-Report_2025-11-08_11AM.pdf":    11 * 60,
	}
	for href, want := range cases {
		link, ok := parseReportLink(href)
		if !ok || link.Minutes != want {
			t.Fatalf("parseReportLink(%q) = %d ok=%v, want %d", href, link.Minutes, ok, want)
		}
	}
	if _, ok := parseReportLink("Injury-Report_2025-11-08_13PM.pdf"); ok {
		t.Fatalf("expected invalid hour rejected")
	}
}

func TestGuessURLsRoundsDownToSlots(t *testing.T) {
	et, _ := time.LoadLocation("America/New_York")
	now := time.Date(2025, 11, 8, 17, 44, 10, 0, et)
	got := guessURLs("https://docs.test/injury", now, 3)
	want := []string{
		"https://docs.test/injury/Injury-Report_2025-11-08_05_30PM.pdf",
		"https://docs.test/injury/Injury-Report_2025-11-08_05_15PM.pdf",
		"https://docs.test/injury/Injury-Report_2025-11-08_05_00PM.pdf",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d guesses, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("guess %d = %s, want %s", i, got[i], want[i])
		}
	}

	early := guessURLs("https://docs.test/injury/", time.Date(2025, 11, 8, 0, 20, 0, 0, et), 4)
	if len(early) != 2 || early[1] != "https://docs.test/injury/Injury-Report_2025-11-08_12_00AM.pdf" {
		t.Fatalf("expected guesses to stop at midnight, got %v", early)
	}
}
