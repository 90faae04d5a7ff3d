package injuries

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
)

var cbsTeamLink = regexp.MustCompile(`/nba/teams/([A-Za-z]{2,4})/`)

// cbsAliases are the CBS abbreviations that differ from league tricodes.
var cbsAliases = map[string]string{
	"NO":   "NOP",
	"GS":   "GSW",
	"NY":   "NYK",
	"PHO":  "PHX",
	"SA":   "SAS",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

func cbsTeamID(abbr string) (int, bool) {
	abbr = strings.ToUpper(abbr)
	if alias, ok := cbsAliases[abbr]; ok {
		abbr = alias
	}
	meta, ok := domain.TeamByTricode(abbr)
	return meta.ID, ok
}

// ParseCBS reads the CBS injuries table page. Each team block is the nearest
// ancestor of a team link that holds a table and links to no other team.
func ParseCBS(html []byte) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("injuries: parse cbs page: %w", err)
	}
	report := make(Report)
	doc.Find(`a[href*="/nba/teams/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := cbsTeamLink.FindStringSubmatch(href)
		if m == nil {
			return
		}
		teamID, ok := cbsTeamID(m[1])
		if !ok {
			return
		}
		if _, done := report[teamID]; done {
			return
		}
		table := teamTable(a, teamID)
		if table == nil {
			return
		}
		if entries := cbsRows(table); len(entries) > 0 {
			report[teamID] = entries
		}
	})
	return report, nil
}

func teamTable(link *goquery.Selection, teamID int) *goquery.Selection {
	for block := link.Parent(); block.Length() > 0; block = block.Parent() {
		table := block.Find("table").First()
		if table.Length() == 0 {
			continue
		}
		if !onlyTeam(block, teamID) {
			return nil
		}
		return table
	}
	return nil
}

func onlyTeam(block *goquery.Selection, teamID int) bool {
	only := true
	block.Find(`a[href*="/nba/teams/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := cbsTeamLink.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		if id, ok := cbsTeamID(m[1]); ok && id != teamID {
			only = false
			return false
		}
		return true
	})
	return only
}

// cbsRows reads Player, Position, Updated, Injury, Status rows.
func cbsRows(table *goquery.Selection) []domain.InjuryEntry {
	var entries []domain.InjuryEntry
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 5 {
			return
		}
		first := cells.Eq(0)
		name := cellText(first.Find("a").Last())
		if name == "" {
			name = cellText(first)
		}
		if name == "" || name == "Player" {
			return
		}
		injury := cellText(cells.Eq(3))
		status := cellText(cells.Eq(4))
		if injury == "" {
			injury = status
		}
		entries = append(entries, domain.InjuryEntry{
			PlayerName:   name,
			Position:     cellText(cells.Eq(1)),
			Status:       MapStatus(status),
			Reason:       injury,
			DateReported: cellText(cells.Eq(2)),
		})
	})
	return entries
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
