package injuries

import (
	"regexp"
	"strings"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
	"github.com/preston-bernstein/nba-next-game-service/internal/names"
)

// Report is a parsed league-wide injury report keyed by team id.
type Report map[int][]domain.InjuryEntry

// Teams counts the teams with at least one entry.
func (r Report) Teams() int {
	n := 0
	for _, entries := range r {
		if len(entries) > 0 {
			n++
		}
	}
	return n
}

var (
	entryLine = regexp.MustCompile(`^(.+?)\s+(Out|Doubtful|Questionable|Probable|Available)\b\s*(.*)$`)
	skipLine  = regexp.MustCompile(`(?i)^(injury report:.*|page \d+ of \d+|game date\b.*|game time\b.*|matchup\b.*|team\s+player name.*|player name\b.*|current status\b.*|reason\b.*|not yet submitted)$`)
	gameDate  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s+`)
	gameTime  = regexp.MustCompile(`^\d{1,2}:\d{2}\s*\(ET\)\s*`)
	matchup   = regexp.MustCompile(`^[A-Z]{2,3}@[A-Z]{2,3}\s*`)
)

// teamNames maps normalized full names (and the common alternates used in
// league documents) to team ids.
var teamNames = func() map[string]int {
	m := make(map[string]int, len(domain.Teams)+2)
	for _, t := range domain.Teams {
		m[names.NormalizeForMatch(t.FullName())] = t.ID
	}
	m["los angeles clippers"] = 1610612746
	m["philadelphia sixers"] = 1610612755
	return m
}()

// ParseReport reads extracted report text line by line. A team-name line
// moves the team cursor. "<name> <Status> [reason]" emits an entry under the
// current team. Any other line continues the previous entry's reason, or is
// held until the next entry when none exists yet.
func ParseReport(text string) Report {
	report := make(Report)
	team := 0
	var last *domain.InjuryEntry
	var pending []string

	for _, raw := range strings.Split(text, "\n") {
		line := stripRowPrefix(strings.Join(strings.Fields(raw), " "))
		if line == "" || skipLine.MatchString(line) {
			continue
		}
		if id, rest, ok := leadingTeam(line); ok {
			team, last, pending = id, nil, nil
			if rest == "" {
				continue
			}
			line = rest
		}
		if team == 0 {
			continue
		}
		if m := entryLine.FindStringSubmatch(line); m != nil {
			reason := strings.TrimSpace(m[3])
			if reason == "" && len(pending) > 0 {
				reason = strings.Join(pending, " ")
			}
			pending = nil
			report[team] = append(report[team], domain.InjuryEntry{
				PlayerName: strings.TrimSpace(m[1]),
				Status:     domain.InjuryStatus(m[2]),
				Reason:     reason,
			})
			entries := report[team]
			last = &entries[len(entries)-1]
			continue
		}
		if last != nil {
			last.Reason = strings.TrimSpace(last.Reason + " " + line)
			continue
		}
		pending = append(pending, line)
	}
	return report
}

// stripRowPrefix drops the date, time and matchup columns that start a new game block.
func stripRowPrefix(line string) string {
	line = gameDate.ReplaceAllString(line, "")
	line = gameTime.ReplaceAllString(line, "")
	return matchup.ReplaceAllString(line, "")
}

// leadingTeam reports whether line starts with a full team name, returning the rest.
func leadingTeam(line string) (int, string, bool) {
	key := names.NormalizeForMatch(line)
	if id, ok := teamNames[key]; ok {
		return id, "", true
	}
	words := strings.Fields(line)
	for n := len(words) - 1; n >= 2; n-- {
		if id, ok := teamNames[names.NormalizeForMatch(strings.Join(words[:n], " "))]; ok {
			return id, strings.Join(words[n:], " "), true
		}
	}
	return 0, "", false
}
