// Package names matches free-text player names from injury documents against roster entries.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
)

// NormalizeForMatch folds a name to a comparison key: decomposed, marks stripped,
// lowercased, trimmed, with inner whitespace collapsed. "Jokić" and "JOKIC" share a key.
func NormalizeForMatch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Index is a lookup table built once per roster. Lookups are map hits, tried in priority order.
type Index struct {
	byFull    map[string]domain.Player
	bySurname map[string]domain.Player
}

// NewIndex keys each player by "first last", "last, first" and surname.
// When two players share a key the first one in roster order wins.
func NewIndex(roster []domain.Player) *Index {
	idx := &Index{
		byFull:    make(map[string]domain.Player, len(roster)*2),
		bySurname: make(map[string]domain.Player, len(roster)),
	}
	for _, p := range roster {
		first := strings.TrimSpace(p.FirstName)
		last := strings.TrimSpace(p.LastName)
		if first == "" && last == "" {
			continue
		}
		putFirst(idx.byFull, NormalizeForMatch(first+" "+last), p)
		putFirst(idx.byFull, NormalizeForMatch(last+", "+first), p)
		if last != "" {
			putFirst(idx.bySurname, NormalizeForMatch(last), p)
		}
	}
	return idx
}

func putFirst(m map[string]domain.Player, key string, p domain.Player) {
	if key == "" {
		return
	}
	if _, exists := m[key]; !exists {
		m[key] = p
	}
}

// Resolve finds the roster player for a free-text name. It tries an exact match,
// then an inverted "Last, First", then the final word against surnames.
func (i *Index) Resolve(name string) (domain.Player, bool) {
	if i == nil {
		return domain.Player{}, false
	}
	raw := strings.TrimSpace(name)
	if raw == "" {
		return domain.Player{}, false
	}
	if p, ok := i.byFull[NormalizeForMatch(raw)]; ok {
		return p, true
	}
	if last, first, found := strings.Cut(raw, ","); found {
		if p, ok := i.byFull[NormalizeForMatch(strings.TrimSpace(first)+" "+strings.TrimSpace(last))]; ok {
			return p, true
		}
	}
	words := strings.Fields(raw)
	if p, ok := i.bySurname[NormalizeForMatch(strings.Trim(words[len(words)-1], ","))]; ok {
		return p, true
	}
	return domain.Player{}, false
}
