package injuries

import (
	"strings"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/cache"
	"github.com/preston-bernstein/nba-next-game-service/internal/domain"
)

// statusRules are checked in order; the first substring hit wins.
var statusRules = []struct {
	needle string
	status domain.InjuryStatus
}{
	{"out for the season", domain.InjuryOut},
	{"out indefinitely", domain.InjuryOut},
	{"out", domain.InjuryOut},
	{"doubtful", domain.InjuryDoubtful},
	{"game time decision", domain.InjuryQuestionable},
	{"game-time decision", domain.InjuryQuestionable},
	{"questionable", domain.InjuryQuestionable},
	{"day to day", domain.InjuryQuestionable},
	{"day-to-day", domain.InjuryQuestionable},
	{"probable", domain.InjuryProbable},
	{"available", domain.InjuryAvailable},
	{"active", domain.InjuryAvailable},
}

// MapStatus maps free status text onto the closed status set.
// Text nothing recognizes is Questionable.
func MapStatus(text string) domain.InjuryStatus {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range statusRules {
		if strings.Contains(t, rule.needle) {
			return rule.status
		}
	}
	return domain.InjuryQuestionable
}

// TTL is how long an injury list stays fresh: reports are republished more
// often as tip-off approaches.
func TTL(isGameDay bool, localNow time.Time) time.Duration {
	switch {
	case !isGameDay:
		return cache.TTLInjuriesOffDay
	case localNow.Hour() < 13:
		return cache.TTLInjuriesMorning
	default:
		return cache.TTLInjuriesTipoff
	}
}
