package domain

// InjuryStatus is the closed set of availability designations.
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "Out"
	InjuryDoubtful     InjuryStatus = "Doubtful"
	InjuryQuestionable InjuryStatus = "Questionable"
	InjuryProbable     InjuryStatus = "Probable"
	InjuryAvailable    InjuryStatus = "Available"
)

// InjuryStatuses lists every status in report order.
var InjuryStatuses = []InjuryStatus{InjuryOut, InjuryDoubtful, InjuryQuestionable, InjuryProbable, InjuryAvailable}

// KeepsOutOfLineup reports whether a player with this status is left out of projected starters.
// Probable and Available players always stay eligible.
func (s InjuryStatus) KeepsOutOfLineup() bool {
	switch s {
	case InjuryOut, InjuryDoubtful, InjuryQuestionable:
		return true
	default:
		return false
	}
}

// InjuryEntry is one player line from an injury report.
type InjuryEntry struct {
	PlayerName   string       `json:"playerName"`
	Position     string       `json:"position"`
	Status       InjuryStatus `json:"status"`
	Reason       string       `json:"reason"`
	DateReported string       `json:"dateReported,omitempty"`
	JerseyNumber string       `json:"jerseyNumber,omitempty"`
}
