package domain

import "strings"

// Player is a rostered player. PersonID is the durable cross-source key.
type Player struct {
	PersonID     int    `json:"personId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Position     string `json:"position"`
	JerseyNumber string `json:"jerseyNumber,omitempty"`
}

// FullName returns "First Last", trimmed.
func (p Player) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// SplitName splits a display name into first name and the remainder.
func SplitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
