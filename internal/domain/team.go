package domain

// TeamInfo is the canonical team identity shared by every source.
type TeamInfo struct {
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName"`
	TeamCity string `json:"teamCity"`
	Tricode  string `json:"teamTricode"`
	Slug     string `json:"teamSlug"`
}

// Placeholder is shown for display fields that no source could fill.
const Placeholder = "—"

// Conference is East or West.
type Conference string

const (
	ConferenceEast Conference = "East"
	ConferenceWest Conference = "West"
)

// TeamMeta is static league metadata for one franchise.
type TeamMeta struct {
	ID         int
	Tricode    string
	City       string
	Name       string
	Conference Conference
	Division   string
}

// FullName returns "City Name" as printed on league documents.
func (m TeamMeta) FullName() string {
	return m.City + " " + m.Name
}

// Info converts the metadata to a TeamInfo.
func (m TeamMeta) Info() TeamInfo {
	return TeamInfo{
		TeamID:   m.ID,
		TeamName: m.Name,
		TeamCity: m.City,
		Tricode:  m.Tricode,
		Slug:     lowerASCII(m.Tricode),
	}
}

// Teams lists the 30 franchises keyed by their stats.nba.com ids.
var Teams = []TeamMeta{
	{1610612737, "ATL", "Atlanta", "Hawks", ConferenceEast, "Southeast"},
	{1610612738, "BOS", "Boston", "Celtics", ConferenceEast, "Atlantic"},
	{1610612739, "CLE", "Cleveland", "Cavaliers", ConferenceEast, "Central"},
	{1610612740, "NOP", "New Orleans", "Pelicans", ConferenceWest, "Southwest"},
	{1610612741, "CHI", "Chicago", "Bulls", ConferenceEast, "Central"},
	{1610612742, "DAL", "Dallas", "Mavericks", ConferenceWest, "Southwest"},
	{1610612743, "DEN", "Denver", "Nuggets", ConferenceWest, "Northwest"},
	{1610612744, "GSW", "Golden State", "Warriors", ConferenceWest, "Pacific"},
	{1610612745, "HOU", "Houston", "Rockets", ConferenceWest, "Southwest"},
	{1610612746, "LAC", "LA", "Clippers", ConferenceWest, "Pacific"},
	{1610612747, "LAL", "Los Angeles", "Lakers", ConferenceWest, "Pacific"},
	{1610612748, "MIA", "Miami", "Heat", ConferenceEast, "Southeast"},
	{1610612749, "MIL", "Milwaukee", "Bucks", ConferenceEast, "Central"},
	{1610612750, "MIN", "Minnesota", "Timberwolves", ConferenceWest, "Northwest"},
	{1610612751, "BKN", "Brooklyn", "Nets", ConferenceEast, "Atlantic"},
	{1610612752, "NYK", "New York", "Knicks", ConferenceEast, "Atlantic"},
	{1610612753, "ORL", "Orlando", "Magic", ConferenceEast, "Southeast"},
	{1610612754, "IND", "Indiana", "Pacers", ConferenceEast, "Central"},
	{1610612755, "PHI", "Philadelphia", "76ers", ConferenceEast, "Atlantic"},
	{1610612756, "PHX", "Phoenix", "Suns", ConferenceWest, "Pacific"},
	{1610612757, "POR", "Portland", "Trail Blazers", ConferenceWest, "Northwest"},
	{1610612758, "SAC", "Sacramento", "Kings", ConferenceWest, "Pacific"},
	{1610612759, "SAS", "San Antonio", "Spurs", ConferenceWest, "Southwest"},
	{1610612760, "OKC", "Oklahoma City", "Thunder", ConferenceWest, "Northwest"},
	{1610612761, "TOR", "Toronto", "Raptors", ConferenceEast, "Atlantic"},
	{1610612762, "UTA", "Utah", "Jazz", ConferenceWest, "Northwest"},
	{1610612763, "MEM", "Memphis", "Grizzlies", ConferenceWest, "Southwest"},
	{1610612764, "WAS", "Washington", "Wizards", ConferenceEast, "Southeast"},
	{1610612765, "DET", "Detroit", "Pistons", ConferenceEast, "Central"},
	{1610612766, "CHA", "Charlotte", "Hornets", ConferenceEast, "Southeast"},
}

var (
	teamsByID      = make(map[int]TeamMeta, len(Teams))
	teamsByTricode = make(map[string]TeamMeta, len(Teams))
)

func init() {
	for _, t := range Teams {
		teamsByID[t.ID] = t
		teamsByTricode[t.Tricode] = t
	}
}

// TeamByID looks up static metadata for a team id.
func TeamByID(id int) (TeamMeta, bool) {
	t, ok := teamsByID[id]
	return t, ok
}

// TeamByTricode looks up static metadata for an upper-case tricode.
func TeamByTricode(code string) (TeamMeta, bool) {
	t, ok := teamsByTricode[code]
	return t, ok
}

// ConferenceOf returns the conference for a team id; unknown ids are East.
func ConferenceOf(id int) Conference {
	if t, ok := teamsByID[id]; ok {
		return t.Conference
	}
	return ConferenceEast
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
