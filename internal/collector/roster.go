package collector

import "strings"

// RosterPlayer identifies one player the collector tracks.
type RosterPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultRoster is the curated set of players collected for model training.
// A fuller deployment would pull the league roster from the provider instead.
var DefaultRoster = []RosterPlayer{
	{ID: "2544", Name: "LeBron James"},
	{ID: "201939", Name: "Stephen Curry"},
	{ID: "201142", Name: "Kevin Durant"},
	{ID: "203507", Name: "Giannis Antetokounmpo"},
	{ID: "203999", Name: "Nikola Jokic"},
	{ID: "1629029", Name: "Luka Doncic"},
	{ID: "1628369", Name: "Jayson Tatum"},
	{ID: "1628378", Name: "Donovan Mitchell"},
	{ID: "203081", Name: "Damian Lillard"},
	{ID: "202681", Name: "Kyrie Irving"},
	{ID: "203954", Name: "Joel Embiid"},
	{ID: "1626164", Name: "Devin Booker"},
	{ID: "1628384", Name: "Bam Adebayo"},
	{ID: "1627783", Name: "Pascal Siakam"},
	{ID: "1629627", Name: "Ja Morant"},
	{ID: "1627936", Name: "Dejounte Murray"},
	{ID: "201950", Name: "Jrue Holiday"},
	{ID: "1628973", Name: "Trae Young"},
	{ID: "1627750", Name: "Jamal Murray"},
	{ID: "203078", Name: "Anthony Davis"},
	{ID: "1629639", Name: "Zion Williamson"},
	{ID: "1629027", Name: "Shai Gilgeous-Alexander"},
	{ID: "1631093", Name: "Paolo Banchero"},
	{ID: "1630162", Name: "Anthony Edwards"},
	{ID: "1630224", Name: "LaMelo Ball"},
}

// FindRosterPlayer looks a roster player up by case-insensitive name or ID.
func FindRosterPlayer(nameOrID string) (RosterPlayer, bool) {
	for _, p := range DefaultRoster {
		if p.ID == nameOrID || strings.EqualFold(p.Name, nameOrID) {
			return p, true
		}
	}
	return RosterPlayer{}, false
}
