package models

// Projection is a single comparison line published by the prediction market.
// The app consumes these read-only; the only contract the prediction core has
// with them is "a float per (player, stat label) pair, or absent".
type Projection struct {
	PlayerName     string  `json:"player_name"`
	Team           string  `json:"team"`
	Opponent       string  `json:"opponent"`
	ProjectionType string  `json:"projection_type"` // Points, Rebounds, Assists, Three-Pointers, PRA
	Line           float64 `json:"line"`
	GameTime       string  `json:"game_time"`
}

// StatColumn maps a market projection label to the provider stat column the
// model pipeline predicts. PRA is a composite handled at comparison time and
// has no single column.
func (p *Projection) StatColumn() (string, bool) {
	switch p.ProjectionType {
	case "Points":
		return "PTS", true
	case "Rebounds":
		return "REB", true
	case "Assists":
		return "AST", true
	case "Three-Pointers":
		return "FG3M", true
	default:
		return "", false
	}
}

// IsComposite reports whether the projection covers more than one stat
// (currently only PRA: points + rebounds + assists).
func (p *Projection) IsComposite() bool {
	return p.ProjectionType == "PRA"
}
