package models

import (
	"time"
)

// GameRecord is one row of a player's game log as delivered by the stats
// provider. Identity is (player_id, game_date); rows are immutable once the
// provider has recorded them, so collection upserts on that pair.
type GameRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlayerID   string    `gorm:"index:idx_player_game,unique;not null" json:"player_id"`
	PlayerName string    `gorm:"index" json:"player_name"`
	GameDate   time.Time `gorm:"index:idx_player_game,unique;not null" json:"game_date"`
	Matchup    string    `json:"matchup"` // e.g. "LAL vs. BOS" (home) or "LAL @ BOS" (away)
	WinLoss    string    `json:"wl"`
	Minutes    float64   `json:"min"`
	Points     float64   `json:"pts"`
	Rebounds   float64   `json:"reb"`
	Assists    float64   `json:"ast"`
	Steals     float64   `json:"stl"`
	Blocks     float64   `json:"blk"`
	FGM        float64   `gorm:"column:fgm" json:"fgm"`
	FGA        float64   `gorm:"column:fga" json:"fga"`
	FG3M       float64   `gorm:"column:fg3m" json:"fg3m"`
	FG3A       float64   `gorm:"column:fg3a" json:"fg3a"`
	FTM        float64   `gorm:"column:ftm" json:"ftm"`
	FTA        float64   `gorm:"column:fta" json:"fta"`
	Turnovers  float64   `json:"tov"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (GameRecord) TableName() string {
	return "game_records"
}

// Stat returns the value of a tracked counting stat by its provider column
// name. The second return is false for columns this record does not carry,
// which callers treat as "feature not available" rather than an error.
func (g *GameRecord) Stat(name string) (float64, bool) {
	switch name {
	case "PTS":
		return g.Points, true
	case "REB":
		return g.Rebounds, true
	case "AST":
		return g.Assists, true
	case "STL":
		return g.Steals, true
	case "BLK":
		return g.Blocks, true
	case "FGM":
		return g.FGM, true
	case "FGA":
		return g.FGA, true
	case "FG3M":
		return g.FG3M, true
	case "FG3A":
		return g.FG3A, true
	case "FTM":
		return g.FTM, true
	case "FTA":
		return g.FTA, true
	case "TOV":
		return g.Turnovers, true
	case "MIN":
		return g.Minutes, true
	default:
		return 0, false
	}
}

// TrackedStats is the set of counting stats the feature pipeline computes
// rolling windows for, in provider column order.
var TrackedStats = []string{
	"PTS", "AST", "REB", "STL", "BLK",
	"FG3M", "FG3A", "FGM", "FGA", "FTM", "FTA", "TOV", "MIN",
}
