package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-dev/courtside/internal/models"
)

func day(d int) time.Time {
	// January 2024; Jan 1 2024 is a Monday.
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func gameLog(name string, points ...float64) []models.GameRecord {
	records := make([]models.GameRecord, len(points))
	for i, pts := range points {
		records[i] = models.GameRecord{
			PlayerID:   "1",
			PlayerName: name,
			GameDate:   day(i + 1),
			Matchup:    "LAL vs. GSW",
			Points:     pts,
			Minutes:    34,
			FGM:        8,
			FGA:        16,
		}
	}
	return records
}

func TestProcessEmptyInput(t *testing.T) {
	p := NewProcessor()
	_, err := p.Process(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRollingMeansTrailingWindow(t *testing.T) {
	p := NewProcessor()
	table, err := p.Process(gameLog("LeBron James", 25, 30, 20, 28, 22))
	require.NoError(t, err)
	require.Len(t, table.Rows, 5)

	// Rows come back most recent first; the latest game's three-game window
	// covers the final 20, 28, 22.
	latest := table.Rows[0]
	assert.Equal(t, day(5), latest.GameDate)
	assert.InDelta(t, (20.0+28.0+22.0)/3.0, latest.Values["PTS_L3"], 1e-9)
	assert.InDelta(t, (25.0+30.0+20.0+28.0+22.0)/5.0, latest.Values["PTS_L5"], 1e-9)

	// Only five games exist, so the ten-game window finalizes to zero.
	assert.Zero(t, latest.Values["PTS_L10"])

	// The earliest games have too little history for any window.
	earliest := table.Rows[4]
	assert.Equal(t, day(1), earliest.GameDate)
	assert.Zero(t, earliest.Values["PTS_L3"])
}

func TestRollingMeanFullTenGameWindow(t *testing.T) {
	points := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28}
	p := NewProcessor()
	table, err := p.Process(gameLog("LeBron James", points...))
	require.NoError(t, err)

	sum := 0.0
	for _, v := range points {
		sum += v
	}
	assert.InDelta(t, sum/10.0, table.Rows[0].Values["PTS_L10"], 1e-9)
}

func TestWindowsDoNotLeakAcrossPlayers(t *testing.T) {
	a := gameLog("Player A", 10, 10, 10)
	b := gameLog("Player B", 40, 40, 40)
	for i := range b {
		b[i].PlayerID = "2"
	}

	p := NewProcessor()
	table, err := p.Process(append(a, b...))
	require.NoError(t, err)
	require.Len(t, table.Rows, 6)

	for _, row := range table.Rows {
		if row.GameDate.Equal(day(3)) {
			switch row.PlayerName {
			case "Player A":
				assert.InDelta(t, 10, row.Values["PTS_L3"], 1e-9)
			case "Player B":
				assert.InDelta(t, 40, row.Values["PTS_L3"], 1e-9)
			}
		}
	}
}

func TestShootingRatiosZeroAttempts(t *testing.T) {
	records := []models.GameRecord{{
		PlayerID:   "1",
		PlayerName: "Bench Guy",
		GameDate:   day(1),
		Matchup:    "LAL @ GSW",
		FGM:        0, FGA: 0,
		FG3M: 0, FG3A: 0,
		FTM: 2, FTA: 4,
	}}

	p := NewProcessor()
	table, err := p.Process(records)
	require.NoError(t, err)

	row := table.Rows[0]
	assert.Zero(t, row.Values["FG_PCT"])
	assert.Zero(t, row.Values["FG3_PCT"])
	assert.InDelta(t, 0.5, row.Values["FT_PCT"], 1e-9)
}

func TestGameContextColumns(t *testing.T) {
	records := []models.GameRecord{
		{PlayerID: "1", PlayerName: "X", GameDate: day(1), Matchup: "LAL vs. GSW"}, // Monday, home
		{PlayerID: "1", PlayerName: "X", GameDate: day(7), Matchup: "LAL @ BOS"},  // Sunday, away
	}

	p := NewProcessor()
	table, err := p.Process(records)
	require.NoError(t, err)

	byDate := map[time.Time]Row{}
	for _, row := range table.Rows {
		byDate[row.GameDate] = row
	}

	assert.Equal(t, 1.0, byDate[day(1)].Values["HOME_GAME"])
	assert.Equal(t, 0.0, byDate[day(1)].Values["DAY_OF_WEEK"])
	assert.Equal(t, 0.0, byDate[day(7)].Values["HOME_GAME"])
	assert.Equal(t, 6.0, byDate[day(7)].Values["DAY_OF_WEEK"])
}

func TestSelectFeaturesForTarget(t *testing.T) {
	p := NewProcessor()
	table, err := p.Process(gameLog("LeBron James", 25, 30, 20))
	require.NoError(t, err)

	names := p.SelectFeatures(table, "PTS")
	assert.ElementsMatch(t, []string{
		"PTS_L3", "PTS_L5", "PTS_L10",
		"HOME_GAME", "DAY_OF_WEEK", "MIN_L3", "MIN_L5",
	}, names)
}

func TestExtractFeatures(t *testing.T) {
	p := NewProcessor()
	table, err := p.Process(gameLog("LeBron James", 25, 30, 20, 28, 22))
	require.NoError(t, err)

	x, y, names, err := p.ExtractFeatures(table, "PTS")
	require.NoError(t, err)
	require.Len(t, x, 5)
	require.Len(t, y, 5)
	assert.NotEmpty(t, names)

	// Labels are the raw per-game values, aligned with the rows.
	assert.Equal(t, 22.0, y[0])
	assert.Equal(t, 25.0, y[4])
	for _, vec := range x {
		assert.Len(t, vec, len(names))
	}
}

func TestExtractFeaturesErrors(t *testing.T) {
	p := NewProcessor()

	_, _, _, err := p.ExtractFeatures(&Table{}, "PTS")
	assert.ErrorIs(t, err, ErrEmptyInput)

	table, err := p.Process(gameLog("LeBron James", 25, 30))
	require.NoError(t, err)
	_, _, _, err = p.ExtractFeatures(table, "NOT_A_STAT")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestPrepareInferenceRow(t *testing.T) {
	p := NewProcessor()
	row, err := p.PrepareInferenceRow(gameLog("LeBron James", 25, 30, 20, 28, 22), "PTS")
	require.NoError(t, err)

	assert.Equal(t, day(5), row.GameDate)
	assert.InDelta(t, (20.0+28.0+22.0)/3.0, row.Values["PTS_L3"], 1e-9)

	_, err = p.PrepareInferenceRow(nil, "PTS")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
