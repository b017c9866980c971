package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/pkg/database"
)

type fakeProvider struct {
	logs map[string][]models.GameRecord
	err  error
}

func (f *fakeProvider) PlayerGameLog(_ context.Context, playerID, _, _ string) ([]models.GameRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Hand out a copy so gorm's ID backfill cannot leak between calls.
	return append([]models.GameRecord(nil), f.logs[playerID]...), nil
}

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}))
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecords(playerID string) []models.GameRecord {
	return []models.GameRecord{
		{
			PlayerID: playerID, PlayerName: "Test Player",
			GameDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Matchup:  "LAL vs. GSW", WinLoss: "W",
			Minutes: 36, Points: 28, Rebounds: 8, Assists: 9,
		},
		{
			PlayerID: playerID, PlayerName: "Test Player",
			GameDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Matchup:  "LAL @ BOS", WinLoss: "L",
			Minutes: 38, Points: 31, Rebounds: 7, Assists: 11,
		},
	}
}

func TestCollectPlayerUpsertsAndWritesCSV(t *testing.T) {
	db := testDB(t)
	dataDir := t.TempDir()
	provider := &fakeProvider{logs: map[string][]models.GameRecord{"2544": testRecords("2544")}}
	svc := NewService(provider, db, dataDir)

	player := RosterPlayer{ID: "2544", Name: "Test Player"}

	rows, err := svc.CollectPlayer(context.Background(), player, "2023-24", "Regular Season")
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	// Collecting again must not duplicate games.
	_, err = svc.CollectPlayer(context.Background(), player, "2023-24", "Regular Season")
	require.NoError(t, err)

	stored, err := svc.LoadPlayerLog("2544")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// Most recent first.
	assert.Equal(t, 31.0, stored[0].Points)

	csvPath := filepath.Join(dataDir, "players", "2544_games.csv")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PLAYER_ID,PLAYER_NAME,GAME_DATE")
	assert.Contains(t, string(data), "LAL vs. GSW")
}

func TestCollectRosterContinuesPastFailures(t *testing.T) {
	db := testDB(t)
	provider := &fakeProvider{logs: map[string][]models.GameRecord{"1": testRecords("1")}}
	svc := NewService(provider, db, t.TempDir())

	roster := []RosterPlayer{
		{ID: "1", Name: "Has Data"},
		{ID: "2", Name: "No Data"},
	}

	summary, err := svc.CollectRoster(context.Background(), roster, "2023-24", "Regular Season")
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.PlayersFetched)
	assert.Equal(t, 0, summary.PlayersFailed)
	assert.Equal(t, 2, summary.RowsUpserted)
}

func TestCollectRosterCountsProviderFailures(t *testing.T) {
	db := testDB(t)
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := NewService(provider, db, t.TempDir())

	summary, err := svc.CollectRoster(context.Background(), []RosterPlayer{{ID: "1", Name: "X"}}, "2023-24", "Regular Season")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PlayersFetched)
	assert.Equal(t, 1, summary.PlayersFailed)
}

func TestLoadAllLogsOrdering(t *testing.T) {
	db := testDB(t)
	provider := &fakeProvider{logs: map[string][]models.GameRecord{
		"1": testRecords("1"),
		"2": testRecords("2"),
	}}
	svc := NewService(provider, db, t.TempDir())

	_, err := svc.CollectRoster(context.Background(), []RosterPlayer{{ID: "1"}, {ID: "2"}}, "2023-24", "Regular Season")
	require.NoError(t, err)

	all, err := svc.LoadAllLogs()
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Grouped by player, chronological inside each group.
	assert.Equal(t, "1", all[0].PlayerID)
	assert.True(t, all[0].GameDate.Before(all[1].GameDate))
}
