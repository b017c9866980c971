package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/pkg/database"
	"github.com/courtside-dev/courtside/pkg/logger"
)

// GameLogProvider is the slice of the stats client the collector needs.
type GameLogProvider interface {
	PlayerGameLog(ctx context.Context, playerID, season, seasonType string) ([]models.GameRecord, error)
}

// GameFinderProvider is the optional date-range interface a provider may also
// implement; backfill uses it when available.
type GameFinderProvider interface {
	LeagueGameFinder(ctx context.Context, dateFrom, dateTo time.Time) ([]models.GameRecord, error)
}

// RunSummary reports the outcome of one collection run.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	Season         string    `json:"season"`
	PlayersFetched int       `json:"players_fetched"`
	PlayersFailed  int       `json:"players_failed"`
	RowsUpserted   int       `json:"rows_upserted"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Service pulls player game logs from the stats provider, upserts them into
// the database, and mirrors each player's log to the flat CSV artifact the
// rest of the tooling reads.
type Service struct {
	provider GameLogProvider
	db       *database.DB
	dataDir  string
	logger   *logrus.Logger
}

func NewService(provider GameLogProvider, db *database.DB, dataDir string) *Service {
	return &Service{
		provider: provider,
		db:       db,
		dataDir:  dataDir,
		logger:   logger.GetLogger(),
	}
}

// CollectRoster fetches game logs for every roster player. Provider failures
// are non-fatal per player; the run continues and the summary counts them.
func (s *Service) CollectRoster(ctx context.Context, roster []RosterPlayer, season, seasonType string) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		Season:    season,
		StartedAt: time.Now().UTC(),
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  summary.RunID,
		"season":  season,
		"players": len(roster),
	}).Info("Starting collection run")

	for _, player := range roster {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rows, err := s.CollectPlayer(ctx, player, season, seasonType)
		if err != nil {
			summary.PlayersFailed++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"run_id":      summary.RunID,
				"player_id":   player.ID,
				"player_name": player.Name,
			}).Warn("Failed to collect player game log")
			continue
		}
		summary.PlayersFetched++
		summary.RowsUpserted += rows
	}

	summary.FinishedAt = time.Now().UTC()
	s.logger.WithFields(logrus.Fields{
		"run_id":  summary.RunID,
		"fetched": summary.PlayersFetched,
		"failed":  summary.PlayersFailed,
		"rows":    summary.RowsUpserted,
	}).Info("Collection run finished")

	return summary, nil
}

// CollectPlayer fetches one player's game log, upserts it on
// (player_id, game_date), and writes the per-player CSV. Returns the number
// of rows received from the provider.
func (s *Service) CollectPlayer(ctx context.Context, player RosterPlayer, season, seasonType string) (int, error) {
	records, err := s.provider.PlayerGameLog(ctx, player.ID, season, seasonType)
	if err != nil {
		return 0, fmt.Errorf("fetching game log for player %s: %w", player.ID, err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	for i := range records {
		records[i].PlayerID = player.ID
		if records[i].PlayerName == "" {
			records[i].PlayerName = player.Name
		}
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "game_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"player_name", "matchup", "win_loss", "minutes",
			"points", "rebounds", "assists", "steals", "blocks",
			"fgm", "fga", "fg3m", "fg3a", "ftm", "fta", "turnovers",
			"updated_at",
		}),
	}).Create(&records).Error; err != nil {
		return 0, fmt.Errorf("upserting game log for player %s: %w", player.ID, err)
	}

	if err := s.writePlayerCSV(player.ID, records); err != nil {
		// The database row is the source of truth; a CSV mirror failure is
		// logged but does not fail the collection.
		s.logger.WithError(err).WithField("player_id", player.ID).Warn("Failed to write game log CSV")
	}

	return len(records), nil
}

// BackfillRange fetches league-wide game rows for a date window and upserts
// the ones belonging to roster players. One request covers every player, which
// is far cheaper than per-player log fetches for short windows.
func (s *Service) BackfillRange(ctx context.Context, roster []RosterPlayer, dateFrom, dateTo time.Time) (int, error) {
	finder, ok := s.provider.(GameFinderProvider)
	if !ok {
		return 0, fmt.Errorf("provider does not support date-range queries")
	}

	rows, err := finder.LeagueGameFinder(ctx, dateFrom, dateTo)
	if err != nil {
		return 0, fmt.Errorf("fetching game finder rows: %w", err)
	}

	tracked := make(map[string]bool, len(roster))
	for _, p := range roster {
		tracked[p.ID] = true
	}

	var keep []models.GameRecord
	for _, row := range rows {
		if tracked[row.PlayerID] {
			keep = append(keep, row)
		}
	}
	if len(keep) == 0 {
		return 0, nil
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "game_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"player_name", "matchup", "win_loss", "minutes",
			"points", "rebounds", "assists", "steals", "blocks",
			"fgm", "fga", "fg3m", "fg3a", "ftm", "fta", "turnovers",
			"updated_at",
		}),
	}).Create(&keep).Error; err != nil {
		return 0, fmt.Errorf("upserting backfill rows: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"from": dateFrom.Format("2006-01-02"),
		"to":   dateTo.Format("2006-01-02"),
		"rows": len(keep),
	}).Info("Backfill complete")

	return len(keep), nil
}

// LoadPlayerLog returns a player's stored game log, most recent first.
func (s *Service) LoadPlayerLog(playerID string) ([]models.GameRecord, error) {
	var records []models.GameRecord
	if err := s.db.Where("player_id = ?", playerID).
		Order("game_date DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading game log for player %s: %w", playerID, err)
	}
	return records, nil
}

// LoadAllLogs returns every stored game record, the denormalized multi-player
// table the comprehensive training path runs on.
func (s *Service) LoadAllLogs() ([]models.GameRecord, error) {
	var records []models.GameRecord
	if err := s.db.Order("player_id, game_date").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading game records: %w", err)
	}
	return records, nil
}

var csvHeader = []string{
	"PLAYER_ID", "PLAYER_NAME", "GAME_DATE", "MATCHUP", "WL", "MIN",
	"PTS", "REB", "AST", "STL", "BLK", "FGM", "FGA", "FG3M", "FG3A",
	"FTM", "FTA", "TOV",
}

func (s *Service) writePlayerCSV(playerID string, records []models.GameRecord) error {
	dir := filepath.Join(s.dataDir, "players")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, playerID+"_games.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.PlayerID,
			r.PlayerName,
			r.GameDate.Format("2006-01-02"),
			r.Matchup,
			r.WinLoss,
			formatStat(r.Minutes),
			formatStat(r.Points),
			formatStat(r.Rebounds),
			formatStat(r.Assists),
			formatStat(r.Steals),
			formatStat(r.Blocks),
			formatStat(r.FGM),
			formatStat(r.FGA),
			formatStat(r.FG3M),
			formatStat(r.FG3A),
			formatStat(r.FTM),
			formatStat(r.FTA),
			formatStat(r.Turnovers),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
