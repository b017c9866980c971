package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/pkg/utils"
)

const defaultStatsBaseURL = "https://stats.nba.com/stats"

// NBAStatsClient fetches player game logs from the stats.nba.com JSON API.
// The endpoint throttles aggressively and refuses requests without browser
// headers, so every call goes through a rate limiter and a circuit breaker.
type NBAStatsClient struct {
	httpClient  *http.Client
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	baseURL     string
}

// NewNBAStatsClient creates a stats.nba.com client. requestGap is the minimum
// spacing between requests; timeout bounds each HTTP call.
func NewNBAStatsClient(timeout, requestGap time.Duration, breakerThreshold int, logger *logrus.Logger) *NBAStatsClient {
	settings := gobreaker.Settings{
		Name:        "nba-stats",
		MaxRequests: uint32(breakerThreshold),
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &NBAStatsClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(requestGap), 1),
		breaker:     gobreaker.NewCircuitBreaker(settings),
		baseURL:     defaultStatsBaseURL,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *NBAStatsClient) SetBaseURL(base string) {
	c.baseURL = base
}

// stats.nba.com wraps every endpoint in the same resultSets envelope: a list
// of named tables, each with a header row and untyped row values.
type statsResponse struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		RowSet  [][]interface{} `json:"rowSet"`
	} `json:"resultSets"`
}

// PlayerGameLog returns one player's game log for a season, as reported by
// the playergamelog endpoint.
func (c *NBAStatsClient) PlayerGameLog(ctx context.Context, playerID, season, seasonType string) ([]models.GameRecord, error) {
	params := url.Values{}
	params.Set("PlayerID", playerID)
	params.Set("Season", season)
	params.Set("SeasonType", seasonType)

	resp, err := c.get(ctx, "playergamelog", params)
	if err != nil {
		return nil, err
	}

	table, err := resp.table("PlayerGameLog")
	if err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(table.rows))
	for _, row := range table.rows {
		record, err := decodeGameRow(table, row)
		if err != nil {
			c.logger.WithError(err).WithField("player_id", playerID).Warn("Skipping malformed game log row")
			continue
		}
		record.PlayerID = playerID
		records = append(records, record)
	}

	c.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"season":    season,
		"games":     len(records),
	}).Debug("Fetched player game log")

	return records, nil
}

// LeagueGameFinder returns per-player game rows for a date range, as reported
// by the leaguegamefinder endpoint. Dates use the API's MM/DD/YYYY format.
func (c *NBAStatsClient) LeagueGameFinder(ctx context.Context, dateFrom, dateTo time.Time) ([]models.GameRecord, error) {
	params := url.Values{}
	params.Set("PlayerOrTeam", "P")
	params.Set("DateFrom", dateFrom.Format("01/02/2006"))
	params.Set("DateTo", dateTo.Format("01/02/2006"))

	resp, err := c.get(ctx, "leaguegamefinder", params)
	if err != nil {
		return nil, err
	}

	table, err := resp.table("LeagueGameFinderResults")
	if err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(table.rows))
	for _, row := range table.rows {
		record, err := decodeFinderRow(table, row)
		if err != nil {
			c.logger.WithError(err).Warn("Skipping malformed game finder row")
			continue
		}
		records = append(records, record)
	}

	c.logger.WithFields(logrus.Fields{
		"from":  dateFrom.Format("2006-01-02"),
		"to":    dateTo.Format("2006-01-02"),
		"games": len(records),
	}).Debug("Fetched league game finder rows")

	return records, nil
}

func (c *NBAStatsClient) get(ctx context.Context, endpoint string, params url.Values) (*statsResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Add("Accept", "application/json")
		req.Header.Add("Referer", "https://www.nba.com/")
		req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: stats API returned %d for %s", utils.ErrProviderFailed, resp.StatusCode, endpoint)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var decoded statsResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
		return &decoded, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*statsResponse), nil
}

// resultTable pairs a rowSet with a header-name index so callers can read
// columns by name instead of position.
type resultTable struct {
	index map[string]int
	rows  [][]interface{}
}

func (r *statsResponse) table(name string) (*resultTable, error) {
	for _, set := range r.ResultSets {
		if set.Name != name {
			continue
		}
		index := make(map[string]int, len(set.Headers))
		for i, h := range set.Headers {
			index[h] = i
		}
		return &resultTable{index: index, rows: set.RowSet}, nil
	}
	return nil, fmt.Errorf("result set %q not found in response", name)
}

func (t *resultTable) str(row []interface{}, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return ""
}

func (t *resultTable) num(row []interface{}, col string) float64 {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return 0
	}
	switch v := row[i].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// decodeFinderRow reads a leaguegamefinder row, which carries player identity
// inline and ISO dates rather than the game log's long-month format.
func decodeFinderRow(t *resultTable, row []interface{}) (models.GameRecord, error) {
	dateStr := t.str(row, "GAME_DATE")
	gameDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("parsing game date %q: %w", dateStr, err)
	}

	record := statRow(t, row)
	record.GameDate = gameDate
	record.PlayerID = strconv.FormatFloat(t.num(row, "PLAYER_ID"), 'f', -1, 64)
	record.PlayerName = t.str(row, "PLAYER_NAME")
	return record, nil
}

func decodeGameRow(t *resultTable, row []interface{}) (models.GameRecord, error) {
	dateStr := t.str(row, "GAME_DATE")
	gameDate, err := time.Parse("Jan 02, 2006", dateStr)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("parsing game date %q: %w", dateStr, err)
	}

	record := statRow(t, row)
	record.GameDate = gameDate
	return record, nil
}

// statRow decodes the stat columns common to both endpoints.
func statRow(t *resultTable, row []interface{}) models.GameRecord {
	return models.GameRecord{
		Matchup:   t.str(row, "MATCHUP"),
		WinLoss:   t.str(row, "WL"),
		Minutes:   t.num(row, "MIN"),
		Points:    t.num(row, "PTS"),
		Rebounds:  t.num(row, "REB"),
		Assists:   t.num(row, "AST"),
		Steals:    t.num(row, "STL"),
		Blocks:    t.num(row, "BLK"),
		FGM:       t.num(row, "FGM"),
		FGA:       t.num(row, "FGA"),
		FG3M:      t.num(row, "FG3M"),
		FG3A:      t.num(row, "FG3A"),
		FTM:       t.num(row, "FTM"),
		FTA:       t.num(row, "FTA"),
		Turnovers: t.num(row, "TOV"),
	}
}
