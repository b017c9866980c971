package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/models"
)

// LinesClient loads prediction market lines. Resolution order: remote URL if
// configured, the on-disk cache from a previous fetch, then the bundled
// sample slate. It never fails outward; an empty slate is the worst case.
type LinesClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	url        string
	cacheDir   string
	useSample  bool
}

func NewLinesClient(linesURL, dataDir string, useSample bool, logger *logrus.Logger) *LinesClient {
	return &LinesClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		url:        linesURL,
		cacheDir:   filepath.Join(dataDir, "prizepicks"),
		useSample:  useSample,
	}
}

// Load returns the current slate of projections.
func (c *LinesClient) Load(ctx context.Context) []models.Projection {
	if c.url != "" {
		if lines, err := c.fetch(ctx); err == nil && len(lines) > 0 {
			if err := c.writeCache(lines); err != nil {
				c.logger.WithError(err).Warn("Failed to cache projection lines")
			}
			return lines
		} else if err != nil {
			c.logger.WithError(err).Warn("Failed to fetch projection lines, trying cache")
		}
	}

	if lines, err := c.readCache(); err == nil && len(lines) > 0 {
		return lines
	}

	if c.useSample {
		c.logger.Debug("Using bundled sample projection lines")
		return sampleLines()
	}
	return nil
}

// LineFor returns the projection for a player and stat column, if the slate
// carries one.
func (c *LinesClient) LineFor(ctx context.Context, playerName, statColumn string) (*models.Projection, bool) {
	for _, p := range c.Load(ctx) {
		col, ok := p.StatColumn()
		if ok && strings.EqualFold(p.PlayerName, playerName) && col == statColumn {
			line := p
			return &line, true
		}
	}
	return nil, false
}

func (c *LinesClient) fetch(ctx context.Context) ([]models.Projection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var lines []models.Projection
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *LinesClient) cachePath() string {
	return filepath.Join(c.cacheDir, "lines.json")
}

func (c *LinesClient) writeCache(lines []models.Projection) error {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cachePath(), data, 0o644)
}

func (c *LinesClient) readCache() ([]models.Projection, error) {
	data, err := os.ReadFile(c.cachePath())
	if err != nil {
		return nil, err
	}
	var lines []models.Projection
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// sampleLines is a small fixed slate so the compare flow works without a
// lines feed configured.
func sampleLines() []models.Projection {
	tip := time.Now().Add(6 * time.Hour).UTC().Format(time.RFC3339)
	return []models.Projection{
		{PlayerName: "LeBron James", Team: "LAL", Opponent: "GSW", ProjectionType: "Points", Line: 25.5, GameTime: tip},
		{PlayerName: "LeBron James", Team: "LAL", Opponent: "GSW", ProjectionType: "Assists", Line: 7.5, GameTime: tip},
		{PlayerName: "Stephen Curry", Team: "GSW", Opponent: "LAL", ProjectionType: "Points", Line: 27.5, GameTime: tip},
		{PlayerName: "Stephen Curry", Team: "GSW", Opponent: "LAL", ProjectionType: "Three-Pointers", Line: 4.5, GameTime: tip},
		{PlayerName: "Nikola Jokic", Team: "DEN", Opponent: "PHX", ProjectionType: "Rebounds", Line: 12.5, GameTime: tip},
		{PlayerName: "Nikola Jokic", Team: "DEN", Opponent: "PHX", ProjectionType: "PRA", Line: 45.5, GameTime: tip},
		{PlayerName: "Giannis Antetokounmpo", Team: "MIL", Opponent: "BOS", ProjectionType: "Points", Line: 30.5, GameTime: tip},
		{PlayerName: "Jayson Tatum", Team: "BOS", Opponent: "MIL", ProjectionType: "Points", Line: 26.5, GameTime: tip},
		{PlayerName: "Luka Doncic", Team: "DAL", Opponent: "OKC", ProjectionType: "Assists", Line: 8.5, GameTime: tip},
		{PlayerName: "Shai Gilgeous-Alexander", Team: "OKC", Opponent: "DAL", ProjectionType: "Points", Line: 31.5, GameTime: tip},
	}
}
