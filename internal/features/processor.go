package features

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/pkg/logger"
)

// Rolling window sizes, in games. Each window only produces a value once the
// full window of observations (including the current game) is available.
var Windows = []int{3, 5, 10}

// Processor turns raw game logs into dense feature tables for training and
// single-row inference.
type Processor struct {
	logger *logrus.Logger
}

func NewProcessor() *Processor {
	return &Processor{
		logger: logger.GetLogger(),
	}
}

// Process engineers features from a raw game log. Input may span multiple
// players; rows are grouped by player name (falling back to player ID), each
// group is windowed independently in chronological order, and the combined
// table is returned most-recent-first per group. Returns ErrEmptyInput when
// there is nothing to process.
func (p *Processor) Process(records []models.GameRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	groups := groupByPlayer(records)

	p.logger.WithFields(logrus.Fields{
		"rows":    len(records),
		"players": len(groups),
	}).Debug("Processing game log")

	table := &Table{}
	for _, key := range sortedKeys(groups) {
		table.Rows = append(table.Rows, processPlayer(groups[key])...)
	}
	return table, nil
}

// SelectFeatures returns the feature column names used to predict target:
// the target's rolling means, game context, and recent minutes load. Columns
// absent from the table are omitted without error.
func (p *Processor) SelectFeatures(t *Table, target string) []string {
	candidates := make([]string, 0, len(Windows)+4)
	for _, w := range Windows {
		candidates = append(candidates, rollingCol(target, w))
	}
	candidates = append(candidates, "HOME_GAME", "DAY_OF_WEEK", "MIN_L3", "MIN_L5")

	selected := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if t.HasColumn(name) {
			selected = append(selected, name)
		}
	}
	return selected
}

// ExtractFeatures produces the training pair (X, y) for a target stat. The
// label is the raw per-game value of the target, not a rolling mean. Returns
// ErrEmptyInput for an empty table and ErrMissingColumn when the target stat
// is not a column of the table.
func (p *Processor) ExtractFeatures(t *Table, target string) ([][]float64, []float64, []string, error) {
	if t.Empty() {
		return nil, nil, nil, ErrEmptyInput
	}
	if !t.HasColumn(target) {
		return nil, nil, nil, ErrMissingColumn
	}

	names := p.SelectFeatures(t, target)
	x := make([][]float64, len(t.Rows))
	y := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		vec := make([]float64, len(names))
		for j, name := range names {
			vec[j] = row.Values[name]
		}
		x[i] = vec
		y[i] = row.Values[target]
	}
	return x, y, names, nil
}

// PrepareInferenceRow processes a raw game log and returns the most recent
// feature row, the current-form snapshot a prediction is made from. Returns
// ErrEmptyInput when the log is empty.
func (p *Processor) PrepareInferenceRow(records []models.GameRecord, target string) (*Row, error) {
	table, err := p.Process(records)
	if err != nil {
		return nil, err
	}
	if len(p.SelectFeatures(table, target)) == 0 {
		return nil, ErrMissingColumn
	}
	row := table.Rows[0]
	return &row, nil
}

// processPlayer computes engineered features for one player's games. The
// windowing is deliberately a pure pass over a single chronologically ordered
// sequence so it cannot leak across players. Output order is date-descending.
func processPlayer(records []models.GameRecord) []Row {
	asc := make([]models.GameRecord, len(records))
	copy(asc, records)
	sort.Slice(asc, func(i, j int) bool {
		return asc[i].GameDate.Before(asc[j].GameDate)
	})

	// Collect each tracked stat's chronological series once.
	series := make(map[string][]float64, len(models.TrackedStats))
	for _, stat := range models.TrackedStats {
		vals := make([]float64, len(asc))
		for i := range asc {
			v, ok := asc[i].Stat(stat)
			if !ok {
				vals = nil
				break
			}
			vals[i] = v
		}
		if vals != nil {
			series[stat] = vals
		}
	}

	rows := make([]Row, len(asc))
	for i, rec := range asc {
		values := make(map[string]float64)

		for stat, vals := range series {
			values[stat] = vals[i]
			for _, w := range Windows {
				// Trailing mean over the current game and its w-1
				// predecessors; short histories finalize to 0.
				values[rollingCol(stat, w)] = trailingMean(vals, i, w)
			}
		}

		values["FG_PCT"] = ratio(rec.FGM, rec.FGA)
		values["FG3_PCT"] = ratio(rec.FG3M, rec.FG3A)
		values["FT_PCT"] = ratio(rec.FTM, rec.FTA)
		values["HOME_GAME"] = homeGame(rec.Matchup)
		values["DAY_OF_WEEK"] = dayOfWeek(rec)

		rows[i] = Row{
			PlayerID:   rec.PlayerID,
			PlayerName: rec.PlayerName,
			GameDate:   rec.GameDate,
			Values:     values,
		}
	}

	// Most recent first, matching the inference contract (row 0 = latest).
	for l, r := 0, len(rows)-1; l < r; l, r = l+1, r-1 {
		rows[l], rows[r] = rows[r], rows[l]
	}
	return rows
}

// trailingMean returns the mean of vals[i-w+1..i], or 0 when fewer than w
// observations exist yet.
func trailingMean(vals []float64, i, w int) float64 {
	if i+1 < w {
		return 0
	}
	sum := 0.0
	for _, v := range vals[i-w+1 : i+1] {
		sum += v
	}
	return sum / float64(w)
}

// ratio is makes ÷ attempts with zero attempts finalizing to 0.
func ratio(made, attempted float64) float64 {
	if attempted == 0 {
		return 0
	}
	return made / attempted
}

// homeGame decodes the matchup string: a "vs" token means home, "@" away.
func homeGame(matchup string) float64 {
	if strings.Contains(matchup, "vs") {
		return 1
	}
	return 0
}

// dayOfWeek is the Monday=0..Sunday=6 ordinal of the game date.
func dayOfWeek(rec models.GameRecord) float64 {
	return float64((int(rec.GameDate.Weekday()) + 6) % 7)
}

func rollingCol(stat string, window int) string {
	return stat + "_L" + strconv.Itoa(window)
}

// groupByPlayer buckets records by player name, falling back to player ID for
// providers that do not supply names.
func groupByPlayer(records []models.GameRecord) map[string][]models.GameRecord {
	groups := make(map[string][]models.GameRecord)
	for _, rec := range records {
		key := rec.PlayerName
		if key == "" {
			key = rec.PlayerID
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

func sortedKeys(groups map[string][]models.GameRecord) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
