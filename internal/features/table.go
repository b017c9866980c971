package features

import "time"

// Row is one finalized feature row for a single player-game. Values holds the
// dense engineered columns; anything that could not be computed for the row
// (short history, zero attempts) is 0 after finalization.
type Row struct {
	PlayerID   string
	PlayerName string
	GameDate   time.Time
	Values     map[string]float64
}

// Table is a finalized feature table. Rows are ordered date-descending within
// each player group, so Rows[0] is a player's most recent game, the "current
// form" snapshot inference reads.
type Table struct {
	Rows []Row
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// HasColumn reports whether at least the first row carries the named column.
// Rows of one table always share the same column set.
func (t *Table) HasColumn(name string) bool {
	if t.Empty() {
		return false
	}
	_, ok := t.Rows[0].Values[name]
	return ok
}
