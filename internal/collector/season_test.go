package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"october starts the new season", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"september is still last season", time.Date(2024, 9, 30, 23, 59, 0, 0, time.UTC), "2023-24"},
		{"midseason january", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"playoffs june", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"december", time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), "2023-24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentSeason(tt.now))
		})
	}
}

func TestFindRosterPlayer(t *testing.T) {
	byID, ok := FindRosterPlayer("2544")
	assert.True(t, ok)
	assert.Equal(t, "LeBron James", byID.Name)

	byName, ok := FindRosterPlayer("lebron james")
	assert.True(t, ok)
	assert.Equal(t, "2544", byName.ID)

	_, ok = FindRosterPlayer("Nobody")
	assert.False(t, ok)
}
