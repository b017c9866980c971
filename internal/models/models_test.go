package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameRecordStatLookup(t *testing.T) {
	rec := GameRecord{Points: 28, Minutes: 36.5, Turnovers: 3}

	pts, ok := rec.Stat("PTS")
	assert.True(t, ok)
	assert.Equal(t, 28.0, pts)

	min, ok := rec.Stat("MIN")
	assert.True(t, ok)
	assert.Equal(t, 36.5, min)

	_, ok = rec.Stat("PLUS_MINUS")
	assert.False(t, ok)
}

func TestTrackedStatsAllResolvable(t *testing.T) {
	rec := GameRecord{}
	for _, stat := range TrackedStats {
		_, ok := rec.Stat(stat)
		assert.True(t, ok, stat)
	}
}

func TestProjectionStatColumn(t *testing.T) {
	cases := map[string]string{
		"Points":         "PTS",
		"Rebounds":       "REB",
		"Assists":        "AST",
		"Three-Pointers": "FG3M",
	}
	for label, want := range cases {
		p := Projection{ProjectionType: label}
		got, ok := p.StatColumn()
		assert.True(t, ok, label)
		assert.Equal(t, want, got)
	}

	pra := Projection{ProjectionType: "PRA"}
	_, ok := pra.StatColumn()
	assert.False(t, ok)
	assert.True(t, pra.IsComposite())
}
