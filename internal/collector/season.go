package collector

import (
	"fmt"
	"time"
)

// CurrentSeason derives the NBA season string ("2025-26") from a wall-clock
// date. Seasons start in October: from October onward the season is the
// current year's; before that it is the previous year's.
func CurrentSeason(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.October {
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}
