package climate

import (
	"fmt"
	"strings"
	"time"
)

// SeasonForMonth maps a month to its meteorological season:
// Dec–Feb winter, Mar–May spring, Jun–Aug summer, Sep–Nov autumn.
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// ParseSeason accepts a season name in any case.
func ParseSeason(s string) (Season, error) {
	season := Season(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Seasons {
		if season == known {
			return season, nil
		}
	}
	return "", fmt.Errorf("unknown season %q", s)
}
