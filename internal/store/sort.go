package store

import (
	"sort"

	"github.com/i474232898/temperature-anomaly/internal/climate"
)

func sortByTimestamp(idx []int, rows []climate.EnrichedObservation) {
	sort.SliceStable(idx, func(a, b int) bool {
		return rows[idx[a]].Timestamp.Before(rows[idx[b]].Timestamp)
	})
}
