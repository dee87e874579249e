package weather

import (
	"sort"
	"strings"
)

const noonLabel = "12:00:00"

// NoonSlots keeps the samples labelled at local noon, one per day, ordered
// chronologically.
func NoonSlots(slots []ForecastSlot) []ForecastSlot {
	noon := make([]ForecastSlot, 0, 5)
	for _, s := range slots {
		if strings.Contains(s.Label, noonLabel) {
			noon = append(noon, s)
		}
	}

	sort.SliceStable(noon, func(i, j int) bool {
		return noon[i].Time.Before(noon[j].Time)
	})

	return noon
}
