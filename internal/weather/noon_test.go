package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/citycast/internal/weather"
)

func slotAt(ts time.Time) weather.ForecastSlot {
	return weather.ForecastSlot{Label: ts.Format(time.DateTime), Time: ts}
}

func TestNoonSlots_FortySamples(t *testing.T) {
	start := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	var slots []weather.ForecastSlot
	for i := 0; i < 40; i++ {
		slots = append(slots, slotAt(start.Add(time.Duration(i*3)*time.Hour)))
	}

	noon := weather.NoonSlots(slots)
	require.Len(t, noon, 5)
	for i, s := range noon {
		assert.Equal(t, start.AddDate(0, 0, i).Add(12*time.Hour), s.Time)
	}
}

func TestNoonSlots_PartialFirstDay(t *testing.T) {
	// Series starting mid-afternoon misses the first day's noon.
	start := time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC)
	var slots []weather.ForecastSlot
	for i := 0; i < 40; i++ {
		slots = append(slots, slotAt(start.Add(time.Duration(i*3)*time.Hour)))
	}

	noon := weather.NoonSlots(slots)
	assert.Len(t, noon, 4)
}

func TestNoonSlots_ChronologicalOrder(t *testing.T) {
	day := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	slots := []weather.ForecastSlot{
		slotAt(day.AddDate(0, 0, 2)),
		slotAt(day),
		slotAt(day.Add(3 * time.Hour)),
		slotAt(day.AddDate(0, 0, 1)),
	}

	noon := weather.NoonSlots(slots)
	require.Len(t, noon, 3)
	assert.True(t, noon[0].Time.Before(noon[1].Time))
	assert.True(t, noon[1].Time.Before(noon[2].Time))
}

func TestNoonSlots_Empty(t *testing.T) {
	assert.Empty(t, weather.NoonSlots(nil))
}
