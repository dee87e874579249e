package history

import (
	"strings"
	"time"

	"github.com/neexbeast/citycast/internal/weather"
)

// MaxEntries bounds the persisted history list.
const MaxEntries = 8

// Entry is one successful lookup. Entries are never modified once created.
type Entry struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature *float64  `json:"temperature_celsius"`
	Icon        string    `json:"icon"`
	Summary     string    `json:"condition_summary"`
	ObservedAt  time.Time `json:"observed_at"`
}

// List is a most-recent-first sequence of entries.
type List []Entry

// NewEntry projects current conditions into a history entry. The provider's
// resolved city name wins over the query when present.
func NewEntry(query string, cond *weather.Conditions, now time.Time) Entry {
	city := cond.Name
	if city == "" {
		city = query
	}
	return Entry{
		ID:          now.UnixMilli(),
		City:        city,
		Country:     cond.Country,
		Temperature: cond.Temperature,
		Icon:        cond.Icon,
		Summary:     cond.Main,
		ObservedAt:  now.UTC(),
	}
}

// sameLocation reports whether two entries share a case-insensitive (city, country) pair.
func sameLocation(a, b Entry) bool {
	return strings.EqualFold(a.City, b.City) && strings.EqualFold(a.Country, b.Country)
}

// Merge returns a new list with e first, any previous entry for the same
// location removed, truncated to MaxEntries.
func Merge(list List, e Entry) List {
	out := make(List, 0, MaxEntries)
	out = append(out, e)
	for _, h := range list {
		if len(out) == MaxEntries {
			break
		}
		if sameLocation(h, e) {
			continue
		}
		out = append(out, h)
	}
	return out
}
