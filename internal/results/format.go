package results

import (
	"math"
	"strconv"
	"time"
)

const (
	iconBase           = "https://openweathermap.org/img/wn/"
	unknownPlaceholder = "—"
)

// RoundTemp rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func RoundTemp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatTemp renders a rounded Celsius temperature, or a dash when unknown.
func FormatTemp(v *float64) string {
	if v == nil {
		return unknownPlaceholder
	}
	return strconv.Itoa(RoundTemp(*v)) + "°C"
}

// FormatRecordedAt renders a history timestamp in loc.
func FormatRecordedAt(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return unknownPlaceholder
	}
	return t.In(loc).Format("Jan 2, 2006 3:04 PM")
}

// FormatClock renders a sunrise/sunset instant in its own zone.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return unknownPlaceholder
	}
	return t.Format("3:04 PM")
}

// Weekday renders the short day name of a forecast slot.
func Weekday(t time.Time) string {
	return t.Format("Mon")
}

// IconURL is the small provider icon used in history and forecast rows.
func IconURL(icon string) string {
	return iconBase + icon + ".png"
}

// LargeIconURL is the double-size icon used on the main card.
func LargeIconURL(icon string) string {
	return iconBase + icon + "@2x.png"
}
