package results

import "strings"

// Theme selects the page background for a condition category.
type Theme string

const (
	ThemeDefault Theme = "default-bg"
	ThemeClouds  Theme = "clouds-bg"
	ThemeClear   Theme = "clear-bg"
	ThemeRain    Theme = "rain-bg"
	ThemeSnow    Theme = "snow-bg"
	ThemeMist    Theme = "mist-bg"
)

// ThemeFor maps a condition summary such as "Clouds" to a Theme by
// case-insensitive keyword. The first matching keyword wins.
func ThemeFor(summary string) Theme {
	s := strings.ToLower(summary)
	switch {
	case strings.Contains(s, "cloud"):
		return ThemeClouds
	case strings.Contains(s, "clear"):
		return ThemeClear
	case strings.Contains(s, "rain"):
		return ThemeRain
	case strings.Contains(s, "snow"):
		return ThemeSnow
	case strings.Contains(s, "mist"), strings.Contains(s, "fog"):
		return ThemeMist
	default:
		return ThemeDefault
	}
}
