package weather

import "time"

// Conditions holds the current weather for a city as reported by the provider.
type Conditions struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Temperature *float64  `json:"temperature"`
	FeelsLike   *float64  `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// ForecastSlot is one sample of the provider's 3-hour forecast series.
type ForecastSlot struct {
	Label       string    `json:"label"`
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Icon        string    `json:"icon"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
}
