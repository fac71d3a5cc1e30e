package domain

import "time"

// Weather codes as used by the forecast page.
const (
	WeatherClear  = 0
	WeatherCloudy = 1
	WeatherRainy  = 2
)

// Conditions describes the live context a forecast was made in.
type Conditions struct {
	Weather      string    `json:"weather"`
	WeatherCode  int       `json:"weather_code"`
	ObservedAt   time.Time `json:"observed_at"`
	Weekday      string    `json:"weekday"`
	MarketClosed bool      `json:"market_closed"`
}

// MarketClosedOn reports whether the city's weekly market holiday falls on t.
// Gwalior's markets close on Tuesdays.
func MarketClosedOn(t time.Time) bool {
	return t.Weekday() == time.Tuesday
}
