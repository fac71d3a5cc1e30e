package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"traffic-forecast-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		main     string
		wantCode int
		want     string
	}{
		{"Rain", domain.WeatherRainy, "Rainy"},
		{"Drizzle", domain.WeatherRainy, "Rainy"},
		{"Thunderstorm", domain.WeatherRainy, "Rainy"},
		{"Clouds", domain.WeatherCloudy, "Cloudy"},
		{"Clear", domain.WeatherClear, "Clear"},
		{"Haze", domain.WeatherClear, "Clear"},
	}
	for _, tc := range tests {
		code, label := Classify(tc.main)
		assert.Equal(t, tc.wantCode, code, tc.main)
		assert.Equal(t, tc.want, label, tc.main)
	}
}

func newProvider(t *testing.T, url string) *OpenWeatherMap {
	t.Helper()
	w, err := NewOpenWeatherMap("k", url, time.UTC, nil)
	require.NoError(t, err)
	// Tuesday morning.
	w.now = func() time.Time { return time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC) }
	return w
}

func TestCurrentReportsConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		assert.Equal(t, "26.2183", r.URL.Query().Get("lat"))
		_, _ = io.WriteString(w, `{"weather":[{"main":"Clouds","description":"broken clouds"}]}`)
	}))
	defer srv.Close()

	cond, err := newProvider(t, srv.URL).Current(context.Background(), domain.Coordinates{Lon: 78.1828, Lat: 26.2183})
	require.NoError(t, err)
	assert.Equal(t, "Cloudy", cond.Weather)
	assert.Equal(t, domain.WeatherCloudy, cond.WeatherCode)
	assert.Equal(t, "Tuesday", cond.Weekday)
	assert.True(t, cond.MarketClosed)
}

func TestCurrentFallsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cond, err := newProvider(t, srv.URL).Current(context.Background(), domain.Coordinates{Lon: 78.1828, Lat: 26.2183})
	require.NoError(t, err)
	assert.Equal(t, "Clear (default)", cond.Weather)
	assert.Equal(t, domain.WeatherClear, cond.WeatherCode)
}
