package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"

	"go.uber.org/zap"
)

type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// OpenWeatherMap reports live conditions from the current-weather endpoint.
// Lookup failures degrade to a "Clear (default)" reading rather than an error.
type OpenWeatherMap struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	location *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewOpenWeatherMap(apiKey, baseURL string, loc *time.Location, log *zap.Logger) (*OpenWeatherMap, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openweathermap: api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenWeatherMap{
		session:  &http.Client{Timeout: 5 * time.Second},
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		location: loc,
		log:      log.Named("weather"),
		now:      time.Now,
	}, nil
}

// Classify maps an OpenWeatherMap "main" group to a code and label.
func Classify(main string) (int, string) {
	switch {
	case strings.Contains(main, "Rain"), strings.Contains(main, "Drizzle"), strings.Contains(main, "Thunderstorm"):
		return domain.WeatherRainy, "Rainy"
	case strings.Contains(main, "Clouds"):
		return domain.WeatherCloudy, "Cloudy"
	default:
		return domain.WeatherClear, "Clear"
	}
}

func (w *OpenWeatherMap) Current(ctx context.Context, at domain.Coordinates) (_ *domain.Conditions, err error) {
	defer obs.Time(ctx, "weather.Current")(&err)

	now := w.now().In(w.location)
	cond := &domain.Conditions{
		ObservedAt:   now,
		Weekday:      now.Weekday().String(),
		MarketClosed: domain.MarketClosedOn(now),
	}

	main, lookupErr := w.fetchMain(ctx, at)
	if lookupErr != nil {
		w.log.Warn("weather lookup failed, using default", zap.Error(lookupErr))
		cond.WeatherCode, cond.Weather = domain.WeatherClear, "Clear (default)"
		return cond, nil
	}

	cond.WeatherCode, cond.Weather = Classify(main)
	return cond, nil
}

func (w *OpenWeatherMap) fetchMain(ctx context.Context, at domain.Coordinates) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/data/2.5/weather", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("appid", w.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := w.session.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}

	if len(decoded.Weather) == 0 {
		return "", errors.New("weather response has no conditions")
	}

	return decoded.Weather[0].Main, nil
}
