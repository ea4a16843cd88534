package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

const (
	defaultGeocodeBaseURL        = "https://geocoding-api.open-meteo.com/v1"
	defaultForecastBaseURL       = "https://api.open-meteo.com/v1"
	dailyVariables               = "precipitation_probability_max,precipitation_sum,weathercode,temperature_2m_max,temperature_2m_min"
	responseBodyReadLimit  int64 = 1024
)

// Client wraps the Open-Meteo geocoding and forecast APIs. Neither endpoint
// requires an API key.
type Client struct {
	httpClient      *http.Client
	geocodeBaseURL  string
	forecastBaseURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithGeocodeBaseURL overrides the geocoding base URL.
func WithGeocodeBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.geocodeBaseURL = trimmed
		}
	}
}

// WithForecastBaseURL overrides the forecast base URL.
func WithForecastBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.forecastBaseURL = trimmed
		}
	}
}

// NewClient builds an Open-Meteo client.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		geocodeBaseURL:  defaultGeocodeBaseURL,
		forecastBaseURL: defaultForecastBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// Location is a geocoding result.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country_code"`
}

// Forecast carries the decoded daily arrays plus the raw payload for caching.
type Forecast struct {
	Daily ForecastDaily   `json:"daily"`
	Raw   json.RawMessage `json:"-"`
}

// ForecastDaily mirrors the daily block of an Open-Meteo forecast response.
// Fields the API omitted decode as nil slices.
type ForecastDaily struct {
	Time                 []string   `json:"time"`
	PrecipProbabilityMax []*float64 `json:"precipitation_probability_max"`
	PrecipitationSum     []*float64 `json:"precipitation_sum"`
	WeatherCode          []*int     `json:"weathercode"`
	TemperatureMax       []*float64 `json:"temperature_2m_max"`
	TemperatureMin       []*float64 `json:"temperature_2m_min"`
}

// Geocode resolves a free-text place query to its best-match coordinates.
// It returns nil without error when the API has no match.
func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "open-meteo client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "geocode query is required")
	}

	params := url.Values{}
	params.Set("name", trimmed)
	params.Set("count", "1")

	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(c.geocodeBaseURL, "/"), params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp struct {
		Results []Location `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if len(apiResp.Results) == 0 {
		return nil, nil
	}
	loc := apiResp.Results[0]
	return &loc, nil
}

// DailyForecast fetches the 7-day daily forecast for the coordinates.
func (c *Client) DailyForecast(ctx context.Context, lat, lon float64, timezone string) (*Forecast, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "open-meteo client not configured")
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("daily", dailyVariables)
	params.Set("forecast_days", "7")
	if tz := strings.TrimSpace(timezone); tz != "" {
		params.Set("timezone", tz)
	}

	endpoint := fmt.Sprintf("%s/forecast?%s", strings.TrimRight(c.forecastBaseURL, "/"), params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build forecast request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute forecast request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "forecast request failed")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read forecast response")
	}

	forecast := &Forecast{Raw: raw}
	if err := json.Unmarshal(raw, forecast); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode forecast response")
	}

	return forecast, nil
}
