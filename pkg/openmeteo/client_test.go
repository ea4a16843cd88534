package openmeteo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestClientGeocodeRequest(t *testing.T) {
	respBody := `{"results":[{"name":"Fresno","latitude":36.73,"longitude":-119.78,"admin1":"California","country_code":"US"}]}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(5*time.Second,
		WithGeocodeBaseURL("http://geo.test/v1"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)

	loc, err := client.Geocode(context.Background(), "Fresno, California")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if loc == nil {
		t.Fatalf("expected a location")
	}
	if loc.Latitude != 36.73 || loc.Longitude != -119.78 {
		t.Fatalf("unexpected coordinates %+v", loc)
	}
	if !strings.HasPrefix(capturedURL, "http://geo.test/v1/search?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "name=Fresno%2C+California") {
		t.Fatalf("query missing from URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "count=1") {
		t.Fatalf("count missing from URL %q", capturedURL)
	}
}

func TestClientGeocodeNoMatch(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"results":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(5*time.Second, WithHTTPClient(&http.Client{Transport: rt}))

	loc, err := client.Geocode(context.Background(), "Nowhereville, ZZ")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if loc != nil {
		t.Fatalf("expected nil for no match, got %+v", loc)
	}
}

func TestClientDailyForecastRequest(t *testing.T) {
	respBody := `{"daily":{"time":["2026-09-01","2026-09-02"],"precipitation_probability_max":[55,null],"precipitation_sum":[3.2,0],"weathercode":[61,1],"temperature_2m_max":[21.5,24.0],"temperature_2m_min":[12.1,13.0]}}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(5*time.Second,
		WithForecastBaseURL("http://meteo.test/v1"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)

	forecast, err := client.DailyForecast(context.Background(), 36.73, -119.78, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("daily forecast: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://meteo.test/v1/forecast?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "forecast_days=7") {
		t.Fatalf("forecast_days missing from URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "timezone=America%2FLos_Angeles") {
		t.Fatalf("timezone missing from URL %q", capturedURL)
	}

	if len(forecast.Daily.Time) != 2 {
		t.Fatalf("unexpected day count %d", len(forecast.Daily.Time))
	}
	if forecast.Daily.PrecipProbabilityMax[0] == nil || *forecast.Daily.PrecipProbabilityMax[0] != 55 {
		t.Fatalf("unexpected precip probability %+v", forecast.Daily.PrecipProbabilityMax)
	}
	if forecast.Daily.PrecipProbabilityMax[1] != nil {
		t.Fatalf("expected nil probability for missing value")
	}
	if len(forecast.Raw) == 0 {
		t.Fatalf("raw payload not captured")
	}
}

func TestClientForecastUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("upstream exploded")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(5*time.Second, WithHTTPClient(&http.Client{Transport: rt}))

	if _, err := client.DailyForecast(context.Background(), 0, 0, ""); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
