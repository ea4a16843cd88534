package weather

import (
	"encoding/json"
	"testing"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

func TestRiskFromProbThresholds(t *testing.T) {
	cases := []struct {
		prob *float64
		want enums.RiskLevel
	}{
		{f(50), enums.RiskLevelHigh},
		{f(85), enums.RiskLevelHigh},
		{f(49), enums.RiskLevelModerate},
		{f(30), enums.RiskLevelModerate},
		{f(29), enums.RiskLevelLow},
		{f(10), enums.RiskLevelLow},
		{f(9), enums.RiskLevelClear},
		{f(0), enums.RiskLevelClear},
		{nil, enums.RiskLevelUnknown},
	}
	for _, tc := range cases {
		if got := RiskFromProb(tc.prob); got != tc.want {
			t.Errorf("RiskFromProb(%v) = %s, want %s", tc.prob, got, tc.want)
		}
	}
}

func TestEvaluateForecastExplicitProbabilityWins(t *testing.T) {
	raw := json.RawMessage(`{"daily":{
		"time":["2026-03-02"],
		"precipitation_probability_max":[120],
		"precipitation_sum":[0],
		"weathercode":[1]
	}}`)

	days, err := EvaluateForecast(raw)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	// Out-of-range values clamp into 0..100.
	if days[0].PrecipProb == nil || *days[0].PrecipProb != 100 {
		t.Fatalf("expected clamped 100, got %v", days[0].PrecipProb)
	}
	if days[0].Risk != enums.RiskLevelHigh {
		t.Fatalf("expected HIGH, got %s", days[0].Risk)
	}
}

func TestEvaluateForecastMillimeterFallback(t *testing.T) {
	raw := json.RawMessage(`{"daily":{
		"time":["d1","d2","d3","d4","d5"],
		"precipitation_sum":[12, 5.5, 2.1, 0.6, 0.1]
	}}`)

	days, err := EvaluateForecast(raw)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	wantProbs := []float64{85, 60, 40, 20, 0}
	wantRisks := []enums.RiskLevel{
		enums.RiskLevelHigh,
		enums.RiskLevelHigh,
		enums.RiskLevelModerate,
		enums.RiskLevelLow,
		enums.RiskLevelClear,
	}
	for i, day := range days {
		if day.PrecipProb == nil || *day.PrecipProb != wantProbs[i] {
			t.Errorf("day %d prob = %v, want %v", i, day.PrecipProb, wantProbs[i])
		}
		if day.Risk != wantRisks[i] {
			t.Errorf("day %d risk = %s, want %s", i, day.Risk, wantRisks[i])
		}
	}
}

func TestEvaluateForecastWeatherCodeFallback(t *testing.T) {
	raw := json.RawMessage(`{"daily":{
		"time":["rainy","clear"],
		"weathercode":[63, 1]
	}}`)

	days, err := EvaluateForecast(raw)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if days[0].PrecipProb == nil || *days[0].PrecipProb != 60 {
		t.Fatalf("rain code prob = %v, want 60", days[0].PrecipProb)
	}
	if days[0].Risk != enums.RiskLevelHigh {
		t.Fatalf("rain code risk = %s, want HIGH", days[0].Risk)
	}
	// A dry weather code alone is not a probability signal.
	if days[1].PrecipProb != nil {
		t.Fatalf("dry code prob = %v, want nil", days[1].PrecipProb)
	}
	if days[1].Risk != enums.RiskLevelUnknown {
		t.Fatalf("dry code risk = %s, want UNKNOWN", days[1].Risk)
	}
}

func TestEvaluateForecastNullProbabilityFallsThrough(t *testing.T) {
	raw := json.RawMessage(`{"daily":{
		"time":["2026-03-02"],
		"precipitation_probability_max":[null],
		"precipitation_sum":[6]
	}}`)

	days, err := EvaluateForecast(raw)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if days[0].PrecipProb == nil || *days[0].PrecipProb != 60 {
		t.Fatalf("expected mm fallback 60, got %v", days[0].PrecipProb)
	}
}

func TestMaxPrecipProb(t *testing.T) {
	days := []DayRisk{
		{PrecipProb: f(10)},
		{PrecipProb: nil},
		{PrecipProb: f(45)},
		{PrecipProb: f(20)},
	}
	max := MaxPrecipProb(days)
	if max == nil || *max != 45 {
		t.Fatalf("max = %v, want 45", max)
	}

	if MaxPrecipProb([]DayRisk{{PrecipProb: nil}}) != nil {
		t.Fatalf("expected nil max for no data")
	}
}

func f(v float64) *float64 { return &v }
