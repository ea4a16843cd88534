package weather

import (
	"encoding/json"
	"fmt"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// Risk thresholds on the daily precipitation probability percentage.
const (
	highThreshold     = 50
	moderateThreshold = 30
	lowThreshold      = 10
)

// Weather codes that imply rain when the feed carries no probability or
// precipitation figures (WMO 4677 rain/shower/thunderstorm groups).
var rainWeatherCodes = map[int]struct{}{
	61: {}, 63: {}, 65: {},
	80: {}, 81: {}, 82: {},
	95: {}, 96: {}, 99: {},
}

// DayRisk is the per-day evaluation result.
type DayRisk struct {
	Date       string          `json:"date"`
	PrecipProb *float64        `json:"precip_prob,omitempty"`
	Risk       enums.RiskLevel `json:"risk"`
}

// dailyPayload tolerates the probability key spellings seen across feeds.
type dailyPayload struct {
	Time          []string   `json:"time"`
	ProbMax       []*float64 `json:"precipitation_probability_max"`
	Prob          []*float64 `json:"precipitation_probability"`
	PrecipProb    []*float64 `json:"precip_prob"`
	Pop           []*float64 `json:"pop"`
	PrecipSum     []*float64 `json:"precipitation_sum"`
	WeatherCode   []*int     `json:"weathercode"`
	WeatherCodeUS []*int     `json:"weather_code"`
}

// EvaluateForecast derives per-day precipitation probabilities and risk
// levels from a raw forecast payload.
func EvaluateForecast(raw json.RawMessage) ([]DayRisk, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty forecast payload")
	}
	var payload struct {
		Daily dailyPayload `json:"daily"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	daily := payload.Daily
	out := make([]DayRisk, 0, len(daily.Time))
	for i, date := range daily.Time {
		prob := precipProbForDay(daily, i)
		out = append(out, DayRisk{
			Date:       date,
			PrecipProb: prob,
			Risk:       RiskFromProb(prob),
		})
	}
	return out, nil
}

// precipProbForDay resolves the probability for one day. Explicit
// probability keys win; otherwise the precipitation amount in mm maps to a
// coarse probability; otherwise a rain weather code counts as 60%; with no
// signal at all the day stays unknown.
func precipProbForDay(daily dailyPayload, idx int) *float64 {
	for _, series := range [][]*float64{daily.ProbMax, daily.Prob, daily.PrecipProb, daily.Pop} {
		if v := at(series, idx); v != nil {
			clamped := clampProb(*v)
			return &clamped
		}
	}

	if v := at(daily.PrecipSum, idx); v != nil {
		prob := probFromMillimeters(*v)
		return &prob
	}

	for _, series := range [][]*int{daily.WeatherCode, daily.WeatherCodeUS} {
		if idx < len(series) && series[idx] != nil {
			if _, rainy := rainWeatherCodes[*series[idx]]; rainy {
				prob := 60.0
				return &prob
			}
			return nil
		}
	}
	return nil
}

func probFromMillimeters(mm float64) float64 {
	switch {
	case mm >= 10:
		return 85
	case mm >= 5:
		return 60
	case mm >= 2:
		return 40
	case mm >= 0.5:
		return 20
	default:
		return 0
	}
}

// MaxPrecipProb returns the highest daily probability, or nil when no day
// produced one.
func MaxPrecipProb(days []DayRisk) *float64 {
	var max *float64
	for _, day := range days {
		if day.PrecipProb == nil {
			continue
		}
		if max == nil || *day.PrecipProb > *max {
			v := *day.PrecipProb
			max = &v
		}
	}
	return max
}

// RiskFromProb maps a probability to the rain risk level. A nil probability
// is unknown, which is distinct from a confident zero-risk CLEAR.
func RiskFromProb(prob *float64) enums.RiskLevel {
	if prob == nil {
		return enums.RiskLevelUnknown
	}
	switch {
	case *prob >= highThreshold:
		return enums.RiskLevelHigh
	case *prob >= moderateThreshold:
		return enums.RiskLevelModerate
	case *prob >= lowThreshold:
		return enums.RiskLevelLow
	default:
		return enums.RiskLevelClear
	}
}

func at(series []*float64, idx int) *float64 {
	if idx < len(series) {
		return series[idx]
	}
	return nil
}

func clampProb(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
