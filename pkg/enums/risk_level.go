package enums

// RiskLevel classifies the weather risk for a project over the forecast window.
type RiskLevel string

const (
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelClear    RiskLevel = "CLEAR"
	// RiskLevelUnknown means no trustworthy forecast exists. It is distinct
	// from RiskLevelClear: absence of data is never reported as a confirmed
	// clear sky.
	RiskLevelUnknown RiskLevel = "UNKNOWN"
)

// String implements fmt.Stringer.
func (r RiskLevel) String() string {
	return string(r)
}
