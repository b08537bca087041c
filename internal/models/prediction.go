package models

import "time"

// Scenario identifies the client-type branch a prediction was scored under.
type Scenario string

const (
	ScenarioSCA  Scenario = "SCA"
	ScenarioNSCA Scenario = "NSCA"
)

// Indicator is the value injected into the SCA_FLAG model input.
func (s Scenario) Indicator() float64 {
	if s == ScenarioSCA {
		return 1.0
	}
	return -1.0
}

// ScenarioScore is the raw model output for one scenario.
type ScenarioScore struct {
	Scenario      Scenario  `json:"scenario"`
	Percentage    float64   `json:"percentage"`
	Probabilities []float64 `json:"probabilities"`
}

// ScenarioOutcome is a synthesized, rounded scenario result.
type ScenarioOutcome struct {
	EIVPercentage   float64 `json:"EIVPercentage"`
	EIVValue        float64 `json:"EIVValue"`
	EIVClientType   string  `json:"EIVClientType"`
	PercClientType  float64 `json:"PercClientType"`
	EIVZscore       float64 `json:"EIVZscore"`
	FinancialStatus string  `json:"FinancialStatus"`
}

// PredictionResult is the single record produced per request.
type PredictionResult struct {
	RequestID        string          `json:"requestId"`
	VOBID            *string         `json:"vobId"`
	ClientTrackingID *string         `json:"clientTrackingId,omitempty"`
	ClientName       string          `json:"clientName"`
	SCAFlag          bool            `json:"scaFlag"`
	PredictionDate   time.Time       `json:"predictionDate"`
	SCA              ScenarioOutcome `json:"sca"`
	NSCA             ScenarioOutcome `json:"nsca"`
	VOBAmount        float64         `json:"vobAmount"`
	WeeksToReset     float64         `json:"weeksToReset"`
	ModelVersion     string          `json:"modelVersion,omitempty"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// Requested returns the outcome for the scenario the caller asked about.
func (p *PredictionResult) Requested() (string, ScenarioOutcome) {
	if p.SCAFlag {
		return "SCA", p.SCA
	}
	return "OON", p.NSCA
}
