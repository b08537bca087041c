// Package synthesis converts raw scenario scores into the rounded,
// labelled prediction result.
package synthesis

import (
	"math"
	"time"

	"eiv-admissions/internal/models"
)

// Client types.
const (
	ClassScholarshipProvider = "Scholarship Provider"
	ClassScholarship         = "Scholarship"
	ClassMidPayor            = "Mid Payor"
	ClassUnknown             = "Unknown"
)

// Financial statuses.
const (
	StatusAdmitted    = "Admitted"
	StatusNotAdmitted = "Not Admitted"
	StatusUnknown     = "Unknown"
)

// Population constants from the historical evaluation set.
const (
	PopulationMean   = 0.2599563082571688
	PopulationStdDev = 0.31011404122862357
)

// Treatment assumptions behind the dollar conversion.
const (
	HoursPerWeek = 25
	UnitsPerHour = 4
	UnitCost     = 285
)

const (
	providerThreshold    = 0.45
	scholarshipThreshold = 0.06
)

// Synthesizer builds PredictionResults. It holds no per-request state.
type Synthesizer struct {
	resetDate func(now time.Time) time.Time
	now       func() time.Time
}

// NewSynthesizer takes the benefit reset date resolver.
func NewSynthesizer(resetDate func(now time.Time) time.Time) *Synthesizer {
	return &Synthesizer{resetDate: resetDate, now: time.Now}
}

// Input is everything the synthesizer needs from earlier stages.
type Input struct {
	RequestID    string
	Request      *models.Request
	SCA          models.ScenarioScore
	NSCA         models.ScenarioScore
	ModelVersion string
}

// Synthesize produces exactly one result for the request.
func (s *Synthesizer) Synthesize(in Input) *models.PredictionResult {
	now := s.now()
	weeks := WeeksToReset(now, s.resetDate(now))

	return &models.PredictionResult{
		RequestID:        in.RequestID,
		VOBID:            in.Request.VOBID,
		ClientTrackingID: in.Request.ClientTrackingID,
		ClientName:       in.Request.ClientName,
		SCAFlag:          in.Request.SCA,
		PredictionDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		SCA:              Outcome(in.SCA, weeks),
		NSCA:             Outcome(in.NSCA, weeks),
		VOBAmount:        Round2(in.Request.VOBAmount()),
		WeeksToReset:     weeks,
		ModelVersion:     in.ModelVersion,
		GeneratedAt:      now.UTC(),
	}
}

// Outcome synthesizes one scenario. Labels are derived from the clamped,
// unrounded percentage; numbers are rounded last.
func Outcome(score models.ScenarioScore, weeks float64) models.ScenarioOutcome {
	pct := score.Percentage
	if pct < 0 {
		pct = 0
	}
	class := Classify(pct)

	return models.ScenarioOutcome{
		EIVPercentage:   Round2(pct),
		EIVValue:        Round2(DollarValue(pct, weeks)),
		EIVClientType:   class,
		PercClientType:  Round2(MaxProbability(score.Probabilities)),
		EIVZscore:       Round2(ZScore(pct)),
		FinancialStatus: FinancialStatus(class),
	}
}

// Classify buckets a clamped percentage. Rule order resolves the boundaries.
func Classify(pct float64) string {
	switch {
	case pct >= providerThreshold:
		return ClassScholarshipProvider
	case pct <= scholarshipThreshold:
		return ClassScholarship
	case pct > scholarshipThreshold && pct < providerThreshold:
		return ClassMidPayor
	default:
		// NaN
		return ClassUnknown
	}
}

func FinancialStatus(class string) string {
	switch class {
	case ClassScholarship, ClassMidPayor:
		return StatusNotAdmitted
	case ClassScholarshipProvider:
		return StatusAdmitted
	default:
		return StatusUnknown
	}
}

// MaxProbability returns the largest class probability, or 0 for none.
func MaxProbability(p []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	m := p[0]
	for _, v := range p[1:] {
		m = math.Max(m, v)
	}
	return m
}

func ZScore(pct float64) float64 {
	return (pct - PopulationMean) / PopulationStdDev
}

// EIVStar is the full-treatment value for the remaining weeks.
func EIVStar(weeks float64) float64 {
	return HoursPerWeek * UnitsPerHour * UnitCost * weeks
}

func DollarValue(pct, weeks float64) float64 {
	return pct * EIVStar(weeks)
}

// WeeksToReset counts whole days from now until reset, in weeks rounded to
// two decimals. Past reset dates give negative weeks.
func WeeksToReset(now, reset time.Time) float64 {
	days := math.Floor(reset.Sub(now).Hours() / 24)
	return Round2(days / 7)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
