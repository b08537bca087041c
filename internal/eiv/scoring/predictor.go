package scoring

import (
	"fmt"
	"math"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/models"
)

// Model input column names after assembly.
const (
	ColPrefix          = "PREFIX_$"
	ColPayor           = "PAYOR_$"
	ColRegion          = "REGION_$"
	ColSubscriber      = "SUBS_$"
	ColGroup           = "GROUP_$"
	ColFunded          = "FUNDED_$"
	ColOONBenefits     = "OON_BENEFITS"
	ColWaterfallResult = "WATERFALL RESULT"
	ColSCAFlag         = "SCA_FLAG"
)

// ScaledColumns are standardized before scoring.
var ScaledColumns = []string{
	ColPrefix, ColPayor, ColRegion, ColSubscriber, ColGroup, ColFunded, ColOONBenefits, ColWaterfallResult,
}

// RegressorColumns are the scaled columns plus the scenario indicator.
var RegressorColumns = append(append([]string(nil), ScaledColumns...), ColSCAFlag)

var ClassifierColumns = []string{
	ColPrefix, ColPayor, ColRegion, ColGroup, ColFunded, ColOONBenefits,
}

// Scale standardizes the assembled row. The result holds one value per
// scaler feature, keyed by name.
func (m *ModelSet) Scale(row models.FeatureRow) (map[string]float64, error) {
	x := make([]float64, len(m.Scaler.Features))
	for i, name := range m.Scaler.Features {
		v, err := inputValue(row, name)
		if err != nil {
			return nil, err
		}
		x[i] = v
	}
	scaled, err := m.Scaler.Transform(x)
	if err != nil {
		return nil, apperrors.NewModelInputError(err.Error())
	}

	out := make(map[string]float64, len(scaled))
	for i, name := range m.Scaler.Features {
		out[name] = scaled[i]
	}
	return out, nil
}

// Predict scores one scenario against the scaled features. The input is not
// modified; the scenario indicator is injected into a private copy.
func (m *ModelSet) Predict(scaled map[string]float64, scenario models.Scenario) (models.ScenarioScore, error) {
	withFlag := make(map[string]float64, len(scaled)+1)
	for k, v := range scaled {
		withFlag[k] = v
	}
	withFlag[ColSCAFlag] = scenario.Indicator()

	rx, err := vector(withFlag, m.Regressor.Features)
	if err != nil {
		return models.ScenarioScore{}, err
	}
	cx, err := vector(scaled, m.Classifier.Features)
	if err != nil {
		return models.ScenarioScore{}, err
	}

	pct := m.Regressor.Predict(rx)
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return models.ScenarioScore{}, apperrors.NewModelInputError("regressor produced a non-finite value")
	}
	return models.ScenarioScore{
		Scenario:      scenario,
		Percentage:    pct,
		Probabilities: m.Classifier.PredictProba(cx),
	}, nil
}

// PredictAll scores both scenarios.
func (m *ModelSet) PredictAll(scaled map[string]float64) (sca, nsca models.ScenarioScore, err error) {
	if sca, err = m.Predict(scaled, models.ScenarioSCA); err != nil {
		return
	}
	nsca, err = m.Predict(scaled, models.ScenarioNSCA)
	return
}

func vector(values map[string]float64, names []string) ([]float64, error) {
	x := make([]float64, len(names))
	for i, name := range names {
		v, ok := values[name]
		if !ok {
			return nil, apperrors.NewModelInputError(fmt.Sprintf("feature %q is missing", name))
		}
		if math.IsNaN(v) {
			return nil, apperrors.NewModelInputError(fmt.Sprintf("feature %q is NaN", name))
		}
		x[i] = v
	}
	return x, nil
}

func inputValue(row models.FeatureRow, name string) (float64, error) {
	raw, present := row[name]
	if !present {
		return 0, apperrors.NewModelInputError(fmt.Sprintf("feature %q is missing", name))
	}
	v, ok := models.ToNumber(raw)
	if !ok || math.IsNaN(v) {
		return 0, apperrors.NewModelInputError(fmt.Sprintf("feature %q is NaN", name))
	}
	return v, nil
}
