package scoring

import (
	"math"
	"testing"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembledRow() models.FeatureRow {
	row := models.FeatureRow{}
	for _, c := range ScaledColumns {
		row[c] = 1.0
	}
	row[ColWaterfallResult] = 0.4
	return row
}

func TestModelSet_ScaleAndPredictAll(t *testing.T) {
	set := createTestModelSet(t)

	scaled, err := set.Scale(assembledRow())
	require.NoError(t, err)
	assert.InDelta(t, 0.2, scaled[ColWaterfallResult], 1e-12)
	assert.Equal(t, 1.0, scaled[ColPrefix])
	_, hasFlag := scaled[ColSCAFlag]
	assert.False(t, hasFlag)

	sca, nsca, err := set.PredictAll(scaled)
	require.NoError(t, err)

	assert.Equal(t, models.ScenarioSCA, sca.Scenario)
	assert.InDelta(t, 0.5, sca.Percentage, 1e-12)
	assert.Equal(t, models.ScenarioNSCA, nsca.Scenario)
	assert.InDelta(t, 0.3, nsca.Percentage, 1e-12)
	assert.InDelta(t, 0.5, sca.Probabilities[2], 1e-12)

	_, injected := scaled[ColSCAFlag]
	assert.False(t, injected, "scenario flag must not leak into the caller's features")
}

func TestModelSet_Scale_RejectsMissingAndNaN(t *testing.T) {
	set := createTestModelSet(t)

	tests := []struct {
		name   string
		mutate func(models.FeatureRow)
		want   string
	}{
		{"missing column", func(r models.FeatureRow) { delete(r, ColGroup) }, `"GROUP_$" is missing`},
		{"null value", func(r models.FeatureRow) { r[ColPayor] = nil }, `"PAYOR_$" is NaN`},
		{"NaN value", func(r models.FeatureRow) { r[ColPayor] = math.NaN() }, `"PAYOR_$" is NaN`},
		{"text value", func(r models.FeatureRow) { r[ColFunded] = "abc" }, `"FUNDED_$" is NaN`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := assembledRow()
			tt.mutate(row)
			_, err := set.Scale(row)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelInputInvalid))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestModelSet_Predict_RejectsIncompleteVector(t *testing.T) {
	set := createTestModelSet(t)
	scaled, err := set.Scale(assembledRow())
	require.NoError(t, err)

	delete(scaled, ColRegion)
	_, err = set.Predict(scaled, models.ScenarioSCA)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelInputInvalid))

	scaled[ColRegion] = math.NaN()
	_, err = set.Predict(scaled, models.ScenarioSCA)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelInputInvalid))
}
