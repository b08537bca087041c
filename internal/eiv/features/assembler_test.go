package features

import (
	"testing"

	"eiv-admissions/internal/eiv/scoring"
	"eiv-admissions/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func createTestRequest() *models.Request {
	return &models.Request{
		ClientName:     "John Smith",
		Subscriber:     "JOHN SMITH",
		SCA:            true,
		OONBenefits:    true,
		Multiplan:      false,
		FundingType:    "Self funded",
		PolicyType:     strPtr("PPO"),
		Deductible:     floatPtr(500),
		OutOfBucket:    floatPtr(1500),
		CoinsuranceOON: floatPtr(30),
	}
}

func TestCombine_AddsRequestColumns(t *testing.T) {
	resolved := models.FeatureRow{"PREFIX_$": 0.4}
	row := Combine(createTestRequest(), resolved)

	assert.Equal(t, 500.0, row[ColDeductible])
	assert.Equal(t, 1500.0, row[ColOutOfPocket])
	assert.Equal(t, 30.0, row[ColCoInsurance])
	assert.Equal(t, "Yes", row[ColOONBenefits])
	assert.Equal(t, "Yes", row[ColSCAFlag])
	assert.Equal(t, "No", row[ColMultiplan])
	assert.Equal(t, "PPO", row[ColPolicyType])
	assert.Equal(t, 0.4, row["PREFIX_$"])
	assert.NotContains(t, resolved, ColDeductible, "resolved row is not modified")

	req := createTestRequest()
	req.PolicyType = nil
	req.Deductible = nil
	row = Combine(req, resolved)
	assert.Nil(t, row[ColPolicyType])
	assert.Nil(t, row[ColDeductible])
}

func TestAssemble_ImputesMissingValues(t *testing.T) {
	out := Assemble(models.FeatureRow{})

	tests := []struct {
		column string
		want   interface{}
	}{
		{"PREFIX_$", 0.1752023489},
		{"PAYOR_$", 0.31409723805},
		{scoring.ColRegion, 0.28720960417},
		{"SUBS_$", 1.0},
		{"GROUP_$", 0.205473112},
		{"FUNDED_$", 0.28596408507},
		{ColOONBenefits, 0.0},
		{scoring.ColWaterfallResult, 0.329085900650},
		{ColDeductible, nil},
		{"CLAIM_AMOUNT_PAID", nil},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, out[tt.column])
		})
	}
}

func TestAssemble_RenamesAndSelects(t *testing.T) {
	combined := Combine(createTestRequest(), models.FeatureRow{
		"STATE_$":          0.6,
		"MASTER_COLLECTED": 0.7,
		"SUBS_CLAIMS":      12.0,
	})
	out := Assemble(combined)

	assert.Equal(t, 0.6, out[scoring.ColRegion])
	assert.Equal(t, 0.7, out[scoring.ColWaterfallResult])
	assert.NotContains(t, out, "STATE_$")
	assert.NotContains(t, out, "MASTER_COLLECTED")
	assert.NotContains(t, out, "SUBS_CLAIMS")
	assert.Len(t, out, 16)
	assert.ElementsMatch(t, Columns(), keys(out))
}

func TestAssemble_CoercesAndNormalizes(t *testing.T) {
	combined := Combine(createTestRequest(), models.FeatureRow{
		"PAYOR_$": "0.25",
		"GROUP_$": "n/a",
	})
	out := Assemble(combined)

	assert.Equal(t, 0.25, out["PAYOR_$"])
	assert.Nil(t, out["GROUP_$"], "uncoercible text becomes missing")
	assert.Equal(t, 1.0, out[ColOONBenefits])
	assert.Equal(t, 1.0, out[ColSCAFlag])
	assert.Equal(t, 0.0, out[ColMultiplan])
	assert.Equal(t, "PPO", out[ColPolicyType])
	assert.Equal(t, "John Smith", out[ColClientName])
}

func TestAssemble_FeedsScaler(t *testing.T) {
	out := Assemble(Combine(createTestRequest(), models.FeatureRow{}))
	for _, c := range scoring.ScaledColumns {
		_, ok := out.Number(c)
		assert.True(t, ok, "%s must be numeric after assembly", c)
	}
}

func TestNormalizeFlag(t *testing.T) {
	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{"Yes", 1.0},
		{"True", 1.0},
		{"No", 0.0},
		{"False", 0.0},
		{true, 1.0},
		{false, 0.0},
		{"maybe", "maybe"},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFlag(tt.in), "%v", tt.in)
	}
}

func keys(row models.FeatureRow) []string {
	out := make([]string, 0, len(row))
	for k := range row {
		out = append(out, k)
	}
	return out
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 16)
	assert.Equal(t, scoring.ColRegion, cols[2])
	assert.Equal(t, scoring.ColWaterfallResult, cols[11])
}
