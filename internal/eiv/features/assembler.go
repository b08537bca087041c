// Package features turns a resolved waterfall row and the request into the
// model-ready feature row.
package features

import (
	"strings"

	"eiv-admissions/internal/eiv/scoring"
	"eiv-admissions/internal/eiv/waterfall"
	"eiv-admissions/internal/models"
)

// Request-derived columns.
const (
	ColDeductible  = "DEDUCTIBLE"
	ColOutOfPocket = "OUT_OF_POCKET"
	ColCoInsurance = "CO_INSURANCE"
	ColOONBenefits = "OON_BENEFITS"
	ColSCAFlag     = "SCA_FLAG"
	ColMultiplan   = "MULTIPLAN_FLAG"
	ColPolicyType  = "POLICY_TYPE"
	ColClientName  = "CLIENT_NAME"
	ColStateAmount = "STATE_$"
)

// Selected lists the sixteen columns kept from the combined row, before renaming.
var Selected = []string{
	"PREFIX_$", "PAYOR_$", ColStateAmount, "SUBS_$", "GROUP_$", "FUNDED_$",
	ColDeductible, ColOutOfPocket, ColCoInsurance, ColOONBenefits, ColSCAFlag,
	waterfall.FeatureMasterCollected, ColMultiplan, ColPolicyType, ColClientName,
	waterfall.FeatureClaimAmountPaid,
}

// Imputations fill missing values with constants fitted offline.
var Imputations = map[string]interface{}{
	"PREFIX_$":                       0.1752023489,
	"PAYOR_$":                        0.31409723805,
	ColStateAmount:                   0.28720960417,
	"SUBS_$":                         1.0,
	"GROUP_$":                        0.205473112,
	"FUNDED_$":                       0.28596408507,
	ColOONBenefits:                   false,
	waterfall.FeatureMasterCollected: 0.329085900650,
}

// numericColumns are coerced to float; values that fail become missing.
var numericColumns = []string{
	"PREFIX_$", "PAYOR_$", ColStateAmount, "SUBS_$", "GROUP_$", "FUNDED_$",
	ColDeductible, ColOutOfPocket, ColCoInsurance,
	waterfall.FeatureMasterCollected, waterfall.FeatureClaimAmountPaid,
}

var flagColumns = []string{ColOONBenefits, ColSCAFlag, ColMultiplan}

// Renames maps assembled names to the names the frozen models were trained on.
var Renames = map[string]string{
	ColStateAmount:                   scoring.ColRegion,
	waterfall.FeatureMasterCollected: scoring.ColWaterfallResult,
}

// Combine merges the request's benefit terms and flags into the resolved row.
// Flags use the "Yes"/"No" rendering of the reference dataset.
func Combine(req *models.Request, resolved models.FeatureRow) models.FeatureRow {
	row := resolved.Clone()
	row[ColDeductible] = optFloat(req.Deductible)
	row[ColOutOfPocket] = optFloat(req.OutOfBucket)
	row[ColCoInsurance] = optFloat(req.CoinsuranceOON)
	row[ColOONBenefits] = models.YesNo(req.OONBenefits)
	row[ColSCAFlag] = models.YesNo(req.SCA)
	row[ColMultiplan] = models.YesNo(req.Multiplan)
	row[ColClientName] = req.ClientName
	if req.PolicyType != nil {
		row[ColPolicyType] = *req.PolicyType
	} else {
		row[ColPolicyType] = nil
	}
	return row
}

// Assemble selects, imputes, coerces, normalizes and renames. The input is
// not modified.
func Assemble(combined models.FeatureRow) models.FeatureRow {
	out := make(models.FeatureRow, len(Selected))
	for _, c := range Selected {
		out[c] = combined[c]
	}

	for c, def := range Imputations {
		if out[c] == nil {
			out[c] = def
		}
	}
	for _, c := range numericColumns {
		if v, ok := models.ToNumber(out[c]); ok {
			out[c] = v
		} else {
			out[c] = nil
		}
	}
	for _, c := range flagColumns {
		out[c] = NormalizeFlag(out[c])
	}

	for from, to := range Renames {
		out[to] = out[from]
		delete(out, from)
	}
	return out
}

// Columns returns the assembled column names in selection order.
func Columns() []string {
	cols := make([]string, len(Selected))
	for i, c := range Selected {
		if to, ok := Renames[c]; ok {
			c = to
		}
		cols[i] = c
	}
	return cols
}

// NormalizeFlag maps boolean-like values to 1.0 or 0.0. Anything else is
// returned unchanged.
func NormalizeFlag(v interface{}) interface{} {
	switch f := v.(type) {
	case bool:
		if f {
			return 1.0
		}
		return 0.0
	case string:
		switch strings.TrimSpace(f) {
		case "True", "Yes":
			return 1.0
		case "False", "No":
			return 0.0
		}
	}
	return v
}

func optFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
