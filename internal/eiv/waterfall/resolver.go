package waterfall

import (
	"strings"

	"eiv-admissions/internal/models"
)

// Composite and ground-truth feature names.
const (
	FeatureMasterCollected = "MASTER_COLLECTED"
	FeatureClaimAmountPaid = "CLAIM_AMOUNT_PAID"
	FeaturePaidClaim       = models.ColPaidClaim
)

// Resolver answers lookups against one reference snapshot. It is read-only.
type Resolver struct {
	rows []models.ReferenceRow
}

func NewResolver(ds *models.ReferenceDataset) *Resolver {
	return &Resolver{rows: ds.Rows}
}

// FirstMatch returns the first row whose d column equals value and whose
// SCA_FLAG equals flag, both compared case-insensitively.
func (r *Resolver) FirstMatch(d Dimension, value, flag string) (models.ReferenceRow, bool) {
	for _, row := range r.rows {
		if textEquals(row, d.Column, value) && textEquals(row, models.ColSCAFlag, flag) {
			return row, true
		}
	}
	return nil, false
}

// Lookup returns metric m for dimension d, or nil when the dimension was not
// supplied or no row matches.
func (r *Resolver) Lookup(keys Keys, d Dimension, m Metric, flag string) interface{} {
	value, ok := keys.Get(d)
	if !ok {
		return nil
	}
	row, ok := r.FirstMatch(d, value, flag)
	if !ok {
		return nil
	}
	return row[d.Feature(m)]
}

// Resolve fills every dimension/metric feature, the two composites and the
// paid-claim ground truth.
func (r *Resolver) Resolve(keys Keys, flag string) models.FeatureRow {
	features := make(models.FeatureRow, len(Dimensions)*len(Metrics)+3)

	for _, d := range Dimensions {
		value, supplied := keys.Get(d)
		var row models.ReferenceRow
		if supplied {
			row, _ = r.FirstMatch(d, value, flag)
		}
		for _, m := range Metrics {
			if row == nil {
				features[d.Feature(m)] = nil
				continue
			}
			features[d.Feature(m)] = row[d.Feature(m)]
		}
	}

	features[FeatureMasterCollected] = optional(Reduce(features, CollectedPrecedence))
	features[FeatureClaimAmountPaid] = optional(Reduce(features, PaidPrecedence))
	features[FeaturePaidClaim] = r.SpecificMatch(keys)

	return features
}

// SpecificMatch returns PAID_CLAIM_$ from the first row matching every
// supplied dimension at once, or nil when no dimension is supplied or no row
// matches.
func (r *Resolver) SpecificMatch(keys Keys) interface{} {
	var constraints []Dimension
	for _, d := range Dimensions {
		if _, ok := keys.Get(d); ok {
			constraints = append(constraints, d)
		}
	}
	if len(constraints) == 0 {
		return nil
	}

	for _, row := range r.rows {
		matched := true
		for _, d := range constraints {
			v, _ := keys.Get(d)
			if !textEquals(row, d.Column, v) {
				matched = false
				break
			}
		}
		if matched {
			return row[models.ColPaidClaim]
		}
	}
	return nil
}

func textEquals(row models.ReferenceRow, column, want string) bool {
	got, ok := row.Text(column)
	return ok && strings.EqualFold(got, want)
}

func optional(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}
