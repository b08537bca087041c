package waterfall

import "eiv-admissions/internal/models"

// ClaimThreshold is the claim count a dimension must exceed to be trusted.
const ClaimThreshold = 5

// Tier is one step of a precedence list: a dimension and the pair of value
// families read from it.
type Tier struct {
	Dimension Dimension
	Current   Metric
	Prior     Metric
}

// Precedence is an ordered list of tiers evaluated by Reduce.
type Precedence []Tier

func tiers(current, prior Metric, dims ...Dimension) Precedence {
	p := make(Precedence, len(dims))
	for i, d := range dims {
		p[i] = Tier{Dimension: d, Current: current, Prior: prior}
	}
	return p
}

var (
	// CollectedPrecedence derives MASTER_COLLECTED from pull-through amounts.
	CollectedPrecedence = tiers(Pulled, PulledPY, Subscriber, Group, Prefix, Payor, Funded, State)

	// PaidPrecedence derives CLAIM_AMOUNT_PAID from billed amounts and, unlike
	// CollectedPrecedence, starts at the client level.
	PaidPrecedence = tiers(Billed, BilledPY, Client, Subscriber, Group, Prefix, Payor, Funded, State)
)

// Reduce walks p in order. For each tier it takes the current-year value when
// the current-year claim count exceeds the threshold, else the prior-year
// value when the prior-year count does. It returns false when no tier qualifies.
func Reduce(features models.FeatureRow, p Precedence) (float64, bool) {
	for _, t := range p {
		if v, ok := qualified(features, t.Dimension, t.Current, Claims); ok {
			return v, true
		}
		if v, ok := qualified(features, t.Dimension, t.Prior, ClaimsPY); ok {
			return v, true
		}
	}
	return 0, false
}

func qualified(features models.FeatureRow, d Dimension, value, claims Metric) (float64, bool) {
	v, ok := features.Number(d.Feature(value))
	if !ok {
		return 0, false
	}
	n, ok := features.Number(d.Feature(claims))
	if !ok || n <= ClaimThreshold {
		return 0, false
	}
	return v, true
}
