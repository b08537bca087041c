// Package waterfall resolves financial features from the reference dataset
// by dimension lookups and precedence folds.
package waterfall

import (
	"strings"

	"eiv-admissions/internal/models"
)

// Dimension is a reference key a request can be matched on.
type Dimension struct {
	// Name prefixes the dimension's feature columns, e.g. SUBS_CLAIMS.
	Name string
	// Column is the reference column holding the key.
	Column string
}

var (
	Client     = Dimension{Name: "CLIENT", Column: models.ColClientName}
	Prefix     = Dimension{Name: "PREFIX", Column: models.ColPrefix}
	Payor      = Dimension{Name: "PAYOR", Column: models.ColPayor}
	State      = Dimension{Name: "STATE", Column: models.ColState}
	Subscriber = Dimension{Name: "SUBS", Column: models.ColSubscriber}
	Group      = Dimension{Name: "GROUP", Column: models.ColGroupNumber}
	Funded     = Dimension{Name: "FUNDED", Column: models.ColFundedStatus}
)

// Dimensions is the lookup order; every dimension is looked up independently.
var Dimensions = []Dimension{Client, Prefix, Payor, State, Subscriber, Group, Funded}

// Metric is a per-dimension value family.
type Metric string

const (
	Claims   Metric = "CLAIMS"
	ClaimsPY Metric = "CLAIMS_PY"
	Pulled   Metric = "$"
	PulledPY Metric = "$_PY"
	Billed   Metric = "BILL"
	BilledPY Metric = "BILL_PY"
)

// Metrics lists every family resolved per dimension.
var Metrics = []Metric{Claims, ClaimsPY, Pulled, PulledPY, Billed, BilledPY}

// Feature names the resolved column for d and m.
func (d Dimension) Feature(m Metric) string {
	return d.Name + "_" + string(m)
}

// Keys holds the request's value per dimension name. Missing keys were not supplied.
type Keys map[string]string

func (k Keys) Get(d Dimension) (string, bool) {
	v, ok := k[d.Name]
	return v, ok
}

// KeysFromRequest derives dimension keys: subscriber, group and state are
// upper-cased, and the prefix is the first three characters of the trimmed
// policy id, upper-cased.
func KeysFromRequest(req *models.Request) Keys {
	k := Keys{
		Client.Name:     req.ClientName,
		Subscriber.Name: strings.ToUpper(req.Subscriber),
		Funded.Name:     req.FundingType,
	}
	if req.PolicyID != nil {
		k[Prefix.Name] = PolicyPrefix(*req.PolicyID)
	}
	if req.Payor != nil {
		k[Payor.Name] = *req.Payor
	}
	if req.State != nil {
		k[State.Name] = strings.ToUpper(*req.State)
	}
	if req.GroupID != nil {
		k[Group.Name] = strings.ToUpper(*req.GroupID)
	}
	return k
}

// PolicyPrefix returns the first three characters of the trimmed id, upper-cased.
func PolicyPrefix(policyID string) string {
	r := []rune(strings.TrimSpace(policyID))
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}
