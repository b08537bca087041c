package models

import (
	"strconv"
	"strings"
	"time"
)

// Reference dataset column names.
const (
	ColClientName   = "CLIENT_NAME"
	ColAllowed      = "ALLOWED"
	ColPrefix       = "PREFIX"
	ColPayor        = "PAYOR"
	ColState        = "STATE"
	ColRegion       = "REGION"
	ColSubscriber   = "SUBSCRIBER"
	ColGroupNumber  = "GROUP_NUMBER"
	ColFundedStatus = "FUNDED_STATUS"
	ColSCAFlag      = "SCA_FLAG"
	ColPolicyType   = "POLICY_TYPE"
	ColPayorType    = "PAYOR_TYPE"
	ColPaidClaim    = "PAID_CLAIM_$"
	ColVOBID        = "VOB_ID"
)

// ReferenceRow is one historical aggregate record. Cells hold string,
// float64 or nil.
type ReferenceRow map[string]interface{}

// Text returns the cell as text. Numbers are formatted without trailing zeros.
func (r ReferenceRow) Text(column string) (string, bool) {
	switch v := r[column].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Number returns the cell as a float, parsing numeric text.
func (r ReferenceRow) Number(column string) (float64, bool) {
	return ToNumber(r[column])
}

// ReferenceDataset is a deduplicated snapshot of the reference table.
type ReferenceDataset struct {
	Columns  []string       `json:"columns"`
	Rows     []ReferenceRow `json:"rows"`
	LoadedAt time.Time      `json:"loadedAt"`
}

// HasColumn reports whether the snapshot carries column.
func (d *ReferenceDataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Distinct returns the distinct non-null text values of column in first-seen order.
func (d *ReferenceDataset) Distinct(column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range d.Rows {
		v, ok := row.Text(column)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ToNumber coerces a cell to float64. Unparseable text is not a number.
func ToNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
