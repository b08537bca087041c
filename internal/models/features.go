package models

// FeatureRow holds resolved and assembled features by column name.
// Missing values are absent keys or nil.
type FeatureRow map[string]interface{}

// Number returns the feature as a float when it is numeric.
func (f FeatureRow) Number(column string) (float64, bool) {
	return ToNumber(f[column])
}

// Present reports a non-nil value.
func (f FeatureRow) Present(column string) bool {
	return f[column] != nil
}

// Clone returns a shallow copy.
func (f FeatureRow) Clone() FeatureRow {
	out := make(FeatureRow, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
