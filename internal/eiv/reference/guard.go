package reference

import (
	"fmt"
	"strings"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/models"
)

// GuardableColumns are the categorical columns the guard knows how to check.
var GuardableColumns = []string{
	models.ColPayor,
	models.ColRegion,
	models.ColState,
	models.ColPolicyType,
	models.ColPayorType,
}

// Guard restricts categorical values to those observed in the reference dataset.
type Guard struct {
	enabled bool
	bypass  map[string]bool
}

// NewGuard builds a guard. Columns in bypass accept any value.
func NewGuard(enabled bool, bypass []string) *Guard {
	g := &Guard{enabled: enabled, bypass: make(map[string]bool, len(bypass))}
	for _, col := range bypass {
		g.bypass[strings.ToUpper(strings.TrimSpace(col))] = true
	}
	return g
}

// Active reports whether column is checked.
func (g *Guard) Active(column string) bool {
	return g.enabled && !g.bypass[column]
}

// Check confirms value is among the distinct values of column. Absent values
// and inactive columns pass through unchanged.
func (g *Guard) Check(ds *models.ReferenceDataset, column string, value *string) error {
	if !isGuardable(column) {
		return fmt.Errorf("column %q is not a guardable category", column)
	}
	if value == nil || !g.Active(column) {
		return nil
	}
	for _, allowed := range ds.Distinct(column) {
		if allowed == *value {
			return nil
		}
	}
	return apperrors.NewUnknownCategoryError(column, *value)
}

// CheckAll checks columns in the given order and stops at the first failure.
func (g *Guard) CheckAll(ds *models.ReferenceDataset, values []Category) error {
	for _, c := range values {
		if err := g.Check(ds, c.Column, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// Category pairs a guarded column with a request value.
type Category struct {
	Column string
	Value  *string
}

func isGuardable(column string) bool {
	for _, c := range GuardableColumns {
		if c == column {
			return true
		}
	}
	return false
}
