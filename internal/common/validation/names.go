package validation

import (
	"regexp"
	"strings"
	"unicode"

	apperrors "eiv-admissions/internal/common/errors"
)

var (
	namePattern   = regexp.MustCompile(`^[A-Za-z'\-]+(?:[, ]+[A-Za-z'\-]+)*$`)
	nameSeparator = regexp.MustCompile(`[,\s]+`)
)

// PersonName requires a name and surname: letters, apostrophes and hyphens,
// at least two parts separated by spaces or commas, no digits, and no part
// containing a run of four identical characters. Null is rejected.
func PersonName() Rule {
	return func(field string, value interface{}) (interface{}, error) {
		s, ok := value.(string)
		if !ok || !IsPersonName(s) {
			return nil, apperrors.NewInvalidNameError(field)
		}
		return s, nil
	}
}

// IsPersonName reports whether s satisfies the PersonName rule.
func IsPersonName(s string) bool {
	if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
		return false
	}
	s = strings.TrimSpace(s)
	if !namePattern.MatchString(s) {
		return false
	}

	parts := nameSeparator.Split(s, -1)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if hasRepeatedRun(p, 4) {
			return false
		}
	}
	return true
}

// hasRepeatedRun reports a run of n identical word characters.
func hasRepeatedRun(s string, n int) bool {
	run := 0
	var prev rune
	for i, r := range s {
		if !isWordChar(r) {
			run = 0
			continue
		}
		if i > 0 && r == prev && run > 0 {
			run++
		} else {
			run = 1
		}
		prev = r
		if run >= n {
			return true
		}
	}
	return false
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
