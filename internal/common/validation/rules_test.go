package validation

import (
	"encoding/json"
	"testing"

	apperrors "eiv-admissions/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_PresenceCheckedBeforeRules(t *testing.T) {
	fields := []Field{
		{Name: "A", Rule: Percent()},
		{Name: "B", Rule: OptionalText()},
	}

	// A is invalid, but B's absence is reported first.
	_, err := Apply(map[string]interface{}{"A": 500.0}, fields)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingField))
}

func TestRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		in      interface{}
		want    interface{}
		wantErr apperrors.ErrorCode
	}{
		{"text keeps null", OptionalText(), nil, nil, ""},
		{"text", OptionalText(), "abc", "abc", ""},
		{"flag default", Flag(false), nil, false, ""},
		{"flag", Flag(false), true, true, ""},
		{"one of default", OneOf("x", "x", "y"), nil, "x", ""},
		{"one of rejects", OneOf("x", "x", "y"), "z", nil, apperrors.ErrCodeRange},
		{"percent json number", Percent(), json.Number("55.5"), 55.5, ""},
		{"percent int", Percent(), 100, 100.0, ""},
		{"percent keeps null", Percent(), nil, nil, ""},
		{"non negative", NonNegative(), -0.01, nil, apperrors.ErrCodeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule("F", tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
