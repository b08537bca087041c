package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Taxonomy Tests
// ==========================

func TestStatusAndCategory(t *testing.T) {
	tests := []struct {
		name         string
		err          *StandardError
		wantCategory string
		wantStatus   int
	}{
		{"missing field", NewMissingFieldError("Payor"), CategoryValidation, http.StatusBadRequest},
		{"range", NewRangeError("Copay", -1, "must be non-negative"), CategoryValidation, http.StatusBadRequest},
		{"name", NewInvalidNameError("ClientName"), CategoryValidation, http.StatusBadRequest},
		{"type", NewTypeError("SCA", "a boolean"), CategoryValidation, http.StatusBadRequest},
		{"malformed", NewMalformedRequestError(stderrors.New("eof")), CategoryValidation, http.StatusBadRequest},
		{"unknown category", NewUnknownCategoryError("PAYOR", "Humana"), CategoryReference, http.StatusBadRequest},
		{"reference load", NewReferenceLoadError(stderrors.New("down")), CategoryReference, http.StatusBadRequest},
		{"model unavailable", NewModelUnavailableError("scaler", "missing", nil), CategoryModelArtifact, http.StatusBadRequest},
		{"model input", NewModelInputError("feature \"X\" is NaN"), CategoryModelInput, http.StatusBadRequest},
		{"persistence", NewPersistenceError(stderrors.New("refused")), CategoryPersistence, http.StatusInternalServerError},
		{"internal", NewInternalError(stderrors.New("boom")), CategoryOther, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCategory, GetErrorCategory(tt.err.Code))
			assert.Equal(t, tt.wantStatus, StatusForCode(tt.err.Code))
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
			assert.False(t, tt.err.Retryable)
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Column 'Payor' not found in the input.", NewMissingFieldError("Payor").Error())
	assert.Equal(t, "ClientName: Provide a valid name and lastname", NewInvalidNameError("ClientName").Error())
	assert.Equal(t, "Feature: Humana, not in ALLOWED PAYOR CATEGORIES", NewUnknownCategoryError("PAYOR", "Humana").Error())
	assert.Equal(t, "Feature: ZZ, not in ALLOWED STATE CATEGORIES", NewUnknownCategoryError("STATE", "ZZ").Error())
	assert.Equal(t, "Feature: EPO, not in ALLOWED POLICY_TYPE CATEGORIES", NewUnknownCategoryError("POLICY_TYPE", "EPO").Error())
	assert.Equal(t, "Model input mismatch: shape", NewModelInputError("shape").Error())
	assert.Equal(t, "Unexpected error", NewInternalError(stderrors.New("secret detail")).Error())
}

// ==========================
// Wrapping Tests
// ==========================

func TestNormalize(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := fmt.Errorf("persist: %w", NewPersistenceError(cause))

	stdErr := Normalize(wrapped)
	assert.Equal(t, ErrCodePersistenceFailed, stdErr.Code)
	assert.True(t, stderrors.Is(stdErr, cause))
	assert.True(t, HasCode(wrapped, ErrCodePersistenceFailed))
	assert.False(t, HasCode(wrapped, ErrCodeInternal))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)

	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("boom")))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewUnknownCategoryError("STATE", "ZZ")

	bpmn := ConvertToBPMNError(stdErr)
	require.NotNil(t, bpmn)
	assert.Equal(t, "UNKNOWN_CATEGORY", bpmn.Code)
	assert.Equal(t, stdErr.Message, bpmn.Message)
	assert.Equal(t, "column: STATE", bpmn.Details)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "UNKNOWN_CATEGORY", vars["errorCode"])
	assert.Equal(t, CategoryReference, vars["errorCategory"])
	assert.Equal(t, http.StatusBadRequest, vars["statusCode"])
	assert.Equal(t, false, vars["retryable"])
	assert.NotEmpty(t, vars["timestamp"])
}
