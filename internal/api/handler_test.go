package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eiv-admissions/internal/eiv/pipeline"
	"eiv-admissions/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Test Helper Functions
// ==========================

type fakePredictor struct {
	resp   *models.Response
	raw    []byte
	source string
}

func (f *fakePredictor) HandleRaw(_ context.Context, raw []byte, source string) *models.Response {
	f.raw = raw
	f.source = source
	return f.resp
}

func newRouter(p Predictor) *gin.Engine {
	r := gin.New()
	NewHandler(p).Register(r)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/eiv", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Predict_Success(t *testing.T) {
	result := &models.PredictionResult{
		SCAFlag: true,
		SCA: models.ScenarioOutcome{
			EIVPercentage:   0.5,
			EIVValue:        142500,
			EIVClientType:   "Scholarship Provider",
			PercClientType:  0.33,
			EIVZscore:       0.77,
			FinancialStatus: "Admitted",
		},
	}
	fake := &fakePredictor{resp: models.NewSuccessResponse(result)}
	body := `{"body": {"ClientName": "Jane Doe"}}`

	w := post(newRouter(fake), body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, string(fake.raw))
	assert.Equal(t, pipeline.SourceHTTP, fake.source)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.EqualValues(t, 200, got["statusCode"])
	assert.Equal(t, models.SuccessMessage, got["body"])
	assert.EqualValues(t, 1, got["length"])

	data := got["data"].([]interface{})
	require.Len(t, data, 1)
	sca := data[0].(map[string]interface{})["SCA"].(map[string]interface{})
	assert.Equal(t, 142500.0, sca["EIVValue"])
	assert.Equal(t, "Admitted", sca["FinancialStatus"])
}

func TestHandler_Predict_ErrorStatusMirrorsEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"validation", http.StatusBadRequest, "Column 'Payor' not found in the input."},
		{"unexpected", http.StatusInternalServerError, "Unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePredictor{resp: models.NewErrorResponse(tt.status, tt.message)}

			w := post(newRouter(fake), `{"body": {}}`)

			assert.Equal(t, tt.status, w.Code)
			var got struct {
				StatusCode int               `json:"statusCode"`
				Body       map[string]string `json:"body"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.status, got.StatusCode)
			assert.Equal(t, tt.message, got.Body["error"])
			assert.NotContains(t, w.Body.String(), `"data"`)
		})
	}
}

func TestHandler_Register_OnlyPost(t *testing.T) {
	r := newRouter(&fakePredictor{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/eiv", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
