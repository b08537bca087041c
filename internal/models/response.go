package models

import "net/http"

const SuccessMessage = "Data published successfully"

// Response is the boundary envelope returned by both delivery surfaces.
type Response struct {
	StatusCode int                          `json:"statusCode"`
	Body       interface{}                  `json:"body"`
	Data       []map[string]ScenarioOutcome `json:"data,omitempty"`
	Length     *int                         `json:"length,omitempty"`
}

// NewSuccessResponse keys each result by the requested scenario.
func NewSuccessResponse(results ...*PredictionResult) *Response {
	data := make([]map[string]ScenarioOutcome, 0, len(results))
	for _, r := range results {
		key, outcome := r.Requested()
		data = append(data, map[string]ScenarioOutcome{key: outcome})
	}
	n := len(data)
	return &Response{
		StatusCode: http.StatusOK,
		Body:       SuccessMessage,
		Data:       data,
		Length:     &n,
	}
}

func NewErrorResponse(status int, message string) *Response {
	return &Response{
		StatusCode: status,
		Body:       map[string]string{"error": message},
	}
}
