package eivpredict

import "eiv-admissions/internal/models"

// Output is merged into the process instance on completion.
type Output struct {
	EIVStatusCode int              `json:"eivStatusCode"`
	EIVResponse   *models.Response `json:"eivResponse"`
}
