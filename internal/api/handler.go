// Package api exposes the EIV pipeline over HTTP.
package api

import (
	"context"
	"net/http"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/eiv/pipeline"
	"eiv-admissions/internal/models"

	"github.com/gin-gonic/gin"
)

// Predictor is satisfied by *pipeline.Service.
type Predictor interface {
	HandleRaw(ctx context.Context, raw []byte, source string) *models.Response
}

type Handler struct {
	predictor Predictor
}

func NewHandler(p Predictor) *Handler {
	return &Handler{predictor: p}
}

// Register mounts the prediction routes.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	{
		v1.POST("/eiv", h.Predict)
	}
}

// Predict takes the {"body": ...} envelope as-is. The HTTP status mirrors
// the envelope's statusCode.
func (h *Handler) Predict(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		stdErr := apperrors.NewMalformedRequestError(err)
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, stdErr.Message))
		return
	}

	resp := h.predictor.HandleRaw(c.Request.Context(), raw, pipeline.SourceHTTP)
	c.JSON(resp.StatusCode, resp)
}
