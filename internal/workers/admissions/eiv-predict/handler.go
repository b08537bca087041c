package eivpredict

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/internal/eiv/pipeline"
	"eiv-admissions/internal/models"
)

const (
	TaskType = "eiv.predict"
)

// Predictor is satisfied by *pipeline.Service.
type Predictor interface {
	Process(ctx context.Context, raw []byte, source string) (*models.Response, *apperrors.StandardError)
}

type Handler struct {
	config       *Config
	predictor    Predictor
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, predictor Predictor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		predictor:    predictor,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

// Handle reads the request envelope from the job variables. Failures become
// BPMN errors carrying the error code; they are never retried.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, job.Variables)
	if err != nil {
		if sendErr := h.errorHandler.HandleJobError(context.Background(), client, job, err); sendErr != nil {
			h.logger.Error("failed to throw error", map[string]interface{}{
				"jobKey": job.Key,
				"error":  sendErr,
			})
		}
		return
	}

	h.completeJob(client, job, output)
}

// Execute runs the pipeline over the job variables.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	resp, stdErr := h.predictor.Process(ctx, []byte(variables), pipeline.SourceZeebe)
	if stdErr != nil {
		return nil, stdErr
	}
	return &Output{
		EIVStatusCode: resp.StatusCode,
		EIVResponse:   resp,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}
