// Package pipeline runs one EIV prediction request through every stage and
// shapes the boundary response.
package pipeline

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/internal/common/metrics"
	"eiv-admissions/internal/common/observability"
	"eiv-admissions/internal/eiv/features"
	"eiv-admissions/internal/eiv/reference"
	"eiv-admissions/internal/eiv/scoring"
	"eiv-admissions/internal/eiv/synthesis"
	"eiv-admissions/internal/eiv/validator"
	"eiv-admissions/internal/eiv/waterfall"
	"eiv-admissions/internal/models"

	"github.com/google/uuid"
)

// Stage names used in logs, spans and metrics.
const (
	StageValidate   = "validate"
	StageReference  = "reference"
	StageGuard      = "guard"
	StageWaterfall  = "waterfall"
	StageAssemble   = "assemble"
	StageScore      = "score"
	StageSynthesize = "synthesize"
	StagePersist    = "persist"
)

// Delivery surfaces, used as the source metric label.
const (
	SourceHTTP  = "http"
	SourceZeebe = "zeebe"
)

type ReferenceSource interface {
	Load(ctx context.Context) (*models.ReferenceDataset, error)
}

type ModelSource interface {
	Get(ctx context.Context) (*scoring.ModelSet, error)
}

type ResultPersister interface {
	Persist(ctx context.Context, r *models.PredictionResult) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Reference     ReferenceSource
	Guard         *reference.Guard
	Models        ModelSource
	Synthesizer   *synthesis.Synthesizer
	Persister     ResultPersister
	Observability *observability.Observability
	Logger        logger.Logger
}

// Service is safe for concurrent use; requests share only read-only state.
type Service struct {
	reference ReferenceSource
	guard     *reference.Guard
	models    ModelSource
	synth     *synthesis.Synthesizer
	persister ResultPersister
	obs       *observability.Observability
	logger    logger.Logger
	newID     func() string
}

func NewService(d Deps) *Service {
	obs := d.Observability
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Service{
		reference: d.Reference,
		guard:     d.Guard,
		models:    d.Models,
		synth:     d.Synthesizer,
		persister: d.Persister,
		obs:       obs,
		logger:    d.Logger.WithFields(map[string]interface{}{"component": "eiv-pipeline"}),
		newID:     uuid.NewString,
	}
}

// HandleRaw decodes a JSON envelope and handles it.
func (s *Service) HandleRaw(ctx context.Context, raw []byte, source string) *models.Response {
	resp, _ := s.Process(ctx, raw, source)
	return resp
}

// Process is HandleRaw that also returns the classified failure, nil on
// success. The response is never nil.
func (s *Service) Process(ctx context.Context, raw []byte, source string) (*models.Response, *apperrors.StandardError) {
	envelope, err := validator.DecodeObject(raw)
	if err != nil {
		return s.fail(s.logger.WithFields(map[string]interface{}{"source": source}), source, err)
	}
	return s.handle(ctx, envelope, source)
}

// Handle validates the envelope's body, runs the prediction and maps the
// outcome to a response. It never returns nil.
func (s *Service) Handle(ctx context.Context, envelope map[string]interface{}, source string) *models.Response {
	resp, _ := s.handle(ctx, envelope, source)
	return resp
}

func (s *Service) handle(ctx context.Context, envelope map[string]interface{}, source string) (*models.Response, *apperrors.StandardError) {
	requestID := s.newID()
	log := s.logger.WithFields(map[string]interface{}{"requestId": requestID, "source": source})

	var req *models.Request
	err := s.run(ctx, log, StageValidate, func(context.Context) error {
		body, err := validator.DecodeBody(envelope)
		if err != nil {
			return err
		}
		req, err = validator.Validate(body)
		return err
	})
	if err != nil {
		return s.fail(log, source, err)
	}

	result, err := s.Predict(ctx, requestID, req)
	if err != nil {
		return s.fail(log, source, err)
	}

	metrics.PredictionsTotal.WithLabelValues(source, "success").Inc()
	return models.NewSuccessResponse(result), nil
}

// Predict runs every stage after validation. A failure at any stage aborts
// the request before anything is persisted.
func (s *Service) Predict(ctx context.Context, requestID string, req *models.Request) (*models.PredictionResult, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"vobId":     deref(req.VOBID),
		"client":    logger.MaskName(req.ClientName),
	})

	var ds *models.ReferenceDataset
	err := s.run(ctx, log, StageReference, func(ctx context.Context) (err error) {
		ds, err = s.reference.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.run(ctx, log, StageGuard, func(context.Context) error {
		return s.guard.CheckAll(ds, GuardCategories(req))
	})
	if err != nil {
		return nil, err
	}

	var resolved models.FeatureRow
	s.step(ctx, log, StageWaterfall, func() {
		resolved = waterfall.NewResolver(ds).Resolve(waterfall.KeysFromRequest(req), models.YesNo(req.SCA))
	})

	var assembled models.FeatureRow
	s.step(ctx, log, StageAssemble, func() {
		assembled = features.Assemble(features.Combine(req, resolved))
	})

	var (
		set       *scoring.ModelSet
		sca, nsca models.ScenarioScore
	)
	err = s.run(ctx, log, StageScore, func(ctx context.Context) error {
		var err error
		if set, err = s.models.Get(ctx); err != nil {
			return err
		}
		scaled, err := set.Scale(assembled)
		if err != nil {
			return err
		}
		sca, nsca, err = set.PredictAll(scaled)
		return err
	})
	if err != nil {
		return nil, err
	}

	var result *models.PredictionResult
	s.step(ctx, log, StageSynthesize, func() {
		result = s.synth.Synthesize(synthesis.Input{
			RequestID:    requestID,
			Request:      req,
			SCA:          sca,
			NSCA:         nsca,
			ModelVersion: set.Label,
		})
	})
	metrics.ClientTypes.WithLabelValues(string(models.ScenarioSCA), result.SCA.EIVClientType).Inc()
	metrics.ClientTypes.WithLabelValues(string(models.ScenarioNSCA), result.NSCA.EIVClientType).Inc()

	err = s.run(ctx, log, StagePersist, func(ctx context.Context) error {
		return s.persister.Persist(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GuardCategories lists the request's guarded values in check order. State
// is compared upper-cased like the reference lookups.
func GuardCategories(req *models.Request) []reference.Category {
	var state *string
	if req.State != nil {
		upper := strings.ToUpper(*req.State)
		state = &upper
	}
	return []reference.Category{
		{Column: models.ColPayor, Value: req.Payor},
		{Column: models.ColState, Value: state},
		{Column: models.ColPolicyType, Value: req.PolicyType},
	}
}

// run instruments a stage that can fail.
func (s *Service) run(ctx context.Context, log logger.Logger, stage string, fn func(context.Context) error) error {
	stageCtx, done := s.begin(ctx, log, stage)
	err := fn(stageCtx)
	done(err)
	return err
}

// step instruments a stage that cannot fail.
func (s *Service) step(ctx context.Context, log logger.Logger, stage string, fn func()) {
	_, done := s.begin(ctx, log, stage)
	fn()
	done(nil)
}

func (s *Service) begin(ctx context.Context, log logger.Logger, stage string) (context.Context, func(error)) {
	log.Debug("Stage started", map[string]interface{}{"stage": stage})
	start := time.Now()
	stageCtx, end := s.obs.StartStage(ctx, stage)

	return stageCtx, func(err error) {
		end(err)
		elapsed := time.Since(start)
		metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
		if err == nil {
			log.Info("Stage completed", map[string]interface{}{
				"stage":      stage,
				"durationMs": elapsed.Milliseconds(),
			})
		}
	}
}

func (s *Service) fail(log logger.Logger, source string, err error) (*models.Response, *apperrors.StandardError) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.StatusForCode(stdErr.Code)

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
		"statusCode":    status,
		"details":       stdErr.Details,
	}
	if status == http.StatusInternalServerError {
		log.Error("Prediction failed", fields)
	} else {
		log.Warn("Prediction rejected", fields)
	}

	metrics.PredictionsTotal.WithLabelValues(source, "error").Inc()
	metrics.PredictionFailures.WithLabelValues(string(stdErr.Code)).Inc()
	return models.NewErrorResponse(status, stdErr.Message), stdErr
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
