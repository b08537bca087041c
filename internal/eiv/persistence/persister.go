package persistence

import (
	"context"

	"eiv-admissions/internal/common/logger"
	"eiv-admissions/internal/models"
)

// Sink receives a result after it has been stored.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r *models.PredictionResult) error
}

// Store is the authoritative result store.
type Store interface {
	Upsert(ctx context.Context, r *models.PredictionResult) error
}

// Persister upserts a result and then hands it to every sink. Only the
// upsert can fail the call.
type Persister struct {
	store  Store
	sinks  []Sink
	logger logger.Logger
}

func NewPersister(store Store, log logger.Logger, sinks ...Sink) *Persister {
	return &Persister{
		store:  store,
		sinks:  sinks,
		logger: log.WithFields(map[string]interface{}{"component": "persister"}),
	}
}

func (p *Persister) Persist(ctx context.Context, r *models.PredictionResult) error {
	if err := p.store.Upsert(ctx, r); err != nil {
		return err
	}

	for _, s := range p.sinks {
		if err := s.Deliver(ctx, r); err != nil {
			p.logger.Warn("Result sink failed", map[string]interface{}{
				"sink":      s.Name(),
				"requestId": r.RequestID,
				"error":     err,
			})
		}
	}
	return nil
}
