package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"eiv-admissions/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticIndexer indexes each result document for reporting searches.
// Re-indexing the same key overwrites the document.
type ElasticIndexer struct {
	transport esapi.Transport
	index     string
}

func NewElasticIndexer(transport esapi.Transport, index string) *ElasticIndexer {
	return &ElasticIndexer{transport: transport, index: index}
}

func (e *ElasticIndexer) Name() string { return "elasticsearch" }

// DocumentID mirrors the result table key.
func DocumentID(r *models.PredictionResult) string {
	vobID := DefaultVOBID
	if r.VOBID != nil {
		vobID = *r.VOBID
	}
	return vobID + ":" + r.PredictionDate.Format("2006-01-02")
}

func (e *ElasticIndexer) Deliver(ctx context.Context, r *models.PredictionResult) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: DocumentID(r),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, e.transport)
	if err != nil {
		return fmt.Errorf("index result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index result failed: %s", res.String())
	}
	return nil
}
