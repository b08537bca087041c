package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/pkg/registry"
)

// Messages carried by artifact errors.
const (
	msgArtifactMissing    = "Model or preprocessor files not found"
	msgArtifactPermission = "Error with the files permissions"
	msgArtifactCorrupt    = "Error with the model/preprocessors files"
)

// ModelSet is the read-only bundle of frozen artifacts shared by all requests.
type ModelSet struct {
	Scaler     *Scaler
	Regressor  *Regressor
	Classifier *Classifier
	Label      string
}

// Loader loads the artifacts named by the manifest once per process.
// Failed loads are not cached, so a later call retries.
type Loader struct {
	store       ArtifactStore
	manifestKey string
	logger      logger.Logger

	mu  sync.Mutex
	set *ModelSet
}

func NewLoader(store ArtifactStore, manifestKey string, log logger.Logger) *Loader {
	return &Loader{
		store:       store,
		manifestKey: manifestKey,
		logger:      log.WithFields(map[string]interface{}{"component": "artifact-loader"}),
	}
}

// Get returns the shared ModelSet, loading it on first use.
func (l *Loader) Get(ctx context.Context) (*ModelSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set != nil {
		return l.set, nil
	}
	set, err := l.load(ctx)
	if err != nil {
		l.logger.Error("Model artifacts unavailable", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	l.set = set
	l.logger.Info("Model artifacts loaded", map[string]interface{}{"artifacts": set.Label})
	return set, nil
}

func (l *Loader) load(ctx context.Context) (*ModelSet, error) {
	raw, err := l.store.Fetch(ctx, l.manifestKey)
	if err != nil {
		return nil, storeError(l.manifestKey, err)
	}
	manifest, err := registry.ParseManifest(raw)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(l.manifestKey, msgArtifactCorrupt, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, apperrors.NewModelUnavailableError(l.manifestKey, msgArtifactCorrupt, err)
	}

	docs := make(map[string]*Document, len(registry.Roles))
	for _, role := range registry.Roles {
		artifact, _ := manifest.Find(role)
		doc, err := l.fetchDocument(ctx, artifact)
		if err != nil {
			return nil, err
		}
		docs[role] = doc
	}

	return NewModelSet(docs[registry.RoleScaler], docs[registry.RoleRegressor], docs[registry.RoleClassifier], manifest.Label())
}

// NewModelSet builds a ModelSet from decoded documents.
func NewModelSet(scalerDoc, regressorDoc, classifierDoc *Document, label string) (*ModelSet, error) {
	scaler, err := newScaler(scalerDoc)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(registry.RoleScaler, msgArtifactCorrupt, err)
	}
	regressor, err := newRegressor(regressorDoc)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(registry.RoleRegressor, msgArtifactCorrupt, err)
	}
	classifier, err := newClassifier(classifierDoc)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(registry.RoleClassifier, msgArtifactCorrupt, err)
	}
	return &ModelSet{
		Scaler:     scaler,
		Regressor:  regressor,
		Classifier: classifier,
		Label:      label,
	}, nil
}

func (l *Loader) fetchDocument(ctx context.Context, a registry.Artifact) (*Document, error) {
	raw, err := l.store.Fetch(ctx, a.Key)
	if err != nil {
		return nil, storeError(a.Name, err)
	}
	if sum := registry.Checksum(raw); sum != a.SHA256 {
		return nil, apperrors.NewModelUnavailableError(a.Name, msgArtifactCorrupt,
			fmt.Errorf("checksum mismatch for %s: manifest %s, content %s", a.Key, a.SHA256, sum))
	}
	if err := ValidateDocument(raw); err != nil {
		return nil, apperrors.NewModelUnavailableError(a.Name, msgArtifactCorrupt, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewModelUnavailableError(a.Name, msgArtifactCorrupt, err)
	}
	return &doc, nil
}

func storeError(artifact string, err error) error {
	switch {
	case errors.Is(err, ErrArtifactNotFound):
		return apperrors.NewModelUnavailableError(artifact, msgArtifactMissing, err)
	case errors.Is(err, ErrArtifactPermission):
		return apperrors.NewModelUnavailableError(artifact, msgArtifactPermission, err)
	default:
		return apperrors.NewModelUnavailableError(artifact, msgArtifactCorrupt, err)
	}
}
