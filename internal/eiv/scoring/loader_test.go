package scoring

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLoader(t *testing.T, dir string) *Loader {
	return NewLoader(NewFileStore(dir), "manifest.json", logger.NewTestLogger(t))
}

func assertArtifactError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelUnavailable))
	assert.Equal(t, message, err.Error())
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestLoader_Get_LoadsOnceAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, defaultDocs())
	l := createTestLoader(t, dir)

	set, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "scaler@1.0.0,regressor@1.1.0,classifier@2.0.0", set.Label)
	assert.Equal(t, ScaledColumns, set.Scaler.Features)

	require.NoError(t, os.RemoveAll(dir))
	again, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, set, again)
}

func TestLoader_Get_MissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	l := createTestLoader(t, dir)

	_, err := l.Get(context.Background())
	assertArtifactError(t, err, msgArtifactMissing)

	// a failed load is retried on the next call
	writeArtifacts(t, dir, defaultDocs())
	set, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, set)
}

func TestLoader_Get_MissingDocument(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, defaultDocs())
	require.NoError(t, os.Remove(filepath.Join(dir, "classifier.json")))

	_, err := createTestLoader(t, dir).Get(context.Background())
	assertArtifactError(t, err, msgArtifactMissing)
}

func TestLoader_Get_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, defaultDocs())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "regressor.json"), []byte(`{"tampered":true}`), 0o644))

	_, err := createTestLoader(t, dir).Get(context.Background())
	assertArtifactError(t, err, msgArtifactCorrupt)
	assert.Contains(t, apperrors.Normalize(err).Details, "checksum mismatch")
}

func TestLoader_Get_CorruptDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]Document)
	}{
		{"unknown kind", func(d map[string]Document) {
			sd := d[registry.RoleScaler]
			sd.Kind = "pickle"
			d[registry.RoleScaler] = sd
		}},
		{"role holds the wrong kind", func(d map[string]Document) {
			d[registry.RoleRegressor] = classifierDoc()
		}},
		{"classifier width mismatch", func(d map[string]Document) {
			cd := classifierDoc()
			cd.Features = cd.Features[:2]
			d[registry.RoleClassifier] = cd
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			docs := defaultDocs()
			tt.mutate(docs)
			writeArtifacts(t, dir, docs)

			_, err := createTestLoader(t, dir).Get(context.Background())
			assertArtifactError(t, err, msgArtifactCorrupt)
		})
	}
}

func TestLoader_Get_InvalidManifest(t *testing.T) {
	dir := t.TempDir()
	m := writeArtifacts(t, dir, defaultDocs())
	m.Artifacts = m.Artifacts[:1]
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), raw, 0o644))

	_, err = createTestLoader(t, dir).Get(context.Background())
	assertArtifactError(t, err, msgArtifactCorrupt)
}
