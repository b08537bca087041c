package scoring

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"eiv-admissions/pkg/registry"

	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func zeros(n int) []float64 {
	return make([]float64, n)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func scalerDoc() Document {
	scale := ones(len(ScaledColumns))
	scale[len(scale)-1] = 2 // WATERFALL RESULT
	return Document{
		Kind:     "standard_scaler",
		Version:  "1.0.0",
		Features: ScaledColumns,
		Mean:     zeros(len(ScaledColumns)),
		Scale:    scale,
	}
}

// regressorDoc predicts 0.3 + 0.1*SCA_FLAG + 0.5*WATERFALL RESULT.
func regressorDoc() Document {
	coef := zeros(len(RegressorColumns))
	coef[len(coef)-2] = 0.5
	coef[len(coef)-1] = 0.1
	return Document{
		Kind:     "regressor",
		Version:  "1.1.0",
		Features: RegressorColumns,
		Model:    &Booster{Linear: &Linear{Coefficients: coef, Intercept: 0.3}},
	}
}

// classifierDoc yields [0.25, 0.25, 0.5] for every input.
func classifierDoc() Document {
	n := len(ClassifierColumns)
	return Document{
		Kind:     "classifier",
		Version:  "2.0.0",
		Features: ClassifierColumns,
		Classes:  []string{"Scholarship", "Mid Payor", "Scholarship Provider"},
		ClassModels: []Booster{
			{Linear: &Linear{Coefficients: zeros(n)}},
			{Linear: &Linear{Coefficients: zeros(n)}},
			{Linear: &Linear{Coefficients: zeros(n), Intercept: math.Log(2)}},
		},
	}
}

// writeArtifacts writes the three documents and a manifest into dir and
// returns the manifest.
func writeArtifacts(t *testing.T, dir string, docs map[string]Document) *registry.Manifest {
	t.Helper()
	m := &registry.Manifest{Version: "1"}
	for _, role := range registry.Roles {
		raw, err := json.Marshal(docs[role])
		require.NoError(t, err)
		key := role + ".json"
		require.NoError(t, os.WriteFile(filepath.Join(dir, key), raw, 0o644))
		m.Upsert(registry.Artifact{
			Name:    role,
			Key:     key,
			Version: docs[role].Version,
			SHA256:  registry.Checksum(raw),
		})
	}
	require.NoError(t, m.Save(filepath.Join(dir, "manifest.json")))
	return m
}

func defaultDocs() map[string]Document {
	return map[string]Document{
		registry.RoleScaler:     scalerDoc(),
		registry.RoleRegressor:  regressorDoc(),
		registry.RoleClassifier: classifierDoc(),
	}
}

func createTestModelSet(t *testing.T) *ModelSet {
	t.Helper()
	docs := defaultDocs()
	sd, rd, cd := docs[registry.RoleScaler], docs[registry.RoleRegressor], docs[registry.RoleClassifier]
	set, err := NewModelSet(&sd, &rd, &cd, "test")
	require.NoError(t, err)
	return set
}
