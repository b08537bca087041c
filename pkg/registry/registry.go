package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

var checksumPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest with indentation and a refreshed timestamp.
func (m *Manifest) Save(path string) error {
	m.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the artifact registered for role.
func (m *Manifest) Find(role string) (Artifact, bool) {
	for _, a := range m.Artifacts {
		if a.Name == role {
			return a, true
		}
	}
	return Artifact{}, false
}

// Upsert replaces the artifact with the same role or appends it.
func (m *Manifest) Upsert(a Artifact) {
	for i := range m.Artifacts {
		if m.Artifacts[i].Name == a.Name {
			m.Artifacts[i] = a
			return
		}
	}
	m.Artifacts = append(m.Artifacts, a)
}

// Validate checks every role is present exactly once with a well-formed checksum.
func (m *Manifest) Validate() error {
	var problems []string
	seen := map[string]int{}
	for _, a := range m.Artifacts {
		seen[a.Name]++
		if a.Key == "" {
			problems = append(problems, fmt.Sprintf("%s: key is empty", a.Name))
		}
		if !checksumPattern.MatchString(a.SHA256) {
			problems = append(problems, fmt.Sprintf("%s: sha256 must be 64 lowercase hex characters", a.Name))
		}
	}
	for _, role := range Roles {
		switch seen[role] {
		case 0:
			problems = append(problems, fmt.Sprintf("%s: not registered", role))
		case 1:
		default:
			problems = append(problems, fmt.Sprintf("%s: registered %d times", role, seen[role]))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("manifest invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Label joins the artifact versions, e.g. "scaler@1.0.0,regressor@1.2.0".
func (m *Manifest) Label() string {
	parts := make([]string, 0, len(Roles))
	for _, role := range Roles {
		if a, ok := m.Find(role); ok {
			parts = append(parts, a.Name+"@"+a.Version)
		}
	}
	return strings.Join(parts, ",")
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
