package registry

// Manifest lists the frozen model artifacts a deployment scores with.
type Manifest struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Artifacts   []Artifact `json:"artifacts"`
}

// Artifact describes one frozen artifact document.
type Artifact struct {
	// Name is the logical role: scaler, regressor or classifier.
	Name         string   `json:"name"`
	Key          string   `json:"key"`
	Version      string   `json:"version"`
	SHA256       string   `json:"sha256"`
	Description  string   `json:"description,omitempty"`
	RegisteredAt string   `json:"registeredAt"`
	Tags         []string `json:"tags,omitempty"`
}

// Artifact roles.
const (
	RoleScaler     = "scaler"
	RoleRegressor  = "regressor"
	RoleClassifier = "classifier"
)

// Roles lists every role a complete manifest must name.
var Roles = []string{RoleScaler, RoleRegressor, RoleClassifier}
