package scoring

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const documentSchema = `{
  "type": "object",
  "required": ["kind", "version", "features"],
  "properties": {
    "kind": {"enum": ["standard_scaler", "regressor", "classifier"]},
    "version": {"type": "string", "minLength": 1},
    "features": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "mean": {"type": "array", "items": {"type": "number"}},
    "scale": {"type": "array", "items": {"type": "number"}},
    "model": {"$ref": "#/definitions/booster"},
    "classes": {"type": "array", "items": {"type": "string"}},
    "class_models": {"type": "array", "items": {"$ref": "#/definitions/booster"}}
  },
  "definitions": {
    "booster": {
      "type": "object",
      "properties": {
        "base_score": {"type": "number"},
        "linear": {
          "type": "object",
          "required": ["coefficients", "intercept"],
          "properties": {
            "coefficients": {"type": "array", "items": {"type": "number"}},
            "intercept": {"type": "number"}
          }
        },
        "trees": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["nodes"],
            "properties": {
              "nodes": {
                "type": "array",
                "minItems": 1,
                "items": {
                  "type": "object",
                  "properties": {
                    "feature": {"type": "integer", "minimum": 0},
                    "threshold": {"type": "number"},
                    "left": {"type": "integer", "minimum": 0},
                    "right": {"type": "integer", "minimum": 0},
                    "default_left": {"type": "boolean"},
                    "leaf": {"type": "number"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compiledSchema     *gojsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

// ValidateDocument checks raw artifact JSON against the artifact schema.
func ValidateDocument(raw []byte) error {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	if compiledSchemaErr != nil {
		return fmt.Errorf("artifact schema: %w", compiledSchemaErr)
	}

	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("artifact is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("artifact failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}
