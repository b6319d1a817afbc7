package testdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ethpandaops/query-validator/internal/testing/assertion"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "test-definition.json"

// definitionSchema describes the shape of a test definition file. Unknown
// assertion keys are accepted here and reported when the test runs.
const definitionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "query", "assertions"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "query": {"type": "string", "minLength": 1},
    "assertions": {
      "type": "object",
      "properties": {
        "count": {"type": "integer", "minimum": 0},
        "has": {"$ref": "#/$defs/valueRules"},
        "missing": {"$ref": "#/$defs/missingRules"},
        "no_nulls": {"$ref": "#/$defs/columns"},
        "only_nulls": {"$ref": "#/$defs/columns"},
        "conditions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["column", "operator", "value"],
            "properties": {
              "column": {"type": "string", "minLength": 1},
              "operator": {"enum": [%s]},
              "value": {"type": "string"}
            },
            "additionalProperties": false
          }
        }
      }
    }
  },
  "$defs": {
    "columns": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "valueRules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["column", "values"],
        "properties": {
          "column": {"type": "string", "minLength": 1},
          "values": {"type": "array", "items": {"type": "string"}}
        },
        "additionalProperties": false
      }
    },
    "missingRules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["column", "values"],
        "properties": {
          "column": {"type": "string", "minLength": 1},
          "values": {"type": "array", "items": {"type": "string"}},
          "regex": {"type": "array", "items": {"type": "string"}}
        },
        "additionalProperties": false
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaDocument()))
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return sch, nil
})

func schemaDocument() string {
	quoted := make([]string, len(assertion.Operators))
	for i, op := range assertion.Operators {
		quoted[i] = `"` + op + `"`
	}

	return fmt.Sprintf(definitionSchema, strings.Join(quoted, ", "))
}

// validateShape checks a decoded YAML document against the definition schema.
func validateShape(doc interface{}) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so the validator sees JSON types.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting to json: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("reading json: %w", err)
	}

	return sch.Validate(inst)
}
