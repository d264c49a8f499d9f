package siteio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema names
const (
	SchemaSite      = "site"
	SchemaProfile   = "profile"
	SchemaScenarios = "scenarios"
	SchemaBatch     = "batch"
)

// MaxBatchSites bounds the sites of one batch document
const MaxBatchSites = 1000

// Inputs may be null or missing: the calculator reports those as failures.
const numberOrNull = `{"type": ["number", "null"]}`

const siteProperties = `{
  "name": {"type": "string"},
  "z_m": ` + numberOrNull + `,
  "a_max": ` + numberOrNull + `,
  "estres_v_total": ` + numberOrNull + `,
  "estres_v_ef": ` + numberOrNull + `,
  "Mw": ` + numberOrNull + `,
  "N1_60_cs": ` + numberOrNull + `,
  "FC": ` + numberOrNull + `,
  "D50": ` + numberOrNull + `
}`

var schemaSources = map[string]string{
	SchemaSite: `{
  "type": "object",
  "properties": ` + siteProperties + `,
  "additionalProperties": false
}`,
	SchemaProfile: `{
  "type": "object",
  "required": ["layers"],
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "layers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": ` + siteProperties + `,
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`,
	SchemaScenarios: `{
  "type": "object",
  "required": ["scenarios"],
  "properties": {
    "scenarios": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "a_max", "Mw"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "a_max": {"type": "number", "minimum": 0},
          "Mw": {"type": "number"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`,
	SchemaBatch: `{
  "type": "object",
  "required": ["sites"],
  "properties": {
    "sites": {
      "type": "array",
      "minItems": 1,
      "maxItems": ` + strconv.Itoa(MaxBatchSites) + `,
      "items": {
        "type": "object",
        "properties": ` + siteProperties + `,
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`,
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	src, ok := schemaSources[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	var doc any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://goliq/%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

// Validate checks a JSON document against the named schema.
func Validate(schema string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return err
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
