// Package siteio reads site, profile and scenario documents and the rows
// of batch files, and writes batch results.
package siteio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/seismic"
)

// Document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatOf returns the document format implied by the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("siteio: unsupported file type %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// normalize converts a document to JSON and validates it against schema.
// YAML goes through a generic tree first so unknown keys are caught the
// same way for both formats.
func normalize(data []byte, format, schema string) ([]byte, error) {
	raw := data
	if format == FormatYAML {
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		var err error
		raw, err = json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("convert YAML: %w", err)
		}
	}

	if err := Validate(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Decode validates data against schema and decodes it into v.
func Decode(data []byte, format, schema string, v any) error {
	raw, err := normalize(data, format, schema)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func loadFile(path, schema string, v any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("siteio: %w", err)
	}
	if err := Decode(data, format, schema, v); err != nil {
		return fmt.Errorf("siteio: %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadInput reads a single site from a JSON or YAML file. Missing values
// are kept as nil and reported by the calculator.
func LoadInput(path string) (screening.Input, error) {
	var in screening.Input
	err := loadFile(path, SchemaSite, &in)
	return in, err
}

// LoadProfile reads a layered soil profile.
func LoadProfile(path string) (*liquefaction.Profile, error) {
	var p liquefaction.Profile
	if err := loadFile(path, SchemaProfile, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &p, nil
}

// LoadScenarios reads an earthquake scenario file.
func LoadScenarios(path string) ([]seismic.Scenario, error) {
	var doc struct {
		Scenarios []seismic.Scenario `json:"scenarios"`
	}
	if err := loadFile(path, SchemaScenarios, &doc); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, s := range doc.Scenarios {
		if seen[s.ID] {
			return nil, fmt.Errorf("siteio: duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return doc.Scenarios, nil
}
