// Package overrides reads user-authored override documents and coerces each
// textual field value into its typed form.
package overrides

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is an override file: records, each holding field overrides
type Document struct {
	Records []Record `yaml:"records"`
}

// Record groups the overrides of one data record
type Record struct {
	Name   string          `yaml:"record"`
	Fields []FieldOverride `yaml:"fields"`
}

// FieldOverride is one field's textual value.
//
// Type names the field's wrapper type and selects the attribute-typed path.
// Like names the runtime type of the field's existing value (a primitive
// kind or an enum name) and selects the value-inferred path. With neither,
// the value stays a string.
type FieldOverride struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type,omitempty"`
	Like  string `yaml:"like,omitempty"`
	Value string `yaml:"value"`
}

// Load reads and parses an override file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse override file %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates an override document
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks that every entry is addressable and unambiguous
func (d *Document) Validate() error {
	for i, rec := range d.Records {
		if rec.Name == "" {
			return fmt.Errorf("record %d: missing record name", i)
		}
		for j, f := range rec.Fields {
			if f.Field == "" {
				return fmt.Errorf("record %s: field %d: missing field name", rec.Name, j)
			}
			if f.Type != "" && f.Like != "" {
				return fmt.Errorf("record %s: field %s: type and like are mutually exclusive", rec.Name, f.Field)
			}
		}
	}
	return nil
}

// FieldCount returns the number of field overrides in the document
func (d *Document) FieldCount() int {
	n := 0
	for _, rec := range d.Records {
		n += len(rec.Fields)
	}
	return n
}
