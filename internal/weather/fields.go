package weather

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var defaultFieldsYAML []byte

var validate = validator.New()

// Field is one row of the tracked field table.
type Field struct {
	Code  string `json:"code" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
	// Group names the normalization group; fields sharing a group share
	// one {min,max} bound. Empty means the field is not normalized.
	Group string `json:"group,omitempty"`
	// Scale multiplies every parsed value. Zero is read as 1.
	Scale float64 `json:"scale" validate:"gte=0"`
	// Parse is false for fields whose values are kept as text (visibility).
	Parse bool `json:"parse"`
}

// Normalized reports whether the field is rescaled against its group bound.
func (f Field) Normalized() bool {
	return f.Group != ""
}

// FieldTable is the ordered set of tracked fields.
type FieldTable []Field

// Lookup returns the field for a code.
func (t FieldTable) Lookup(code string) (Field, bool) {
	for _, f := range t {
		if f.Code == code {
			return f, true
		}
	}
	return Field{}, false
}

// fieldRow mirrors Field with an optional parse flag so that omitting it in
// YAML means "parse".
type fieldRow struct {
	Code  string  `yaml:"code"`
	Name  string  `yaml:"name"`
	Color string  `yaml:"color"`
	Group string  `yaml:"group"`
	Scale float64 `yaml:"scale"`
	Parse *bool   `yaml:"parse"`
}

// ParseFieldTable decodes a YAML field table.
func ParseFieldTable(data []byte) (FieldTable, error) {
	var rows []fieldRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("error parsing field table: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("field table is empty")
	}

	table := make(FieldTable, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		f := Field{
			Code:  r.Code,
			Name:  r.Name,
			Color: r.Color,
			Group: r.Group,
			Scale: r.Scale,
			Parse: r.Parse == nil || *r.Parse,
		}
		if f.Scale == 0 {
			f.Scale = 1
		}
		if err := validate.Struct(f); err != nil {
			return nil, fmt.Errorf("invalid field %q: %w", r.Code, err)
		}
		if seen[f.Code] {
			return nil, fmt.Errorf("duplicate field %q", f.Code)
		}
		seen[f.Code] = true
		table = append(table, f)
	}
	return table, nil
}

// DefaultFields returns the built-in tracked field table.
func DefaultFields() FieldTable {
	table, err := ParseFieldTable(defaultFieldsYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// LoadFieldTable reads a field table from path, or returns the built-in
// table when path is empty.
func LoadFieldTable(path string) (FieldTable, error) {
	if path == "" {
		return DefaultFields(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading field table: %w", err)
	}
	return ParseFieldTable(data)
}
