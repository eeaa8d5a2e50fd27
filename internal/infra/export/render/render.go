// Package render provides the serialization formats for personal data export
// documents.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ecomops/privacy-engine/internal/domain/export"
)

// JSON renders documents as indented JSON.
type JSON struct{}

var _ export.Renderer = JSON{}

func (JSON) Render(doc export.Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering json export: %w", err)
	}
	return out, nil
}

func (JSON) Extension() string { return "json" }

// YAML renders documents as YAML.
type YAML struct{}

var _ export.Renderer = YAML{}

func (YAML) Render(doc export.Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering yaml export: %w", err)
	}
	return out, nil
}

func (YAML) Extension() string { return "yaml" }

// CSV renders documents as section/field/value rows. Nested sections are
// flattened one level; anything deeper is serialized in place.
type CSV struct{}

var _ export.Renderer = CSV{}

func (CSV) Render(doc export.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"section", "field", "value"}); err != nil {
		return nil, fmt.Errorf("rendering csv export: %w", err)
	}

	sections := make([]string, 0, len(doc))
	for name := range doc {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	for _, section := range sections {
		if err := writeSection(w, section, doc[section]); err != nil {
			return nil, fmt.Errorf("rendering csv export: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("rendering csv export: %w", err)
	}
	return buf.Bytes(), nil
}

func (CSV) Extension() string { return "csv" }

func writeSection(w *csv.Writer, section string, payload any) error {
	switch v := payload.(type) {
	case map[string]any:
		fields := make([]string, 0, len(v))
		for f := range v {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			if err := w.Write([]string{section, f, fmt.Sprint(v[f])}); err != nil {
				return err
			}
		}
	case []map[string]any:
		for i, item := range v {
			if err := writeSection(w, fmt.Sprintf("%s[%d]", section, i), item); err != nil {
				return err
			}
		}
	default:
		return w.Write([]string{section, "", fmt.Sprint(v)})
	}
	return nil
}
