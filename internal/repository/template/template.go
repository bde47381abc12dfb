package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/cfn"
)

// Format is a template file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const resourcesKey = "Resources"

var (
	// errUnsupportedFormat is returned for unknown formats.
	errUnsupportedFormat = errors.New("unsupported template format")
	// errMalformedResources is returned when a template's Resources is not a mapping.
	errMalformedResources = errors.New("template Resources must be a mapping")
)

// ParseFormat validates a format name; an empty name selects JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, name)
	}
}

// FormatOf picks the format from a file extension, JSON by default.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a template: a mapping with at least a Resources section.
type Document map[string]any

// NewDocument returns an empty template.
func NewDocument() Document {
	return Document{resourcesKey: map[string]any{}}
}

// Merge adds resources to the document's Resources section. A key already
// present in the document is an error and leaves the document unchanged.
func (d Document) Merge(resources cfn.Resources) error {
	existing := map[string]any{}

	if raw, ok := d[resourcesKey]; ok && raw != nil {
		typed, isMap := raw.(map[string]any)
		if !isMap {
			return errMalformedResources
		}

		existing = typed
	}

	for _, key := range resources.Keys() {
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%w: %s already exists in the template", cfn.ErrDuplicateResource, key)
		}
	}

	merged := make(map[string]any, len(existing)+len(resources))
	for key, value := range existing {
		merged[key] = value
	}

	for key, res := range resources {
		merged[key] = res
	}

	d[resourcesKey] = merged

	return nil
}

// Encode renders the document in format. JSON is indented; YAML is produced
// from the JSON form so both carry the same keys.
func Encode(doc Document, format Format) ([]byte, error) {
	contents, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}

	switch format {
	case FormatJSON:
		return append(contents, '\n'), nil
	case FormatYAML:
		var generic any
		if err = json.Unmarshal(contents, &generic); err != nil {
			return nil, fmt.Errorf("encode template: %w", err)
		}

		out, marshalErr := yaml.Marshal(generic)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode template: %w", marshalErr)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// Decode parses a template document in format.
func Decode(contents []byte, format Format) (Document, error) {
	var doc Document

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(contents, &doc); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(contents, &doc); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}

	if doc == nil {
		doc = NewDocument()
	}

	return doc, nil
}
