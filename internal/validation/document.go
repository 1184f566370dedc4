package validation

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalidDocument indicates that a content document does not match its schema
var ErrInvalidDocument = errors.New("invalid document")

// DocumentValidator checks content documents against the embedded JSON
// schemas, one per document kind.
type DocumentValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewDocumentValidator compiles every embedded schema
func NewDocumentValidator() (*DocumentValidator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}

	v := &DocumentValidator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), ".json")] = schema
	}

	return v, nil
}

// Validate checks the JSON document of the given kind
func (v *DocumentValidator) Validate(kind string, doc []byte) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("%w: no schema for kind %q", ErrInvalidDocument, kind)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	return nil
}
