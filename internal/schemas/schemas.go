// Package schemas validates request bodies against the JSON Schemas embedded
// alongside it. Schema violations are collected into one aggregate message so
// clients see every bad field at once.
package schemas

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed *.json
var files embed.FS

// ValidationError carries the per-field schema violations.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// Validator holds the compiled schemas keyed by file name (sans extension).
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		b, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[strings.TrimSuffix(name, ".json")] = rs
	}
	return v, nil
}

// Validate checks body against the named schema. A nil return means the body
// conforms; a *ValidationError lists every violated field.
func (v *Validator) Validate(ctx context.Context, name string, body []byte) error {
	rs, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return &ValidationError{Fields: []string{"invalid json body"}}
	}
	if len(keyErrs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		path := strings.TrimPrefix(ke.PropertyPath, "/")
		if path == "" {
			fields = append(fields, ke.Message)
			continue
		}
		fields = append(fields, path+": "+ke.Message)
	}
	return &ValidationError{Fields: fields}
}
