// Copyright 2025 The gcppal authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bqschema derives BigQuery table schemas from plain Go data and
// from YAML/JSON schema declarations.
package bqschema

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bq "cloud.google.com/go/bigquery"
	"gopkg.in/yaml.v3"
)

// Infer builds a schema from a map of column name to a sample value.
// Nested maps become RECORD fields, slices become REPEATED fields typed
// after their first element. Columns are emitted in name order so the
// result is deterministic.
func Infer(data map[string]any) (bq.Schema, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make(bq.Schema, 0, len(names))
	for _, name := range names {
		field, err := inferField(name, data[name])
		if err != nil {
			return nil, err
		}
		schema = append(schema, field)
	}
	return schema, nil
}

func inferField(name string, value any) (*bq.FieldSchema, error) {
	if s, ok := value.([]any); ok {
		if len(s) == 0 {
			return nil, fmt.Errorf("column %q: cannot infer a type from an empty slice", name)
		}
		field, err := inferField(name, s[0])
		if err != nil {
			return nil, err
		}
		field.Repeated = true
		return field, nil
	}
	if m, ok := value.(map[string]any); ok {
		sub, err := Infer(m)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		return &bq.FieldSchema{Name: name, Type: bq.RecordFieldType, Schema: sub}, nil
	}
	typ, err := fieldType(value)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	return &bq.FieldSchema{Name: name, Type: typ}, nil
}

func fieldType(value any) (bq.FieldType, error) {
	switch value.(type) {
	case string:
		return bq.StringFieldType, nil
	case int, int32, int64:
		return bq.IntegerFieldType, nil
	case float32, float64:
		return bq.FloatFieldType, nil
	case bool:
		return bq.BooleanFieldType, nil
	case time.Time:
		return bq.TimestampFieldType, nil
	case []byte:
		return bq.BytesFieldType, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// declaration is the on-disk schema form: column name to a type name, or
// to a nested declaration for RECORD columns.
type declaration map[string]any

// FromYAML loads a schema from a YAML declaration mapping column names to
// BigQuery type names, with nested mappings for RECORD columns.
func FromYAML(data []byte) (bq.Schema, error) {
	var decl declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parsing schema yaml: %w", err)
	}
	return fromDeclaration(decl)
}

// FromJSON loads a schema from the JSON equivalent of the YAML form.
func FromJSON(data []byte) (bq.Schema, error) {
	var decl declaration
	if err := json.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parsing schema json: %w", err)
	}
	return fromDeclaration(decl)
}

func fromDeclaration(decl declaration) (bq.Schema, error) {
	names := make([]string, 0, len(decl))
	for name := range decl {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make(bq.Schema, 0, len(names))
	for _, name := range names {
		switch v := decl[name].(type) {
		case string:
			schema = append(schema, &bq.FieldSchema{Name: name, Type: bq.FieldType(v)})
		case map[string]any:
			sub, err := fromDeclaration(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			schema = append(schema, &bq.FieldSchema{Name: name, Type: bq.RecordFieldType, Schema: sub})
		default:
			return nil, fmt.Errorf("column %q: expected a type name or nested mapping, got %T", name, v)
		}
	}
	return schema, nil
}
