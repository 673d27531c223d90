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

package bqschema

import (
	"testing"
	"time"

	bq "cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferScalarTypes(t *testing.T) {
	schema, err := Infer(map[string]any{
		"name":    "alice",
		"age":     30,
		"score":   1.5,
		"active":  true,
		"joined":  time.Now(),
		"payload": []byte("raw"),
	})

	require.NoError(t, err)
	byName := map[string]bq.FieldType{}
	for _, f := range schema {
		byName[f.Name] = f.Type
	}
	assert.Equal(t, map[string]bq.FieldType{
		"name":    bq.StringFieldType,
		"age":     bq.IntegerFieldType,
		"score":   bq.FloatFieldType,
		"active":  bq.BooleanFieldType,
		"joined":  bq.TimestampFieldType,
		"payload": bq.BytesFieldType,
	}, byName)
}

func TestInferIsDeterministicallyOrdered(t *testing.T) {
	schema, err := Infer(map[string]any{"b": 1, "a": 1, "c": 1})

	require.NoError(t, err)
	assert.Equal(t, "a", schema[0].Name)
	assert.Equal(t, "b", schema[1].Name)
	assert.Equal(t, "c", schema[2].Name)
}

func TestInferNestedRecord(t *testing.T) {
	schema, err := Infer(map[string]any{
		"address": map[string]any{"city": "London", "zip": "N1"},
	})

	require.NoError(t, err)
	require.Len(t, schema, 1)
	assert.Equal(t, bq.RecordFieldType, schema[0].Type)
	require.Len(t, schema[0].Schema, 2)
	assert.Equal(t, "city", schema[0].Schema[0].Name)
	assert.Equal(t, bq.StringFieldType, schema[0].Schema[0].Type)
}

func TestInferRepeatedField(t *testing.T) {
	schema, err := Infer(map[string]any{"tags": []any{"a", "b"}})

	require.NoError(t, err)
	require.Len(t, schema, 1)
	assert.True(t, schema[0].Repeated)
	assert.Equal(t, bq.StringFieldType, schema[0].Type)
}

func TestInferRejectsEmptySliceAndUnknownType(t *testing.T) {
	_, err := Infer(map[string]any{"tags": []any{}})
	assert.ErrorContains(t, err, "empty slice")

	_, err = Infer(map[string]any{"ch": make(chan int)})
	assert.ErrorContains(t, err, "unsupported value type")
}

func TestFromYAML(t *testing.T) {
	schema, err := FromYAML([]byte(`
name: STRING
age: INTEGER
address:
  city: STRING
`))

	require.NoError(t, err)
	require.Len(t, schema, 3)
	assert.Equal(t, "address", schema[0].Name)
	assert.Equal(t, bq.RecordFieldType, schema[0].Type)
	assert.Equal(t, bq.IntegerFieldType, schema[1].Type)
	assert.Equal(t, bq.StringFieldType, schema[2].Type)
}

func TestFromJSON(t *testing.T) {
	schema, err := FromJSON([]byte(`{"name": "STRING", "n": "INTEGER"}`))

	require.NoError(t, err)
	require.Len(t, schema, 2)
	assert.Equal(t, "n", schema[0].Name)
	assert.Equal(t, "name", schema[1].Name)
}

func TestFromYAMLRejectsNonStringTypes(t *testing.T) {
	_, err := FromYAML([]byte("age: 42"))
	assert.ErrorContains(t, err, "expected a type name")
}
