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

package bigquery

import (
	"context"
	"testing"

	bq "cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcp-pal/gcppal/internal/respath"
)

func newTestClient(t *testing.T, path string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithProject("test-project"), WithBQClient(&bq.Client{})}, opts...)
	c, err := New(context.Background(), path, opts...)
	require.NoError(t, err)
	return c
}

func TestNewParsesDottedPaths(t *testing.T) {
	cases := []struct {
		path    string
		project string
		dataset string
		table   string
		level   respath.Level
	}{
		{"", "test-project", "", "", respath.LevelProject},
		{"d1", "test-project", "d1", "", respath.LevelContainer},
		{"d1.t1", "test-project", "d1", "t1", respath.LevelItem},
		{"p2.d1.t1", "p2", "d1", "t1", respath.LevelItem},
		{".d1.t1.", "test-project", "d1", "t1", respath.LevelItem},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			c := newTestClient(t, tc.path)
			assert.Equal(t, tc.project, c.Project())
			assert.Equal(t, tc.dataset, c.Dataset())
			assert.Equal(t, tc.table, c.Table())
			assert.Equal(t, tc.level, c.Level())
		})
	}
}

func TestOptionsSeedPathOverwrites(t *testing.T) {
	c := newTestClient(t, "d2", WithDataset("d1"), WithTable("t1"))

	assert.Equal(t, "d2", c.Dataset())
	assert.Equal(t, "t1", c.Table())
}

func TestPathRendersDottedForm(t *testing.T) {
	assert.Equal(t, "d1", newTestClient(t, "d1").Path())
	assert.Equal(t, "d1.t1", newTestClient(t, "d1.t1").Path())
	assert.True(t, newTestClient(t, "d1").IsDataset())
	assert.True(t, newTestClient(t, "d1.t1").IsTable())
}

func TestOperationsRejectWrongLevels(t *testing.T) {
	ctx := context.Background()
	var levelErr *respath.UnsupportedLevelError

	atProject := newTestClient(t, "")
	assert.ErrorAs(t, atProject.CreateDataset(ctx), &levelErr)
	assert.ErrorAs(t, atProject.CreateTable(ctx, nil), &levelErr)
	assert.ErrorAs(t, atProject.Insert(ctx, nil), &levelErr)
	assert.ErrorAs(t, atProject.Delete(ctx), &levelErr)
	_, err := atProject.ListTables(ctx)
	assert.ErrorAs(t, err, &levelErr)
	_, err = atProject.Exists(ctx)
	assert.ErrorAs(t, err, &levelErr)

	atDataset := newTestClient(t, "d1")
	assert.ErrorAs(t, atDataset.CreateTable(ctx, nil), &levelErr)

	atTable := newTestClient(t, "d1.t1")
	_, err = atTable.List(ctx)
	assert.ErrorAs(t, err, &levelErr)
}

func TestRowSaverCopiesValues(t *testing.T) {
	vals, id, err := row{"name": "a", "n": 1}.Save()

	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, map[string]bq.Value{"name": "a", "n": 1}, vals)
}
