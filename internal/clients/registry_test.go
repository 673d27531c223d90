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

package clients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	id     int
	closed bool
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestGetConstructsOncePerKey(t *testing.T) {
	r := NewRegistry()
	calls := 0
	create := func() (*fakeClient, error) {
		calls++
		return &fakeClient{id: calls}, nil
	}

	first, err := Get(r, "storage", "p1", create)
	require.NoError(t, err)
	second, err := Get(r, "storage", "p1", create)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetSeparatesKeys(t *testing.T) {
	r := NewRegistry()
	create := func() (*fakeClient, error) { return &fakeClient{}, nil }

	a, err := Get(r, "storage", "p1", create)
	require.NoError(t, err)
	b, err := Get(r, "storage", "p2", create)
	require.NoError(t, err)
	c, err := Get(r, "bigquery", "p1", create)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a, c)
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	r := NewRegistry()
	fail := true
	create := func() (*fakeClient, error) {
		if fail {
			return nil, errors.New("auth failed")
		}
		return &fakeClient{}, nil
	}

	_, err := Get(r, "storage", "p1", create)
	assert.Error(t, err)

	fail = false
	c, err := Get(r, "storage", "p1", create)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCloseClosesAndEmpties(t *testing.T) {
	r := NewRegistry()
	c, err := Get(r, "storage", "p1", func() (*fakeClient, error) { return &fakeClient{}, nil })
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.True(t, c.closed)

	// A fresh client is constructed after Close.
	fresh, err := Get(r, "storage", "p1", func() (*fakeClient, error) { return &fakeClient{}, nil })
	require.NoError(t, err)
	assert.NotSame(t, c, fresh)
}
