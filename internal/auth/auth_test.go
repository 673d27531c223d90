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

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProjectFromEnv(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	t.Setenv("PROJECT", "ignored")

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "env-project", project)
}

func TestDefaultProjectEnvPrecedence(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "pal-project")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "gcp-project")

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "pal-project", project)
}

func TestDefaultProjectFromConfig(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("PROJECT", "")
	SetConfigProject("config-project")
	t.Cleanup(func() { SetConfigProject("") })

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "config-project", project)
}

func TestDefaultProjectConfigOutranksGenericEnv(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	SetConfigProject("config-project")
	t.Cleanup(func() { SetConfigProject("") })

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "config-project", project)
}

func TestDefaultProjectModuleEnvOutranksConfig(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "pal-project")
	SetConfigProject("config-project")
	t.Cleanup(func() { SetConfigProject("") })

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "pal-project", project)
}

func TestDefaultProjectLegacyVar(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("PROJECT", "legacy-project")

	project, err := DefaultProject(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "legacy-project", project)
}
