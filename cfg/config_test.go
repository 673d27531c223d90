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

package cfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcp-pal/gcppal/internal/auth"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")

	require.NoError(t, err)
	assert.Empty(t, c.Project)
	assert.Equal(t, DefaultLocation, c.Location)
	assert.Equal(t, InfoLogSeverity, c.Logging.Severity)
	assert.Equal(t, TextLogFormat, c.Logging.Format)
	assert.Equal(t, 100, c.Logging.MaxFileSizeMB)
}

func TestLoadFromFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `
project: p1
location: us
logging:
  severity: debug
  format: json
  file-path: /tmp/gcppal.log
  max-file-size-mb: 10
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	c, err := Load(configFile)

	require.NoError(t, err)
	assert.Equal(t, "p1", c.Project)
	assert.Equal(t, "us", c.Location)
	assert.Equal(t, DebugLogSeverity, c.Logging.Severity)
	assert.Equal(t, JSONLogFormat, c.Logging.Format)
	assert.Equal(t, "/tmp/gcppal.log", c.Logging.FilePath)
	assert.Equal(t, 10, c.Logging.MaxFileSizeMB)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "env-project")
	t.Setenv("GCPPAL_LOGGING_SEVERITY", "warning")

	c, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "env-project", c.Project)
	assert.Equal(t, WarningLogSeverity, c.Logging.Severity)
}

func TestLoadRejectsBadSeverity(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("logging:\n  severity: loud\n"), 0o644))

	_, err := Load(configFile)

	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestApplyFeedsProjectAndLocationIntoDefaults(t *testing.T) {
	t.Setenv("GCPPAL_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("PROJECT", "")
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("project: file-project\nlocation: us-east1\n"), 0o644))
	c, err := Load(configFile)
	require.NoError(t, err)

	c.Apply()
	t.Cleanup(func() {
		auth.SetConfigProject("")
		appliedMu.Lock()
		appliedLocation = ""
		appliedMu.Unlock()
	})

	project, err := auth.DefaultProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "file-project", project)
	assert.Equal(t, "us-east1", Location())
}

func TestLocationFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultLocation, Location())
}

func TestLogSeverityUnmarshalIsCaseInsensitive(t *testing.T) {
	var s LogSeverity
	require.NoError(t, s.UnmarshalText([]byte("error")))
	assert.Equal(t, ErrorLogSeverity, s)

	assert.Error(t, s.UnmarshalText([]byte("noisy")))
}
