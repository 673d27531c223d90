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

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func redirect(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	mu.Lock()
	oldW, oldLevel := defaultFactory.w, programLevel.Level()
	defaultFactory.w = &buf
	defaultLogger = defaultFactory.newLogger()
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		defaultFactory.w = oldW
		programLevel.Set(oldLevel)
		defaultLogger = defaultFactory.newLogger()
		mu.Unlock()
	})
	return &buf
}

func TestSeverityFiltersMessages(t *testing.T) {
	buf := redirect(t)
	Setup("WARNING", "text")

	Infof("info %d", 1)
	Warnf("warn %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "info 1")
	assert.Contains(t, out, "warn 2")
}

func TestOffSeverityDropsEverything(t *testing.T) {
	buf := redirect(t)
	Setup("OFF", "text")

	Errorf("should not appear")

	assert.Empty(t, buf.String())
}

func TestTraceSeverityLogsBelowDebug(t *testing.T) {
	buf := redirect(t)
	Setup("TRACE", "text")

	Tracef("trace message")

	assert.Contains(t, buf.String(), "trace message")
}

func TestJSONFormat(t *testing.T) {
	buf := redirect(t)
	Setup("INFO", "json")
	defer Setup("INFO", "text")

	Infof("hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLevelConstantsOrdering(t *testing.T) {
	assert.Less(t, LevelTrace, slog.LevelDebug)
	assert.Greater(t, LevelOff, slog.LevelError)
}
