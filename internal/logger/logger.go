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

// Package logger provides the slog-based loggers used across the module.
// Output goes to stderr by default; SetupLogFile redirects it to a rotating
// log file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace and LevelOff extend the standard slog levels the same way the
// severity configuration does: TRACE logs everything, OFF logs nothing.
const (
	LevelTrace slog.Level = slog.LevelDebug - 4
	LevelOff   slog.Level = slog.LevelError + 8
)

var (
	mu             sync.Mutex
	programLevel   = new(slog.LevelVar)
	defaultFactory = &factory{w: os.Stderr, format: "text"}
	defaultLogger  = defaultFactory.newLogger()
)

type factory struct {
	w      io.Writer
	format string
}

func (f *factory) newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: programLevel}
	var h slog.Handler
	if f.format == "json" {
		h = slog.NewJSONHandler(f.w, opts)
	} else {
		h = slog.NewTextHandler(f.w, opts)
	}
	return slog.New(h)
}

// Setup configures the default logger's severity ("TRACE", "DEBUG", "INFO",
// "WARNING", "ERROR", "OFF") and format ("text" or "json").
func Setup(severity, format string) {
	mu.Lock()
	defer mu.Unlock()
	setLoggingLevel(severity)
	defaultFactory.format = format
	defaultLogger = defaultFactory.newLogger()
}

// SetupLogFile redirects logging to filePath, rotated once the file grows
// past maxSizeMB.
func SetupLogFile(filePath string, maxSizeMB int) {
	mu.Lock()
	defer mu.Unlock()
	defaultFactory.w = &lumberjack.Logger{
		Filename: filePath,
		MaxSize:  maxSizeMB,
	}
	defaultLogger = defaultFactory.newLogger()
}

func setLoggingLevel(severity string) {
	// Messages with severity >= the configured value are logged.
	switch severity {
	case "TRACE":
		programLevel.Set(LevelTrace)
	case "DEBUG":
		programLevel.Set(slog.LevelDebug)
	case "INFO":
		programLevel.Set(slog.LevelInfo)
	case "WARNING":
		programLevel.Set(slog.LevelWarn)
	case "ERROR":
		programLevel.Set(slog.LevelError)
	case "OFF":
		programLevel.Set(LevelOff)
	}
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func Tracef(format string, v ...any) { logf(LevelTrace, format, v...) }

func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }

func Infof(format string, v ...any) { logf(slog.LevelInfo, format, v...) }

func Warnf(format string, v ...any) { logf(slog.LevelWarn, format, v...) }

func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

func logf(level slog.Level, format string, v ...any) {
	l := Default()
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, fmt.Sprintf(format, v...))
}
