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

// Package cfg loads module-wide configuration from an optional YAML file
// and GCPPAL_* environment variables.
package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/logger"
)

// DefaultLocation matches the location the wrappers assume when neither
// the path, the options, nor the environment names one.
const DefaultLocation = "europe-west2"

var (
	appliedMu       sync.RWMutex
	appliedLocation string
)

// Location returns the default location for wrappers: the one from the
// last applied configuration, or DefaultLocation when none was applied.
func Location() string {
	appliedMu.RLock()
	defer appliedMu.RUnlock()
	if appliedLocation != "" {
		return appliedLocation
	}
	return DefaultLocation
}

type Config struct {
	// Project is the default GCP project for all wrappers.
	Project string `mapstructure:"project" yaml:"project"`

	// Location is the default region or multi-region.
	Location string `mapstructure:"location" yaml:"location"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type LoggingConfig struct {
	Severity LogSeverity `mapstructure:"severity" yaml:"severity"`

	Format LogFormat `mapstructure:"format" yaml:"format"`

	// FilePath, when set, redirects logs to a rotating file.
	FilePath string `mapstructure:"file-path" yaml:"file-path"`

	// MaxFileSizeMB caps a log file before rotation.
	MaxFileSizeMB int `mapstructure:"max-file-size-mb" yaml:"max-file-size-mb"`
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	)
}

// Load reads configuration from configFile (may be empty) layered under
// GCPPAL_* environment variables, e.g. GCPPAL_PROJECT and
// GCPPAL_LOGGING_SEVERITY.
func Load(configFile string) (Config, error) {
	v := viper.New()
	// Every key needs a default so that AutomaticEnv can see it.
	v.SetDefault("project", "")
	v.SetDefault("location", DefaultLocation)
	v.SetDefault("logging.file-path", "")
	v.SetDefault("logging.severity", string(InfoLogSeverity))
	v.SetDefault("logging.format", string(TextLogFormat))
	v.SetDefault("logging.max-file-size-mb", 100)
	v.SetEnvPrefix("gcppal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error while reading config file %q: %w", configFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, fmt.Errorf("error while unmarshalling config: %w", err)
	}
	return c, nil
}

// Apply wires the configuration into the module: the logging section into
// the logger, and the project and location into the defaults the wrappers
// resolve when a path carries neither.
func (c Config) Apply() {
	logger.Setup(string(c.Logging.Severity), string(c.Logging.Format))
	if c.Logging.FilePath != "" {
		logger.SetupLogFile(c.Logging.FilePath, c.Logging.MaxFileSizeMB)
	}
	auth.SetConfigProject(c.Project)
	appliedMu.Lock()
	appliedLocation = c.Location
	appliedMu.Unlock()
}
