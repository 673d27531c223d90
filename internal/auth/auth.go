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

// Package auth resolves the ambient GCP identity: the default project and
// a token source for authenticated calls outside the cloud clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// projectEnvVar is the module's own override; it outranks everything but
// an explicit option.
const projectEnvVar = "GCPPAL_PROJECT"

// projectEnvVars are the generic environment variables, consulted after
// the configuration file.
var projectEnvVars = []string{"GOOGLE_CLOUD_PROJECT", "PROJECT"}

var (
	configMu      sync.RWMutex
	configProject string
)

// SetConfigProject registers the project loaded from the configuration
// file. It ranks below explicit options and GCPPAL_PROJECT but above the
// generic environment variables in the resolution chain.
func SetConfigProject(project string) {
	configMu.Lock()
	defer configMu.Unlock()
	configProject = project
}

func configuredProject() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return configProject
}

// DefaultProject resolves the project to operate in when the caller gives
// none: GCPPAL_PROJECT, then the configuration file, then the generic
// environment variables, then the project carried by the application
// default credentials, then the GCE metadata server.
func DefaultProject(ctx context.Context) (string, error) {
	if v := os.Getenv(projectEnvVar); v != "" {
		return v, nil
	}
	if p := configuredProject(); p != "" {
		return p, nil
	}
	for _, key := range projectEnvVars {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	if creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope); err == nil && creds.ProjectID != "" {
		return creds.ProjectID, nil
	}
	if metadata.OnGCE() {
		project, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("metadata.ProjectID: %w", err)
		}
		return project, nil
	}
	return "", errors.New("no default project found: set GOOGLE_CLOUD_PROJECT or configure application default credentials")
}

// TokenSource returns a token source backed by the application default
// credentials, for calls made outside the cloud client libraries (e.g.
// invoking a function's HTTPS endpoint).
func TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("google.DefaultTokenSource: %w", err)
	}
	return ts, nil
}
