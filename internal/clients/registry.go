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

// Package clients holds a registry of lazily constructed cloud clients.
//
// Creating a client authenticates against GCP, which is too expensive to
// repeat per call. Instead of a hidden process-global cache, wrappers share
// an explicit Registry: one client per (service, project), built on first
// use and reused until Close.
package clients

import (
	"errors"
	"sync"

	"google.golang.org/api/option"
)

// Key identifies one memoized client.
type Key struct {
	Service string
	Project string
}

// Registry memoizes clients by key. The zero value is not usable; call
// NewRegistry. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	clients map[Key]any
	opts    []option.ClientOption
}

// NewRegistry returns an empty registry. The given client options are
// applied to every client the registry constructs (endpoint overrides,
// credentials, and so on).
func NewRegistry(opts ...option.ClientOption) *Registry {
	return &Registry{
		clients: make(map[Key]any),
		opts:    opts,
	}
}

// Options returns the base client options for this registry.
func (r *Registry) Options() []option.ClientOption {
	return r.opts
}

// get returns the memoized client for key, constructing it with create on
// first use. The constructor runs under the registry lock: client creation
// is rare and keeping the lock makes duplicate construction impossible.
func (r *Registry) get(key Key, create func() (any, error)) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[key]; ok {
		return c, nil
	}
	c, err := create()
	if err != nil {
		return nil, err
	}
	r.clients[key] = c
	return c, nil
}

// Close closes every registered client that supports closing and empties
// the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for key, c := range r.clients {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(r.clients, key)
	}
	return errors.Join(errs...)
}

// Get returns the client for (service, project) from the registry,
// constructing it with create on first use.
func Get[T any](r *Registry, service, project string, create func() (T, error)) (T, error) {
	c, err := r.get(Key{Service: service, Project: project}, func() (any, error) {
		return create()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return c.(T), nil
}
