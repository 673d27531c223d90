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

package storage

import (
	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project    string
	location   string
	bucket     string
	object     string
	registry   *clients.Registry
	clientOpts []option.ClientOption
	gcs        *gstorage.Client
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithLocation sets the location used when creating buckets.
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithBucket seeds the bucket name; a bucket derived from the path wins.
func WithBucket(bucket string) Option {
	return func(o *options) { o.bucket = bucket }
}

// WithObject seeds the object name; an object derived from the path wins.
func WithObject(object string) Option {
	return func(o *options) { o.object = object }
}

// WithRegistry shares a client registry between wrappers so that repeated
// constructions reuse the same authenticated client.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying storage client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithGCSClient injects a pre-built storage client, bypassing the registry.
// Used by tests to point the wrapper at a fake server.
func WithGCSClient(c *gstorage.Client) Option {
	return func(o *options) { o.gcs = c }
}
