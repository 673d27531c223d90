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

package artifactregistry

import (
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project    string
	location   string
	repository string
	image      string
	version    string
	tag        string
	registry   *clients.Registry
	clientOpts []option.ClientOption
	callOpts   []gax.CallOption
	api        registryAPI
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithLocation sets the registry location. Defaults to cfg.Location().
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithRepository seeds the repository; a path-derived value wins.
func WithRepository(repository string) Option {
	return func(o *options) { o.repository = repository }
}

// WithImage seeds the image (package) name; a path-derived value wins.
func WithImage(image string) Option {
	return func(o *options) { o.image = image }
}

// WithVersion seeds the version digest; a path-derived value wins.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// WithTag seeds the tag. A tag takes precedence over any version.
func WithTag(tag string) Option {
	return func(o *options) { o.tag = tag }
}

// WithRegistry shares a client registry between wrappers.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithCallOptions forwards per-call options (timeouts, retry policies) to
// every request made through the client.
func WithCallOptions(opts ...gax.CallOption) Option {
	return func(o *options) { o.callOpts = append(o.callOpts, opts...) }
}

// withAPI injects a fake API implementation in tests.
func withAPI(api registryAPI) Option {
	return func(o *options) { o.api = api }
}
