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

package cloudfunctions

import (
	"net/http"

	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project    string
	location   string
	function   string
	registry   *clients.Registry
	clientOpts []option.ClientOption
	api        functionsAPI
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithLocation sets the functions region. Defaults to cfg.Location().
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithFunction seeds the function name; a path-derived value wins.
func WithFunction(function string) Option {
	return func(o *options) { o.function = function }
}

// WithRegistry shares a client registry between wrappers.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithHTTPClient overrides the ID-token client used by Call. Used by
// tests; production calls mint an identity token for the function URI.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// withAPI injects a fake API implementation in tests.
func withAPI(api functionsAPI) Option {
	return func(o *options) { o.api = api }
}
