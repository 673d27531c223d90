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

package bigquery

import (
	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project    string
	location   string
	dataset    string
	table      string
	registry   *clients.Registry
	clientOpts []option.ClientOption
	bq         *bq.Client
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithLocation sets the location used when creating datasets.
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithDataset seeds the dataset; a path-derived value wins.
func WithDataset(dataset string) Option {
	return func(o *options) { o.dataset = dataset }
}

// WithTable seeds the table; a path-derived value wins.
func WithTable(table string) Option {
	return func(o *options) { o.table = table }
}

// WithRegistry shares a client registry between wrappers.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithBQClient injects an already constructed BigQuery client, bypassing
// the registry. Used by tests.
func WithBQClient(c *bq.Client) Option {
	return func(o *options) { o.bq = c }
}
