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

package firestore

import (
	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project    string
	database   string
	registry   *clients.Registry
	clientOpts []option.ClientOption
	fs         *fs.Client
	api        firestoreAPI
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithDatabase selects a named database instead of "(default)".
func WithDatabase(database string) Option {
	return func(o *options) { o.database = database }
}

// WithRegistry shares a client registry between wrappers.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithFirestoreClient injects an already constructed Firestore client,
// bypassing the registry. Used by tests.
func WithFirestoreClient(c *fs.Client) Option {
	return func(o *options) { o.fs = c }
}

// withAPI injects a fake API implementation in tests.
func withAPI(api firestoreAPI) Option {
	return func(o *options) { o.api = api }
}
