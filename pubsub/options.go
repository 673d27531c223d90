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

package pubsub

import (
	ps "cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/gcp-pal/gcppal/internal/clients"
)

type options struct {
	project      string
	topic        string
	subscription string
	registry     *clients.Registry
	clientOpts   []option.ClientOption
	ps           *ps.Client
}

// Option configures a Client.
type Option func(*options)

// WithProject sets the project explicitly instead of resolving the
// environment default.
func WithProject(project string) Option {
	return func(o *options) { o.project = project }
}

// WithTopic seeds the topic; a path-derived value wins.
func WithTopic(topic string) Option {
	return func(o *options) { o.topic = topic }
}

// WithSubscription seeds the subscription; a path-derived value wins.
func WithSubscription(subscription string) Option {
	return func(o *options) { o.subscription = subscription }
}

// WithRegistry shares a client registry between wrappers.
func WithRegistry(r *clients.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithPubSubClient injects an already constructed Pub/Sub client,
// bypassing the registry. Used by tests to connect to pstest.
func WithPubSubClient(c *ps.Client) Option {
	return func(o *options) { o.ps = c }
}
