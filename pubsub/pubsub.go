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

// Package pubsub wraps the Pub/Sub client. Paths address a topic
// ("my-topic"), a subscription under a topic ("my-topic/my-sub"), or the
// fully qualified "projects/P/topics/T" and
// "projects/P/subscriptions/S" forms.
package pubsub

import (
	"context"
	"fmt"
	"time"

	ps "cloud.google.com/go/pubsub"
	"google.golang.org/api/iterator"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

const service = "pubsub"

// DefaultAckDeadline is applied to subscriptions created by this package.
const DefaultAckDeadline = 10 * time.Second

var scheme = respath.Scheme{
	ContainerKey: "topics",
	ItemKey:      "subscriptions",
}

// Client addresses a project, topic or subscription.
type Client struct {
	locator  respath.Locator
	registry *clients.Registry
	ps       *ps.Client
}

// New resolves the path against the options and builds the client.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := respath.Parse(path, respath.Locator{
		Project:   o.project,
		Container: o.topic,
		Item:      o.subscription,
	}, scheme)
	if l.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		l.Project = project
	}

	c := &Client{locator: l, registry: o.registry, ps: o.ps}
	if c.ps == nil {
		clientOpts := o.clientOpts
		if c.registry == nil {
			// A fresh registry absorbs the options; an existing one
			// already carries its own, so ours are forwarded alongside.
			c.registry = clients.NewRegistry(clientOpts...)
			clientOpts = nil
		}
		client, err := clients.Get(c.registry, service, l.Project, func() (*ps.Client, error) {
			return ps.NewClient(ctx, l.Project, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("creating pubsub client: %w", err)
		}
		c.ps = client
	}
	return c, nil
}

// Project returns the resolved project ID.
func (c *Client) Project() string { return c.locator.Project }

// Topic returns the topic ID, or "" when the path has none.
func (c *Client) Topic() string { return c.locator.Container }

// Subscription returns the subscription ID, or "" when the path has none.
func (c *Client) Subscription() string { return c.locator.Item }

// Level reports how specific the path is.
func (c *Client) Level() respath.Level { return c.locator.Level() }

func (c *Client) topic() *ps.Topic { return c.ps.Topic(c.locator.Container) }

func (c *Client) subscription() *ps.Subscription { return c.ps.Subscription(c.locator.Item) }

// ListTopics returns the topic IDs of the project.
func (c *Client) ListTopics(ctx context.Context) ([]string, error) {
	var out []string
	it := c.ps.Topics(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing topics: %w", err)
		}
		out = append(out, t.ID())
	}
}

// ListSubscriptions returns subscription IDs. At the topic level only the
// topic's subscriptions are returned; otherwise all subscriptions in the
// project.
func (c *Client) ListSubscriptions(ctx context.Context) ([]string, error) {
	var out []string
	if c.locator.Container != "" {
		it := c.topic().Subscriptions(ctx)
		for {
			s, err := it.Next()
			if err == iterator.Done {
				return out, nil
			}
			if err != nil {
				return nil, fmt.Errorf("listing subscriptions of topic %q: %w", c.locator.Container, err)
			}
			out = append(out, s.ID())
		}
	}
	it := c.ps.Subscriptions(ctx)
	for {
		s, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing subscriptions: %w", err)
		}
		out = append(out, s.ID())
	}
}

// List lists topics at the project level and subscriptions at the topic
// level.
func (c *Client) List(ctx context.Context) ([]string, error) {
	switch c.Level() {
	case respath.LevelNone, respath.LevelProject:
		return c.ListTopics(ctx)
	case respath.LevelContainer:
		return c.ListSubscriptions(ctx)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "list", Level: c.Level()}
	}
}

// Exists reports whether the addressed topic or subscription exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	switch c.Level() {
	case respath.LevelItem:
		return c.subscription().Exists(ctx)
	case respath.LevelContainer:
		return c.topic().Exists(ctx)
	default:
		return false, &respath.UnsupportedLevelError{Op: "check existence", Level: c.Level()}
	}
}

// CreateTopic creates the topic.
func (c *Client) CreateTopic(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "create a topic", Level: c.Level()}
	}
	if _, err := c.ps.CreateTopic(ctx, c.locator.Container); err != nil {
		return fmt.Errorf("creating topic %q: %w", c.locator.Container, err)
	}
	logger.Infof("Created topic %s", c.locator.Container)
	return nil
}

// CreateSubscription creates the subscription attached to the path's
// topic.
func (c *Client) CreateSubscription(ctx context.Context) error {
	if c.locator.Item == "" || c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "create a subscription", Level: c.Level()}
	}
	cfg := ps.SubscriptionConfig{Topic: c.topic(), AckDeadline: DefaultAckDeadline}
	if _, err := c.ps.CreateSubscription(ctx, c.locator.Item, cfg); err != nil {
		return fmt.Errorf("creating subscription %q: %w", c.locator.Item, err)
	}
	logger.Infof("Created subscription %s on topic %s", c.locator.Item, c.locator.Container)
	return nil
}

// Publish sends one message to the topic and blocks until the server
// acknowledges it, returning the server-assigned message ID.
func (c *Client) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	if c.locator.Container == "" {
		return "", &respath.UnsupportedLevelError{Op: "publish", Level: c.Level()}
	}
	t := c.topic()
	defer t.Stop()
	res := t.Publish(ctx, &ps.Message{Data: data, Attributes: attrs})
	id, err := res.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing to topic %q: %w", c.locator.Container, err)
	}
	return id, nil
}

// DeleteTopic deletes the topic.
func (c *Client) DeleteTopic(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "delete a topic", Level: c.Level()}
	}
	if err := c.topic().Delete(ctx); err != nil {
		return fmt.Errorf("deleting topic %q: %w", c.locator.Container, err)
	}
	logger.Infof("Deleted topic %s", c.locator.Container)
	return nil
}

// DeleteSubscription deletes the subscription.
func (c *Client) DeleteSubscription(ctx context.Context) error {
	if c.locator.Item == "" {
		return &respath.UnsupportedLevelError{Op: "delete a subscription", Level: c.Level()}
	}
	if err := c.subscription().Delete(ctx); err != nil {
		return fmt.Errorf("deleting subscription %q: %w", c.locator.Item, err)
	}
	logger.Infof("Deleted subscription %s", c.locator.Item)
	return nil
}

// Delete removes the subscription when one is addressed, otherwise the
// topic.
func (c *Client) Delete(ctx context.Context) error {
	switch c.Level() {
	case respath.LevelItem:
		return c.DeleteSubscription(ctx)
	case respath.LevelContainer:
		return c.DeleteTopic(ctx)
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}
