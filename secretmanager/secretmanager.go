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

// Package secretmanager wraps the Secret Manager client. Paths address a
// secret ("my-secret"), a specific version ("my-secret/3"), or the fully
// qualified "projects/P/secrets/S/versions/V" form. Secrets have no
// location: the parent of every request is "projects/P".
package secretmanager

import (
	"context"
	"fmt"
	"strings"

	sm "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

const service = "secretmanager"

// LatestVersion is the alias the service accepts for the newest enabled
// version of a secret.
const LatestVersion = "latest"

var scheme = respath.Scheme{
	ContainerKey: "secrets",
	ItemKey:      "versions",
}

// Client addresses a project, secret or secret version.
type Client struct {
	locator  respath.Locator
	registry *clients.Registry
	api      secretAPI
}

// New resolves the path against the options and builds the client.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := respath.Parse(path, respath.Locator{
		Project:   o.project,
		Container: o.secret,
		Item:      o.version,
	}, scheme)
	if l.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		l.Project = project
	}

	c := &Client{locator: l, registry: o.registry, api: o.api}
	if c.api == nil {
		clientOpts := o.clientOpts
		if c.registry == nil {
			// A fresh registry absorbs the options; an existing one
			// already carries its own, so ours are forwarded alongside.
			c.registry = clients.NewRegistry(clientOpts...)
			clientOpts = nil
		}
		client, err := clients.Get(c.registry, service, l.Project, func() (*sm.Client, error) {
			return sm.NewClient(ctx, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("creating secretmanager client: %w", err)
		}
		c.api = gapicAPI{c: client}
	}
	return c, nil
}

// Project returns the resolved project ID.
func (c *Client) Project() string { return c.locator.Project }

// Secret returns the secret ID, or "" at the project level.
func (c *Client) Secret() string { return c.locator.Container }

// Version returns the version from the path, or "" when none was given.
func (c *Client) Version() string { return c.locator.Item }

// Level reports how specific the path is.
func (c *Client) Level() respath.Level { return c.locator.Level() }

func (c *Client) parent() string { return "projects/" + c.locator.Project }

func (c *Client) secretName() string {
	return c.parent() + "/secrets/" + c.locator.Container
}

// versionName defaults the version to "latest" when the path has none.
func (c *Client) versionName() string {
	version := c.locator.Item
	if version == "" {
		version = LatestVersion
	}
	return c.secretName() + "/versions/" + version
}

// ListSecrets returns the secret IDs of the project.
func (c *Client) ListSecrets(ctx context.Context) ([]string, error) {
	secrets, err := c.api.listSecrets(ctx, c.parent())
	if err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	out := make([]string, len(secrets))
	for i, s := range secrets {
		out[i] = lastSegment(s.GetName())
	}
	return out, nil
}

// ListVersions returns the version IDs of the secret as "secret/version".
func (c *Client) ListVersions(ctx context.Context) ([]string, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list versions", Level: c.Level()}
	}
	versions, err := c.api.listVersions(ctx, c.secretName())
	if err != nil {
		return nil, fmt.Errorf("listing versions of secret %q: %w", c.locator.Container, err)
	}
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = c.locator.Container + "/" + lastSegment(v.GetName())
	}
	return out, nil
}

// List lists secrets at the project level and versions at the secret
// level.
func (c *Client) List(ctx context.Context) ([]string, error) {
	switch c.Level() {
	case respath.LevelNone, respath.LevelProject:
		return c.ListSecrets(ctx)
	case respath.LevelContainer:
		return c.ListVersions(ctx)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "list", Level: c.Level()}
	}
}

// Get returns the secret's metadata.
func (c *Client) Get(ctx context.Context) (*secretmanagerpb.Secret, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "get a secret", Level: c.Level()}
	}
	return c.api.getSecret(ctx, c.secretName())
}

// Exists reports whether the secret exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	_, err := c.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Access returns the payload of the addressed version, defaulting to the
// latest one when the path names only the secret.
func (c *Client) Access(ctx context.Context) ([]byte, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "access a secret", Level: c.Level()}
	}
	data, err := c.api.accessVersion(ctx, c.versionName())
	if err != nil {
		return nil, fmt.Errorf("accessing %q: %w", c.versionName(), err)
	}
	return data, nil
}

// Create creates the secret and, when payload is non-nil, stores it as
// the first version. An already existing secret only receives the new
// version.
func (c *Client) Create(ctx context.Context, payload []byte) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "create a secret", Level: c.Level()}
	}
	_, err := c.api.createSecret(ctx, c.parent(), c.locator.Container)
	switch {
	case err == nil:
		logger.Infof("Created secret %s", c.locator.Container)
	case isAlreadyExists(err):
	default:
		return fmt.Errorf("creating secret %q: %w", c.locator.Container, err)
	}
	if payload == nil {
		return nil
	}
	return c.AddVersion(ctx, payload)
}

// AddVersion stores payload as a new version of the secret.
func (c *Client) AddVersion(ctx context.Context, payload []byte) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "add a version", Level: c.Level()}
	}
	v, err := c.api.addVersion(ctx, c.secretName(), payload)
	if err != nil {
		return fmt.Errorf("adding version to secret %q: %w", c.locator.Container, err)
	}
	logger.Infof("Added version %s to secret %s", lastSegment(v.GetName()), c.locator.Container)
	return nil
}

// Delete destroys the addressed version, or deletes the whole secret
// when the path names no version.
func (c *Client) Delete(ctx context.Context) error {
	switch c.Level() {
	case respath.LevelItem:
		if err := c.api.destroyVersion(ctx, c.versionName()); err != nil {
			return fmt.Errorf("destroying %q: %w", c.versionName(), err)
		}
		logger.Infof("Destroyed secret version %s/%s", c.locator.Container, c.locator.Item)
		return nil
	case respath.LevelContainer:
		if err := c.api.deleteSecret(ctx, c.secretName()); err != nil {
			return fmt.Errorf("deleting secret %q: %w", c.locator.Container, err)
		}
		logger.Infof("Deleted secret %s", c.locator.Container)
		return nil
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, "/")+1:]
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
