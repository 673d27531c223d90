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

// Package firestore wraps the Firestore client behind slash paths whose
// segments alternate collection/document: "users" is a collection,
// "users/alice" a document, "users/alice/orders" a collection again, and
// so on to any depth.
package firestore

import (
	"context"
	"fmt"
	"strings"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

const service = "firestore"

// Client addresses the database root, a collection or a document.
type Client struct {
	project  string
	segments []string
	registry *clients.Registry
	api      firestoreAPI
}

// New resolves the path and builds the client. An empty path addresses
// the database root.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	project := o.project
	if project == "" {
		p, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		project = p
	}

	c := &Client{project: project, segments: splitPath(path), registry: o.registry, api: o.api}
	if c.api == nil && o.fs != nil {
		c.api = gcloudAPI{c: o.fs}
	}
	if c.api == nil {
		clientOpts := o.clientOpts
		if c.registry == nil {
			// A fresh registry absorbs the options; an existing one
			// already carries its own, so ours are forwarded alongside.
			c.registry = clients.NewRegistry(clientOpts...)
			clientOpts = nil
		}
		client, err := clients.Get(c.registry, service, project, func() (*fs.Client, error) {
			all := append(c.registry.Options(), clientOpts...)
			if o.database != "" {
				return fs.NewClientWithDatabase(ctx, project, o.database, all...)
			}
			return fs.NewClient(ctx, project, all...)
		})
		if err != nil {
			return nil, fmt.Errorf("creating firestore client: %w", err)
		}
		c.api = gcloudAPI{c: client}
	}
	return c, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Project returns the resolved project ID.
func (c *Client) Project() string { return c.project }

// Path returns the slash path this client addresses.
func (c *Client) Path() string { return strings.Join(c.segments, "/") }

// IsRoot reports whether the path addresses the database root.
func (c *Client) IsRoot() bool { return len(c.segments) == 0 }

// IsCollection reports whether the path has odd depth.
func (c *Client) IsCollection() bool { return len(c.segments)%2 == 1 }

// IsDocument reports whether the path has even, non-zero depth.
func (c *Client) IsDocument() bool { return !c.IsRoot() && len(c.segments)%2 == 0 }

// Level maps the path depth onto the generic level scale: the root is the
// project, collections are containers, documents are items.
func (c *Client) Level() respath.Level {
	switch {
	case c.IsDocument():
		return respath.LevelItem
	case c.IsCollection():
		return respath.LevelContainer
	default:
		return respath.LevelProject
	}
}

// List returns collection IDs at the root or under a document, and
// document IDs inside a collection.
func (c *Client) List(ctx context.Context) ([]string, error) {
	if c.IsCollection() {
		out, err := c.api.listDocuments(ctx, c.Path())
		if err != nil {
			return nil, fmt.Errorf("listing documents in %q: %w", c.Path(), err)
		}
		return out, nil
	}
	out, err := c.api.listCollections(ctx, c.Path())
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return out, nil
}

// Get reads the document as a plain map.
func (c *Client) Get(ctx context.Context) (map[string]any, error) {
	if !c.IsDocument() {
		return nil, &respath.UnsupportedLevelError{Op: "get a document", Level: c.Level()}
	}
	data, err := c.api.getDocument(ctx, c.Path())
	if err != nil {
		return nil, fmt.Errorf("getting document %q: %w", c.Path(), err)
	}
	return data, nil
}

// Exists reports whether the document exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	if !c.IsDocument() {
		return false, &respath.UnsupportedLevelError{Op: "check existence", Level: c.Level()}
	}
	_, err := c.api.getDocument(ctx, c.Path())
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Set writes the document, replacing any existing contents.
func (c *Client) Set(ctx context.Context, data map[string]any) error {
	if !c.IsDocument() {
		return &respath.UnsupportedLevelError{Op: "set a document", Level: c.Level()}
	}
	if err := c.api.setDocument(ctx, c.Path(), data, false); err != nil {
		return fmt.Errorf("setting document %q: %w", c.Path(), err)
	}
	logger.Infof("Wrote document %s", c.Path())
	return nil
}

// Update merges the given fields into the document, keeping the others.
func (c *Client) Update(ctx context.Context, data map[string]any) error {
	if !c.IsDocument() {
		return &respath.UnsupportedLevelError{Op: "update a document", Level: c.Level()}
	}
	if err := c.api.setDocument(ctx, c.Path(), data, true); err != nil {
		return fmt.Errorf("updating document %q: %w", c.Path(), err)
	}
	logger.Infof("Updated document %s", c.Path())
	return nil
}

// Delete removes the document or collection the path addresses,
// recursively: deleting a document also removes its subcollections, and
// deleting a collection removes every document in it the same way.
func (c *Client) Delete(ctx context.Context) error {
	switch {
	case c.IsDocument():
		if err := c.deleteDocumentTree(ctx, c.Path()); err != nil {
			return err
		}
		logger.Infof("Deleted document %s", c.Path())
		return nil
	case c.IsCollection():
		n, err := c.deleteCollectionTree(ctx, c.Path())
		if err != nil {
			return err
		}
		logger.Infof("Deleted collection %s (%d documents)", c.Path(), n)
		return nil
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}

// deleteDocumentTree removes the document's subcollections before the
// document itself.
func (c *Client) deleteDocumentTree(ctx context.Context, docPath string) error {
	cols, err := c.api.listCollections(ctx, docPath)
	if err != nil {
		return fmt.Errorf("listing collections of %q: %w", docPath, err)
	}
	for _, col := range cols {
		if _, err := c.deleteCollectionTree(ctx, docPath+"/"+col); err != nil {
			return err
		}
	}
	if err := c.api.deleteDocument(ctx, docPath); err != nil {
		return fmt.Errorf("deleting document %q: %w", docPath, err)
	}
	return nil
}

// deleteCollectionTree removes every document of the collection,
// recursing into each. Document listing includes documents that hold no
// data but have live subcollections, so those trees are swept too.
func (c *Client) deleteCollectionTree(ctx context.Context, colPath string) (int, error) {
	ids, err := c.api.listDocuments(ctx, colPath)
	if err != nil {
		return 0, fmt.Errorf("listing documents in %q: %w", colPath, err)
	}
	n := 0
	for _, id := range ids {
		if err := c.deleteDocumentTree(ctx, colPath+"/"+id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
