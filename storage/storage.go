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

// Package storage wraps the Cloud Storage client behind gs:// paths.
//
// A path identifies the project ("" or "gs://"), a bucket ("gs://bucket")
// or an object ("gs://bucket/path/to/object"); the gs:// prefix is
// optional. Operations dispatch on that level: List returns buckets at the
// project level and objects at the bucket level, Delete removes an object
// or a whole bucket including its contents, and so on.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/iam"
	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

// Prefix is the gs:// filesystem prefix accepted (and produced) by paths.
const Prefix = "gs://"

var scheme = respath.Scheme{
	ContainerKey: "buckets",
	ItemKey:      "objects",
}

// Client addresses one storage path and exposes the operations valid at
// its level. It is immutable after construction.
type Client struct {
	locator  respath.Locator
	location string
	registry *clients.Registry
	gcs      *gstorage.Client
}

// New resolves path into a storage client. The path may be empty (project
// level), a bucket, or a bucket/object pair, with or without the gs://
// prefix. Options seed defaults; path-derived values overwrite them.
func New(ctx context.Context, pathStr string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	defaults := respath.Locator{
		Project:   o.project,
		Container: o.bucket,
		Item:      o.object,
	}
	locator := respath.Parse(strings.TrimPrefix(pathStr, Prefix), defaults, scheme)
	if locator.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		locator.Project = project
	}

	c := &Client{
		locator:  locator,
		location: o.location,
		registry: o.registry,
		gcs:      o.gcs,
	}
	clientOpts := o.clientOpts
	if c.registry == nil {
		// A fresh registry absorbs the options; an existing one already
		// carries its own, so ours are forwarded alongside.
		c.registry = clients.NewRegistry(clientOpts...)
		clientOpts = nil
	}
	if c.gcs == nil {
		gcs, err := clients.Get(c.registry, "storage", locator.Project, func() (*gstorage.Client, error) {
			return gstorage.NewClient(ctx, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("storage client creation failed: %w", err)
		}
		c.gcs = gcs
	}
	return c, nil
}

// BucketName returns the bucket the path addresses, or "".
func (c *Client) BucketName() string { return c.locator.Container }

// ObjectName returns the object the path addresses, or "".
func (c *Client) ObjectName() string { return c.locator.Item }

// Project returns the resolved project.
func (c *Client) Project() string { return c.locator.Project }

// Level returns the granularity of the path: project, container (bucket)
// or item (object).
func (c *Client) Level() respath.Level { return c.locator.Level() }

// IsProject reports whether the path addresses the whole project.
func (c *Client) IsProject() bool { return c.Level() <= respath.LevelProject }

// IsBucket reports whether the path addresses a bucket.
func (c *Client) IsBucket() bool { return c.Level() == respath.LevelContainer }

// IsObject reports whether the path addresses an object.
func (c *Client) IsObject() bool { return c.Level() == respath.LevelItem }

// FullPath renders the canonical gs:// path for the locator. Recomputed on
// every call, never cached.
func (c *Client) FullPath() string {
	switch {
	case c.locator.Container == "":
		return Prefix
	case c.locator.Item == "":
		return Prefix + c.locator.Container
	default:
		return Prefix + c.locator.Container + "/" + c.locator.Item
	}
}

// BasePath returns the path without the gs:// prefix.
func (c *Client) BasePath() string { return strings.TrimPrefix(c.FullPath(), Prefix) }

// FileName returns the last segment of the object name.
func (c *Client) FileName() string { return path.Base(c.locator.Item) }

// List lists buckets at the project level, and objects ("bucket/name") at
// the bucket level. At the object level the object name acts as a prefix.
func (c *Client) List(ctx context.Context) ([]string, error) {
	if c.IsProject() {
		return c.listBuckets(ctx)
	}
	return c.listObjects(ctx, c.locator.Item)
}

func (c *Client) listBuckets(ctx context.Context) ([]string, error) {
	var names []string
	it := c.gcs.Buckets(ctx, c.locator.Project)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (c *Client) listObjects(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := c.gcs.Bucket(c.locator.Container).Objects(ctx, &gstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, c.locator.Container+"/"+attrs.Name)
	}
	return names, nil
}

// Glob matches pattern (path.Match syntax, e.g. "bucket/*/*") against the
// objects of the pattern's bucket, or against bucket names when the
// pattern has no slash. An empty pattern globs the client's own path.
func (c *Client) Glob(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = c.BasePath()
	}
	pattern = strings.TrimPrefix(pattern, Prefix)
	if pattern == "" || pattern == "*" {
		return c.listBuckets(ctx)
	}
	bucket, rest, found := strings.Cut(pattern, "/")
	if !found {
		return c.listBuckets(ctx)
	}
	// Listing is restricted to the static prefix before the first
	// metacharacter; matching happens locally.
	static := rest
	if i := strings.IndexAny(rest, "*?["); i >= 0 {
		static = rest[:i]
	}
	var matches []string
	it := c.gcs.Bucket(bucket).Objects(ctx, &gstorage.Query{Prefix: static})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ok, err := path.Match(rest, attrs.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, bucket+"/"+attrs.Name)
		}
	}
	return matches, nil
}

// Exists reports whether the addressed bucket or object exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	switch c.Level() {
	case respath.LevelItem:
		_, err := c.gcs.Bucket(c.locator.Container).Object(c.locator.Item).Attrs(ctx)
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	case respath.LevelContainer:
		_, err := c.gcs.Bucket(c.locator.Container).Attrs(ctx)
		if errors.Is(err, gstorage.ErrBucketNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, &respath.UnsupportedLevelError{Op: "check existence", Level: c.Level()}
	}
}

// CreateBucket creates the addressed bucket in the client's location.
func (c *Client) CreateBucket(ctx context.Context) error {
	if !c.IsBucket() {
		return &respath.UnsupportedLevelError{Op: "create a bucket", Level: c.Level()}
	}
	attrs := &gstorage.BucketAttrs{Location: c.location}
	if err := c.gcs.Bucket(c.locator.Container).Create(ctx, c.locator.Project, attrs); err != nil {
		return err
	}
	logger.Infof("Storage - Created bucket %s", c.locator.Container)
	return nil
}

// Upload copies the local file to the addressed object.
func (c *Client) Upload(ctx context.Context, localPath string) error {
	if !c.IsObject() {
		return &respath.UnsupportedLevelError{Op: "upload", Level: c.Level()}
	}
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := c.gcs.Bucket(c.locator.Container).Object(c.locator.Item).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", c.FullPath(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", c.FullPath(), err)
	}
	logger.Infof("Storage - Uploaded %s to %s", localPath, c.FullPath())
	return nil
}

// Download copies the addressed object to the local file, creating parent
// directories as needed.
func (c *Client) Download(ctx context.Context, localPath string) error {
	r, err := c.Open(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	if dir := filepath.Dir(localPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("reading %s: %w", c.FullPath(), err)
	}
	logger.Infof("Storage - Downloaded %s to %s", c.FullPath(), localPath)
	return nil
}

// Open returns a reader over the addressed object.
func (c *Client) Open(ctx context.Context) (io.ReadCloser, error) {
	if !c.IsObject() {
		return nil, &respath.UnsupportedLevelError{Op: "open", Level: c.Level()}
	}
	return c.gcs.Bucket(c.locator.Container).Object(c.locator.Item).NewReader(ctx)
}

// Copy copies the addressed object to dst ("bucket/object", gs:// prefix
// optional).
func (c *Client) Copy(ctx context.Context, dst string) error {
	if !c.IsObject() {
		return &respath.UnsupportedLevelError{Op: "copy", Level: c.Level()}
	}
	target := respath.Parse(strings.TrimPrefix(dst, Prefix), respath.Locator{}, scheme)
	if target.Container == "" || target.Item == "" {
		return fmt.Errorf("copy destination %q must name a bucket and an object", dst)
	}
	src := c.gcs.Bucket(c.locator.Container).Object(c.locator.Item)
	dstObj := c.gcs.Bucket(target.Container).Object(target.Item)
	if _, err := dstObj.CopierFrom(src).Run(ctx); err != nil {
		return err
	}
	logger.Infof("Storage - Copied %s to %s%s/%s", c.FullPath(), Prefix, target.Container, target.Item)
	return nil
}

// Move copies the addressed object to dst, then deletes the source.
func (c *Client) Move(ctx context.Context, dst string) error {
	if err := c.Copy(ctx, dst); err != nil {
		return err
	}
	return c.Delete(ctx)
}

// Delete removes the addressed object, or the addressed bucket together
// with everything in it.
func (c *Client) Delete(ctx context.Context) error {
	switch c.Level() {
	case respath.LevelItem:
		if err := c.gcs.Bucket(c.locator.Container).Object(c.locator.Item).Delete(ctx); err != nil {
			return err
		}
		logger.Infof("Storage - Deleted object %s", c.FullPath())
		return nil
	case respath.LevelContainer:
		// Buckets must be empty before deletion.
		bucket := c.gcs.Bucket(c.locator.Container)
		it := bucket.Objects(ctx, nil)
		for {
			attrs, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}
			if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
				return err
			}
		}
		if err := bucket.Delete(ctx); err != nil {
			return err
		}
		logger.Infof("Storage - Deleted bucket %s", c.locator.Container)
		return nil
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}

// IAMPolicy reads the IAM policy of the addressed bucket.
func (c *Client) IAMPolicy(ctx context.Context) (*iam.Policy, error) {
	if !c.IsBucket() {
		return nil, &respath.UnsupportedLevelError{Op: "read the IAM policy", Level: c.Level()}
	}
	return c.gcs.Bucket(c.locator.Container).IAM().Policy(ctx)
}
