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

// Package artifactregistry wraps the Artifact Registry client behind
// human-friendly paths.
//
// A path follows the hierarchy repository/image/version and may be any of:
//
//	projects/P/locations/L/repositories/R/packages/I/versions/sha256:V
//	REPOSITORY/IMAGE/sha256:VERSION
//	REPOSITORY/IMAGE:TAG
//	REPOSITORY/IMAGE
//	REPOSITORY
//
// The most specific populated component decides the level the client
// addresses, which in turn decides which operations are valid.
package artifactregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	ar "cloud.google.com/go/artifactregistry/apiv1"
	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/gcp-pal/gcppal/cfg"
	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

// ErrVersionTagged reports an attempt to delete a version that still has
// tags pointing at it. What the vendor intends in that situation is
// ambiguous, so the operation is surfaced as unsupported instead of
// being worked around.
var ErrVersionTagged = errors.New("version is still tagged")

var scheme = respath.Scheme{
	ContainerKey: "repositories",
	ItemKey:      "packages",
	VersionKey:   "versions",
	TagKey:       "tags",
	DigestPrefix: "sha256:",
}

// Client addresses one Artifact Registry path. It is immutable after
// construction; operations dispatch on the path's level.
type Client struct {
	locator  respath.Locator
	registry *clients.Registry
	api      registryAPI
}

// New resolves path into an Artifact Registry client. Options seed
// defaults; path-derived components overwrite them. The location defaults
// to the configured one and the project to the environment default.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	o := options{location: cfg.Location()}
	for _, opt := range opts {
		opt(&o)
	}

	defaults := respath.Locator{
		Project:   o.project,
		Location:  o.location,
		Container: o.repository,
		Item:      o.image,
	}
	defaults = defaults.WithVersion(o.version)
	if o.tag != "" {
		defaults = defaults.WithTag(o.tag)
	}
	locator := respath.Parse(path, defaults, scheme)
	if locator.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		locator.Project = project
	}

	c := &Client{locator: locator, registry: o.registry, api: o.api}
	clientOpts := o.clientOpts
	if c.registry == nil {
		// A fresh registry absorbs the options; an existing one already
		// carries its own, so ours are forwarded alongside.
		c.registry = clients.NewRegistry(clientOpts...)
		clientOpts = nil
	}
	if c.api == nil {
		client, err := clients.Get(c.registry, "artifactregistry", locator.Project, func() (*ar.Client, error) {
			return ar.NewClient(ctx, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("artifact registry client creation failed: %w", err)
		}
		c.api = gapicAPI{c: client, callOpts: o.callOpts}
	}
	return c, nil
}

// Repository returns the repository component, or "".
func (c *Client) Repository() string { return c.locator.Container }

// Image returns the image (package) component, or "".
func (c *Client) Image() string { return c.locator.Item }

// Version returns the version digest, or "".
func (c *Client) Version() string { return c.locator.Version }

// Tag returns the tag, or "".
func (c *Client) Tag() string { return c.locator.Tag }

// Project returns the resolved project.
func (c *Client) Project() string { return c.locator.Project }

// Location returns the resolved location.
func (c *Client) Location() string { return c.locator.Location }

// Level returns the granularity the path addresses.
func (c *Client) Level() respath.Level { return c.locator.Level() }

// Path renders the shorthand path for the locator.
func (c *Client) Path() string { return c.locator.ShortPath(scheme) }

// ResourceName renders the fully qualified name at the locator's level.
func (c *Client) ResourceName() string { return c.locator.ResourceName(scheme) }

// Parent returns the location parent used by list requests.
func (c *Client) Parent() string { return c.locator.Parent() }

func (c *Client) repositoryName() string {
	return c.Parent() + "/repositories/" + c.locator.Container
}

func (c *Client) imageName() string {
	return c.repositoryName() + "/packages/" + respath.EncodeSegment(c.locator.Item)
}

func (c *Client) versionName() string {
	return c.imageName() + "/versions/" + scheme.DigestPrefix + c.locator.Version
}

func (c *Client) tagName() string {
	return c.imageName() + "/tags/" + c.locator.Tag
}

// ListRepositories lists the repositories of the location.
func (c *Client) ListRepositories(ctx context.Context) ([]string, error) {
	repos, err := c.api.listRepositories(ctx, c.Parent())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, lastSegment(r.GetName()))
	}
	return names, nil
}

// ListImages lists the images of the repository as "repository/image".
func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list images", Level: c.Level()}
	}
	packages, err := c.api.listPackages(ctx, c.repositoryName())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(packages))
	for _, p := range packages {
		// Not a split on "/": the package name may itself contain one.
		image := strings.TrimPrefix(p.GetName(), c.repositoryName()+"/packages/")
		names = append(names, c.locator.Container+"/"+respath.DecodeSegment(image))
	}
	return names, nil
}

// ListVersions lists the versions of the image as
// "repository/image/sha256:digest", newest first.
func (c *Client) ListVersions(ctx context.Context) ([]string, error) {
	if c.locator.Item == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list versions", Level: c.Level()}
	}
	versions, err := c.api.listVersions(ctx, c.imageName())
	if err != nil {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].GetCreateTime().AsTime().After(versions[j].GetCreateTime().AsTime())
	})
	names := make([]string, 0, len(versions))
	for _, v := range versions {
		digest := strings.TrimPrefix(v.GetName(), c.imageName()+"/versions/")
		names = append(names, c.locator.Container+"/"+c.locator.Item+"/"+digest)
	}
	return names, nil
}

// ListTags lists the tags of the image as "repository/image:tag".
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	if c.locator.Item == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list tags", Level: c.Level()}
	}
	tags, err := c.api.listTags(ctx, c.imageName())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, c.locator.Container+"/"+c.locator.Item+":"+lastSegment(tag.GetName()))
	}
	return names, nil
}

// ListFiles lists the files of the repository.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list files", Level: c.Level()}
	}
	files, err := c.api.listFiles(ctx, c.repositoryName())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.GetName())
	}
	return names, nil
}

// List lists the children of the path: repositories of a location, images
// of a repository, versions of an image. Listing is undefined at the
// project and digest levels.
func (c *Client) List(ctx context.Context) ([]string, error) {
	switch c.Level() {
	case respath.LevelItem:
		return c.ListVersions(ctx)
	case respath.LevelContainer:
		return c.ListImages(ctx)
	case respath.LevelLocation:
		return c.ListRepositories(ctx)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "list", Level: c.Level()}
	}
}

// GetRepository fetches the repository resource.
func (c *Client) GetRepository(ctx context.Context) (*artifactregistrypb.Repository, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "get a repository", Level: c.Level()}
	}
	return c.api.getRepository(ctx, c.repositoryName())
}

// GetImage fetches the image (package) resource.
func (c *Client) GetImage(ctx context.Context) (*artifactregistrypb.Package, error) {
	if c.locator.Item == "" {
		return nil, &respath.UnsupportedLevelError{Op: "get an image", Level: c.Level()}
	}
	return c.api.getPackage(ctx, c.imageName())
}

// GetVersion fetches the version resource. When the path carries a tag
// instead of a digest, the tag is resolved first.
func (c *Client) GetVersion(ctx context.Context) (*artifactregistrypb.Version, error) {
	switch {
	case c.locator.Version != "":
		return c.api.getVersion(ctx, c.versionName())
	case c.locator.Tag != "":
		digest, err := c.VersionFromTag(ctx)
		if err != nil {
			return nil, err
		}
		return c.api.getVersion(ctx, c.imageName()+"/versions/"+scheme.DigestPrefix+digest)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "get a version", Level: c.Level()}
	}
}

// GetTag fetches the tag resource.
func (c *Client) GetTag(ctx context.Context) (*artifactregistrypb.Tag, error) {
	if c.locator.Tag == "" {
		return nil, &respath.UnsupportedLevelError{Op: "get a tag", Level: c.Level()}
	}
	return c.api.getTag(ctx, c.tagName())
}

// VersionFromTag resolves the tag to the digest it points at.
func (c *Client) VersionFromTag(ctx context.Context) (string, error) {
	tag, err := c.GetTag(ctx)
	if err != nil {
		return "", err
	}
	if tag.GetVersion() == "" {
		return "", fmt.Errorf("tag not found in %s/%s/%s", c.locator.Location, c.locator.Container, c.locator.Item)
	}
	return strings.TrimPrefix(tag.GetVersion(), c.imageName()+"/versions/"+scheme.DigestPrefix), nil
}

// Get fetches the resource the path addresses: a repository, an image, or
// a version (through its tag when one is set).
func (c *Client) Get(ctx context.Context) (proto.Message, error) {
	switch c.Level() {
	case respath.LevelContainer:
		return c.GetRepository(ctx)
	case respath.LevelItem:
		return c.GetImage(ctx)
	case respath.LevelDigest:
		return c.GetVersion(ctx)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "get", Level: c.Level()}
	}
}

// DeleteRepository deletes the repository and waits for completion.
func (c *Client) DeleteRepository(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "delete a repository", Level: c.Level()}
	}
	if err := c.api.deleteRepository(ctx, c.repositoryName()); err != nil {
		return err
	}
	logger.Infof("Artifact Registry - Deleted repository %s/%s", c.locator.Location, c.locator.Container)
	return nil
}

// DeleteImage deletes the image and all its versions, waiting for
// completion.
func (c *Client) DeleteImage(ctx context.Context) error {
	if c.locator.Item == "" {
		return &respath.UnsupportedLevelError{Op: "delete an image", Level: c.Level()}
	}
	if err := c.api.deletePackage(ctx, c.imageName()); err != nil {
		return err
	}
	logger.Infof("Artifact Registry - Deleted image %s/%s/%s", c.locator.Location, c.locator.Container, c.locator.Item)
	return nil
}

// DeleteVersion deletes the version and waits for completion. Deleting a
// version that is still tagged fails with ErrVersionTagged.
func (c *Client) DeleteVersion(ctx context.Context) error {
	if c.locator.Version == "" {
		return &respath.UnsupportedLevelError{Op: "delete a version", Level: c.Level()}
	}
	if err := c.api.deleteVersion(ctx, c.versionName()); err != nil {
		if isTaggedPrecondition(err) {
			return fmt.Errorf("%w: delete its tags first (%v)", ErrVersionTagged, err)
		}
		return err
	}
	logger.Infof("Artifact Registry - Deleted digest %s/%s/%s/sha256:%s", c.locator.Location, c.locator.Container, c.locator.Item, c.locator.Version)
	return nil
}

// DeleteTag deletes the tag, leaving the version it points at in place.
func (c *Client) DeleteTag(ctx context.Context) error {
	if c.locator.Tag == "" {
		return &respath.UnsupportedLevelError{Op: "delete a tag", Level: c.Level()}
	}
	if err := c.api.deleteTag(ctx, c.tagName()); err != nil {
		return err
	}
	logger.Infof("Artifact Registry - Deleted tag %s/%s/%s:%s", c.locator.Location, c.locator.Container, c.locator.Item, c.locator.Tag)
	return nil
}

// Delete deletes the resource the path addresses: a repository, an image,
// a tag, or an untagged version.
func (c *Client) Delete(ctx context.Context) error {
	switch c.Level() {
	case respath.LevelContainer:
		return c.DeleteRepository(ctx)
	case respath.LevelItem:
		return c.DeleteImage(ctx)
	case respath.LevelDigest:
		if c.locator.Tag != "" {
			return c.DeleteTag(ctx)
		}
		return c.DeleteVersion(ctx)
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}

func isTaggedPrecondition(err error) bool {
	return status.Code(err) == codes.FailedPrecondition &&
		strings.Contains(strings.ToLower(err.Error()), "tagged")
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
