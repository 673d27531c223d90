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
	"context"

	ar "cloud.google.com/go/artifactregistry/apiv1"
	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/iterator"
)

// registryAPI is the slice of the Artifact Registry client this package
// uses. Narrowing the surface keeps the wrapper testable with a fake.
type registryAPI interface {
	listRepositories(ctx context.Context, parent string) ([]*artifactregistrypb.Repository, error)
	listPackages(ctx context.Context, parent string) ([]*artifactregistrypb.Package, error)
	listVersions(ctx context.Context, parent string) ([]*artifactregistrypb.Version, error)
	listTags(ctx context.Context, parent string) ([]*artifactregistrypb.Tag, error)
	listFiles(ctx context.Context, parent string) ([]*artifactregistrypb.File, error)
	getRepository(ctx context.Context, name string) (*artifactregistrypb.Repository, error)
	getPackage(ctx context.Context, name string) (*artifactregistrypb.Package, error)
	getVersion(ctx context.Context, name string) (*artifactregistrypb.Version, error)
	getTag(ctx context.Context, name string) (*artifactregistrypb.Tag, error)
	deleteRepository(ctx context.Context, name string) error
	deletePackage(ctx context.Context, name string) error
	deleteVersion(ctx context.Context, name string) error
	deleteTag(ctx context.Context, name string) error
}

// gapicAPI adapts the generated client: iterators are drained into slices
// and long-running deletes are awaited to completion, per the synchronous
// contract of this module. callOpts are forwarded to every call.
type gapicAPI struct {
	c        *ar.Client
	callOpts []gax.CallOption
}

func collect[T any](next func() (T, error)) ([]T, error) {
	var out []T
	for {
		v, err := next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (g gapicAPI) listRepositories(ctx context.Context, parent string) ([]*artifactregistrypb.Repository, error) {
	it := g.c.ListRepositories(ctx, &artifactregistrypb.ListRepositoriesRequest{Parent: parent}, g.callOpts...)
	return collect(it.Next)
}

func (g gapicAPI) listPackages(ctx context.Context, parent string) ([]*artifactregistrypb.Package, error) {
	it := g.c.ListPackages(ctx, &artifactregistrypb.ListPackagesRequest{Parent: parent}, g.callOpts...)
	return collect(it.Next)
}

func (g gapicAPI) listVersions(ctx context.Context, parent string) ([]*artifactregistrypb.Version, error) {
	it := g.c.ListVersions(ctx, &artifactregistrypb.ListVersionsRequest{Parent: parent}, g.callOpts...)
	return collect(it.Next)
}

func (g gapicAPI) listTags(ctx context.Context, parent string) ([]*artifactregistrypb.Tag, error) {
	it := g.c.ListTags(ctx, &artifactregistrypb.ListTagsRequest{Parent: parent}, g.callOpts...)
	return collect(it.Next)
}

func (g gapicAPI) listFiles(ctx context.Context, parent string) ([]*artifactregistrypb.File, error) {
	it := g.c.ListFiles(ctx, &artifactregistrypb.ListFilesRequest{Parent: parent}, g.callOpts...)
	return collect(it.Next)
}

func (g gapicAPI) getRepository(ctx context.Context, name string) (*artifactregistrypb.Repository, error) {
	return g.c.GetRepository(ctx, &artifactregistrypb.GetRepositoryRequest{Name: name}, g.callOpts...)
}

func (g gapicAPI) getPackage(ctx context.Context, name string) (*artifactregistrypb.Package, error) {
	return g.c.GetPackage(ctx, &artifactregistrypb.GetPackageRequest{Name: name}, g.callOpts...)
}

func (g gapicAPI) getVersion(ctx context.Context, name string) (*artifactregistrypb.Version, error) {
	return g.c.GetVersion(ctx, &artifactregistrypb.GetVersionRequest{Name: name}, g.callOpts...)
}

func (g gapicAPI) getTag(ctx context.Context, name string) (*artifactregistrypb.Tag, error) {
	return g.c.GetTag(ctx, &artifactregistrypb.GetTagRequest{Name: name}, g.callOpts...)
}

func (g gapicAPI) deleteRepository(ctx context.Context, name string) error {
	op, err := g.c.DeleteRepository(ctx, &artifactregistrypb.DeleteRepositoryRequest{Name: name}, g.callOpts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}

func (g gapicAPI) deletePackage(ctx context.Context, name string) error {
	op, err := g.c.DeletePackage(ctx, &artifactregistrypb.DeletePackageRequest{Name: name}, g.callOpts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}

func (g gapicAPI) deleteVersion(ctx context.Context, name string) error {
	op, err := g.c.DeleteVersion(ctx, &artifactregistrypb.DeleteVersionRequest{Name: name}, g.callOpts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}

func (g gapicAPI) deleteTag(ctx context.Context, name string) error {
	return g.c.DeleteTag(ctx, &artifactregistrypb.DeleteTagRequest{Name: name}, g.callOpts...)
}
