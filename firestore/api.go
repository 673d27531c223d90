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
	"context"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// firestoreAPI is the slice of the Firestore client this package uses,
// expressed over slash paths. An empty docPath means the database root.
type firestoreAPI interface {
	listCollections(ctx context.Context, docPath string) ([]string, error)
	listDocuments(ctx context.Context, colPath string) ([]string, error)
	getDocument(ctx context.Context, docPath string) (map[string]any, error)
	setDocument(ctx context.Context, docPath string, data map[string]any, merge bool) error
	deleteDocument(ctx context.Context, docPath string) error
}

// gcloudAPI adapts the SDK client, draining iterators into ID slices.
type gcloudAPI struct {
	c *fs.Client
}

func (g gcloudAPI) listCollections(ctx context.Context, docPath string) ([]string, error) {
	var it *fs.CollectionIterator
	if docPath == "" {
		it = g.c.Collections(ctx)
	} else {
		it = g.c.Doc(docPath).Collections(ctx)
	}
	var out []string
	for {
		col, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, col.ID)
	}
}

// listDocuments uses DocumentRefs rather than a query so that documents
// with no data but live subcollections still show up.
func (g gcloudAPI) listDocuments(ctx context.Context, colPath string) ([]string, error) {
	it := g.c.Collection(colPath).DocumentRefs(ctx)
	var out []string
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, doc.ID)
	}
}

func (g gcloudAPI) getDocument(ctx context.Context, docPath string) (map[string]any, error) {
	snap, err := g.c.Doc(docPath).Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Data(), nil
}

func (g gcloudAPI) setDocument(ctx context.Context, docPath string, data map[string]any, merge bool) error {
	doc := g.c.Doc(docPath)
	var err error
	if merge {
		_, err = doc.Set(ctx, data, fs.MergeAll)
	} else {
		_, err = doc.Set(ctx, data)
	}
	return err
}

func (g gcloudAPI) deleteDocument(ctx context.Context, docPath string) error {
	_, err := g.c.Doc(docPath).Delete(ctx)
	return err
}
