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

// Package bigquery wraps the BigQuery client behind the dotted path
// grammar "project.dataset.table". A bare "dataset" or "dataset.table"
// inherits the default project. All data operations delegate to
// cloud.google.com/go/bigquery.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
)

const service = "bigquery"

// Client addresses a project, dataset or table, depending on how much of
// the dotted path is populated.
type Client struct {
	locator  respath.Locator
	location string
	registry *clients.Registry
	bq       *bq.Client
}

// New resolves the dotted path against the options and builds the client.
// "p.d.t" addresses a table in project p, "d.t" a table in the default
// project, "d" a dataset, and "" the project itself.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := parsePath(path, respath.Locator{
		Project:   o.project,
		Container: o.dataset,
		Item:      o.table,
	})
	if l.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		l.Project = project
	}

	c := &Client{locator: l, location: o.location, registry: o.registry, bq: o.bq}
	if c.bq == nil {
		clientOpts := o.clientOpts
		if c.registry == nil {
			// A fresh registry absorbs the options; an existing one
			// already carries its own, so ours are forwarded alongside.
			c.registry = clients.NewRegistry(clientOpts...)
			clientOpts = nil
		}
		client, err := clients.Get(c.registry, service, l.Project, func() (*bq.Client, error) {
			return bq.NewClient(ctx, l.Project, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("creating bigquery client: %w", err)
		}
		c.bq = client
	}
	return c, nil
}

// parsePath splits a dotted BigQuery path. One segment is a dataset, two
// are dataset.table, three are project.dataset.table.
func parsePath(path string, l respath.Locator) respath.Locator {
	path = strings.Trim(path, ".")
	if path == "" {
		return l
	}
	segs := strings.SplitN(path, ".", 3)
	switch len(segs) {
	case 1:
		l.Container = segs[0]
	case 2:
		l.Container, l.Item = segs[0], segs[1]
	default:
		l.Project, l.Container, l.Item = segs[0], segs[1], segs[2]
	}
	return l
}

// Project returns the resolved project ID.
func (c *Client) Project() string { return c.locator.Project }

// Dataset returns the dataset ID, or "" at the project level.
func (c *Client) Dataset() string { return c.locator.Container }

// Table returns the table ID, or "" above the table level.
func (c *Client) Table() string { return c.locator.Item }

// Level reports how specific the path is: project, container (dataset) or
// item (table).
func (c *Client) Level() respath.Level { return c.locator.Level() }

// IsDataset reports whether the path addresses a dataset.
func (c *Client) IsDataset() bool { return c.Level() == respath.LevelContainer }

// IsTable reports whether the path addresses a table.
func (c *Client) IsTable() bool { return c.Level() == respath.LevelItem }

// Path renders the dotted form back, without the project.
func (c *Client) Path() string {
	if c.locator.Item != "" {
		return c.locator.Container + "." + c.locator.Item
	}
	return c.locator.Container
}

func (c *Client) dataset() *bq.Dataset { return c.bq.Dataset(c.locator.Container) }

func (c *Client) table() *bq.Table { return c.dataset().Table(c.locator.Item) }

// ListDatasets returns the dataset IDs of the project.
func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	var out []string
	it := c.bq.Datasets(ctx)
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing datasets: %w", err)
		}
		out = append(out, ds.DatasetID)
	}
}

// ListTables returns the table IDs of the dataset as "dataset.table".
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "list tables", Level: c.Level()}
	}
	var out []string
	it := c.dataset().Tables(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		out = append(out, t.DatasetID+"."+t.TableID)
	}
}

// List lists datasets at the project level and tables at the dataset
// level.
func (c *Client) List(ctx context.Context) ([]string, error) {
	switch c.Level() {
	case respath.LevelContainer:
		return c.ListTables(ctx)
	case respath.LevelNone, respath.LevelProject:
		return c.ListDatasets(ctx)
	default:
		return nil, &respath.UnsupportedLevelError{Op: "list", Level: c.Level()}
	}
}

// Exists reports whether the addressed dataset or table exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	var err error
	switch c.Level() {
	case respath.LevelItem:
		_, err = c.table().Metadata(ctx)
	case respath.LevelContainer:
		_, err = c.dataset().Metadata(ctx)
	default:
		return false, &respath.UnsupportedLevelError{Op: "check existence", Level: c.Level()}
	}
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateDataset creates the dataset, in the configured location if one
// was given.
func (c *Client) CreateDataset(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "create a dataset", Level: c.Level()}
	}
	meta := &bq.DatasetMetadata{Location: c.location}
	if err := c.dataset().Create(ctx, meta); err != nil {
		return fmt.Errorf("creating dataset %q: %w", c.locator.Container, err)
	}
	logger.Infof("Created dataset %s.%s", c.locator.Project, c.locator.Container)
	return nil
}

// CreateTable creates the table, creating the dataset first when it does
// not exist yet. A nil schema creates a schemaless table.
func (c *Client) CreateTable(ctx context.Context, schema bq.Schema) error {
	if c.locator.Item == "" {
		return &respath.UnsupportedLevelError{Op: "create a table", Level: c.Level()}
	}
	if _, err := c.dataset().Metadata(ctx); isNotFound(err) {
		if err := c.CreateDataset(ctx); err != nil {
			return err
		}
	}
	meta := &bq.TableMetadata{Schema: schema}
	if err := c.table().Create(ctx, meta); err != nil {
		return fmt.Errorf("creating table %q: %w", c.Path(), err)
	}
	logger.Infof("Created table %s", c.Path())
	return nil
}

// row adapts a plain map to the inserter interface. Insert IDs are left
// empty so the service applies best-effort deduplication of its own.
type row map[string]any

func (r row) Save() (map[string]bq.Value, string, error) {
	vals := make(map[string]bq.Value, len(r))
	for k, v := range r {
		vals[k] = v
	}
	return vals, "", nil
}

// Insert streams rows into the table.
func (c *Client) Insert(ctx context.Context, rows []map[string]any) error {
	if c.locator.Item == "" {
		return &respath.UnsupportedLevelError{Op: "insert rows", Level: c.Level()}
	}
	savers := make([]bq.ValueSaver, len(rows))
	for i, r := range rows {
		savers[i] = row(r)
	}
	if err := c.table().Inserter().Put(ctx, savers); err != nil {
		return fmt.Errorf("inserting %d rows into %q: %w", len(rows), c.Path(), err)
	}
	return nil
}

// Query runs a SQL query and materializes the result as one map per row.
func (c *Client) Query(ctx context.Context, sql string) ([]map[string]any, error) {
	q := c.bq.Query(sql)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	var out []map[string]any
	for {
		var vals map[string]bq.Value
		err := it.Next(&vals)
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading query results: %w", err)
		}
		m := make(map[string]any, len(vals))
		for k, v := range vals {
			m[k] = v
		}
		out = append(out, m)
	}
}

// DeleteTable deletes the table.
func (c *Client) DeleteTable(ctx context.Context) error {
	if c.locator.Item == "" {
		return &respath.UnsupportedLevelError{Op: "delete a table", Level: c.Level()}
	}
	if err := c.table().Delete(ctx); err != nil {
		return fmt.Errorf("deleting table %q: %w", c.Path(), err)
	}
	logger.Infof("Deleted table %s", c.Path())
	return nil
}

// DeleteDataset deletes the dataset and everything in it.
func (c *Client) DeleteDataset(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "delete a dataset", Level: c.Level()}
	}
	if err := c.dataset().DeleteWithContents(ctx); err != nil {
		return fmt.Errorf("deleting dataset %q: %w", c.locator.Container, err)
	}
	logger.Infof("Deleted dataset %s.%s", c.locator.Project, c.locator.Container)
	return nil
}

// Delete removes the table or the dataset, whichever the path addresses.
func (c *Client) Delete(ctx context.Context) error {
	switch c.Level() {
	case respath.LevelItem:
		return c.DeleteTable(ctx)
	case respath.LevelContainer:
		return c.DeleteDataset(ctx)
	default:
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
