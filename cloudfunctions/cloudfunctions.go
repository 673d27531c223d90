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

// Package cloudfunctions wraps the Cloud Functions v2 client. Paths name
// a function ("my-func") or use the fully qualified
// "projects/P/locations/L/functions/F" form. Deploy stages local source
// directories through Cloud Storage; Call invokes the deployed function
// over HTTP with an identity token.
package cloudfunctions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	functions "cloud.google.com/go/functions/apiv2"
	"cloud.google.com/go/functions/apiv2/functionspb"
	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/gcp-pal/gcppal/cfg"
	"github.com/gcp-pal/gcppal/internal/auth"
	"github.com/gcp-pal/gcppal/internal/clients"
	"github.com/gcp-pal/gcppal/internal/logger"
	"github.com/gcp-pal/gcppal/internal/respath"
	"github.com/gcp-pal/gcppal/storage"
)

const service = "cloudfunctions"

var scheme = respath.Scheme{
	ContainerKey: "functions",
}

// Client addresses a functions region or one function in it.
type Client struct {
	locator    respath.Locator
	registry   *clients.Registry
	api        functionsAPI
	httpClient *http.Client
}

// New resolves the path against the options and builds the client.
func New(ctx context.Context, path string, opts ...Option) (*Client, error) {
	o := options{location: cfg.Location()}
	for _, opt := range opts {
		opt(&o)
	}
	l := respath.Parse(path, respath.Locator{
		Project:   o.project,
		Location:  o.location,
		Container: o.function,
	}, scheme)
	if l.Project == "" {
		project, err := auth.DefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default project: %w", err)
		}
		l.Project = project
	}

	c := &Client{locator: l, registry: o.registry, api: o.api, httpClient: o.httpClient}
	clientOpts := o.clientOpts
	if c.registry == nil {
		// A fresh registry absorbs the options; an existing one already
		// carries its own, so ours are forwarded alongside.
		c.registry = clients.NewRegistry(clientOpts...)
		clientOpts = nil
	}
	if c.api == nil {
		client, err := clients.Get(c.registry, service, l.Project, func() (*functions.FunctionClient, error) {
			return functions.NewFunctionClient(ctx, append(c.registry.Options(), clientOpts...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("creating functions client: %w", err)
		}
		c.api = gapicAPI{c: client}
	}
	return c, nil
}

// Project returns the resolved project ID.
func (c *Client) Project() string { return c.locator.Project }

// Location returns the functions region.
func (c *Client) Location() string { return c.locator.Location }

// Function returns the function name, or "" at the region level.
func (c *Client) Function() string { return c.locator.Container }

// Level reports how specific the path is.
func (c *Client) Level() respath.Level { return c.locator.Level() }

func (c *Client) parent() string { return c.locator.Parent() }

func (c *Client) name() string {
	return c.parent() + "/functions/" + c.locator.Container
}

// List returns the function names of the region. With activeOnly, only
// functions in the ACTIVE state are returned.
func (c *Client) List(ctx context.Context, activeOnly bool) ([]string, error) {
	if c.locator.Container != "" {
		return nil, &respath.UnsupportedLevelError{Op: "list", Level: c.Level()}
	}
	fns, err := c.api.list(ctx, c.parent())
	if err != nil {
		return nil, fmt.Errorf("listing functions: %w", err)
	}
	var out []string
	for _, fn := range fns {
		if activeOnly && fn.GetState() != functionspb.Function_ACTIVE {
			continue
		}
		out = append(out, lastSegment(fn.GetName()))
	}
	return out, nil
}

// Get returns the function's full description.
func (c *Client) Get(ctx context.Context) (*functionspb.Function, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "get a function", Level: c.Level()}
	}
	return c.api.get(ctx, c.name())
}

// Exists reports whether the function exists.
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

// URI returns the serving URI of the deployed function.
func (c *Client) URI(ctx context.Context) (string, error) {
	fn, err := c.Get(ctx)
	if err != nil {
		return "", err
	}
	uri := fn.GetServiceConfig().GetUri()
	if uri == "" {
		return "", fmt.Errorf("function %q has no serving uri", c.locator.Container)
	}
	return uri, nil
}

// Call POSTs payload (marshalled to JSON) to the function's URI and
// returns the response body. The request is authenticated with an
// identity token for the URI audience unless an HTTP client was injected.
func (c *Client) Call(ctx context.Context, payload any) ([]byte, error) {
	uri, err := c.URI(ctx)
	if err != nil {
		return nil, err
	}
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient, err = idtoken.NewClient(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("creating id-token client: %w", err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", uri, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", uri, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("function returned %s: %s", resp.Status, out)
	}
	return out, nil
}

// DeployConfig describes what to deploy. Source is a local directory, a
// gs:// object holding a source zip, or empty when only the service
// settings change.
type DeployConfig struct {
	Source        string
	Runtime       string
	EntryPoint    string
	EnvVars       map[string]string
	StagingBucket string
}

// DeployResult reports the outcome of a finished deployment.
type DeployResult struct {
	Name     string
	State    string
	Revision string
	URI      string
}

// Deploy creates the function, or updates it when it already exists, and
// waits for the build to finish. Local source directories are zipped and
// staged in the staging bucket (default "<project>-gcf-sources") through
// the storage wrapper.
func (c *Client) Deploy(ctx context.Context, dc DeployConfig) (*DeployResult, error) {
	if c.locator.Container == "" {
		return nil, &respath.UnsupportedLevelError{Op: "deploy", Level: c.Level()}
	}
	src, err := c.resolveSource(ctx, dc)
	if err != nil {
		return nil, err
	}
	fn := &functionspb.Function{
		Name: c.name(),
		BuildConfig: &functionspb.BuildConfig{
			Runtime:    dc.Runtime,
			EntryPoint: dc.EntryPoint,
			Source:     src,
		},
		ServiceConfig: &functionspb.ServiceConfig{
			EnvironmentVariables: dc.EnvVars,
		},
	}

	exists, err := c.Exists(ctx)
	if err != nil {
		return nil, err
	}
	var deployed *functionspb.Function
	if exists {
		mask := &fieldmaskpb.FieldMask{Paths: []string{"build_config", "service_config"}}
		deployed, err = c.api.update(ctx, fn, mask)
	} else {
		deployed, err = c.api.create(ctx, c.parent(), c.locator.Container, fn)
	}
	if err != nil {
		return nil, fmt.Errorf("deploying function %q: %w", c.locator.Container, err)
	}
	logger.Infof("Deployed function %s (%s)", c.locator.Container, deployed.GetState())
	return &DeployResult{
		Name:     lastSegment(deployed.GetName()),
		State:    deployed.GetState().String(),
		Revision: deployed.GetServiceConfig().GetRevision(),
		URI:      deployed.GetServiceConfig().GetUri(),
	}, nil
}

// resolveSource turns the configured source into the proto form, staging
// local directories in Cloud Storage first.
func (c *Client) resolveSource(ctx context.Context, dc DeployConfig) (*functionspb.Source, error) {
	switch {
	case dc.Source == "":
		return nil, nil
	case strings.HasPrefix(dc.Source, storage.Prefix):
		return storageSource(dc.Source)
	default:
		staged, err := c.stageSource(ctx, dc)
		if err != nil {
			return nil, err
		}
		return storageSource(staged)
	}
}

func storageSource(gsPath string) (*functionspb.Source, error) {
	rest := strings.TrimPrefix(gsPath, storage.Prefix)
	bucket, object, found := strings.Cut(rest, "/")
	if !found {
		return nil, fmt.Errorf("source %q must name a bucket and an object", gsPath)
	}
	return &functionspb.Source{
		Source: &functionspb.Source_StorageSource{
			StorageSource: &functionspb.StorageSource{Bucket: bucket, Object: object},
		},
	}, nil
}

// stageSource zips the source directory and uploads it, returning the
// staged gs:// path.
func (c *Client) stageSource(ctx context.Context, dc DeployConfig) (string, error) {
	data, err := zipDir(dc.Source)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "gcf-source-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	bucket := dc.StagingBucket
	if bucket == "" {
		bucket = c.locator.Project + "-gcf-sources"
	}
	object := filepath.ToSlash(filepath.Join("sources", c.locator.Container, uuid.NewString()+".zip"))
	dst := storage.Prefix + bucket + "/" + object
	store, err := storage.New(ctx, dst,
		storage.WithProject(c.locator.Project),
		storage.WithLocation(c.locator.Location),
		storage.WithRegistry(c.registry))
	if err != nil {
		return "", err
	}
	if err := store.Upload(ctx, tmp.Name()); err != nil {
		return "", fmt.Errorf("staging source in %s: %w", dst, err)
	}
	return dst, nil
}

// Delete removes the function and waits for the operation to finish.
func (c *Client) Delete(ctx context.Context) error {
	if c.locator.Container == "" {
		return &respath.UnsupportedLevelError{Op: "delete", Level: c.Level()}
	}
	if err := c.api.delete(ctx, c.name()); err != nil {
		return fmt.Errorf("deleting function %q: %w", c.locator.Container, err)
	}
	logger.Infof("Deleted function %s", c.locator.Container)
	return nil
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, "/")+1:]
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
