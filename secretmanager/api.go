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

package secretmanager

import (
	"context"

	sm "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/iterator"
)

// secretAPI is the slice of the Secret Manager client this package uses.
type secretAPI interface {
	listSecrets(ctx context.Context, parent string) ([]*secretmanagerpb.Secret, error)
	listVersions(ctx context.Context, parent string) ([]*secretmanagerpb.SecretVersion, error)
	getSecret(ctx context.Context, name string) (*secretmanagerpb.Secret, error)
	createSecret(ctx context.Context, parent, id string) (*secretmanagerpb.Secret, error)
	addVersion(ctx context.Context, parent string, payload []byte) (*secretmanagerpb.SecretVersion, error)
	accessVersion(ctx context.Context, name string) ([]byte, error)
	deleteSecret(ctx context.Context, name string) error
	destroyVersion(ctx context.Context, name string) error
}

// gapicAPI adapts the generated client, draining iterators into slices.
type gapicAPI struct {
	c *sm.Client
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

func (g gapicAPI) listSecrets(ctx context.Context, parent string) ([]*secretmanagerpb.Secret, error) {
	it := g.c.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{Parent: parent})
	return collect(it.Next)
}

func (g gapicAPI) listVersions(ctx context.Context, parent string) ([]*secretmanagerpb.SecretVersion, error) {
	it := g.c.ListSecretVersions(ctx, &secretmanagerpb.ListSecretVersionsRequest{Parent: parent})
	return collect(it.Next)
}

func (g gapicAPI) getSecret(ctx context.Context, name string) (*secretmanagerpb.Secret, error) {
	return g.c.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: name})
}

func (g gapicAPI) createSecret(ctx context.Context, parent, id string) (*secretmanagerpb.Secret, error) {
	return g.c.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
		Parent:   parent,
		SecretId: id,
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	})
}

func (g gapicAPI) addVersion(ctx context.Context, parent string, payload []byte) (*secretmanagerpb.SecretVersion, error) {
	return g.c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  parent,
		Payload: &secretmanagerpb.SecretPayload{Data: payload},
	})
}

func (g gapicAPI) accessVersion(ctx context.Context, name string) ([]byte, error) {
	resp, err := g.c.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return resp.GetPayload().GetData(), nil
}

func (g gapicAPI) deleteSecret(ctx context.Context, name string) error {
	return g.c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{Name: name})
}

func (g gapicAPI) destroyVersion(ctx context.Context, name string) error {
	_, err := g.c.DestroySecretVersion(ctx, &secretmanagerpb.DestroySecretVersionRequest{Name: name})
	return err
}
