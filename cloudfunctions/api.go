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

package cloudfunctions

import (
	"context"

	functions "cloud.google.com/go/functions/apiv2"
	"cloud.google.com/go/functions/apiv2/functionspb"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
)

// functionsAPI is the slice of the Cloud Functions v2 client this package
// uses. The generated client returns LROs for every mutation; the adapter
// waits them out so callers see synchronous results.
type functionsAPI interface {
	list(ctx context.Context, parent string) ([]*functionspb.Function, error)
	get(ctx context.Context, name string) (*functionspb.Function, error)
	create(ctx context.Context, parent, id string, fn *functionspb.Function) (*functionspb.Function, error)
	update(ctx context.Context, fn *functionspb.Function, mask *fieldmaskpb.FieldMask) (*functionspb.Function, error)
	delete(ctx context.Context, name string) error
}

type gapicAPI struct {
	c *functions.FunctionClient
}

func (g gapicAPI) list(ctx context.Context, parent string) ([]*functionspb.Function, error) {
	it := g.c.ListFunctions(ctx, &functionspb.ListFunctionsRequest{Parent: parent})
	var out []*functionspb.Function
	for {
		fn, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
}

func (g gapicAPI) get(ctx context.Context, name string) (*functionspb.Function, error) {
	return g.c.GetFunction(ctx, &functionspb.GetFunctionRequest{Name: name})
}

func (g gapicAPI) create(ctx context.Context, parent, id string, fn *functionspb.Function) (*functionspb.Function, error) {
	op, err := g.c.CreateFunction(ctx, &functionspb.CreateFunctionRequest{
		Parent:     parent,
		FunctionId: id,
		Function:   fn,
	})
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (g gapicAPI) update(ctx context.Context, fn *functionspb.Function, mask *fieldmaskpb.FieldMask) (*functionspb.Function, error) {
	op, err := g.c.UpdateFunction(ctx, &functionspb.UpdateFunctionRequest{
		Function:   fn,
		UpdateMask: mask,
	})
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (g gapicAPI) delete(ctx context.Context, name string) error {
	op, err := g.c.DeleteFunction(ctx, &functionspb.DeleteFunctionRequest{Name: name})
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}
