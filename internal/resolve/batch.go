package resolve

import (
	"context"
	"sync"

	"github.com/syssam/exocore/internal/intercept"
)

// TreeFor resolves the interception tree for one operation, by kind.
type TreeFor func(kind OperationKind, name string) intercept.Tree

// DispatchBatch resolves every operation in a single request, honoring the
// ordering guarantee that mutations run sequentially in source order while
// queries may run concurrently — with results always merged back in source
// order regardless of completion order.
//
// Per request, a batch is either all-queries or all-mutations (GraphQL and
// REST requests never mix the two in one document); callers that receive a
// mixed batch should split it before calling DispatchBatch.
func DispatchBatch(ctx context.Context, ops []Operation, treeFor TreeFor, subsystems []Subsystem) ([]*Response, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	if ops[0].Kind == KindMutation {
		return dispatchSequential(ctx, ops, treeFor, subsystems)
	}
	return dispatchConcurrent(ctx, ops, treeFor, subsystems)
}

func dispatchSequential(ctx context.Context, ops []Operation, treeFor TreeFor, subsystems []Subsystem) ([]*Response, error) {
	out := make([]*Response, len(ops))
	for i, op := range ops {
		tree := treeFor(op.Kind, op.Name)
		resp, err := Dispatch(ctx, tree, op, subsystems)
		if err != nil {
			return nil, err
		}
		out[i] = resp
	}
	return out, nil
}

func dispatchConcurrent(ctx context.Context, ops []Operation, treeFor TreeFor, subsystems []Subsystem) ([]*Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]*Response, len(ops))
	errs := make([]error, len(ops))

	var wg sync.WaitGroup
	wg.Add(len(ops))
	for i, op := range ops {
		i, op := i, op
		go func() {
			defer wg.Done()
			tree := treeFor(op.Kind, op.Name)
			resp, err := Dispatch(ctx, tree, op, subsystems)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			out[i] = resp
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
