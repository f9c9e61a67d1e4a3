// Package resolve implements dispatch (C10): given a validated operation and
// the interception tree the weaver built for its name, it walks
// before/core/after and around/proceed in the order the request context's
// overlay semantics and the subsystem resolver contract require.
package resolve

import (
	"context"
	"fmt"

	"github.com/syssam/exocore/internal/intercept"
)

// OperationKind is the external operation kind a request asks for.
// Subscriptions are accepted by the type but always rejected by Dispatch,
// matching the "subscriptions are out of scope" posture.
type OperationKind int

const (
	KindQuery OperationKind = iota
	KindMutation
	KindSubscription
)

// Operation is one validated, already-parsed request operation.
type Operation struct {
	Kind      OperationKind
	Name      string
	Arguments map[string]any
	Subfields []string
}

// Response is a subsystem's or interceptor's result, mirroring the
// QueryResponse contract: body is opaque to dispatch, headers accumulate.
type Response struct {
	Body    any
	Headers [][2]string
}

// Subsystem is the resolver contract each built subsystem implements at
// runtime (C10's "Subsystem Resolver Contract"). Resolve returns
// (nil, false, nil) to mean "not mine".
type Subsystem interface {
	ID() string
	Resolve(ctx context.Context, op Operation) (*Response, bool, error)
	InvokeInterceptor(ctx context.Context, interceptorIndex int, op Operation, proceed func() (*Response, error)) (*Response, error)
}

// Error kinds returned by Dispatch not covered by a dedicated type in
// errors.go: both are operational failures with no further structure to
// expose to a caller.
var (
	ErrUnsupportedOperationKind    = fmt.Errorf("resolve: unsupported operation kind")
	ErrNoSubsystemClaimedOperation = fmt.Errorf("resolve: no subsystem claimed this operation")
)

// Dispatch resolves op against tree, routing the core leaf to whichever
// subsystem in subsystems claims op.Name.
func Dispatch(ctx context.Context, tree intercept.Tree, op Operation, subsystems []Subsystem) (*Response, error) {
	if op.Kind == KindSubscription {
		return nil, ErrUnsupportedOperationKind
	}
	resp, err := resolveTree(ctx, tree, op, subsystems)
	if err != nil {
		return nil, err
	}
	resp.Body = projectFields(resp.Body, op.Subfields)
	return resp, nil
}

func resolveTree(ctx context.Context, tree intercept.Tree, op Operation, subsystems []Subsystem) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch tree.Kind {
	case intercept.KindOperation:
		return resolveCore(ctx, op, subsystems)

	case intercept.KindIntercepted:
		for _, id := range tree.Before {
			if _, err := invoke(ctx, id, op, subsystems, nil); err != nil {
				return nil, err
			}
		}
		resp, err := resolveTree(ctx, *tree.Core, op, subsystems)
		if err != nil {
			return nil, err
		}
		for _, id := range tree.After {
			if _, err := invoke(ctx, id, op, subsystems, nil); err != nil {
				return nil, err
			}
		}
		return resp, nil

	case intercept.KindAround:
		core := tree.AroundCore
		proceed := func() (*Response, error) {
			return resolveTree(ctx, *core, op, subsystems)
		}
		resp, err := invoke(ctx, tree.Interceptor, op, subsystems, proceed)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			id := fmt.Sprintf("subsystem %d interceptor %d", tree.Interceptor.SubsystemIndex, tree.Interceptor.InterceptorIndex)
			return nil, &AroundInterceptorReturnedNoResponseError{InterceptorID: id}
		}
		return resp, nil

	default:
		return nil, fmt.Errorf("resolve: unknown interception tree kind %d", tree.Kind)
	}
}

func resolveCore(ctx context.Context, op Operation, subsystems []Subsystem) (*Response, error) {
	for _, s := range subsystems {
		resp, ok, err := s.Resolve(ctx, op)
		if err != nil {
			return nil, err
		}
		if ok {
			return resp, nil
		}
	}
	return nil, ErrNoSubsystemClaimedOperation
}

func invoke(ctx context.Context, id intercept.I, op Operation, subsystems []Subsystem, proceed func() (*Response, error)) (*Response, error) {
	if id.SubsystemIndex < 0 || id.SubsystemIndex >= len(subsystems) {
		return nil, fmt.Errorf("resolve: interceptor subsystem index %d out of range", id.SubsystemIndex)
	}
	s := subsystems[id.SubsystemIndex]
	if proceed == nil {
		proceed = func() (*Response, error) { return nil, nil }
	}
	return s.InvokeInterceptor(ctx, id.InterceptorIndex, op, proceed)
}

// projectFields trims body down to exactly the requested subfields when
// body is a JSON-object-shaped map, so interceptors and subsystems that
// over-fetch never leak fields the caller didn't ask for. Non-map bodies
// (scalars, already-trimmed responses) pass through unchanged.
func projectFields(body any, subfields []string) any {
	if len(subfields) == 0 {
		return body
	}
	m, ok := body.(map[string]any)
	if !ok {
		return body
	}
	out := make(map[string]any, len(subfields))
	for _, f := range subfields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}
