// Package intercept implements the interceptor weaver (C7): it maps an
// operation name to an ordered interception tree composing before/after
// interceptors and around-with-proceed interceptors around the resolver
// call, and the runtime tree type internal/resolve walks to execute them.
package intercept

// I identifies which subsystem owns an interceptor's code.
type I struct {
	SubsystemIndex  int
	InterceptorIndex int
}

// Kind tags the Tree variant.
type Kind int

const (
	// KindOperation is the bare resolver call with no interceptors.
	KindOperation Kind = iota
	// KindIntercepted runs befores, then core, then afters.
	KindIntercepted
	// KindAround calls an interceptor that must invoke proceed at most
	// once to resolve core.
	KindAround
)

// Tree is the InterceptionTree sum type: Operation | Intercepted | Around.
type Tree struct {
	Kind Kind

	// KindIntercepted.
	Before []I
	Core   *Tree
	After  []I

	// KindAround.
	Interceptor I
	AroundCore  *Tree
}

// Operation returns a bare, uninterceptedTree leaf.
func Operation() Tree {
	return Tree{Kind: KindOperation}
}

// Intercepted wraps core with the given before/after interceptor lists, in
// declaration order.
func Intercepted(before []I, core Tree, after []I) Tree {
	return Tree{Kind: KindIntercepted, Before: before, Core: &core, After: after}
}

// Around wraps core with a single around-interceptor.
func Around(interceptor I, core Tree) Tree {
	return Tree{Kind: KindAround, Interceptor: interceptor, AroundCore: &core}
}
