// Package build implements the subsystem builder pipeline (C6): each
// plug-in subsystem (postgres, deno/script, ...) turns the type-checked
// model into its own serialized contribution via a two-pass shallow/expand
// walk, grounded on the arena's "every id exists before it is dereferenced"
// guarantee.
package build

import (
	"errors"
	"fmt"

	"github.com/syssam/exocore/internal/intercept"
	"github.com/syssam/exocore/internal/model"
)

// ModelBuildingErrorKind tags why a subsystem build failed: ErrGeneric for
// an arbitrary misconfiguration message, ErrSerialize when the subsystem's
// own serialization step failed and Cause carries that error.
type ModelBuildingErrorKind int

const (
	ErrGeneric ModelBuildingErrorKind = iota
	ErrSerialize
)

// ModelBuildingError is returned by a Builder when it cannot produce a
// SubsystemBuild at all (as opposed to simply contributing nothing, which
// is a nil result with a nil error). It carries a model-source span via
// Subsystem so the failure can be reported against the offending
// declaration rather than as a bare message, and aborts compilation.
type ModelBuildingError struct {
	Kind      ModelBuildingErrorKind
	Subsystem string
	Cause     error
}

func (e *ModelBuildingError) Error() string {
	return fmt.Sprintf("build: %s: %v", e.Subsystem, e.Cause)
}

func (e *ModelBuildingError) Unwrap() error { return e.Cause }

// NewGenericModelBuildingError returns a ModelBuildingError carrying an
// arbitrary message for the named subsystem.
func NewGenericModelBuildingError(subsystem, msg string) *ModelBuildingError {
	return &ModelBuildingError{Kind: ErrGeneric, Subsystem: subsystem, Cause: fmt.Errorf("%s", msg)}
}

// NewSerializeModelBuildingError returns a ModelBuildingError wrapping the
// serialization failure cause for the named subsystem.
func NewSerializeModelBuildingError(subsystem string, cause error) *ModelBuildingError {
	return &ModelBuildingError{Kind: ErrSerialize, Subsystem: subsystem, Cause: cause}
}

// IsModelBuildingError returns true if err is a ModelBuildingError.
func IsModelBuildingError(err error) bool {
	if err == nil {
		return false
	}
	var e *ModelBuildingError
	return errors.As(err, &e)
}

// Interception is one subsystem-declared before/after/around hook, handed to
// the weaver alongside every other subsystem's.
type Interception struct {
	PredicateExpression string
	Kind                InterceptionKind
	InterceptorIndex    int
}

// InterceptionKind mirrors intercept.Phase but is named independently here
// since a subsystem declares interceptions before the weaver exists to
// interpret them.
type InterceptionKind int

const (
	Before InterceptionKind = iota
	After
	Around
)

func (k InterceptionKind) phase() intercept.Phase {
	switch k {
	case Before:
		return intercept.PhaseBefore
	case After:
		return intercept.PhaseAfter
	default:
		return intercept.PhaseAround
	}
}

// GraphQLBuild is one subsystem's contribution to the GraphQL schema and
// resolver surface.
type GraphQLBuild struct {
	SerializedSubsystem []byte
	QueryNames          []string
	MutationNames       []string
	Interceptions       []Interception
}

// RESTBuild and RPCBuild are the analogous contributions for the REST and
// JSON-RPC surfaces; both are optional per subsystem.
type RESTBuild struct {
	SerializedSubsystem []byte
	Routes              []string
}

type RPCBuild struct {
	SerializedSubsystem []byte
	MethodNames         []string
}

// CoreBuild is the mandatory, shared-across-subsystems data every subsystem
// contributes regardless of which external surfaces it exposes (e.g. the
// table/column metadata postgres needs even if GraphQL is disabled).
type CoreBuild struct {
	SerializedSubsystem []byte
}

// SubsystemBuild is one subsystem's full contribution to a build. Any of
// GraphQL/REST/RPC may be nil; Core is mandatory.
type SubsystemBuild struct {
	ID     string
	GraphQL *GraphQLBuild
	REST    *RESTBuild
	RPC     *RPCBuild
	Core    CoreBuild
}

// Builder is the contract each plug-in subsystem implements. Build returns
// (nil, nil) to signal "no contribution" — the model declares nothing this
// subsystem cares about — which the caller drops rather than treating as an
// error.
type Builder interface {
	Build(system *model.System, base *model.System) (*SubsystemBuild, error)
}

// BuildAll runs every builder against system, collecting non-nil
// contributions in builder-list order (which becomes SubsystemIndex for the
// weaver). A builder returning an error aborts the whole build; a builder
// returning (nil, nil) is dropped silently.
func BuildAll(system *model.System, base *model.System, builders []Builder) ([]SubsystemBuild, error) {
	var out []SubsystemBuild
	for _, b := range builders {
		sb, err := b.Build(system, base)
		if err != nil {
			return nil, err
		}
		if sb == nil {
			continue
		}
		out = append(out, *sb)
	}
	return out, nil
}

// Pass tags which walk of the two-pass shallow/expand builder is running.
// Shallow inserts a placeholder per declared type so every id that will
// ever be needed exists before Expand dereferences any of them, which is
// what lets cyclic model graphs (Concert ↔ Venue ↔ Concert) resolve without
// a fixed-point loop.
type Pass int

const (
	PassShallow Pass = iota
	PassExpand
)

// Walk runs shallow over every entity (via onShallow) to populate
// placeholders, then expand (via onExpand) to fill them in, matching the
// two-pass contract every subsystem builder follows. Entities are visited
// in insertion order both passes, via the arena's order rather than the
// key map's (which makes no ordering guarantee).
func Walk(system *model.System, onShallow, onExpand func(entity model.Entity)) {
	entities := system.Entities.Values().All()
	for _, e := range entities {
		onShallow(e)
	}
	for _, e := range entities {
		onExpand(e)
	}
}
