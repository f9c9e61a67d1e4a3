package intercept

import (
	"path"
	"sort"
	"strings"
)

// OpKind distinguishes query and mutation operations for matching against
// interceptor expressions like "query *" or "mutation createConcert".
type OpKind int

const (
	KindQuery OpKind = iota
	KindMutation
)

func (k OpKind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Interceptor is one before/after/around declaration discovered while
// building a subsystem: Expr selects which operations it applies to, and I
// identifies the code to invoke.
type Interceptor struct {
	ID    I
	Expr  string // e.g. "query *", "mutation createConcert", "(mutation *) && !mutation deleteUser"
	Order int    // declaration order within its subsystem, used as a weaving tie-breaker
}

// Matches reports whether expr selects the operation (kind, name). expr is
// one of:
//   - a single clause "<kind> <glob>", kind one of query/mutation/*
//   - a conjunction/disjunction of clauses joined by && or ||, left to right,
//     && binding tighter than ||
//   - a clause may be preceded by ! for negation
func Matches(expr string, kind OpKind, name string) bool {
	orGroups := strings.Split(expr, "||")
	for _, group := range orGroups {
		clauses := strings.Split(group, "&&")
		allMatch := true
		for _, c := range clauses {
			if !matchClause(strings.TrimSpace(c), kind, name) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}

func matchClause(clause string, kind OpKind, name string) bool {
	clause = strings.TrimSpace(clause)
	clause = strings.TrimPrefix(clause, "(")
	clause = strings.TrimSuffix(clause, ")")
	clause = strings.TrimSpace(clause)

	negate := false
	for strings.HasPrefix(clause, "!") {
		negate = !negate
		clause = strings.TrimSpace(strings.TrimPrefix(clause, "!"))
	}

	fields := strings.SplitN(clause, " ", 2)
	if len(fields) != 2 {
		return false
	}
	kindGlob, nameGlob := fields[0], strings.TrimSpace(fields[1])

	matched := globKind(kindGlob, kind) && globMatch(nameGlob, name)
	if negate {
		return !matched
	}
	return matched
}

func globKind(glob string, kind OpKind) bool {
	if glob == "*" {
		return true
	}
	return glob == kind.String()
}

func globMatch(glob, name string) bool {
	ok, err := path.Match(glob, name)
	return err == nil && ok
}

// Weave builds the interception tree for one operation by selecting, in
// declaration order, every interceptor whose expression matches (kind,
// name), and nesting before/around/after so that: each Before/After list is
// kept in source declaration order, and Arounds nest from outermost
// (first-declared) to innermost (last-declared), each wrapping the core
// together with everything declared after it. Subsystem load order never
// affects the result because candidates are sorted by (subsystem,
// declaration order) before nesting, matching the "same tree regardless of
// load order" guarantee.
func Weave(candidates []Interceptor, kind OpKind, name string, phase func(I) Phase) Tree {
	sorted := make([]Interceptor, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c.Expr, kind, name) {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID.SubsystemIndex != sorted[j].ID.SubsystemIndex {
			return sorted[i].ID.SubsystemIndex < sorted[j].ID.SubsystemIndex
		}
		return sorted[i].Order < sorted[j].Order
	})

	// Split the declaration order into the run of Before/After that precedes
	// each Around, plus a trailing run after the last one. Building the tree
	// by folding these segments from the last Around back to the first makes
	// the first-declared Around end up outermost, while each segment's
	// Before/After stay attached to the Around that immediately follows it
	// in declaration order.
	type segment struct{ befores, afters []I }
	var (
		segments []segment
		arounds  []I
		cur      segment
	)
	for _, c := range sorted {
		switch phase(c.ID) {
		case PhaseBefore:
			cur.befores = append(cur.befores, c.ID)
		case PhaseAfter:
			cur.afters = append(cur.afters, c.ID)
		case PhaseAround:
			segments = append(segments, cur)
			arounds = append(arounds, c.ID)
			cur = segment{}
		}
	}
	trailing := cur

	tree := Operation()
	if len(trailing.befores) > 0 || len(trailing.afters) > 0 {
		tree = Intercepted(trailing.befores, tree, trailing.afters)
	}
	for i := len(arounds) - 1; i >= 0; i-- {
		tree = Around(arounds[i], tree)
		seg := segments[i]
		if len(seg.befores) > 0 || len(seg.afters) > 0 {
			tree = Intercepted(seg.befores, tree, seg.afters)
		}
	}
	return tree
}

// Phase classifies how an interceptor wants to run relative to core.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseAfter
	PhaseAround
)
