package solver

// Number is a JSON-like number that may have arrived as a signed integer,
// an unsigned integer, or a float, mirroring the three representations
// serde_json::Number can hold. Comparisons between Numbers of different
// representations need a total ordering that treats them as the
// mathematical values they denote, which plain Go comparison operators
// don't give you once int64/uint64/float64 are mixed (a negative int64 and
// a huge uint64 aren't directly comparable, and converting either side
// naively can silently lose precision or flip sign).
type Number struct {
	kind ordKind
	i    int64
	u    uint64
	f    float64
}

type ordKind int

const (
	ordI64 ordKind = iota
	ordU64
	ordF64
)

// FromInt64 builds a Number from a signed integer.
func FromInt64(v int64) Number { return Number{kind: ordI64, i: v} }

// FromUint64 builds a Number from an unsigned integer.
func FromUint64(v uint64) Number { return Number{kind: ordU64, u: v} }

// FromFloat64 builds a Number from a float.
func FromFloat64(v float64) Number { return Number{kind: ordF64, f: v} }

// Ordering mirrors the three-way result of a total-order comparison.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	// Incomparable is returned only when a NaN is involved, per the
	// ported rule: NaN produces Incomparable, which callers collapse to
	// False rather than treating it as any particular ordering.
	Incomparable
)

// Compare returns the total-order comparison of a and b, correctly
// handling i64/u64/f64 mixtures: negatives are always less than any u64,
// a u64 beyond i64::MAX is always greater than any non-negative i64, and
// floats compare by value (a NaN on either side yields Incomparable).
func Compare(a, b Number) Ordering {
	switch a.kind {
	case ordI64:
		switch b.kind {
		case ordI64:
			return cmpI64(a.i, b.i)
		case ordU64:
			return compareI64U64(a.i, b.u)
		default:
			return compareF64(float64(a.i), b.f)
		}
	case ordU64:
		switch b.kind {
		case ordU64:
			return cmpU64(a.u, b.u)
		case ordI64:
			return invert(compareI64U64(b.i, a.u))
		default:
			return compareF64(float64(a.u), b.f)
		}
	default: // ordF64
		switch b.kind {
		case ordF64:
			return compareF64(a.f, b.f)
		case ordI64:
			return invert(compareF64(float64(b.i), a.f))
		default:
			return invert(compareF64(float64(b.u), a.f))
		}
	}
}

func cmpI64(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func cmpU64(a, b uint64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// compareI64U64 compares a signed value against an unsigned one. Any
// negative signed value is less than every unsigned value (uint64 cannot
// represent negatives); otherwise the signed value converts losslessly.
func compareI64U64(left int64, right uint64) Ordering {
	if left < 0 {
		return Less
	}
	return cmpU64(uint64(left), right)
}

func compareF64(a, b float64) Ordering {
	if isNaN(a) || isNaN(b) {
		return Incomparable
	}
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func isNaN(f float64) bool { return f != f }

func invert(o Ordering) Ordering {
	switch o {
	case Less:
		return Greater
	case Greater:
		return Less
	default:
		return o
	}
}
