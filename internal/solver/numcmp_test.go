package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareEqualAcrossRepresentations(t *testing.T) {
	ones := []Number{FromUint64(1), FromInt64(1), FromFloat64(1.0)}
	for _, left := range ones {
		for _, right := range ones {
			assert.Equal(t, Equal, Compare(left, right))
		}
	}
}

func TestCompareMinLessThanMax(t *testing.T) {
	mins := []Number{FromUint64(0), FromInt64(math.MinInt64), FromFloat64(-math.MaxFloat64)}
	maxs := []Number{FromUint64(math.MaxUint64), FromInt64(math.MaxInt64), FromFloat64(math.MaxFloat64)}

	for _, left := range mins {
		for _, right := range maxs {
			assert.Equal(t, Less, Compare(left, right))
			assert.Equal(t, Greater, Compare(right, left))
		}
	}
}

func TestCompareNegativeLessThanAnyUint(t *testing.T) {
	assert.Equal(t, Less, Compare(FromInt64(-1), FromUint64(0)))
	assert.Equal(t, Greater, Compare(FromUint64(0), FromInt64(-1)))
}

func TestCompareUintBeyondInt64MaxIsGreater(t *testing.T) {
	huge := FromUint64(uint64(math.MaxInt64) + 100)
	assert.Equal(t, Greater, Compare(huge, FromInt64(math.MaxInt64)))
}

func TestCompareMixedFloatScenario(t *testing.T) {
	// Row has price = 10 (stored as int). gt 9.5 matches; gt 10 does not.
	price := FromInt64(10)
	assert.Equal(t, Greater, Compare(price, FromFloat64(9.5)))
	assert.Equal(t, Equal, Compare(price, FromFloat64(10)))
}

func TestCompareNaNIsIncomparable(t *testing.T) {
	assert.Equal(t, Incomparable, Compare(FromFloat64(math.NaN()), FromFloat64(1)))
}
