package absql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndShortCircuitsToFalse(t *testing.T) {
	p := And(Eq(ParamOperand(1), ParamOperand(1)), False(), Eq(ParamOperand(2), ParamOperand(2)))
	assert.Equal(t, PredicateFalse, p.Kind)
}

func TestOrShortCircuitsToTrue(t *testing.T) {
	p := Or(Eq(ParamOperand(1), ParamOperand(2)), True(), Eq(ParamOperand(3), ParamOperand(4)))
	assert.Equal(t, PredicateTrue, p.Kind)
}

func TestAndIdentityDropsTrue(t *testing.T) {
	eq := Eq(ParamOperand(1), ParamOperand(1))
	p := And(True(), eq)
	assert.Equal(t, eq, p)
}

func TestNotNotCollapses(t *testing.T) {
	eq := Eq(ParamOperand(1), ParamOperand(2))
	assert.Equal(t, eq, Not(Not(eq)))
}

func TestDeMorganAnd(t *testing.T) {
	a := Eq(ParamOperand(1), ParamOperand(1))
	b := Eq(ParamOperand(2), ParamOperand(2))

	lhs := Not(And(a, b))
	rhs := Or(Not(a), Not(b))
	assert.Equal(t, rhs, lhs)
}

func TestDeMorganOr(t *testing.T) {
	a := Eq(ParamOperand(1), ParamOperand(1))
	b := Eq(ParamOperand(2), ParamOperand(2))

	lhs := Not(Or(a, b))
	rhs := And(Not(a), Not(b))
	assert.Equal(t, rhs, lhs)
}
