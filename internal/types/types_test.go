package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

func TestHashConsingIsPointerEqual(t *testing.T) {
	a := types.Int(64, units.None, false)
	b := types.Int(64, units.None, false)
	require.Same(t, a, b)

	s1 := types.Struct("Point", []string{"x", "y"}, []*types.Type{types.Int(64, units.None, false), types.Int(64, units.None, false)}, units.None)
	s2 := types.Struct("Point", []string{"x", "y"}, []*types.Type{types.Int(64, units.None, false), types.Int(64, units.None, false)}, units.None)
	assert.Same(t, s1, s2)
}

func TestHashConsingDistinguishesShape(t *testing.T) {
	i32 := types.Int(32, units.None, false)
	i64 := types.Int(64, units.None, false)
	assert.NotSame(t, i32, i64)

	m := types.Int(64, units.Intern("m"), false)
	plain := types.Int(64, units.None, false)
	assert.NotSame(t, m, plain)
}

func TestPriorityOrdering(t *testing.T) {
	i8 := types.Int(8, units.None, false)
	i16 := types.Int(16, units.None, false)
	i32 := types.Int(32, units.None, false)
	i64 := types.Int(64, units.None, false)
	n32 := types.Num(32, units.None)
	n64 := types.Num(64, units.None)

	assert.Less(t, i8.Priority(), i16.Priority())
	assert.Less(t, i16.Priority(), i32.Priority())
	assert.Less(t, i32.Priority(), i64.Priority())
	assert.Less(t, i64.Priority(), n32.Priority())
	assert.Less(t, n32.Priority(), n64.Priority())
}

func TestCanPromoteNumeric(t *testing.T) {
	i32 := types.Int(32, units.None, false)
	i64 := types.Int(64, units.None, false)
	assert.True(t, types.CanPromote(i32, i64))
	assert.False(t, types.CanPromote(i64, i32))

	m := types.Int(32, units.Intern("m"), false)
	assert.False(t, types.CanPromote(m, i64), "mismatched units must not promote")
}

func TestCanPromotePointerOptionality(t *testing.T) {
	pointee := types.Int(64, units.None, false)
	nonOpt := types.Pointer(pointee, false, false)
	opt := types.Pointer(pointee, true, false)
	assert.True(t, types.CanPromote(nonOpt, opt))
	assert.False(t, types.CanPromote(opt, nonOpt), "optional pointers don't promote back down")
}

func TestJoinOrNilNumeric(t *testing.T) {
	i32 := types.Int(32, units.None, false)
	i64 := types.Int(64, units.None, false)
	assert.Same(t, i64, types.JoinOrNil(i32, i64))
	assert.Same(t, i64, types.JoinOrNil(i64, i32))
}

func TestJoinOrNilIncompatible(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	str := types.Array(types.Char())
	assert.Nil(t, types.JoinOrNil(i64, str))
}

func TestJoinOrNilAbortIsIdentity(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	assert.Same(t, i64, types.JoinOrNil(types.Abort(), i64))
	assert.Same(t, i64, types.JoinOrNil(i64, types.Abort()))
}

func TestIsSubtypeReflexive(t *testing.T) {
	i64 := types.Int(64, units.None, false)
	assert.True(t, types.IsSubtype(i64, i64))
}

func TestPromotionMonotone(t *testing.T) {
	i8 := types.Int(8, units.None, false)
	i32 := types.Int(32, units.None, false)
	i64 := types.Int(64, units.None, false)
	assert.True(t, types.PromotionMonotone(i8, i32, i64))
}
