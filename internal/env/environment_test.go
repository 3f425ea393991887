package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

func TestDefineAndLookup(t *testing.T) {
	e := env.New()
	e.Define("x", &env.Binding{Type: types.Int(64, units.None, false), Symbol: "x"})
	b, ok := e.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(64, units.None, false), b.Type)

	_, ok = e.Lookup("nope")
	assert.False(t, ok)
}

func TestDefineGlobalAlsoRegistersInGlobals(t *testing.T) {
	e := env.New()
	e.Define("g", &env.Binding{Type: types.Bool(), Symbol: "g", IsGlobal: true})
	_, ok := e.Globals["g"]
	assert.True(t, ok)
}

func TestFreshScopeShadowsParent(t *testing.T) {
	e := env.New()
	e.Define("x", &env.Binding{Type: types.Int(64, units.None, false), Symbol: "x"})

	child := e.FreshScope()
	child.Define("x", &env.Binding{Type: types.Bool(), Symbol: "x"})

	b, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.KindBool, b.Type.Kind())

	parentB, ok := e.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.KindInt, parentB.Type.Kind())
}

func TestFreshScopeSharesGlobalsAndCaches(t *testing.T) {
	e := env.New()
	e.Define("g", &env.Binding{Type: types.Bool(), Symbol: "g", IsGlobal: true})
	child := e.FreshScope()
	_, ok := child.Globals["g"]
	assert.True(t, ok, "child scope should see parent's globals map")
}

func TestNamespaceForCreatesOnce(t *testing.T) {
	e := env.New()
	ty := types.Int(64, units.None, false)
	ns1 := e.NamespaceFor(ty)
	ns1["double"] = &env.Binding{Type: ty}
	ns2 := e.NamespaceFor(ty)
	_, ok := ns2["double"]
	assert.True(t, ok, "NamespaceFor should return the same namespace on repeated calls")
}

func TestAbortRoutesToErrorTargetWhenSet(t *testing.T) {
	e := env.New()
	var caught *env.Diagnostic
	e.ErrorTarget = func(d env.Diagnostic) { caught = &d }
	d := env.Diagnostic{Kind: env.KindType, Message: "boom"}
	handled := e.Abort(d)
	assert.True(t, handled)
	require.NotNil(t, caught)
	assert.Equal(t, "boom", caught.Message)
}

func TestAbortReturnsFalseWithoutErrorTarget(t *testing.T) {
	e := env.New()
	handled := e.Abort(env.Diagnostic{Kind: env.KindRuntime, Message: "boom"})
	assert.False(t, handled)
}

func TestLoopLabelMatchesEmptyNameMatchesInnermost(t *testing.T) {
	outer := &env.LoopLabel{Names: []string{"outer"}}
	inner := &env.LoopLabel{Names: []string{"inner"}, Enclosing: outer}
	assert.True(t, inner.Matches(""))
	assert.True(t, inner.Matches("inner"))
	assert.False(t, inner.Matches("outer"))
}

func TestLoopLabelFindWalksOutward(t *testing.T) {
	outer := &env.LoopLabel{Names: []string{"outer"}}
	inner := &env.LoopLabel{Names: []string{"inner"}, Enclosing: outer}
	assert.Same(t, outer, env.Find(inner, "outer"))
	assert.Same(t, inner, env.Find(inner, "inner"))
	assert.Nil(t, env.Find(inner, "missing"))
}
