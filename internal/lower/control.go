package lower

import (
	"github.com/bruce-hill/blangc/internal/ast"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// lowerIf lowers an If used in statement position; any arm's result value
// is simply discarded.
func (lo *Lowerer) lowerIf(n *ast.If) {
	join := lo.fn.NewBlock("if_join")
	lo.emitIfChainInto(n, 0, join)
	lo.block = join
}

func (lo *Lowerer) emitIfChainInto(n *ast.If, i int, join *ir.Block) {
	if i >= len(n.Conditions) {
		if n.Else != nil {
			lo.lowerBranchBlock(n.Else, join)
		} else {
			lo.block.Term = ir.Jump{Target: join}
		}
		return
	}
	cond := lo.lowerExpr(n.Conditions[i])
	thenBlock := lo.fn.NewBlock("if_then")
	elseBlock := lo.fn.NewBlock("if_else")
	lo.block.Term = ir.CondJump{Cond: cond, Then: thenBlock, Else: elseBlock}

	lo.block = thenBlock
	lo.lowerBranchBlock(n.Blocks[i], join)

	lo.block = elseBlock
	lo.emitIfChainInto(n, i+1, join)
}

// lowerBranchBlock lowers an If arm used in statement position; its
// result, if any, is simply discarded.
func (lo *Lowerer) lowerBranchBlock(b *ast.Block, join *ir.Block) {
	lo.lowerBlockStmts(b)
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: join}
	}
}

// lowerIfExpr lowers an If used as an expression: each arm's last
// statement's value is stored into a join local.
func (lo *Lowerer) lowerIfExpr(n *ast.If) ir.Value {
	t := lo.typeOf(n)
	local := lo.fn.NewLocal("if_result", t)
	join := lo.fn.NewBlock("if_join")
	lo.emitIfExprInto(n, 0, join, local)
	lo.block = join
	return lo.block.Load(local)
}

func (lo *Lowerer) emitIfExprInto(n *ast.If, i int, join *ir.Block, local *ir.Local) {
	if i >= len(n.Conditions) {
		if n.Else != nil {
			lo.lowerExprBlockInto(n.Else, local)
		} else {
			lo.block.Store(local, &ir.Const{Type: types.Void()})
		}
		lo.block.Term = ir.Jump{Target: join}
		return
	}
	cond := lo.lowerExpr(n.Conditions[i])
	thenBlock := lo.fn.NewBlock("if_then")
	elseBlock := lo.fn.NewBlock("if_else")
	lo.block.Term = ir.CondJump{Cond: cond, Then: thenBlock, Else: elseBlock}

	lo.block = thenBlock
	lo.lowerExprBlockInto(n.Blocks[i], local)
	lo.block.Term = ir.Jump{Target: join}

	lo.block = elseBlock
	lo.emitIfExprInto(n, i+1, join, local)
}

// lowerExprBlockInto lowers every statement of b, then stores the value of
// the final expression statement (if any) into local.
func (lo *Lowerer) lowerExprBlockInto(b *ast.Block, local *ir.Local) {
	if len(b.Statements) == 0 {
		lo.block.Store(local, &ir.Const{Type: types.Void()})
		return
	}
	for _, stmt := range b.Statements[:len(b.Statements)-1] {
		lo.lowerStmt(stmt)
	}
	last := b.Statements[len(b.Statements)-1]
	if isExprNode(last) {
		v := lo.lowerExpr(last)
		lo.block.Store(local, v)
	} else {
		lo.lowerStmt(last)
		lo.block.Store(local, &ir.Const{Type: types.Void()})
	}
}

func isExprNode(n ast.Node) bool {
	switch n.(type) {
	case *ast.Declare, *ast.Assign, *ast.CompoundAssign, *ast.For, *ast.While,
		*ast.Repeat, *ast.FunctionDef, *ast.StructDef, *ast.EnumDef,
		*ast.Extern, *ast.Use, *ast.Return, *ast.Fail, *ast.Skip, *ast.Stop,
		*ast.DocTest:
		return false
	}
	return true
}

func (lo *Lowerer) lowerWhen(n *ast.When) {
	lo.lowerWhenGeneric(n, nil)
}

func (lo *Lowerer) lowerWhenExpr(n *ast.When) ir.Value {
	t := lo.typeOf(n)
	local := lo.fn.NewLocal("when_result", t)
	lo.lowerWhenGeneric(n, local)
	return lo.block.Load(local)
}

// lowerWhenGeneric compiles a When as a chained conditional over patterns
// (spec.md §4.5.4): each arm produces a match/no-match pair, the final
// no-match reaching the default arm or a runtime failure.
func (lo *Lowerer) lowerWhenGeneric(n *ast.When, local *ir.Local) {
	subject := lo.lowerExpr(n.Subject)
	subjectType := lo.typeOf(n.Subject)
	join := lo.fn.NewBlock("when_join")
	lo.emitWhenArm(n, 0, subject, subjectType, join, local)
	lo.block = join
}

func (lo *Lowerer) emitWhenArm(n *ast.When, i int, subject ir.Value, subjectType *types.Type, join *ir.Block, local *ir.Local) {
	if i >= len(n.Cases) {
		if n.Default != nil {
			lo.lowerArmBody(n.Default, join, local)
		} else {
			lo.block.Call("__unmatched", nil, types.Void())
			lo.block.Term = ir.Return{}
		}
		return
	}
	wc := n.Cases[i]
	matchBlock := lo.fn.NewBlock("when_match")
	noMatchBlock := lo.fn.NewBlock("when_no_match")
	cond := lo.lowerPatternTest(wc.Pattern, subject, subjectType)
	lo.block.Term = ir.CondJump{Cond: cond, Then: matchBlock, Else: noMatchBlock}

	lo.block = matchBlock
	lo.bindPattern(wc.Pattern, subject, subjectType)
	lo.lowerArmBody(wc.Body, join, local)

	lo.block = noMatchBlock
	lo.emitWhenArm(n, i+1, subject, subjectType, join, local)
}

func (lo *Lowerer) lowerArmBody(b *ast.Block, join *ir.Block, local *ir.Local) {
	if local != nil {
		lo.lowerExprBlockInto(b, local)
	} else {
		lo.lowerBlockStmts(b)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: join}
	}
}

// lowerPatternTest compiles a When pattern into a Bool test against an
// already-lowered subject value (spec.md §4.4.3).
func (lo *Lowerer) lowerPatternTest(pattern ast.Pattern, subject ir.Value, subjectType *types.Type) ir.Value {
	switch p := pattern.(type) {
	case *ast.Var:
		if p.Name == "*" {
			return &ir.Const{Type: types.Bool(), Int: 1}
		}
		return &ir.Const{Type: types.Bool(), Int: 1}
	case *ast.FunctionCall:
		tagName, ok := p.Callee.(*ast.Var)
		if !ok {
			return lo.block.Call("__equal", []ir.Value{subject, lo.lowerExpr(pattern)}, types.Bool())
		}
		idx := -1
		if subjectType.Data != nil {
			for i, fn := range subjectType.Data.FieldNames {
				if fn == tagName.Name {
					idx = i
				}
			}
		}
		tagField := lo.block.Load(lo.block.FieldAccess(subject, "tag", 0, types.Int(32, units.None, false)))
		return lo.block.Compare(ir.CmpEq, tagField, &ir.Const{Type: types.Int(32, units.None, false), Int: int64(idx)})
	default:
		return lo.block.Call("__equal", []ir.Value{subject, lo.lowerExpr(pattern)}, types.Bool())
	}
}

// bindPattern introduces the arm-local bindings a matched pattern carries
// (spec.md §8 scenario 8: bindings are scoped to the matched arm only).
func (lo *Lowerer) bindPattern(pattern ast.Pattern, subject ir.Value, subjectType *types.Type) {
	p, ok := pattern.(*ast.FunctionCall)
	if !ok {
		return
	}
	tagName, ok := p.Callee.(*ast.Var)
	if !ok {
		return
	}
	var payload *types.Type
	if subjectType.Data != nil {
		for i, fn := range subjectType.Data.FieldNames {
			if fn == tagName.Name {
				payload = subjectType.Data.FieldTypes[i]
			}
		}
	}
	if payload == nil {
		return
	}
	union := lo.block.Load(lo.block.FieldAccess(subject, "data", 1, subjectType.Data))
	payloadVal := lo.block.Bitcast(union, payload)
	for _, arg := range p.Args {
		kw, ok := arg.(*ast.KeywordArg)
		if !ok {
			continue
		}
		v, ok := kw.Arg.(*ast.Var)
		if !ok {
			continue
		}
		for j, fn := range payload.FieldNames {
			if fn == kw.Name {
				field := lo.block.FieldAccess(payloadVal, fn, j, payload.FieldTypes[j])
				local := lo.fn.NewLocal(v.Name, payload.FieldTypes[j])
				lo.block.Store(local, lo.block.Load(field))
				lo.vars[v.Name] = local
			}
		}
	}
}

func (lo *Lowerer) lowerWhile(n *ast.While) {
	head := lo.fn.NewBlock("while_head")
	body := lo.fn.NewBlock("while_body")
	after := lo.fn.NewBlock("while_after")
	lo.block.Term = ir.Jump{Target: head}

	lo.block = head
	cond := lo.lowerExpr(n.Cond)
	lo.block.Term = ir.CondJump{Cond: cond, Then: body, Else: after}

	lo.loops = append(lo.loops, loopCtx{names: []string{"while"}, breakTarget: after, continueTarget: head})
	lo.block = body
	lo.lowerBlockStmts(n.Body)
	if n.Between != nil && lo.block.Term == nil {
		lo.lowerBlockStmts(n.Between)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: head}
	}
	lo.loops = lo.loops[:len(lo.loops)-1]
	lo.block = after
}

func (lo *Lowerer) lowerRepeat(n *ast.Repeat) {
	body := lo.fn.NewBlock("repeat_body")
	after := lo.fn.NewBlock("repeat_after")
	lo.block.Term = ir.Jump{Target: body}

	lo.loops = append(lo.loops, loopCtx{names: []string{"repeat"}, breakTarget: after, continueTarget: body})
	lo.block = body
	lo.lowerBlockStmts(n.Body)
	if n.Between != nil && lo.block.Term == nil {
		lo.lowerBlockStmts(n.Between)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: body}
	}
	lo.loops = lo.loops[:len(lo.loops)-1]
	lo.block = after
}

// lowerFor implements spec.md §4.5.3's preamble/first/body/between/next/end
// structure. Range iterables get their own lowering; every other iterable,
// Table and linked struct included, goes through the Array path, which
// reads a length field and indexes items 1..length.
func (lo *Lowerer) lowerFor(n *ast.For) {
	iterType := lo.typeOf(n.Iter)
	switch iterType.Kind() {
	case types.KindRange:
		lo.lowerForRange(n)
	default:
		lo.lowerForArray(n)
	}
}

func (lo *Lowerer) loopNames(n *ast.For) []string {
	names := []string{"for"}
	if n.Value != nil {
		names = append(names, n.Value.Name)
	}
	if n.Key != nil {
		names = append(names, n.Key.Name)
	}
	return names
}

func (lo *Lowerer) lowerForArray(n *ast.For) {
	arr := lo.lowerExpr(n.Iter)
	arrType := lo.typeOf(n.Iter)
	i64 := types.Int(64, units.None, false)

	arrLocal := lo.fn.NewLocal("for_arr", arrType)
	lo.block.Store(arrLocal, arr)
	length := lo.block.Load(lo.block.FieldAccess(arrLocal, "length", 1, types.Int(32, units.None, false)))

	idxLocal := lo.fn.NewLocal("for_idx", i64)
	lo.block.Store(idxLocal, &ir.Const{Type: i64, Int: 1})

	emptyCheck := lo.block.Compare(ir.CmpGe, length, &ir.Const{Type: types.Int(32, units.None, false), Int: 1})
	bodyEntry := lo.fn.NewBlock("for_entry")
	emptyBlock := lo.fn.NewBlock("for_empty")
	after := lo.fn.NewBlock("for_after")
	lo.block.Term = ir.CondJump{Cond: emptyCheck, Then: bodyEntry, Else: emptyBlock}

	lo.block = emptyBlock
	if n.Empty != nil {
		lo.lowerBlockStmts(n.Empty)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: after}
	}

	head := lo.fn.NewBlock("for_head")
	bodyEntry.Term = ir.Jump{Target: head}
	lo.block = head
	idx := lo.block.Load(idxLocal)
	cont := lo.block.Compare(ir.CmpLe, idx, length)
	body := lo.fn.NewBlock("for_body")
	lo.block.Term = ir.CondJump{Cond: cont, Then: body, Else: after}

	next := lo.fn.NewBlock("for_next")
	lo.loops = append(lo.loops, loopCtx{names: lo.loopNames(n), breakTarget: after, continueTarget: next})

	lo.block = body
	if n.Value != nil {
		item := lo.block.Index(arrLocal, idx, arrType.Item)
		local := lo.fn.NewLocal(n.Value.Name, arrType.Item)
		lo.block.Store(local, lo.block.Load(item))
		lo.vars[n.Value.Name] = local
	}
	if n.Key != nil {
		local := lo.fn.NewLocal(n.Key.Name, i64)
		lo.block.Store(local, idx)
		lo.vars[n.Key.Name] = local
	}
	lo.lowerTripBody(n.First, n.Body, idx, &ir.Const{Type: i64, Int: 1})
	if lo.block.Term == nil {
		if n.Between != nil {
			lo.lowerBlockStmts(n.Between)
		}
		lo.block.Term = ir.Jump{Target: next}
	}

	lo.block = next
	idx2 := lo.block.Load(idxLocal)
	incr := lo.block.Binary(ir.BinAdd, idx2, &ir.Const{Type: i64, Int: 1}, i64)
	lo.block.Store(idxLocal, incr)
	lo.block.Term = ir.Jump{Target: head}

	lo.loops = lo.loops[:len(lo.loops)-1]
	lo.block = after
}

// lowerForRange implements the overflow-safe stepping of spec.md §4.5.3.
func (lo *Lowerer) lowerForRange(n *ast.For) {
	rangeVal := lo.lowerExpr(n.Iter)
	i64 := types.Int(64, units.None, false)
	rangeType := types.RangeT()
	rangeLocal := lo.fn.NewLocal("for_range", rangeType)
	lo.block.Store(rangeLocal, rangeVal)

	first := lo.block.Load(lo.block.FieldAccess(rangeLocal, "first", 0, i64))
	step := lo.block.Load(lo.block.FieldAccess(rangeLocal, "step", 1, i64))
	last := lo.block.Load(lo.block.FieldAccess(rangeLocal, "last", 2, i64))

	// Runtime guard for a step the checker could not see was 0.
	zeroStep := lo.block.Compare(ir.CmpEq, step, &ir.Const{Type: i64, Int: 0})
	stepFail := lo.fn.NewBlock("for_range_zero_step")
	stepOK := lo.fn.NewBlock("for_range_step_ok")
	lo.block.Term = ir.CondJump{Cond: zeroStep, Then: stepFail, Else: stepOK}
	stepFail.Call("__fail", []ir.Value{&ir.Const{Type: stringType(), Str: "range step of 0 is not allowed"}}, types.Void())
	stepFail.Term = ir.Return{}
	lo.block = stepOK

	cursor := lo.fn.NewLocal("for_cursor", i64)
	lo.block.Store(cursor, first)

	stepPos := lo.block.Compare(ir.CmpGt, step, &ir.Const{Type: i64, Int: 0})
	notEmptyPos := lo.block.Compare(ir.CmpLe, first, last)
	notEmptyNeg := lo.block.Compare(ir.CmpGe, first, last)
	notEmpty := lo.block.Binary(ir.BinOr,
		lo.block.Binary(ir.BinAnd, stepPos, notEmptyPos, types.Bool()),
		lo.block.Binary(ir.BinAnd, lo.block.Unary(ir.UnNot, stepPos, types.Bool()), notEmptyNeg, types.Bool()),
		types.Bool())

	head := lo.fn.NewBlock("for_range_head")
	emptyBlock := lo.fn.NewBlock("for_range_empty")
	after := lo.fn.NewBlock("for_range_after")
	lo.block.Term = ir.CondJump{Cond: notEmpty, Then: head, Else: emptyBlock}

	lo.block = emptyBlock
	if n.Empty != nil {
		lo.lowerBlockStmts(n.Empty)
	}
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: after}
	}

	body := lo.fn.NewBlock("for_range_body")
	next := lo.fn.NewBlock("for_range_next")
	lo.block = head
	cur := lo.block.Load(cursor)
	canContPos := lo.block.Compare(ir.CmpLe, cur, last)
	canContNeg := lo.block.Compare(ir.CmpGe, cur, last)
	canCont := lo.block.Binary(ir.BinOr,
		lo.block.Binary(ir.BinAnd, stepPos, canContPos, types.Bool()),
		lo.block.Binary(ir.BinAnd, lo.block.Unary(ir.UnNot, stepPos, types.Bool()), canContNeg, types.Bool()),
		types.Bool())
	lo.block.Term = ir.CondJump{Cond: canCont, Then: body, Else: after}

	lo.loops = append(lo.loops, loopCtx{names: lo.loopNames(n), breakTarget: after, continueTarget: next})
	lo.block = body
	if n.Value != nil {
		local := lo.fn.NewLocal(n.Value.Name, i64)
		lo.block.Store(local, cur)
		lo.vars[n.Value.Name] = local
	}
	lo.lowerTripBody(n.First, n.Body, cur, first)
	if lo.block.Term == nil {
		if n.Between != nil {
			lo.lowerBlockStmts(n.Between)
		}
		lo.block.Term = ir.Jump{Target: next}
	}

	lo.block = next
	curv := lo.block.Load(cursor)
	// Leave the loop instead of stepping when cursor+step would overflow.
	roomPos := lo.block.Compare(ir.CmpLe, curv, lo.block.Binary(ir.BinSub, &ir.Const{Type: i64, Int: 1<<63 - 1}, step, i64))
	roomNeg := lo.block.Compare(ir.CmpGe, curv, lo.block.Binary(ir.BinSub, &ir.Const{Type: i64, Int: -1 << 63}, step, i64))
	room := lo.block.Binary(ir.BinOr,
		lo.block.Binary(ir.BinAnd, stepPos, roomPos, types.Bool()),
		lo.block.Binary(ir.BinAnd, lo.block.Unary(ir.UnNot, stepPos, types.Bool()), roomNeg, types.Bool()),
		types.Bool())
	stepBlock := lo.fn.NewBlock("for_range_step")
	lo.block.Term = ir.CondJump{Cond: room, Then: stepBlock, Else: after}
	lo.block = stepBlock
	steppedVal := lo.block.Binary(ir.BinAdd, curv, step, i64)
	lo.block.Store(cursor, steppedVal)
	lo.block.Term = ir.Jump{Target: head}

	lo.loops = lo.loops[:len(lo.loops)-1]
	lo.block = after
}

// lowerTripBody dispatches a loop trip to the `first` block on the trip
// where cursor equals firstVal, else the regular body (spec.md §4.5.3's
// preamble -> first? -> body structure).
func (lo *Lowerer) lowerTripBody(firstBlk *ast.Block, body *ast.Block, cursor, firstVal ir.Value) {
	if firstBlk == nil {
		lo.lowerBlockStmts(body)
		return
	}
	isFirst := lo.block.Compare(ir.CmpEq, cursor, firstVal)
	firstB := lo.fn.NewBlock("trip_first")
	restB := lo.fn.NewBlock("trip_rest")
	join := lo.fn.NewBlock("trip_join")
	lo.block.Term = ir.CondJump{Cond: isFirst, Then: firstB, Else: restB}

	lo.block = firstB
	lo.lowerBlockStmts(firstBlk)
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: join}
	}

	lo.block = restB
	lo.lowerBlockStmts(body)
	if lo.block.Term == nil {
		lo.block.Term = ir.Jump{Target: join}
	}

	lo.block = join
}

func (lo *Lowerer) lowerFunctionDef(n *ast.FunctionDef) {
	fn := lo.lookupFunc(n.Name)
	if fn == nil {
		return
	}
	savedFn, savedBlock, savedVars := lo.fn, lo.block, lo.vars
	lo.fn = fn
	lo.block = fn.Entry
	lo.vars = map[string]ir.Value{}
	for _, p := range fn.Params {
		local := fn.NewLocal(p.Name, p.Type)
		lo.block.Store(local, p)
		lo.vars[p.Name] = local
	}
	lo.lowerBlockStmts(n.Body)
	if lo.block.Term == nil {
		var ret ir.Value
		if fn.Ret != nil && fn.Ret.Kind() != types.KindVoid {
			ret = &ir.Const{Type: fn.Ret}
		}
		lo.block.Term = ir.Return{Value: ret}
	}
	lo.fn, lo.block, lo.vars = savedFn, savedBlock, savedVars
}

func (lo *Lowerer) lowerLambda(n *ast.Lambda) ir.Value {
	t := lo.typeOf(n)
	params := make([]*ir.Param, len(t.ArgTypes))
	for i, at := range t.ArgTypes {
		params[i] = &ir.Param{Name: t.ArgNames[i], Type: at, Index: i}
	}
	name := lo.freshName("lambda")
	fn := ir.NewFunction(name, params, t.Ret)
	lo.Module.AddFunction(fn)

	savedFn, savedBlock, savedVars := lo.fn, lo.block, lo.vars
	lo.fn = fn
	lo.block = fn.Entry
	inherited := make(map[string]ir.Value, len(savedVars))
	for k, v := range savedVars {
		inherited[k] = v
	}
	lo.vars = inherited
	for _, p := range params {
		local := fn.NewLocal(p.Name, p.Type)
		lo.block.Store(local, p)
		lo.vars[p.Name] = local
	}
	lo.lowerBlockStmts(n.Body)
	if lo.block.Term == nil {
		lo.block.Term = ir.Return{}
	}
	lo.fn, lo.block, lo.vars = savedFn, savedBlock, savedVars
	return &ir.Const{Type: t, Str: name}
}

// lowerDocTest implements spec.md §4.7's REPL echo: declarations and other
// non-expression statements are simply executed, while expressions are also
// printed as `= value` through __doctest_report. The source line is not
// echoed.
func (lo *Lowerer) lowerDocTest(n *ast.DocTest) {
	if !isExprNode(n.Expr) {
		lo.lowerStmt(n.Expr)
		return
	}
	val := lo.lowerExpr(n.Expr)
	t := lo.typeOf(n.Expr)
	rendered := lo.callPrint(val, t)
	lo.block.Call("__doctest_report", []ir.Value{rendered}, types.Void())
}
