package interp

import (
	"math/big"

	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// evalExpression is the tree-walking dispatcher over every ast.Expression
// node (spec.md §4.2). Optional-chain member/call access is delegated to
// evalChain, which threads a short-circuit flag back up without
// unwinding through a Go panic/error.
func (it *Interp) evalExpression(env *Environment, expr ast.Expression) (Value, Completion) {
	switch n := expr.(type) {
	case *ast.Identifier:
		v, err := env.Get(n.Name)
		if err != nil {
			return Undefined, it.asThrow(err)
		}
		return v, normalC()
	case *ast.PrivateName:
		return Undefined, it.throwSyntax("private name is only valid as a member or 'in' operand")
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), normalC()
	case *ast.BigIntLiteral:
		b, ok := new(big.Int).SetString(n.Raw, 0)
		if !ok {
			return Undefined, it.throwSyntax("invalid BigInt literal %q", n.Raw)
		}
		return BigIntValue(b), normalC()
	case *ast.StringLiteral:
		return runtime.String(n.Value), normalC()
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), normalC()
	case *ast.NullLiteral:
		return Null, normalC()
	case *ast.UndefinedLiteral:
		return Undefined, normalC()
	case *ast.ThisExpression:
		return env.This(), normalC()
	case *ast.SuperExpression:
		return Undefined, it.throwSyntax("'super' keyword is only valid inside a method or constructor")
	case *ast.RegexLiteral:
		return runtime.Object_(it.NewRegExp(n.Pattern, n.Flags)), normalC()
	case *ast.TemplateLiteral:
		return it.evalTemplateLiteral(env, n)
	case *ast.ArrayLiteral:
		return it.evalArrayLiteral(env, n)
	case *ast.ObjectLiteral:
		return it.evalObjectLiteral(env, n)
	case *ast.FunctionLiteral:
		return it.evalFunctionLiteral(env, n)
	case *ast.ClassLiteral:
		return it.evalClassLiteral(env, n)
	case *ast.BinaryExpression:
		return it.evalBinaryExpression(env, n)
	case *ast.LogicalExpression:
		return it.evalLogicalExpression(env, n)
	case *ast.UnaryExpression:
		return it.evalUnaryExpression(env, n)
	case *ast.AwaitExpression:
		av, c := it.evalExpression(env, n.Argument)
		if c.IsAbrupt() {
			return Undefined, c
		}
		return it.evalAwaitExpr(env, av)
	case *ast.YieldExpression:
		return it.evalYield(env, n)
	case *ast.UpdateExpression:
		return it.evalUpdateExpression(env, n)
	case *ast.AssignmentExpression:
		return it.evalAssignmentExpression(env, n)
	case *ast.ConditionalExpression:
		tv, c := it.evalExpression(env, n.Test)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if tv.ToBoolean() {
			return it.evalExpression(env, n.Consequent)
		}
		return it.evalExpression(env, n.Alternate)
	case *ast.SequenceExpression:
		var v Value = Undefined
		for _, e := range n.Expressions {
			var c Completion
			v, c = it.evalExpression(env, e)
			if c.IsAbrupt() {
				return Undefined, c
			}
		}
		return v, normalC()
	case *ast.MemberExpression:
		v, _, _, c := it.evalChain(env, n)
		return v, c
	case *ast.CallExpression:
		v, _, _, c := it.evalChain(env, n)
		return v, c
	case *ast.NewExpression:
		return it.evalNewExpression(env, n)
	case *ast.MetaProperty:
		return it.evalMetaProperty(env, n)
	case *ast.ImportCallExpression:
		return it.evalDynamicImport(env, n)
	case *ast.ChainExpression:
		return it.evalExpression(env, n.Expression)
	}
	return Undefined, it.throwType("unsupported expression %T", expr)
}

// evalChain walks a MemberExpression/CallExpression chain, returning the
// produced value, the "this" value that a wrapping CallExpression should
// bind (only meaningful when expr is a MemberExpression), and whether an
// optional (`?.`) link short-circuited the whole chain to undefined
// (spec.md §4.2).
func (it *Interp) evalChain(env *Environment, expr ast.Expression) (Value, Value, bool, Completion) {
	switch n := expr.(type) {
	case *ast.MemberExpression:
		if _, ok := n.Object.(*ast.SuperExpression); ok {
			home := env.NearestHomeObject()
			if home == nil || home.Prototype == nil {
				return Undefined, Undefined, false, it.throwSyntax("'super' keyword is unexpected here")
			}
			key, c := it.memberKey(env, n)
			if c.IsAbrupt() {
				return Undefined, Undefined, false, c
			}
			v, c := it.GetProperty(env.This(), home.Prototype, key)
			return v, env.This(), false, c
		}
		objVal, _, short, c := it.evalChain(env, n.Object)
		if c.IsAbrupt() {
			return Undefined, Undefined, false, c
		}
		if short {
			return Undefined, Undefined, true, normalC()
		}
		if n.Optional && objVal.IsNullish() {
			return Undefined, Undefined, true, normalC()
		}
		if pn, ok := n.Property.(*ast.PrivateName); ok {
			if !objVal.IsObject() {
				return Undefined, Undefined, false, it.throwType("Cannot read private member #%s from non-object", pn.Name)
			}
			v, ok := objVal.Obj().GetPrivate(env.NearestClassBrand(), pn.Name)
			if !ok {
				return Undefined, Undefined, false, it.throwType("Cannot read private member #%s from an object whose class did not declare it", pn.Name)
			}
			return v, objVal, false, normalC()
		}
		key, c := it.memberKey(env, n)
		if c.IsAbrupt() {
			return Undefined, Undefined, false, c
		}
		v, c := it.getMemberValue(objVal, key)
		return v, objVal, false, c
	case *ast.CallExpression:
		if _, ok := n.Callee.(*ast.SuperExpression); ok {
			args, c := it.evalArguments(env, n.Arguments)
			if c.IsAbrupt() {
				return Undefined, Undefined, false, c
			}
			v, c := it.SuperCall(env, args)
			return v, Undefined, false, c
		}
		calleeV, thisV, short, c := it.evalChain(env, n.Callee)
		if c.IsAbrupt() {
			return Undefined, Undefined, false, c
		}
		if short {
			return Undefined, Undefined, true, normalC()
		}
		if n.Optional && calleeV.IsNullish() {
			return Undefined, Undefined, true, normalC()
		}
		if !calleeV.IsCallable() {
			return Undefined, Undefined, false, it.throwType("%s is not a function", Inspect(calleeV))
		}
		args, c := it.evalArguments(env, n.Arguments)
		if c.IsAbrupt() {
			return Undefined, Undefined, false, c
		}
		v, c := it.CallFunction(calleeV.Obj(), thisV, args)
		return v, Undefined, false, c
	default:
		v, c := it.evalExpression(env, expr)
		return v, Undefined, false, c
	}
}

// evalCallee resolves a call's callee/this pair outside of the short-
// circuit bookkeeping evalChain needs for nested chains; used by the
// tail-call detector in eval_stmt.go, which only ever considers plain
// (non-optional) calls.
func (it *Interp) evalCallee(env *Environment, callee ast.Expression) (Value, Value, Completion) {
	v, this, _, c := it.evalChain(env, callee)
	return v, this, c
}

// getMemberValue reads a property off any value, boxing primitives
// against their realm prototype (spec.md §4.4.6's GetValue on a
// Reference with a primitive base).
func (it *Interp) getMemberValue(v Value, key PropertyKey) (Value, Completion) {
	switch {
	case v.IsNullish():
		return Undefined, it.throwType("Cannot read properties of %s (reading '%s')", it.ToStringValue(v), keyLabel(key))
	case v.IsObject():
		return it.GetProperty(v, v.Obj(), key)
	case v.IsString():
		if !key.IsSymbol {
			if key.Str == "length" {
				return runtime.Int(len([]rune(v.Str()))), normalC()
			}
			if idx, ok := parseArrayIndex(key); ok {
				runes := []rune(v.Str())
				if idx < len(runes) {
					return runtime.String(string(runes[idx])), normalC()
				}
				return Undefined, normalC()
			}
		}
		return it.GetProperty(v, it.protos.str, key)
	case v.IsNumber():
		return it.GetProperty(v, it.protos.number, key)
	case v.IsBoolean():
		return it.GetProperty(v, it.protos.boolean, key)
	case v.IsBigInt():
		return it.GetProperty(v, it.protos.bigint, key)
	case v.IsSymbol():
		return it.GetProperty(v, it.protos.symbol, key)
	}
	return Undefined, normalC()
}

func keyLabel(k PropertyKey) string {
	if k.IsSymbol {
		return k.Sym.String()
	}
	return k.Str
}

// evalArguments evaluates a call/new argument list, splicing in each
// SpreadElement via the iterator protocol (spec.md §4.2).
func (it *Interp) evalArguments(env *Environment, args []ast.Expression) ([]Value, Completion) {
	var out []Value
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			v, c := it.evalExpression(env, sp.Argument)
			if c.IsAbrupt() {
				return nil, c
			}
			vals, c := it.IterateAll(v)
			if c.IsAbrupt() {
				return nil, c
			}
			out = append(out, vals...)
			continue
		}
		v, c := it.evalExpression(env, a)
		if c.IsAbrupt() {
			return nil, c
		}
		out = append(out, v)
	}
	return out, normalC()
}

func (it *Interp) evalArrayLiteral(env *Environment, n *ast.ArrayLiteral) (Value, Completion) {
	arr := runtime.NewObject(it.protos.array)
	arr.InternalKind = runtime.KindArray
	for _, el := range n.Elements {
		if el == nil {
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			v, c := it.evalExpression(env, sp.Argument)
			if c.IsAbrupt() {
				return Undefined, c
			}
			vals, c := it.IterateAll(v)
			if c.IsAbrupt() {
				return Undefined, c
			}
			for _, vv := range vals {
				vv2 := vv
				arr.Elements = append(arr.Elements, &vv2)
			}
			continue
		}
		v, c := it.evalExpression(env, el)
		if c.IsAbrupt() {
			return Undefined, c
		}
		arr.Elements = append(arr.Elements, &v)
	}
	return runtime.Object_(arr), normalC()
}

func (it *Interp) evalObjectLiteral(env *Environment, n *ast.ObjectLiteral) (Value, Completion) {
	obj := runtime.NewObject(it.protos.object)
	for _, p := range n.Properties {
		if p.Spread {
			v, c := it.evalExpression(env, p.Value)
			if c.IsAbrupt() {
				return Undefined, c
			}
			if v.IsObject() {
				for _, k := range v.Obj().OwnKeys() {
					pd, _ := v.Obj().GetOwnProperty(k)
					if !pd.Enumerable {
						continue
					}
					pv, c := it.GetProperty(v, v.Obj(), k)
					if c.IsAbrupt() {
						return Undefined, c
					}
					obj.DefineOwnProperty(k, runtime.DataProperty(pv))
				}
			}
			continue
		}
		key, c := it.propKeyOf(env, p.Key, p.Computed)
		if c.IsAbrupt() {
			return Undefined, c
		}
		switch p.Kind {
		case "get":
			fn := it.MakeFunction(p.Value.(*ast.FunctionLiteral), env, obj)
			pd, _ := obj.GetOwnProperty(key)
			pd.IsAccessor, pd.Get, pd.Enumerable, pd.Configurable = true, fn, true, true
			obj.DefineOwnProperty(key, pd)
		case "set":
			fn := it.MakeFunction(p.Value.(*ast.FunctionLiteral), env, obj)
			pd, _ := obj.GetOwnProperty(key)
			pd.IsAccessor, pd.Set, pd.Enumerable, pd.Configurable = true, fn, true, true
			obj.DefineOwnProperty(key, pd)
		default:
			if p.IsMethod {
				fn := it.MakeFunction(p.Value.(*ast.FunctionLiteral), env, obj)
				obj.DefineOwnProperty(key, runtime.DataProperty(runtime.Object_(fn)))
				continue
			}
			v, c := it.evalExpression(env, p.Value)
			if c.IsAbrupt() {
				return Undefined, c
			}
			obj.DefineOwnProperty(key, runtime.DataProperty(v))
		}
	}
	return runtime.Object_(obj), normalC()
}

// evalFunctionLiteral evaluates a function expression, binding its own
// name (if named) in a private wrapper scope so the function can recurse
// by name without polluting the enclosing scope (spec.md §4.2).
func (it *Interp) evalFunctionLiteral(env *Environment, n *ast.FunctionLiteral) (Value, Completion) {
	if n.Name == nil {
		return runtime.Object_(it.MakeFunction(n, env, nil)), normalC()
	}
	fnEnv := runtime.NewEnclosed(env)
	fn := it.MakeFunction(n, fnEnv, nil)
	fnEnv.DeclareConst(n.Name.Name)
	fnEnv.Initialize(n.Name.Name, runtime.Object_(fn))
	return runtime.Object_(fn), normalC()
}

func (it *Interp) evalTemplateLiteral(env *Environment, n *ast.TemplateLiteral) (Value, Completion) {
	if n.Tag == nil {
		var sb []byte
		for i, q := range n.Quasis {
			sb = append(sb, q...)
			if i < len(n.Expressions) {
				v, c := it.evalExpression(env, n.Expressions[i])
				if c.IsAbrupt() {
					return Undefined, c
				}
				sb = append(sb, it.ToStringValue(v)...)
			}
		}
		return runtime.String(string(sb)), normalC()
	}
	tagFn, this, c := it.evalCallee(env, n.Tag)
	if c.IsAbrupt() {
		return Undefined, c
	}
	if !tagFn.IsCallable() {
		return Undefined, it.throwType("%s is not a function", Inspect(tagFn))
	}
	quasis := make([]Value, len(n.Quasis))
	for i, q := range n.Quasis {
		quasis[i] = runtime.String(q)
	}
	strings := it.NewArray(quasis)
	strings.DefineOwnProperty(runtime.StringKey("raw"), runtime.DataProperty(runtime.Object_(it.NewArray(quasis))))
	args := []Value{runtime.Object_(strings)}
	for _, e := range n.Expressions {
		v, c := it.evalExpression(env, e)
		if c.IsAbrupt() {
			return Undefined, c
		}
		args = append(args, v)
	}
	return it.CallFunction(tagFn.Obj(), this, args)
}

func (it *Interp) evalBinaryExpression(env *Environment, n *ast.BinaryExpression) (Value, Completion) {
	if pn, ok := n.Left.(*ast.PrivateName); ok && n.Operator == "in" {
		rv, c := it.evalExpression(env, n.Right)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if !rv.IsObject() {
			return Undefined, it.throwType("Cannot use 'in' operator to search for '#%s' in a non-object", pn.Name)
		}
		return runtime.Bool(rv.Obj().HasPrivate(env.NearestClassBrand(), pn.Name)), normalC()
	}
	lv, c := it.evalExpression(env, n.Left)
	if c.IsAbrupt() {
		return Undefined, c
	}
	rv, c := it.evalExpression(env, n.Right)
	if c.IsAbrupt() {
		return Undefined, c
	}
	return it.EvalBinary(n.Operator, lv, rv)
}

func (it *Interp) evalLogicalExpression(env *Environment, n *ast.LogicalExpression) (Value, Completion) {
	lv, c := it.evalExpression(env, n.Left)
	if c.IsAbrupt() {
		return Undefined, c
	}
	switch n.Operator {
	case "&&":
		if !lv.ToBoolean() {
			return lv, normalC()
		}
	case "||":
		if lv.ToBoolean() {
			return lv, normalC()
		}
	case "??":
		if !lv.IsNullish() {
			return lv, normalC()
		}
	}
	return it.evalExpression(env, n.Right)
}

func (it *Interp) evalUnaryExpression(env *Environment, n *ast.UnaryExpression) (Value, Completion) {
	switch n.Operator {
	case "typeof":
		if id, ok := n.Argument.(*ast.Identifier); ok && !env.Resolve(id.Name) {
			return runtime.String("undefined"), normalC()
		}
		v, c := it.evalExpression(env, n.Argument)
		if c.IsAbrupt() {
			return Undefined, c
		}
		return runtime.String(v.TypeName()), normalC()
	case "delete":
		if me, ok := n.Argument.(*ast.MemberExpression); ok {
			objV, c := it.evalExpression(env, me.Object)
			if c.IsAbrupt() {
				return Undefined, c
			}
			if !objV.IsObject() {
				return runtime.True, normalC()
			}
			key, c := it.memberKey(env, me)
			if c.IsAbrupt() {
				return Undefined, c
			}
			return runtime.Bool(objV.Obj().DeleteOwnProperty(key)), normalC()
		}
		return runtime.True, normalC()
	case "void":
		_, c := it.evalExpression(env, n.Argument)
		if c.IsAbrupt() {
			return Undefined, c
		}
		return Undefined, normalC()
	}
	v, c := it.evalExpression(env, n.Argument)
	if c.IsAbrupt() {
		return Undefined, c
	}
	switch n.Operator {
	case "!":
		return runtime.Bool(!v.ToBoolean()), normalC()
	case "-":
		if v.IsBigInt() {
			return BigIntValue(new(big.Int).Neg(v.Big())), normalC()
		}
		return runtime.Number(-it.ToNumber(v)), normalC()
	case "+":
		return runtime.Number(it.ToNumber(v)), normalC()
	case "~":
		if v.IsBigInt() {
			return BigIntValue(new(big.Int).Not(v.Big())), normalC()
		}
		return runtime.Number(float64(^toInt32(it.ToNumber(v)))), normalC()
	}
	return Undefined, it.throwType("unsupported unary operator %q", n.Operator)
}

// evalUpdateExpression implements `++`/`--`, prefix or postfix (spec.md
// §4.2); BigInt operands stay BigInt, everything else goes through
// ToNumeric's Number path.
func (it *Interp) evalUpdateExpression(env *Environment, n *ast.UpdateExpression) (Value, Completion) {
	old, c := it.evalExpression(env, n.Argument)
	if c.IsAbrupt() {
		return Undefined, c
	}
	if old.IsBigInt() {
		delta := big.NewInt(1)
		nv := new(big.Int)
		if n.Operator == "++" {
			nv.Add(old.Big(), delta)
		} else {
			nv.Sub(old.Big(), delta)
		}
		newVal := BigIntValue(nv)
		if c := it.assignToExpr(env, n.Argument, newVal); c.IsAbrupt() {
			return Undefined, c
		}
		if n.Prefix {
			return newVal, normalC()
		}
		return old, normalC()
	}
	num := it.ToNumber(old)
	newNum := num + 1
	if n.Operator != "++" {
		newNum = num - 1
	}
	newVal := runtime.Number(newNum)
	if c := it.assignToExpr(env, n.Argument, newVal); c.IsAbrupt() {
		return Undefined, c
	}
	if n.Prefix {
		return newVal, normalC()
	}
	return runtime.Number(num), normalC()
}

// evalAssignmentExpression implements `=` and every compound/logical
// assignment operator (spec.md §4.2/§6). `=` supports destructuring
// targets via bindPattern with an assign-style (not declare-style) leaf.
func (it *Interp) evalAssignmentExpression(env *Environment, n *ast.AssignmentExpression) (Value, Completion) {
	if n.Operator == "=" {
		v, c := it.evalExpression(env, n.Value)
		if c.IsAbrupt() {
			return Undefined, c
		}
		pat, ok := n.Target.(ast.Pattern)
		if !ok {
			return Undefined, it.throwReference("Invalid left-hand side in assignment")
		}
		assignIdent := func(e *Environment, name string, vv Value) Completion {
			if err := e.Set(name, vv); err != nil {
				return it.asThrow(err)
			}
			return normalC()
		}
		if c := it.bindPattern(env, pat, v, assignIdent); c.IsAbrupt() {
			return Undefined, c
		}
		return v, normalC()
	}
	switch n.Operator {
	case "&&=", "||=", "??=":
		cur, c := it.evalExpression(env, n.Target)
		if c.IsAbrupt() {
			return Undefined, c
		}
		switch n.Operator {
		case "&&=":
			if !cur.ToBoolean() {
				return cur, normalC()
			}
		case "||=":
			if cur.ToBoolean() {
				return cur, normalC()
			}
		case "??=":
			if !cur.IsNullish() {
				return cur, normalC()
			}
		}
		v, c := it.evalExpression(env, n.Value)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if c := it.assignToExpr(env, n.Target, v); c.IsAbrupt() {
			return Undefined, c
		}
		return v, normalC()
	default:
		cur, c := it.evalExpression(env, n.Target)
		if c.IsAbrupt() {
			return Undefined, c
		}
		rv, c := it.evalExpression(env, n.Value)
		if c.IsAbrupt() {
			return Undefined, c
		}
		op := n.Operator[:len(n.Operator)-1]
		result, c := it.EvalBinary(op, cur, rv)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if c := it.assignToExpr(env, n.Target, result); c.IsAbrupt() {
			return Undefined, c
		}
		return result, normalC()
	}
}

func (it *Interp) evalNewExpression(env *Environment, n *ast.NewExpression) (Value, Completion) {
	calleeV, c := it.evalExpression(env, n.Callee)
	if c.IsAbrupt() {
		return Undefined, c
	}
	if !calleeV.IsObject() {
		return Undefined, it.throwType("%s is not a constructor", Inspect(calleeV))
	}
	args, c := it.evalArguments(env, n.Arguments)
	if c.IsAbrupt() {
		return Undefined, c
	}
	return it.ConstructObject(calleeV.Obj(), args, calleeV.Obj())
}

func (it *Interp) evalMetaProperty(env *Environment, n *ast.MetaProperty) (Value, Completion) {
	if n.Meta == "new" && n.Property == "target" {
		nt := env.NearestNewTarget()
		if nt == nil {
			return Undefined, normalC()
		}
		return runtime.Object_(nt), normalC()
	}
	if n.Meta == "import" && n.Property == "meta" {
		return runtime.Object_(it.currentImportMeta(env)), normalC()
	}
	return Undefined, it.throwSyntax("unsupported meta property %s.%s", n.Meta, n.Property)
}
