package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// bindTarget is the declaration callback bindPattern uses to land a name
// somewhere: a fresh var/let/const binding, a parameter, or an ordinary
// assignment target's Set.
type bindTarget func(env *Environment, name string, v Value) Completion

func declareVarTarget(env *Environment, name string, v Value) Completion {
	env.NearestFunctionOrModule().DeclareVar(name, v)
	return normalC()
}

func declareLetTarget(env *Environment, name string, v Value) Completion {
	env.DeclareLet(name)
	env.Initialize(name, v)
	return normalC()
}

func declareConstTarget(env *Environment, name string, v Value) Completion {
	env.DeclareConst(name)
	env.Initialize(name, v)
	return normalC()
}

// bindPattern destructures v into pat, calling declare for each bound
// name (spec.md §4.2's pattern forms: Identifier, ArrayPattern with
// holes/rest, ObjectPattern with computed keys/rest, AssignmentPattern
// defaults applied only when the source value is undefined).
func (it *Interp) bindPattern(env *Environment, pat ast.Pattern, v Value, declare bindTarget) Completion {
	switch p := pat.(type) {
	case *ast.Identifier:
		return declare(env, p.Name, v)
	case *ast.AssignmentPattern:
		if v.IsUndefined() {
			dv, c := it.evalExpression(env, p.Default)
			if c.IsAbrupt() {
				return c
			}
			v = dv
		}
		return it.bindPattern(env, p.Target, v, declare)
	case *ast.ArrayPattern:
		iter, c := it.GetIterator(v)
		if c.IsAbrupt() {
			return c
		}
		done := false
		for i, el := range p.Elements {
			if rest, ok := el.(*ast.RestElement); ok {
				var tail []Value
				for !done {
					val, d, c := it.Next(iter)
					if c.IsAbrupt() {
						return c
					}
					done = d
					if !done {
						tail = append(tail, val)
					}
				}
				arr := runtime.Object_(it.NewArray(tail))
				if c := it.bindPattern(env, rest.Argument, arr, declare); c.IsAbrupt() {
					return c
				}
				continue
			}
			var val Value = Undefined
			if !done {
				var d bool
				var c Completion
				val, d, c = it.Next(iter)
				if c.IsAbrupt() {
					return c
				}
				done = d
			}
			if el == nil {
				continue
			}
			_ = i
			if c := it.bindPattern(env, el, val, declare); c.IsAbrupt() {
				return c
			}
		}
		return normalC()
	case *ast.ObjectPattern:
		if v.IsNullish() {
			return it.throwType("Cannot destructure '%s' as it is %s.", it.ToStringValue(v), v.TypeName())
		}
		used := map[PropertyKey]bool{}
		for _, prop := range p.Properties {
			if prop.Rest {
				rest := runtime.NewObject(it.protos.object)
				if v.IsObject() {
					for _, k := range v.Obj().OwnKeys() {
						if used[k] {
							continue
						}
						pv, c := it.GetProperty(v, v.Obj(), k)
						if c.IsAbrupt() {
							return c
						}
						rest.DefineOwnProperty(k, runtime.DataProperty(pv))
					}
				}
				if c := it.bindPattern(env, prop.Value, runtime.Object_(rest), declare); c.IsAbrupt() {
					return c
				}
				continue
			}
			key, c := it.propKeyOf(env, prop.Key, prop.Computed)
			if c.IsAbrupt() {
				return c
			}
			used[key] = true
			var pv Value
			if v.IsObject() {
				pv, c = it.GetProperty(v, v.Obj(), key)
				if c.IsAbrupt() {
					return c
				}
			} else {
				pv = Undefined
			}
			if c := it.bindPattern(env, prop.Value, pv, declare); c.IsAbrupt() {
				return c
			}
		}
		return normalC()
	case *ast.MemberExpression:
		return it.assignToExpr(env, p, v)
	}
	return it.throwType("unsupported binding pattern")
}

// propKeyOf evaluates an object-pattern/object-literal property key.
func (it *Interp) propKeyOf(env *Environment, key ast.Expression, computed bool) (PropertyKey, Completion) {
	if computed {
		kv, c := it.evalExpression(env, key)
		if c.IsAbrupt() {
			return PropertyKey{}, c
		}
		return it.ToPropertyKey(kv), normalC()
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return runtime.StringKey(k.Name), normalC()
	case *ast.StringLiteral:
		return runtime.StringKey(k.Value), normalC()
	case *ast.NumberLiteral:
		return runtime.StringKey(runtime.NumberToString(k.Value)), normalC()
	}
	kv, c := it.evalExpression(env, key)
	if c.IsAbrupt() {
		return PropertyKey{}, c
	}
	return it.ToPropertyKey(kv), normalC()
}
