package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
)

// assignToExpr implements the "already an lvalue expression" side of
// assignment (`obj.x = v`, `arr[i] = v`, plain identifier `x = v`), shared
// by the `=` operator and by bindPattern's MemberExpression leaves
// (`[a.b] = arr`).
func (it *Interp) assignToExpr(env *Environment, expr ast.Expression, v Value) Completion {
	switch e := expr.(type) {
	case *ast.Identifier:
		if err := env.Set(e.Name, v); err != nil {
			return it.asThrow(err)
		}
		return normalC()
	case *ast.MemberExpression:
		obj, c := it.evalExpression(env, e.Object)
		if c.IsAbrupt() {
			return c
		}
		if pn, ok := e.Property.(*ast.PrivateName); ok {
			if !obj.IsObject() {
				return it.throwType("Cannot write private member #%s to non-object", pn.Name)
			}
			brand := env.NearestClassBrand()
			if !obj.Obj().HasPrivate(brand, pn.Name) {
				return it.throwType("Cannot write private member #%s to an object whose class did not declare it", pn.Name)
			}
			obj.Obj().SetPrivate(brand, pn.Name, v)
			return normalC()
		}
		key, c := it.memberKey(env, e)
		if c.IsAbrupt() {
			return c
		}
		if !obj.IsObject() {
			if obj.IsNullish() {
				return it.throwType("Cannot set properties of %s (setting '%s')", obj.TypeName(), key.Str)
			}
			return normalC()
		}
		return it.SetProperty(obj, obj.Obj(), key, v)
	}
	return it.throwReference("Invalid left-hand side in assignment")
}

// memberKey evaluates a MemberExpression's property key (dot access uses
// the identifier's literal name; computed access evaluates the bracket
// expression).
func (it *Interp) memberKey(env *Environment, e *ast.MemberExpression) (PropertyKey, Completion) {
	if !e.Computed {
		id := e.Property.(*ast.Identifier)
		return it.propKeyOf(env, id, false)
	}
	return it.propKeyOf(env, e.Property, true)
}
