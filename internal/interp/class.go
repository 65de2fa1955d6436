package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// evalClassLiteral evaluates a class declaration/expression (spec.md
// §4.2, §4.4.6): builds the constructor function, wires
// constructor.prototype and the superclass link, installs methods/
// accessors, runs static fields/static blocks in source order with
// `this` bound to the constructor, and stashes instance field
// initializers on the constructor for ConstructObject to run per
// instance.
func (it *Interp) evalClassLiteral(env *Environment, node *ast.ClassLiteral) (Value, Completion) {
	classEnv := runtime.NewEnclosed(env)
	brandName := "<anonymous>"
	if node.Name != nil {
		brandName = node.Name.Name
	}
	classEnv.ClassBrand = runtime.NewClassBrand(brandName)

	var superCtor *Object
	protoParent := it.protos.object
	if node.SuperClass != nil {
		sv, c := it.evalExpression(classEnv, node.SuperClass)
		if c.IsAbrupt() {
			return Undefined, c
		}
		if sv.IsNull() {
			protoParent = nil
		} else if sv.IsObject() && sv.Obj().Call != nil {
			superCtor = sv.Obj()
			pv, _ := superCtor.GetOwnProperty(runtime.StringKey("prototype"))
			if pv.Value.IsObject() {
				protoParent = pv.Value.Obj()
			}
		} else {
			return Undefined, it.throwType("Class extends value is not a constructor")
		}
	}

	proto := runtime.NewObject(protoParent)
	ctor := runtime.NewObject(it.protos.function)
	if superCtor != nil {
		ctor.Prototype = superCtor
	}
	ctor.InternalKind = runtime.KindFunction
	ctor.IsClassCtor = true
	ctor.IsStrict = true
	ctor.HomeObject = ctor
	if node.Name != nil {
		ctor.FunctionName = node.Name.Name
	}
	ctor.DefineOwnProperty(runtime.StringKey("prototype"), runtime.PropertyDescriptor{Value: runtime.Object_(proto)})
	proto.DefineOwnProperty(runtime.StringKey("constructor"), runtime.PropertyDescriptor{
		Value: runtime.Object_(ctor), Writable: true, Configurable: true,
	})
	ctor.Set("name", runtime.String(ctor.FunctionName))

	if node.Name != nil {
		classEnv.DeclareConst(node.Name.Name)
		classEnv.Initialize(node.Name.Name, runtime.Object_(ctor))
	}

	var ctorNode *ast.FunctionLiteral
	var instanceFields []*ast.ClassMember
	var staticMembers []*ast.ClassMember

	for i := range node.Members {
		m := &node.Members[i]
		switch m.Kind {
		case "constructor":
			ctorNode = m.Value
		case "staticBlock":
			staticMembers = append(staticMembers, m)
		case "field":
			if m.IsStatic {
				staticMembers = append(staticMembers, m)
			} else {
				instanceFields = append(instanceFields, m)
			}
		default: // method, get, set
			target := proto
			home := proto
			if m.IsStatic {
				target = ctor
				home = ctor
			}
			if err := it.installClassMember(classEnv, target, home, m); err != nil {
				return Undefined, throwC(err.V)
			}
		}
	}

	if ctorNode == nil {
		ctorNode = defaultCtorNode(superCtor != nil)
	}
	ctor.FuncNode = ctorNode
	ctor.ClosureEnv = classEnv
	ctor.Params = countDeclaredParams(ctorNode.Params)
	ctor.Set("length", runtime.Int(ctor.Params))
	ctor.FieldInits = instanceFields
	ctor.Call = func(this Value, args []Value) (Value, error) {
		return Undefined, &runtime.TypeError{Message: "Class constructor " + ctor.FunctionName + " cannot be invoked without 'new'"}
	}
	ctor.Construct = func(args []Value, newTarget *Object) (Value, error) {
		return it.constructUser(ctor, args, newTarget)
	}

	for _, m := range staticMembers {
		if m.Kind == "staticBlock" {
			frame := runtime.NewFunctionFrame(classEnv, runtime.Object_(ctor), ctor, nil)
			frame.HomeObject = ctor
			if c := it.execFunctionBody(frame, m.StaticBlock); c.IsAbrupt() {
				return Undefined, c
			}
			continue
		}
		key, c := it.classMemberKey(classEnv, m)
		if c.IsAbrupt() {
			return Undefined, c
		}
		var v Value = Undefined
		if m.FieldInit != nil {
			frame := runtime.NewFunctionFrame(classEnv, runtime.Object_(ctor), ctor, nil)
			frame.HomeObject = ctor
			fv, c := it.evalExpression(frame, m.FieldInit)
			if c.IsAbrupt() {
				return Undefined, c
			}
			v = fv
		}
		if m.IsPrivate {
			ctor.SetPrivate(classEnv.ClassBrand, key.Str, v)
		} else {
			ctor.DefineOwnProperty(key, runtime.DataProperty(v))
		}
	}

	return runtime.Object_(ctor), normalC()
}

func defaultCtorNode(derived bool) *ast.FunctionLiteral {
	body := &ast.BlockStatement{}
	if derived {
		body.Body = []ast.Statement{
			&ast.ExpressionStatement{Expression: &ast.CallExpression{Callee: &ast.SuperExpression{}, Arguments: []ast.Expression{&ast.SpreadElement{Argument: &ast.Identifier{Name: "arguments"}}}}},
		}
	}
	return &ast.FunctionLiteral{Body: body, IsStrict: true}
}

func (it *Interp) classMemberKey(env *Environment, m *ast.ClassMember) (PropertyKey, Completion) {
	if m.IsPrivate {
		return runtime.StringKey(m.Key.(*ast.PrivateName).Name), normalC()
	}
	return it.propKeyOf(env, m.Key, m.Computed)
}

// installClassMember installs one method/getter/setter onto target
// (instance prototype or the constructor itself for static members).
func (it *Interp) installClassMember(env *Environment, target, home *Object, m *ast.ClassMember) *ThrownValue {
	fn := it.MakeFunction(m.Value, env, home)
	if m.IsPrivate {
		target.SetPrivate(env.NearestClassBrand(), m.Key.(*ast.PrivateName).Name, runtime.Object_(fn))
		return nil
	}
	key, c := it.propKeyOf(env, m.Key, m.Computed)
	if c.IsAbrupt() {
		return &ThrownValue{V: c.Value}
	}
	switch m.Kind {
	case "get":
		pd, _ := target.GetOwnProperty(key)
		pd.IsAccessor = true
		pd.Get = fn
		pd.Configurable = true
		target.DefineOwnProperty(key, pd)
	case "set":
		pd, _ := target.GetOwnProperty(key)
		pd.IsAccessor = true
		pd.Set = fn
		pd.Configurable = true
		target.DefineOwnProperty(key, pd)
	default:
		target.DefineOwnProperty(key, runtime.PropertyDescriptor{Value: runtime.Object_(fn), Writable: true, Configurable: true})
	}
	return nil
}

// initInstanceFields runs a constructor's (and, transitively, its
// superclass chain's) instance field initializers against self, in
// superclass-first order (spec.md §4.4.6: base class fields initialize
// before the derived class body runs).
func (it *Interp) initInstanceFields(self *Object, ctor *Object) error {
	if ctor.Prototype != nil && ctor.Prototype.IsClassCtor {
		if err := it.initInstanceFields(self, ctor.Prototype); err != nil {
			return err
		}
	}
	fields, _ := ctor.FieldInits.([]*ast.ClassMember)
	classEnv, _ := ctor.ClosureEnv.(*Environment)
	for _, m := range fields {
		frame := runtime.NewFunctionFrame(classEnv, runtime.Object_(self), nil, nil)
		pv, _ := ctor.GetOwnProperty(runtime.StringKey("prototype"))
		if pv.Value.IsObject() {
			frame.HomeObject = pv.Value.Obj()
		}
		var v Value = Undefined
		if m.FieldInit != nil {
			fv, c := it.evalExpression(frame, m.FieldInit)
			if c.IsAbrupt() {
				return &ThrownValue{V: c.Value}
			}
			v = fv
		}
		key, c := it.classMemberKey(classEnv, m)
		if c.IsAbrupt() {
			return &ThrownValue{V: c.Value}
		}
		if m.IsPrivate {
			self.SetPrivate(classEnv.NearestClassBrand(), key.Str, v)
		} else {
			self.DefineOwnProperty(key, runtime.DataProperty(v))
		}
	}
	return nil
}

// SuperCall implements `super(...)` inside a derived constructor body
// (spec.md §4.4.6): binds the parent constructor's parameters and runs
// its body against the already-allocated `this`, or hands off to
// superCallNative when the parent is a built-in. Instance field
// initializers are not run here; constructUser runs them before the
// constructor body starts.
func (it *Interp) SuperCall(frame *Environment, args []Value) (Value, Completion) {
	fn := frame.NearestThis()
	if fn == nil || fn.Function == nil || fn.Function.Prototype == nil {
		return Undefined, it.throwSyntax("'super' keyword is only valid inside a derived class constructor")
	}
	self := frame.This()
	parent := fn.Function.Prototype
	node, closureEnv := closureOf(parent)
	if node == nil {
		return it.superCallNative(self, parent, args, fn.NewTarget)
	}
	pframe := runtime.NewFunctionFrame(closureEnv, self, parent, fn.NewTarget)
	if c := it.bindParams(pframe, node.Params, args); c.IsAbrupt() {
		return Undefined, c
	}
	pframe.Arguments = it.makeArgumentsObject(args, parent)
	pframe.DeclareVar("arguments", runtime.Object_(pframe.Arguments))
	c := it.execFunctionBody(pframe, node.Body)
	if c.Type == CompletionThrow {
		return Undefined, c
	}
	return self, normalC()
}

// superCallNative handles `super(...)` when the parent constructor is a
// built-in (e.g. `class AppError extends Error`): the parent is
// constructed normally and its own properties and exotic slots are
// grafted onto the already-allocated derived instance.
func (it *Interp) superCallNative(self Value, parent *Object, args []Value, newTarget *Object) (Value, Completion) {
	var pv Value
	var err error
	switch {
	case parent.Construct != nil:
		pv, err = parent.Construct(args, newTarget)
	case parent.Call != nil:
		pv, err = parent.Call(self, args)
	default:
		return Undefined, it.throwType("super constructor is not a constructor")
	}
	if err != nil {
		return Undefined, it.asThrow(err)
	}
	if pv.IsObject() && self.IsObject() && pv.Obj() != self.Obj() {
		po, so := pv.Obj(), self.Obj()
		for _, k := range po.OwnKeys() {
			if pd, ok := po.GetOwnProperty(k); ok {
				so.DefineOwnProperty(k, pd)
			}
		}
		if po.InternalKind == runtime.KindError {
			so.InternalKind = po.InternalKind
			so.ErrorName = po.ErrorName
			so.ErrorMessage = po.ErrorMessage
		}
	}
	return self, normalC()
}
