package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// intrinsicProtos holds the realm's built-in prototype objects, created
// once per Interp and wired into every object of the matching kind
// (spec.md §3's "initial [[Prototype]]" invariant 5).
type intrinsicProtos struct {
	object    *Object
	function  *Object
	array     *Object
	str       *Object
	number    *Object
	boolean   *Object
	bigint    *Object
	symbol    *Object
	regexp    *Object
	date      *Object
	mapProto  *Object
	setProto  *Object
	weakMap   *Object
	weakSet   *Object
	promise   *Object
	generator *Object
	asyncGen  *Object
	iterator  *Object

	errorProto      *Object
	typeError       *Object
	rangeError      *Object
	referenceError  *Object
	syntaxError     *Object
	evalError       *Object
	uriError        *Object
	aggregateError  *Object
}

func newIntrinsicProtos() *intrinsicProtos {
	p := &intrinsicProtos{}
	p.object = runtime.NewObject(nil)
	p.function = runtime.NewObject(p.object)
	p.array = runtime.NewObject(p.object)
	p.str = runtime.NewObject(p.object)
	p.number = runtime.NewObject(p.object)
	p.boolean = runtime.NewObject(p.object)
	p.bigint = runtime.NewObject(p.object)
	p.symbol = runtime.NewObject(p.object)
	p.regexp = runtime.NewObject(p.object)
	p.date = runtime.NewObject(p.object)
	p.mapProto = runtime.NewObject(p.object)
	p.setProto = runtime.NewObject(p.object)
	p.weakMap = runtime.NewObject(p.object)
	p.weakSet = runtime.NewObject(p.object)
	p.promise = runtime.NewObject(p.object)
	p.iterator = runtime.NewObject(p.object)
	p.generator = runtime.NewObject(p.iterator)
	p.asyncGen = runtime.NewObject(p.iterator)

	p.errorProto = runtime.NewObject(p.object)
	p.typeError = runtime.NewObject(p.errorProto)
	p.rangeError = runtime.NewObject(p.errorProto)
	p.referenceError = runtime.NewObject(p.errorProto)
	p.syntaxError = runtime.NewObject(p.errorProto)
	p.evalError = runtime.NewObject(p.errorProto)
	p.uriError = runtime.NewObject(p.errorProto)
	p.aggregateError = runtime.NewObject(p.errorProto)
	return p
}

// errorProtoFor maps an Error constructor name to its prototype (spec.md
// §4.5's exception taxonomy).
func (it *Interp) errorProtoFor(name string) *Object {
	switch name {
	case "TypeError":
		return it.protos.typeError
	case "RangeError":
		return it.protos.rangeError
	case "ReferenceError":
		return it.protos.referenceError
	case "SyntaxError":
		return it.protos.syntaxError
	case "EvalError":
		return it.protos.evalError
	case "URIError":
		return it.protos.uriError
	case "AggregateError":
		return it.protos.aggregateError
	default:
		return it.protos.errorProto
	}
}

// newError constructs an Error-kind object (spec.md §3, §4.5).
func (it *Interp) newError(name, message string) Value {
	o := runtime.NewObject(it.errorProtoFor(name))
	o.InternalKind = runtime.KindError
	o.ErrorName = name
	o.ErrorMessage = message
	o.Set("message", runtime.String(message))
	o.Set("name", runtime.String(name))
	o.Set("stack", runtime.String(name+": "+message))
	return runtime.Object_(o)
}

func (it *Interp) newErrorWithCause(name, message string, cause Value) Value {
	v := it.newError(name, message)
	v.Obj().Set("cause", cause)
	return v
}

func (it *Interp) throwType(format string, args ...any) Completion {
	return throwC(it.newError("TypeError", sprintf(format, args...)))
}

func (it *Interp) throwRange(format string, args ...any) Completion {
	return throwC(it.newError("RangeError", sprintf(format, args...)))
}

func (it *Interp) throwReference(format string, args ...any) Completion {
	return throwC(it.newError("ReferenceError", sprintf(format, args...)))
}

func (it *Interp) throwSyntax(format string, args ...any) Completion {
	return throwC(it.newError("SyntaxError", sprintf(format, args...)))
}
