package runtime

import (
	"math/big"
	"sort"
	"strconv"
)

// ObjectKind tags an Object record's exotic behavior (spec.md §3).
type ObjectKind uint8

const (
	KindOrdinary ObjectKind = iota
	KindFunction
	KindBoundFunction
	KindArray
	KindTypedArray
	KindArrayBuffer
	KindStringWrapper
	KindNumberWrapper
	KindBooleanWrapper
	KindBigIntWrapper
	KindRegex
	KindError
	KindDate
	KindMap
	KindSet
	KindWeakMap
	KindWeakSet
	KindPromise
	KindGenerator
	KindAsyncGenerator
	KindIterator
	KindArguments
)

// PropertyKey is either a string (including integer-string form) or a
// symbol (spec.md §3 invariant 1).
type PropertyKey struct {
	Str      string
	Sym      *Symbol
	IsSymbol bool
}

func StringKey(s string) PropertyKey  { return PropertyKey{Str: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{Sym: s, IsSymbol: true} }

// arrayIndex reports whether k is a canonical non-negative integer
// string, and its value, for own-key ordering purposes.
func (k PropertyKey) arrayIndex() (uint32, bool) {
	if k.IsSymbol || k.Str == "" {
		return 0, false
	}
	if k.Str == "0" {
		return 0, true
	}
	if k.Str[0] < '1' || k.Str[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(k.Str, 10, 32)
	if err != nil || strconv.FormatUint(n, 10) != k.Str {
		return 0, false
	}
	return uint32(n), true
}

// PropertyDescriptor is a data or accessor descriptor (spec.md §3).
type PropertyDescriptor struct {
	Value        Value
	Get          *Object
	Set          *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// DataProperty builds the default descriptor produced by plain property
// assignment: {writable:true, enumerable:true, configurable:true}.
func DataProperty(v Value) PropertyDescriptor {
	return PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// NativeFunc is the signature for host/native function bodies, used by
// both true built-ins and FFI-registered host functions (spec.md §4.2
// out-of-core "built-in dispatcher").
type NativeFunc func(this Value, args []Value) (Value, error)

// Object is the single record backing every `object`-kind Value
// (spec.md §3). Kind-specific slots are grouped below; only the ones
// relevant to InternalKind are populated.
type Object struct {
	Prototype  *Object
	Extensible bool
	Sealed     bool
	Frozen     bool

	InternalKind ObjectKind

	props    map[PropertyKey]*PropertyDescriptor
	order    []PropertyKey
	privates map[privateKey]Value // keyed by per-class brand + name, see class.go

	// Function slots
	Call          NativeFunc // non-nil for both native and user-defined functions
	FunctionName  string
	Params        int // declared parameter count ("length")
	HomeObject    *Object
	IsGenerator   bool
	IsAsync       bool
	IsStrict      bool
	IsArrow       bool
	IsClassCtor   bool
	BoundTarget   *Object
	BoundThis     Value
	BoundArgs     []Value
	Construct     func(args []Value, newTarget *Object) (Value, error)

	// FuncNode/ClosureEnv hold the *ast.FunctionLiteral and *Environment
	// for a user-defined function; opaque here so runtime stays
	// AST-agnostic, type-asserted back in internal/interp/functions.go.
	FuncNode   any
	ClosureEnv any
	FieldInits any // []*ast.ClassMember for instance field initializers, class.go

	// Array slots
	Elements []*Value // nil entries are holes

	// TypedArray/ArrayBuffer slots. A TypedArray stores its elements as
	// boxed Numbers in Elements (the BigInt64/BigUint64 kinds included),
	// clamped/truncated on write per TypedArrayKind; Buffer points back
	// at the ArrayBuffer object the view was constructed over, whose
	// BufferData holds raw bytes that Elements neither reads nor writes.
	TypedArrayKind string
	Buffer         *Object
	ByteOffset     int
	BufferData     []byte

	// Error slots
	ErrorName    string
	ErrorMessage string

	// Primitive wrapper slot (String/Number/Boolean/BigInt objects)
	PrimitiveValue Value

	// Date slot: milliseconds since epoch, NaN if invalid
	DateValue float64

	// Regex slot
	RegexSource string
	RegexFlags  string
	RegexLast   int

	// BigInt wrapper payload, kept distinct from PrimitiveValue for clarity
	BigIntValue *big.Int

	// Map/Set slots: insertion-ordered
	MapData    *orderedMap
	SetData    *orderedMap

	// Promise slots
	PromiseState     string // "pending", "fulfilled", "rejected"
	PromiseValue     Value
	PromiseReactions []PromiseReaction

	// Generator/coroutine slot, opaque to runtime (see interp/generator.go)
	Coroutine any

	// host extension point, used by pkg/esgo's RegisterFunction adapter
	HostData any
}

// PromiseReaction is one registered then/catch continuation.
type PromiseReaction struct {
	OnFulfilled *Object
	OnRejected  *Object
	ResultCap   *Object // the derived promise
}

// NewObject creates a plain ordinary object with the given prototype.
func NewObject(proto *Object) *Object {
	return &Object{Prototype: proto, Extensible: true, props: map[PropertyKey]*PropertyDescriptor{}}
}

func (o *Object) ensureProps() {
	if o.props == nil {
		o.props = map[PropertyKey]*PropertyDescriptor{}
	}
}

// GetOwnProperty returns the own descriptor for k, if any.
func (o *Object) GetOwnProperty(k PropertyKey) (PropertyDescriptor, bool) {
	if o.props == nil {
		return PropertyDescriptor{}, false
	}
	pd, ok := o.props[k]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return *pd, true
}

// DefineOwnProperty installs or overwrites k's own descriptor, tracking
// insertion order for the first definition.
func (o *Object) DefineOwnProperty(k PropertyKey, pd PropertyDescriptor) {
	o.ensureProps()
	if _, exists := o.props[k]; !exists {
		o.order = append(o.order, k)
	}
	cp := pd
	o.props[k] = &cp
}

// DeleteOwnProperty removes k, reporting whether it existed.
func (o *Object) DeleteOwnProperty(k PropertyKey) bool {
	if o.props == nil {
		return false
	}
	if _, ok := o.props[k]; !ok {
		return false
	}
	delete(o.props, k)
	for i, ok2 := range o.order {
		if ok2 == k {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// Set is the common-case property write used by SetProperty in
// interp/object.go for plain data properties (bypassing the
// accessor/prototype-walk logic that belongs to the evaluator).
func (o *Object) Set(key string, v Value) {
	o.DefineOwnProperty(StringKey(key), DataProperty(v))
}

// ClassBrand identifies one class body's private-name namespace
// (spec.md §3 invariant 6). Two classes that both declare `#x` get
// distinct brands, so an instance of one never satisfies a private
// access lexically scoped to the other; equality is by pointer
// identity, never by name.
type ClassBrand struct{ name string }

// NewClassBrand allocates a fresh brand for one class body. name is
// only for debugging/inspection, never compared.
func NewClassBrand(name string) *ClassBrand { return &ClassBrand{name: name} }

func (b *ClassBrand) String() string { return b.name }

type privateKey struct {
	brand *ClassBrand
	name  string
}

// GetPrivate/SetPrivate/HasPrivate back `#name` field and method access
// (spec.md §3 invariant 6, §4.4.6), keyed by (brand, name) so private
// storage installed under one class's brand is invisible to another
// class's members declaring a field of the same name.
func (o *Object) GetPrivate(brand *ClassBrand, name string) (Value, bool) {
	v, ok := o.privates[privateKey{brand, name}]
	return v, ok
}

func (o *Object) SetPrivate(brand *ClassBrand, name string, v Value) {
	if o.privates == nil {
		o.privates = map[privateKey]Value{}
	}
	o.privates[privateKey{brand, name}] = v
}

func (o *Object) HasPrivate(brand *ClassBrand, name string) bool {
	_, ok := o.privates[privateKey{brand, name}]
	return ok
}

func (o *Object) SetHidden(key string, v Value) {
	o.DefineOwnProperty(StringKey(key), PropertyDescriptor{Value: v, Writable: true, Configurable: true})
}

// OwnKeys returns keys in ECMAScript own-key order: integer indices
// ascending, then strings in insertion order, then symbols in insertion
// order (spec.md §3).
func (o *Object) OwnKeys() []PropertyKey {
	var indices []uint32
	var strs []PropertyKey
	var syms []PropertyKey
	for _, k := range o.order {
		if idx, ok := k.arrayIndex(); ok {
			indices = append(indices, idx)
			continue
		}
		if k.IsSymbol {
			syms = append(syms, k)
		} else {
			strs = append(strs, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	out := make([]PropertyKey, 0, len(indices)+len(strs)+len(syms))
	for _, idx := range indices {
		out = append(out, StringKey(strconv.FormatUint(uint64(idx), 10)))
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
}

// orderedMap backs Map/Set built-ins with insertion-ordered SameValueZero
// keys (spec.md out-of-core built-ins, still needed for Map/Set/WeakMap
// semantics the evaluator's iteration protocol touches).
type orderedMap struct {
	keys   []Value
	vals   []Value
	index  map[any]int
}

func newOrderedMap() *orderedMap {
	return &orderedMap{index: map[any]int{}}
}

func mapKeyFor(v Value) any {
	switch v.kind {
	case KindObject:
		return v.objval
	case KindSymbol:
		return v.symval
	case KindString:
		return "s:" + v.sval
	case KindNumber:
		if v.nval == 0 {
			return "n:0"
		}
		if v.nval != v.nval {
			return "n:NaN"
		}
		return v.nval
	case KindBigInt:
		return "b:" + v.bigval.String()
	case KindBoolean:
		return v.bval
	default:
		return v.kind
	}
}

func (m *orderedMap) Get(k Value) (Value, bool) {
	i, ok := m.index[mapKeyFor(k)]
	if !ok {
		return Undefined, false
	}
	return m.vals[i], true
}

func (m *orderedMap) Set(k, v Value) {
	mk := mapKeyFor(k)
	if i, ok := m.index[mk]; ok {
		m.vals[i] = v
		return
	}
	m.index[mk] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

func (m *orderedMap) Delete(k Value) bool {
	mk := mapKeyFor(k)
	i, ok := m.index[mk]
	if !ok {
		return false
	}
	delete(m.index, mk)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[mapKeyFor(m.keys[j])] = j
	}
	return true
}

func (m *orderedMap) Size() int { return len(m.keys) }

func (m *orderedMap) Entries() ([]Value, []Value) { return m.keys, m.vals }

func NewMapData() *orderedMap { return newOrderedMap() }
func NewSetData() *orderedMap { return newOrderedMap() }
