package esgo

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/esgo-lang/esgo/internal/interp"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterFunction wraps an arbitrary Go func via reflection and exposes
// it as a global callable named `name`. fn's last return value may
// optionally be an error; when it is non-nil the call throws a JS Error
// carrying its message instead of returning.
func (e *Engine) RegisterFunction(name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("esgo: RegisterFunction(%q): not a function", name)
	}
	rt := rv.Type()

	returnsErr := rt.NumOut() > 0 && rt.Out(rt.NumOut()-1).Implements(errorType)

	native := e.it.NativeFunc(name, rt.NumIn(), func(_ interp.Value, args []interp.Value) (interp.Value, error) {
		in, err := adaptArgs(rt, args)
		if err != nil {
			return interp.Undefined, &interp.ThrownValue{V: e.it.NewErrorValue("TypeError", err.Error())}
		}
		out := rv.Call(in)
		if returnsErr {
			if errV := out[len(out)-1]; !errV.IsNil() {
				return interp.Undefined, &interp.ThrownValue{V: e.it.NewErrorValue("Error", errV.Interface().(error).Error())}
			}
			out = out[:len(out)-1]
		}
		switch len(out) {
		case 0:
			return interp.Undefined, nil
		case 1:
			return goToValue(e.it, out[0].Interface()), nil
		default:
			vals := make([]interp.Value, len(out))
			for i, o := range out {
				vals[i] = goToValue(e.it, o.Interface())
			}
			return runtime.Object_(e.it.NewArray(vals)), nil
		}
	})
	e.it.DefineGlobal(name, runtime.Object_(native))
	return nil
}

// adaptArgs converts the call's JS argument values into the Go types the
// target func declares, zero-extending missing trailing arguments with
// each parameter type's zero value (JS calls routinely pass fewer
// arguments than a function's arity).
func adaptArgs(rt reflect.Type, args []interp.Value) ([]reflect.Value, error) {
	n := rt.NumIn()
	if rt.IsVariadic() {
		n = rt.NumIn() - 1
	}
	in := make([]reflect.Value, 0, rt.NumIn())
	for i := 0; i < n; i++ {
		if i >= len(args) {
			in = append(in, reflect.Zero(rt.In(i)))
			continue
		}
		gv, err := valueToGoType(args[i], rt.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, gv)
	}
	if rt.IsVariadic() {
		elemType := rt.In(rt.NumIn() - 1).Elem()
		for i := n; i < len(args); i++ {
			gv, err := valueToGoType(args[i], elemType)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, gv)
		}
	}
	return in, nil
}

// valueToGoType converts one JS Value into target, supporting the scalar
// kinds, string, []byte/[]T slices (from a JS Array), map[string]T (from
// a plain object), and a passthrough for interp.Value/any parameters.
func valueToGoType(v interp.Value, target reflect.Type) (reflect.Value, error) {
	if target == reflect.TypeOf(interp.Value{}) {
		return reflect.ValueOf(v), nil
	}
	if target.Kind() == reflect.Interface {
		return reflect.ValueOf(toGo(v)), nil
	}
	switch target.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(v.ToBoolean()).Convert(target), nil
	case reflect.String:
		return reflect.ValueOf(valueToString(v)).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := reflect.New(target).Elem()
		n.SetInt(int64(toFloat(v)))
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := reflect.New(target).Elem()
		n.SetUint(uint64(toFloat(v)))
		return n, nil
	case reflect.Float32, reflect.Float64:
		n := reflect.New(target).Elem()
		n.SetFloat(toFloat(v))
		return n, nil
	case reflect.Slice:
		return sliceFromArray(v, target)
	case reflect.Map:
		return mapFromObject(v, target)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", target)
	}
}

func toFloat(v interp.Value) float64 {
	if v.IsBigInt() {
		f, _ := new(big.Float).SetInt(v.Big()).Float64()
		return f
	}
	if v.IsNumber() {
		return v.Float()
	}
	if v.IsBoolean() {
		if v.Bool() {
			return 1
		}
		return 0
	}
	return 0
}

func valueToString(v interp.Value) string {
	if v.IsString() {
		return v.Str()
	}
	return interp.Inspect(v)
}

func sliceFromArray(v interp.Value, target reflect.Type) (reflect.Value, error) {
	if !v.IsObject() || v.Obj().InternalKind != runtime.KindArray {
		return reflect.Value{}, fmt.Errorf("expected an array")
	}
	elems := v.Obj().Elements
	out := reflect.MakeSlice(target, len(elems), len(elems))
	for i, el := range elems {
		var ev interp.Value
		if el != nil {
			ev = *el
		}
		gv, err := valueToGoType(ev, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(gv)
	}
	return out, nil
}

func mapFromObject(v interp.Value, target reflect.Type) (reflect.Value, error) {
	if !v.IsObject() {
		return reflect.Value{}, fmt.Errorf("expected an object")
	}
	out := reflect.MakeMap(target)
	for _, k := range v.Obj().OwnKeys() {
		if k.IsSymbol {
			continue
		}
		pd, _ := v.Obj().GetOwnProperty(k)
		gv, err := valueToGoType(pd.Value, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k.Str).Convert(target.Key()), gv)
	}
	return out, nil
}

// goToValue converts a Go value returned from a registered host function
// back into a JS Value, the inverse of valueToGoType.
func goToValue(it *interp.Interp, v any) interp.Value {
	if v == nil {
		return interp.Undefined
	}
	if jv, ok := v.(interp.Value); ok {
		return jv
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return runtime.Bool(rv.Bool())
	case reflect.String:
		return runtime.String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return runtime.Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return runtime.Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return runtime.Number(rv.Float())
	case reflect.Slice, reflect.Array:
		elems := make([]interp.Value, rv.Len())
		for i := range elems {
			elems[i] = goToValue(it, rv.Index(i).Interface())
		}
		return runtime.Object_(it.NewArray(elems))
	case reflect.Map:
		obj := runtime.NewObject(nil)
		for _, k := range rv.MapKeys() {
			obj.Set(fmt.Sprint(k.Interface()), goToValue(it, rv.MapIndex(k).Interface()))
		}
		return runtime.Object_(obj)
	default:
		return runtime.String(fmt.Sprint(v))
	}
}

// toGo converts a JS Value to a plain Go value for Result.Value, using
// the simplest representation a host caller would expect (bool, float64,
// string, []any, map[string]any, nil).
func toGo(v interp.Value) any {
	switch {
	case v.IsUndefined(), v.IsNull():
		return nil
	case v.IsBoolean():
		return v.Bool()
	case v.IsNumber():
		return v.Float()
	case v.IsBigInt():
		return v.Big()
	case v.IsString():
		return v.Str()
	case v.IsSymbol():
		return v.Sym().String()
	case v.IsObject():
		o := v.Obj()
		if o.InternalKind == runtime.KindArray {
			elems := o.Elements
			out := make([]any, len(elems))
			for i, el := range elems {
				if el != nil {
					out[i] = toGo(*el)
				}
			}
			return out
		}
		out := map[string]any{}
		for _, k := range o.OwnKeys() {
			if k.IsSymbol {
				continue
			}
			pd, _ := o.GetOwnProperty(k)
			out[k.Str] = toGo(pd.Value)
		}
		return out
	default:
		return nil
	}
}
