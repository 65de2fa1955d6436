package interp

import "github.com/esgo-lang/esgo/internal/interp/runtime"

// CompletionType is one of the five completion kinds the evaluator
// threads through statement execution (spec.md §4.4).
type CompletionType int

const (
	CompletionNormal CompletionType = iota
	CompletionBreak
	CompletionContinue
	CompletionReturn
	CompletionThrow
)

// Completion is the result of evaluating a Statement: Normal(value?),
// Break(label?), Continue(label?), Return(value), or Throw(value)
// (spec.md §4.4). Await/Yield completions are modeled separately by the
// coroutine machinery in generator.go/async.go rather than threaded
// through every statement, since only yield/await expressions ever
// produce them and they always resolve to a Normal value or a Throw
// before control returns to ordinary statement execution.
type Completion struct {
	Type  CompletionType
	Value Value
	Label string

	// Tail is set on a CompletionReturn produced by evalReturnStatement
	// when its argument is a direct call to a plain user function in
	// tail position (spec.md §4.4.3): execFunctionBody loops on it
	// instead of letting the call recurse the Go stack.
	Tail *tailCall
}

// tailCall captures a deferred call so execFunctionBody's trampoline can
// run it as a loop iteration instead of a nested Go call.
type tailCall struct {
	fn   *Object
	this Value
	args []Value
}

func normalC() Completion                  { return Completion{Type: CompletionNormal} }
func normalV(v Value) Completion            { return Completion{Type: CompletionNormal, Value: v} }
func breakC(label string) Completion        { return Completion{Type: CompletionBreak, Label: label} }
func continueC(label string) Completion     { return Completion{Type: CompletionContinue, Label: label} }
func returnC(v Value) Completion            { return Completion{Type: CompletionReturn, Value: v} }
func throwC(v Value) Completion             { return Completion{Type: CompletionThrow, Value: v} }

// IsAbrupt reports whether c is anything other than Normal.
func (c Completion) IsAbrupt() bool { return c.Type != CompletionNormal }

// asThrow adapts a Go error from runtime (ReferenceError/TypeError, see
// runtime/environment.go) into a Throw completion carrying a proper
// Error object.
func (it *Interp) asThrow(err error) Completion {
	switch e := err.(type) {
	case *runtime.ReferenceError:
		return throwC(it.newError("ReferenceError", e.Message))
	case *runtime.TypeError:
		return throwC(it.newError("TypeError", e.Message))
	default:
		return throwC(it.newError("Error", err.Error()))
	}
}
