package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
)

// Run executes a parsed script against the realm's global environment
// and returns the completion value of its last ExpressionStatement, or
// the thrown value as an error (spec.md §6's "submit source for
// synchronous evaluation" contract). Caller is responsible for parsing
// (internal/lexer + internal/parser); Run never touches source text, so
// pkg/esgo and cmd/esgo/cmd can share one embedding surface.
func (it *Interp) Run(prog *ast.Program) (Value, error) {
	if prog.IsModule {
		return it.runModule(prog)
	}
	it.hoistDeclarations(it.Global, prog.Body)
	last := Undefined
	for _, s := range prog.Body {
		v, c := it.evalTopStatement(it.Global, s)
		if c.IsAbrupt() {
			return Undefined, it.completionErr(c)
		}
		if !v.IsUndefined() || isExpressionStatement(s) {
			last = v
		}
	}
	return last, nil
}

func isExpressionStatement(s ast.Statement) bool {
	_, ok := s.(*ast.ExpressionStatement)
	return ok
}

// evalTopStatement runs one top-level statement, surfacing its produced
// value (for ExpressionStatement) alongside the completion, without
// internal/interp's evalStatements' "only last abrupt" short-circuit.
func (it *Interp) evalTopStatement(env *Environment, s ast.Statement) (Value, Completion) {
	c := it.evalStatement(env, s)
	if c.IsAbrupt() {
		return Undefined, c
	}
	return c.Value, normalC()
}

// RunAsync runs prog and then drains the microtask queue, for the
// embedding API's "submit source for asynchronous evaluation" contract
// (spec.md §5/§6). It runs no timers: host timers are driven via
// DrainTimers, supplied by the embedder's clock.
func (it *Interp) RunAsync(prog *ast.Program) (Value, error) {
	v, err := it.Run(prog)
	it.scheduler.DrainMicrotasks()
	return v, err
}

// DrainTimers runs every macrotask due at or before now (host-clock
// ticks), draining microtasks after each, for the embedder's timer pump
// (spec.md §4.6/§5/§6).
func (it *Interp) DrainTimers(now int64) int {
	return it.scheduler.RunPending(now)
}

// SchedulerIdle reports whether both task queues are empty.
func (it *Interp) SchedulerIdle() bool { return it.scheduler.Idle() }

func (it *Interp) completionErr(c Completion) error {
	if c.Type == CompletionThrow {
		return &ThrownValue{V: c.Value}
	}
	return &ThrownValue{V: it.newError("Error", "uncaught abrupt completion")}
}

// runModule evaluates prog as the entry module of a fresh synthetic
// moduleRecord, allowing import/export statements and top-level await
// inside a script submitted directly as module source (spec.md §4.8).
func (it *Interp) runModule(prog *ast.Program) (Value, error) {
	const entryID = "<entry>"
	if rec, ok := it.modules[entryID]; ok {
		_ = rec
		delete(it.modules, entryID)
	}
	rec, c := it.instantiateEntryModule(entryID, prog)
	if c.IsAbrupt() {
		return Undefined, it.completionErr(c)
	}
	eb, ok := rec.exports["default"]
	if ok {
		v, err := eb.env.Get(eb.name)
		if err == nil {
			return v, nil
		}
	}
	return Undefined, nil
}

func (it *Interp) instantiateEntryModule(id string, prog *ast.Program) (*moduleRecord, Completion) {
	rec := it.newModuleRecordFor(id, prog)
	return rec, it.evalModuleProgram(rec, prog)
}
