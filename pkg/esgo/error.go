package esgo

import (
	"fmt"

	"github.com/esgo-lang/esgo/internal/interp"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
)

// ErrorSeverity classifies a diagnostic, kept here even though this
// engine currently only ever produces SeverityError — future early
// warnings (e.g. an unreachable-code advisory) have a home to land in
// without changing the public shape.
type ErrorSeverity int

const (
	SeverityError ErrorSeverity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Error is a host-facing diagnostic: either a parse-time syntax error or
// an uncaught runtime exception surfaced through Engine.Eval/EvalAsync.
type Error struct {
	Message  string
	Line     int
	Column   int
	Length   int
	Severity ErrorSeverity
	Code     string

	// Thrown is the original thrown value's string representation when
	// the error originates from a JS `throw`, not a parser diagnostic.
	Thrown string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s at %d:%d: %s [%s]", e.Severity, e.Line, e.Column, e.Message, e.Code)
	}
	return fmt.Sprintf("%s at %d:%d: %s", e.Severity, e.Line, e.Column, e.Message)
}

// wrapThrown adapts an *interp.ThrownValue (a JS `throw`) into an *Error
// the embedding caller can inspect without importing internal/interp.
func wrapThrown(err error) error {
	tv, ok := err.(*interp.ThrownValue)
	if !ok {
		return &Error{Message: err.Error(), Severity: SeverityError}
	}
	v := tv.V
	msg := interp.Inspect(v)
	name := "Error"
	if v.IsObject() {
		for o := v.Obj(); o != nil; o = o.Prototype {
			if nv, ok := o.GetOwnProperty(runtime.StringKey("name")); ok && nv.Value.IsString() {
				name = nv.Value.Str()
				break
			}
		}
		if mv, ok := v.Obj().GetOwnProperty(runtime.StringKey("message")); ok && mv.Value.IsString() {
			msg = mv.Value.Str()
		}
	}
	return &Error{Message: msg, Severity: SeverityError, Code: name, Thrown: interp.Inspect(v)}
}
