// Package errors formats source diagnostics for the lexer, parser,
// evaluator, and module loader: position + source + message, rendered
// as a source line with a caret.
package errors

import (
	"fmt"
	"strings"
)

// Severity distinguishes a hard syntax/runtime error from an advisory
// warning; this repository currently only produces errors, but the
// field is kept for future use.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one positioned message attributed to one of four
// sources: the lexer, parser, evaluator, or module loader.
type Diagnostic struct {
	Source   string // "lexer", "parser", "evaluator", "module"
	Severity Severity
	Message  string
	File     string
	Line     int
	Column   int
	SrcLine  string // the offending source line, for caret rendering
}

func (d *Diagnostic) Error() string { return d.Format() }

// Format renders "file:line:col: message", the source line, and a caret
// pointing at Column.
func (d *Diagnostic) Format() string {
	var sb strings.Builder
	file := d.File
	if file == "" {
		file = "<input>"
	}
	fmt.Fprintf(&sb, "%s:%d:%d: %s", file, d.Line, d.Column, d.Message)
	if d.SrcLine != "" {
		sb.WriteString("\n  ")
		sb.WriteString(d.SrcLine)
		sb.WriteString("\n  ")
		for i := 1; i < d.Column; i++ {
			sb.WriteByte(' ')
		}
		sb.WriteString("^")
	}
	return sb.String()
}

// FormatErrors renders a batch of diagnostics, one per line block,
// separated by blank lines.
func FormatErrors(diags []*Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Format()
	}
	return strings.Join(parts, "\n\n")
}

// FromStringErrors wraps plain message strings (as produced by
// internal/parser.Errors(), which does not carry full Diagnostic
// context) into Diagnostics attributed to source, for uniform
// formatting alongside lexer/evaluator diagnostics.
func FromStringErrors(source string, messages []string) []*Diagnostic {
	out := make([]*Diagnostic, len(messages))
	for i, m := range messages {
		out[i] = &Diagnostic{Source: source, Message: m}
	}
	return out
}

// SourceLine extracts the 1-indexed line from src for caret rendering.
func SourceLine(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
