package cmd

import (
	"fmt"
	"os"

	"github.com/esgo-lang/esgo/internal/ast"
	esgoerrors "github.com/esgo-lang/esgo/internal/errors"
	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/esgo-lang/esgo/internal/parser"
)

// parseProgram lexes and parses src, reporting accumulated syntax
// diagnostics via errors.FormatErrors/FromStringErrors before returning.
func parseProgram(src string, asModule bool) (*ast.Program, error) {
	l := lexer.New(src)
	p := parser.New(l)
	var prog *ast.Program
	if asModule {
		prog = p.ParseModule()
	} else {
		prog = p.ParseProgram()
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, reportParseErrors(errs)
	}
	return prog, nil
}

// reportParseErrors renders accumulated parser diagnostics.
func reportParseErrors(msgs []string) error {
	diags := esgoerrors.FromStringErrors("parser", msgs)
	fmt.Fprintln(os.Stderr, esgoerrors.FormatErrors(diags))
	return fmt.Errorf("parsing failed with %d error(s)", len(msgs))
}

// readSource resolves the -e inline expression or the single positional
// file argument into source text.
func readSource(inline string, args []string) (src, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		content, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], rerr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}
