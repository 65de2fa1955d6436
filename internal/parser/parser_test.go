package parser

import (
	"testing"

	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors for %q: %v", input, p.Errors())
	}
	return prog
}

func TestVarDeclStatements(t *testing.T) {
	tests := []struct {
		input string
		kind  string
		name  string
	}{
		{"var x = 5;", "var", "x"},
		{"let y = 10;", "let", "y"},
		{"const z = 1;", "const", "z"},
	}

	for _, tt := range tests {
		prog := parseProgram(t, tt.input)
		if len(prog.Body) != 1 {
			t.Fatalf("input %q: expected 1 statement, got %d", tt.input, len(prog.Body))
		}
		decl, ok := prog.Body[0].(*ast.VarDeclStatement)
		if !ok {
			t.Fatalf("input %q: statement is not VarDeclStatement, got %T", tt.input, prog.Body[0])
		}
		if decl.Kind != tt.kind {
			t.Errorf("input %q: kind = %q, want %q", tt.input, decl.Kind, tt.kind)
		}
		ident, ok := decl.Decls[0].Target.(*ast.Identifier)
		if !ok {
			t.Fatalf("input %q: target is not *ast.Identifier, got %T", tt.input, decl.Decls[0].Target)
		}
		if ident.Name != tt.name {
			t.Errorf("input %q: name = %q, want %q", tt.input, ident.Name, tt.name)
		}
	}
}

func TestBinaryExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"a + b - c;", "((a + b) - c)"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2))"},
		{"a || b && c;", "(a || (b && c))"},
		{"a ?? b;", "(a ?? b)"},
		{"1 < 2 === true;", "((1 < 2) === true)"},
	}

	for _, tt := range tests {
		prog := parseProgram(t, tt.input)
		stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
		if !ok {
			t.Fatalf("input %q: statement is not ExpressionStatement, got %T", tt.input, prog.Body[0])
		}
		if got := stmt.Expression.String(); got != tt.expected {
			t.Errorf("input %q: got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIfStatement(t *testing.T) {
	prog := parseProgram(t, "if (x) { y = 1; } else { y = 2; }")
	ifStmt, ok := prog.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement is not IfStatement, got %T", prog.Body[0])
	}
	if _, ok := ifStmt.Test.(*ast.Identifier); !ok {
		t.Fatalf("test is not *ast.Identifier, got %T", ifStmt.Test)
	}
	if ifStmt.Alternate == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestFunctionDeclaration(t *testing.T) {
	prog := parseProgram(t, "function add(a, b) { return a + b; }")
	fn, ok := prog.Body[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("statement is not FunctionLiteral, got %T", prog.Body[0])
	}
	if fn.Name == nil || fn.Name.Name != "add" {
		t.Fatalf("function name wrong: %+v", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Body.Body) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Body))
	}
	ret, ok := fn.Body.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("body statement is not ReturnStatement, got %T", fn.Body.Body[0])
	}
	if ret.Argument == nil {
		t.Fatalf("expected a return argument")
	}
}

func TestArrowFunctionConciseBody(t *testing.T) {
	prog := parseProgram(t, "const f = x => x + 1;")
	decl := prog.Body[0].(*ast.VarDeclStatement)
	fn, ok := decl.Decls[0].Init.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("init is not FunctionLiteral, got %T", decl.Decls[0].Init)
	}
	if !fn.IsArrow {
		t.Fatalf("expected IsArrow to be true")
	}
	if fn.ArrowBody == nil {
		t.Fatalf("expected a concise arrow body")
	}
}

func TestClassDeclaration(t *testing.T) {
	prog := parseProgram(t, `class Point {
		#x;
		constructor(x, y) { this.x = x; this.y = y; }
		static origin() { return new Point(0, 0); }
		get x() { return this.#x; }
	}`)
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*ast.ClassLiteral); !ok {
		t.Fatalf("statement is not ClassLiteral, got %T", prog.Body[0])
	}
}

func TestTemplateLiteralExpression(t *testing.T) {
	prog := parseProgram(t, "`hello ${name}!`;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	tmpl, ok := stmt.Expression.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expression is not TemplateLiteral, got %T", stmt.Expression)
	}
	if len(tmpl.Expressions) != 1 {
		t.Fatalf("expected 1 substitution, got %d", len(tmpl.Expressions))
	}
	if len(tmpl.Quasis) != 2 || tmpl.Quasis[0] != "hello " || tmpl.Quasis[1] != "!" {
		t.Fatalf("quasis wrong: %#v", tmpl.Quasis)
	}
}

func TestArrayAndObjectDestructuring(t *testing.T) {
	prog := parseProgram(t, "const [a, , b] = arr; const {c, d: e} = obj;")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}

	arrDecl := prog.Body[0].(*ast.VarDeclStatement)
	arrPattern, ok := arrDecl.Decls[0].Target.(*ast.ArrayPattern)
	if !ok {
		t.Fatalf("target is not ArrayPattern, got %T", arrDecl.Decls[0].Target)
	}
	if len(arrPattern.Elements) != 3 {
		t.Fatalf("expected 3 elements (with one hole), got %d", len(arrPattern.Elements))
	}
	if arrPattern.Elements[1] != nil {
		t.Fatalf("expected a hole at index 1")
	}

	objDecl := prog.Body[1].(*ast.VarDeclStatement)
	objPattern, ok := objDecl.Decls[0].Target.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("target is not ObjectPattern, got %T", objDecl.Decls[0].Target)
	}
	if len(objPattern.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(objPattern.Properties))
	}
}

func TestOptionalChainingAndNullish(t *testing.T) {
	prog := parseProgram(t, "a?.b?.[c]?.() ?? d;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	logical, ok := stmt.Expression.(*ast.LogicalExpression)
	if !ok {
		t.Fatalf("expression is not LogicalExpression, got %T", stmt.Expression)
	}
	if logical.Operator != "??" {
		t.Fatalf("operator wrong: %q", logical.Operator)
	}
	if _, ok := logical.Left.(*ast.ChainExpression); !ok {
		t.Fatalf("left operand is not wrapped in ChainExpression, got %T", logical.Left)
	}
}

func TestTryCatchFinally(t *testing.T) {
	prog := parseProgram(t, `try { risky(); } catch (e) { handle(e); } finally { cleanup(); }`)
	tryStmt, ok := prog.Body[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is not TryStatement, got %T", prog.Body[0])
	}
	if tryStmt.Handler == nil {
		t.Fatalf("expected a catch handler")
	}
	if tryStmt.Handler.Param == nil {
		t.Fatalf("expected a catch binding")
	}
	if tryStmt.Finally == nil {
		t.Fatalf("expected a finally block")
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	prog := parseProgram(t, "let x = 1\nlet y = 2\n")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements via ASI, got %d", len(prog.Body))
	}
}

func TestForOfStatement(t *testing.T) {
	prog := parseProgram(t, "for (const item of items) { use(item); }")
	forOf, ok := prog.Body[0].(*ast.ForOfStatement)
	if !ok {
		t.Fatalf("statement is not ForOfStatement, got %T", prog.Body[0])
	}
	if forOf.IsAwait {
		t.Fatalf("did not expect for-await")
	}
}

func TestGeneratorFunction(t *testing.T) {
	prog := parseProgram(t, "function* gen() { yield 1; yield* other(); }")
	fn, ok := prog.Body[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("statement is not FunctionLiteral, got %T", prog.Body[0])
	}
	if !fn.IsGenerator {
		t.Fatalf("expected IsGenerator to be true")
	}
}

func TestAsyncFunctionWithAwait(t *testing.T) {
	prog := parseProgram(t, "async function f() { return await g(); }")
	fn, ok := prog.Body[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("statement is not FunctionLiteral, got %T", prog.Body[0])
	}
	if !fn.IsAsync {
		t.Fatalf("expected IsAsync to be true")
	}
	ret := fn.Body.Body[0].(*ast.ReturnStatement)
	if _, ok := ret.Argument.(*ast.AwaitExpression); !ok {
		t.Fatalf("return argument is not AwaitExpression, got %T", ret.Argument)
	}
}

func TestParserErrorRecoversWithMessage(t *testing.T) {
	l := lexer.New("let = ;")
	p := New(l)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one parse error")
	}
}

func TestModuleImportExport(t *testing.T) {
	l := lexer.New(`import { a } from "./a.js"; export const b = 1;`)
	p := New(l)
	prog := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if !prog.IsModule {
		t.Fatalf("expected IsModule to be true")
	}
}
