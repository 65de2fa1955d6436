package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", NUMBER},
		{";", SEMICOLON},
		{"x", IDENT},
		{"=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", NUMBER},
		{";", SEMICOLON},
		{"", EOF},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `var let const function return if else for while do break continue
		true false null undefined new delete typeof instanceof in of this super
		class extends static get set try catch finally throw switch case default
		void yield async await import export from as with`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"var", VAR}, {"let", LET}, {"const", CONST}, {"function", FUNCTION},
		{"return", RETURN}, {"if", IF}, {"else", ELSE}, {"for", FOR},
		{"while", WHILE}, {"do", DO}, {"break", BREAK}, {"continue", CONTINUE},
		{"true", TRUE}, {"false", FALSE}, {"null", NULL}, {"undefined", UNDEFINED},
		{"new", NEW}, {"delete", DELETE}, {"typeof", TYPEOF}, {"instanceof", INSTANCEOF},
		{"in", IN}, {"of", OF}, {"this", THIS}, {"super", SUPER},
		{"class", CLASS}, {"extends", EXTENDS}, {"static", STATIC}, {"get", GET},
		{"set", SET}, {"try", TRY}, {"catch", CATCH}, {"finally", FINALLY},
		{"throw", THROW}, {"switch", SWITCH}, {"case", CASE}, {"default", DEFAULT},
		{"void", VOID}, {"yield", YIELD}, {"async", ASYNC}, {"await", AWAIT},
		{"import", IMPORT}, {"export", EXPORT}, {"from", FROM}, {"as", AS},
		{"with", WITH},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong for %q. expected=%s, got=%s",
				i, tt.expectedLiteral, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	// '/' and '/=' follow an identifier: after an operator a '/' starts a
	// regex literal instead.
	input := `+ - * ** a / % ++ -- == != === !== < > <= >= && || ! ~ & | ^ << >> >>>
		+= -= *= **= a /= %= &= |= ^= <<= >>= >>>= &&= ||= ??= ?? ?. ?`

	tests := []TokenType{
		PLUS, MINUS, STAR, STAR_STAR, IDENT, SLASH, PERCENT, INC, DEC,
		EQ, NOT_EQ, EQ_STRICT, NOT_EQ_STRICT, LT, GT, LT_EQ, GT_EQ,
		LOGICAL_AND, LOGICAL_OR, BANG, TILDE, AMP, PIPE, CARET, SHL, SHR, USHR,
		PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, STAR_STAR_EQUAL, IDENT, SLASH_EQUAL, PERCENT_EQUAL,
		AND_EQUAL, OR_EQUAL, XOR_EQUAL, SHL_EQUAL, SHR_EQUAL, USHR_EQUAL,
		LOGICAL_AND_EQUAL, LOGICAL_OR_EQUAL, QUESTION_QUESTION_EQUAL, QUESTION_QUESTION,
		QUESTION_DOT, QUESTION,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s", i, want, tok.Type)
		}
	}
	if tok := l.NextToken(); tok.Type != EOF {
		t.Fatalf("expected EOF, got %s", tok.Type)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    TokenType
		expectedLiteral string
	}{
		{"0", NUMBER, "0"},
		{"42", NUMBER, "42"},
		{"3.14", NUMBER, "3.14"},
		{"1e10", NUMBER, "1e10"},
		{"1.5e-3", NUMBER, "1.5e-3"},
		{"0x1F", NUMBER, "0x1F"},
		{"0o17", NUMBER, "0o17"},
		{"0b101", NUMBER, "0b101"},
		{"1_000_000", NUMBER, "1000000"},
		{"123n", BIGINT, "123"},
		{"0x1Fn", BIGINT, "0x1F"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("input %q: tokentype wrong. expected=%s, got=%s", tt.input, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("input %q: literal wrong. expected=%q, got=%q", tt.input, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestMalformedNumberSeparators(t *testing.T) {
	tests := []string{"1__000", "1_"}
	for _, input := range tests {
		l := New(input)
		l.NextToken()
		if len(l.Errors()) == 0 {
			t.Errorf("input %q: expected a lexical error for invalid numeric separator", input)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"\x41"`, "A"},
		{`"A"`, "A"},
		{`"\u{1F600}"`, "\U0001F600"},
		{`"it's \"quoted\""`, `it's "quoted"`},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("input %q: expected STRING, got %s", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Fatalf("input %q: literal wrong. expected=%q, got=%q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Errorf("expected a lexical error for unterminated string")
	}
}

func TestTemplateLiteralNoSubstitution(t *testing.T) {
	l := New("`hello world`")
	tok := l.NextToken()
	if tok.Type != NO_SUBSTITUTION_TEMPLATE {
		t.Fatalf("expected NO_SUBSTITUTION_TEMPLATE, got %s", tok.Type)
	}
	if tok.Literal != "hello world" {
		t.Fatalf("literal wrong. expected=%q, got=%q", "hello world", tok.Literal)
	}
}

func TestTemplateLiteralWithSubstitution(t *testing.T) {
	l := New("`a${x}b`")

	head := l.NextToken()
	if head.Type != TEMPLATE_HEAD || head.Literal != "a" {
		t.Fatalf("head wrong: %s %q", head.Type, head.Literal)
	}

	ident := l.NextToken()
	if ident.Type != IDENT || ident.Literal != "x" {
		t.Fatalf("ident wrong: %s %q", ident.Type, ident.Literal)
	}

	tail := l.NextToken()
	if tail.Type != TEMPLATE_TAIL || tail.Literal != "b" {
		t.Fatalf("tail wrong: %s %q", tail.Type, tail.Literal)
	}

	eof := l.NextToken()
	if eof.Type != EOF {
		t.Fatalf("expected EOF, got %s", eof.Type)
	}
}

func TestTemplateLiteralNestedBraces(t *testing.T) {
	// The `${ ({a:1}).a }` hole contains an object literal whose braces must
	// not be mistaken for the hole's own closing brace.
	l := New("`x${ ({a:1}).a }y`")

	head := l.NextToken()
	if head.Type != TEMPLATE_HEAD || head.Literal != "x" {
		t.Fatalf("head wrong: %s %q", head.Type, head.Literal)
	}

	var tok Token
	for {
		tok = l.NextToken()
		if tok.Type == TEMPLATE_TAIL || tok.Type == EOF {
			break
		}
	}
	if tok.Type != TEMPLATE_TAIL || tok.Literal != "y" {
		t.Fatalf("tail wrong: %s %q", tok.Type, tok.Literal)
	}
}

func TestRegexVsDivisionDisambiguation(t *testing.T) {
	// After an identifier, '/' is division.
	l := New("a / b")
	if tok := l.NextToken(); tok.Type != IDENT {
		t.Fatalf("expected IDENT, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != SLASH {
		t.Fatalf("expected SLASH after identifier, got %s", tok.Type)
	}

	// At the start of an expression, '/' starts a regex literal.
	l2 := New("/abc/g")
	tok := l2.NextToken()
	if tok.Type != REGEX {
		t.Fatalf("expected REGEX, got %s", tok.Type)
	}
	if tok.Literal != "/abc/g" {
		t.Fatalf("literal wrong. expected=%q, got=%q", "/abc/g", tok.Literal)
	}
}

func TestRegexAfterReturn(t *testing.T) {
	l := New("return /x/;")
	if tok := l.NextToken(); tok.Type != RETURN {
		t.Fatalf("expected RETURN, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != REGEX {
		t.Fatalf("expected REGEX after return, got %s", tok.Type)
	}
}

func TestPrivateIdentifier(t *testing.T) {
	l := New("#field")
	tok := l.NextToken()
	if tok.Type != PRIVATE_IDENT {
		t.Fatalf("expected PRIVATE_IDENT, got %s", tok.Type)
	}
	if tok.Literal != "#field" {
		t.Fatalf("literal wrong. expected=%q, got=%q", "#field", tok.Literal)
	}
}

func TestHashbangIsSkipped(t *testing.T) {
	l := New("#!/usr/bin/env node\nlet x = 1;")
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected LET after hashbang line, got %s (literal=%q)", tok.Type, tok.Literal)
	}
}

func TestNewlineBeforeFlag(t *testing.T) {
	l := New("a\nb")
	first := l.NextToken()
	if first.NewlineBefore {
		t.Errorf("first token should not report a newline before it")
	}
	second := l.NextToken()
	if !second.NewlineBefore {
		t.Errorf("second token should report a newline before it for ASI")
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("foo\nbar")
	first := l.NextToken()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("first token position wrong: %+v", first.Pos)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("second token position wrong: %+v", second.Pos)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	l := New("// line comment\nlet /* block */ x = 1;")
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected LET, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "x" {
		t.Fatalf("expected IDENT x, got %s %q", tok.Type, tok.Literal)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("/* never closed")
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Errorf("expected a lexical error for unterminated block comment")
	}
}

func TestContextualKeywordsLookLikeIdentifiers(t *testing.T) {
	for _, word := range []string{"get", "set", "of", "async", "await", "yield", "static", "from", "as"} {
		tok := LookupIdent(word)
		if !IsContextual(tok) {
			t.Errorf("%q should be classified as a contextual keyword", word)
		}
	}
	if IsContextual(LookupIdent("function")) {
		t.Errorf("function is a reserved word, not contextual")
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	l := New("let café = 1;")
	l.NextToken() // let
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "café" {
		t.Fatalf("expected IDENT café, got %s %q", tok.Type, tok.Literal)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("let x = @;")
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			if tok.Literal != "@" {
				t.Fatalf("expected illegal literal @, got %q", tok.Literal)
			}
			return
		}
	}
	t.Fatalf("expected an ILLEGAL token for '@'")
}
