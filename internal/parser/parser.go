// Package parser turns a internal/lexer token stream into an internal/ast
// tree using recursive descent with operator-precedence (Pratt) parsing
// for expressions (spec.md §4.2).
package parser

import (
	"fmt"

	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/lexer"
)

// precedence levels, lowest to highest. Assignment and the comma operator
// are handled outside this table by parseAssignment/parseExpression.
const (
	_ int = iota
	precLowest
	precNullish    // ??
	precLogicalOr  // ||
	precLogicalAnd // &&
	precBitOr      // |
	precBitXor     // ^
	precBitAnd     // &
	precEquality   // == != === !==
	precRelational // < > <= >= in instanceof
	precShift      // << >> >>>
	precAdditive   // + -
	precMultiplicative // * / %
	precExponent   // ** (right-assoc)
)

var binaryPrec = map[lexer.TokenType]int{
	lexer.LOGICAL_OR:         precLogicalOr,
	lexer.LOGICAL_AND:        precLogicalAnd,
	lexer.QUESTION_QUESTION:  precNullish,
	lexer.PIPE:               precBitOr,
	lexer.CARET:              precBitXor,
	lexer.AMP:                precBitAnd,
	lexer.EQ:                 precEquality,
	lexer.NOT_EQ:             precEquality,
	lexer.EQ_STRICT:          precEquality,
	lexer.NOT_EQ_STRICT:      precEquality,
	lexer.LT:                 precRelational,
	lexer.GT:                 precRelational,
	lexer.LT_EQ:              precRelational,
	lexer.GT_EQ:              precRelational,
	lexer.IN:                 precRelational,
	lexer.INSTANCEOF:         precRelational,
	lexer.SHL:                precShift,
	lexer.SHR:                precShift,
	lexer.USHR:               precShift,
	lexer.PLUS:               precAdditive,
	lexer.MINUS:              precAdditive,
	lexer.STAR:               precMultiplicative,
	lexer.SLASH:              precMultiplicative,
	lexer.PERCENT:            precMultiplicative,
	lexer.STAR_STAR:          precExponent,
}

var logicalOps = map[lexer.TokenType]bool{
	lexer.LOGICAL_OR: true, lexer.LOGICAL_AND: true, lexer.QUESTION_QUESTION: true,
}

var assignOps = map[lexer.TokenType]string{
	lexer.ASSIGN: "=", lexer.PLUS_EQUAL: "+=", lexer.MINUS_EQUAL: "-=",
	lexer.STAR_EQUAL: "*=", lexer.SLASH_EQUAL: "/=", lexer.PERCENT_EQUAL: "%=",
	lexer.STAR_STAR_EQUAL: "**=", lexer.AND_EQUAL: "&=", lexer.OR_EQUAL: "|=",
	lexer.XOR_EQUAL: "^=", lexer.SHL_EQUAL: "<<=", lexer.SHR_EQUAL: ">>=",
	lexer.USHR_EQUAL: ">>>=", lexer.LOGICAL_AND_EQUAL: "&&=",
	lexer.LOGICAL_OR_EQUAL: "||=", lexer.QUESTION_QUESTION_EQUAL: "??=",
}

// Parser consumes tokens from a Lexer and builds an ast.Program.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []string

	// function-context flags, pushed/popped around function bodies, used
	// to validate `yield`/`await`/`super`/`new.target` positions.
	inGenerator bool
	inAsync     bool
	inFunction  bool
	inClass     bool
	inLoop      int
	inSwitch    int

	strict bool
}

// New constructs a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns accumulated syntax-error messages (spec.md §4.1/§4.2).
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s (line %d, column %d)", msg, p.cur.Pos.Line, p.cur.Pos.Column))
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// expect advances past the current token if it matches t, else records a
// syntax error and does not advance.
func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	return false
}

// ParseProgram parses a full script. Module source goes through
// ParseModule, which sets Program.IsModule.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
		if len(p.errors) > 200 {
			break
		}
	}
	return prog
}

// ParseModule parses module source, allowing import/export declarations
// and top-level await (spec.md §4.8).
func (p *Parser) ParseModule() *ast.Program {
	p.inAsync = true
	prog := p.ParseProgram()
	prog.IsModule = true
	return prog
}

// consumeSemicolon implements Automatic Semicolon Insertion (spec.md
// §4.2): a semicolon is inserted before `}`, at EOF, or across a line
// terminator.
func (p *Parser) consumeSemicolon() {
	if p.curIs(lexer.SEMICOLON) {
		p.next()
		return
	}
	if p.curIs(lexer.RBRACE) || p.curIs(lexer.EOF) {
		return
	}
	if p.cur.NewlineBefore {
		return
	}
	p.errorf("expected ';', got %s", p.cur.Type)
}
