package lexer

import (
	"testing"

	"github.com/tangzhangming/lox/internal/token"
)

func TestScanSingleTokens(t *testing.T) {
	input := `( ) { } , . ; + - * / % ! = < >`

	expected := []token.TokenType{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.DOT, token.SEMICOLON,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.BANG, token.EQ, token.LT, token.GT,
		token.EOF,
	}

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	if l.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, want := range expected {
		if tokens[i].Type != want {
			t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
		}
	}
}

func TestScanCompoundOperators(t *testing.T) {
	input := `+= -= *= /= %= != == <= >=`

	expected := []token.TokenType{
		token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ,
		token.BANG_EQ, token.EQ_EQ, token.LT_EQ, token.GT_EQ,
		token.EOF,
	}

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, want := range expected {
		if tokens[i].Type != want {
			t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
		}
	}
}

func TestScanKeywords(t *testing.T) {
	input := `and class else false fun for if nil or return super this true var while andy`

	expected := []token.TokenType{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FUN,
		token.FOR, token.IF, token.NIL, token.OR, token.RETURN,
		token.SUPER, token.THIS, token.TRUE, token.VAR, token.WHILE,
		token.IDENTIFIER,
		token.EOF,
	}

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, want := range expected {
		if tokens[i].Type != want {
			t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{`0`, 0},
		{`7`, 7},
		{`123`, 123},
		{`3.14`, 3.14},
		{`0.5`, 0.5},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.lox")
		tokens := l.ScanTokens()

		if tokens[0].Type != token.NUMBER {
			t.Errorf("%q: expected NUMBER, got %s", tt.input, tokens[0].Type)
			continue
		}
		if got := tokens[0].Value.(float64); got != tt.value {
			t.Errorf("%q: expected value %v, got %v", tt.input, tt.value, got)
		}
	}
}

func TestScanNumberNoTrailingDot(t *testing.T) {
	// "123." 是数字后跟 DOT，小数点规则要求点后必须有数字
	l := New(`123.`, "test.lox")
	tokens := l.ScanTokens()

	expected := []token.TokenType{token.NUMBER, token.DOT, token.EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, want := range expected {
		if tokens[i].Type != want {
			t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
		}
	}
}

func TestScanString(t *testing.T) {
	l := New(`"hello world"`, "test.lox")
	tokens := l.ScanTokens()

	if tokens[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tokens[0].Type)
	}
	if got := tokens[0].Value.(string); got != "hello world" {
		t.Errorf("expected value %q, got %q", "hello world", got)
	}
	if tokens[0].Literal != `"hello world"` {
		t.Errorf("expected literal with quotes, got %q", tokens[0].Literal)
	}
}

func TestScanMultilineString(t *testing.T) {
	l := New("\"line one\nline two\"", "test.lox")
	tokens := l.ScanTokens()

	if l.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}
	if tokens[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tokens[0].Type)
	}
	if got := tokens[0].Value.(string); got != "line one\nline two" {
		t.Errorf("unexpected string value %q", got)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"oops`, "test.lox")
	tokens := l.ScanTokens()

	if !l.HasErrors() {
		t.Fatal("expected a lex error")
	}
	if l.Errors()[0].Message != "Unterminated string." {
		t.Errorf("unexpected message %q", l.Errors()[0].Message)
	}
	// 出错的字符串不产生 token，只剩 EOF
	if len(tokens) != 1 || tokens[0].Type != token.EOF {
		t.Errorf("expected only EOF token, got %d tokens", len(tokens))
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New(`var a = 1; @`, "test.lox")
	tokens := l.ScanTokens()

	if !l.HasErrors() {
		t.Fatal("expected a lex error")
	}
	if l.Errors()[0].Message != "Unexpected character: @" {
		t.Errorf("unexpected message %q", l.Errors()[0].Message)
	}

	// 非法字符被丢弃，其余 token 正常产出
	expected := []token.TokenType{
		token.VAR, token.IDENTIFIER, token.EQ, token.NUMBER, token.SEMICOLON, token.EOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
}

func TestLineComment(t *testing.T) {
	input := "var a = 1; // comment until end of line\nvar b = 2;"

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	if l.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}

	// 注释不产生 token
	var kinds []token.TokenType
	for _, tok := range tokens {
		kinds = append(kinds, tok.Type)
	}
	expected := []token.TokenType{
		token.VAR, token.IDENTIFIER, token.EQ, token.NUMBER, token.SEMICOLON,
		token.VAR, token.IDENTIFIER, token.EQ, token.NUMBER, token.SEMICOLON,
		token.EOF,
	}
	if len(kinds) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(kinds))
	}

	// 第二行的 token 行号为 2
	if tokens[5].Pos.Line != 2 {
		t.Errorf("expected line 2 for second var, got %d", tokens[5].Pos.Line)
	}
}

func TestPositions(t *testing.T) {
	input := "var abc = 42;\nabc = 7;"

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	tests := []struct {
		index  int
		line   int
		column int
	}{
		{0, 1, 0},  // var
		{1, 1, 4},  // abc
		{2, 1, 8},  // =
		{3, 1, 10}, // 42
		{4, 1, 12}, // ;
		{5, 2, 0},  // abc
		{6, 2, 4},  // =
		{7, 2, 6},  // 7
	}

	for _, tt := range tests {
		tok := tokens[tt.index]
		if tok.Pos.Line != tt.line || tok.Pos.Column != tt.column {
			t.Errorf("token %d (%s): expected %d:%d, got %d:%d",
				tt.index, tok.Literal, tt.line, tt.column, tok.Pos.Line, tok.Pos.Column)
		}
	}
}

func TestTabColumns(t *testing.T) {
	// 制表符按宽度 4 计，var 的列号应为 4
	l := New("\tvar x = 1;", "test.lox")
	tokens := l.ScanTokens()

	if tokens[0].Type != token.VAR {
		t.Fatalf("expected VAR, got %s", tokens[0].Type)
	}
	if tokens[0].Pos.Column != 4 {
		t.Errorf("expected column 4 after tab, got %d", tokens[0].Pos.Column)
	}
}

func TestLexemeRoundTrip(t *testing.T) {
	// 每个 token 的词素都应与源代码在其偏移处的切片一致
	input := "class Foo < Bar {\n\tinit(v) { this.v = v; }\n}\nvar f = Foo(3.5);\n"

	l := New(input, "test.lox")
	tokens := l.ScanTokens()

	if l.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}

	for _, tok := range tokens {
		if tok.Type == token.EOF {
			continue
		}
		end := tok.Pos.Offset + len(tok.Literal)
		if end > len(input) {
			t.Errorf("token %s: offset out of range", tok)
			continue
		}
		if got := input[tok.Pos.Offset:end]; got != tok.Literal {
			t.Errorf("token %s: source slice %q != lexeme %q", tok.Type, got, tok.Literal)
		}
	}
}
