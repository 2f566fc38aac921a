package parser

import (
	"fmt"

	"github.com/tangzhangming/lox/internal/ast"
	"github.com/tangzhangming/lox/internal/i18n"
	"github.com/tangzhangming/lox/internal/lexer"
	"github.com/tangzhangming/lox/internal/token"
)

// ============================================================================
// Parser - 语法分析器
// ============================================================================
//
// 递归下降 + Pratt 优先级爬升。优先级从松到紧：
//
//	assignment → logic_or → logic_and → equality → comparison
//	→ term → factor → unary → call/get → primary
//
// 二元运算符全部左结合；赋值右结合且左侧只允许 Variable 或 Get。
// 复合赋值（+= 等）在解析期降级：Assign/Set 节点上打对应算术运算符标记。
//
// 错误恢复采用 panic-mode 同步：声明内部出错后丢弃 token 直到越过分号
// 或停在下一个声明/语句关键字之前，出错的声明被替换为一个惰性的
// Expression(Literal(nil)) 以保持语句列表形状。
//
// ============================================================================

// Parser 语法分析器
type Parser struct {
	lexer     *lexer.Lexer
	tokens    []token.Token
	current   int
	errors    []Error
	filename  string
	panicMode bool // 错误恢复模式标志，用于避免级联报错
	exprDepth int  // 表达式解析深度，防止栈溢出
}

// maxExprDepth 最大表达式嵌套深度，防止栈溢出
const maxExprDepth = 200

// maxParseErrors 最大错误数量限制，防止错误爆炸
const maxParseErrors = 50

// maxArguments 实参/形参数量上限
const maxArguments = 254

// Error 语法分析错误
type Error struct {
	Tok     token.Token // 出错处的 token
	Message string      // 错误信息
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Tok.Pos, e.Message)
}

// New 创建一个新的语法分析器
//
// 词法分析在这里一并完成；调用方应先检查 LexErrors，
// 有词法错误时不应继续调用 Parse。
func New(source, filename string) *Parser {
	l := lexer.New(source, filename)
	tokens := l.ScanTokens()

	return &Parser{
		lexer:    l,
		tokens:   tokens,
		current:  0,
		filename: filename,
	}
}

// ============================================================================
// 公共方法
// ============================================================================

// Parse 解析整个程序，返回顶层语句列表
func (p *Parser) Parse() []ast.Statement {
	var statements []ast.Statement

	for !p.isAtEnd() {
		statements = append(statements, p.declaration())
	}

	return statements
}

// Tokens 返回词法分析得到的 Token 序列（用于 -tokens 调试输出）
func (p *Parser) Tokens() []token.Token {
	return p.tokens
}

// LexErrors 返回词法错误
func (p *Parser) LexErrors() []lexer.Error {
	return p.lexer.Errors()
}

// HasLexErrors 检查是否有词法错误
func (p *Parser) HasLexErrors() bool {
	return p.lexer.HasErrors()
}

// Errors 返回所有语法错误
func (p *Parser) Errors() []Error {
	return p.errors
}

// HasErrors 检查是否有错误
func (p *Parser) HasErrors() bool {
	return len(p.errors) > 0
}

// ============================================================================
// 声明解析
// ============================================================================

// declaration 解析一个声明（var / fun / class），否则回落到语句
//
// 声明内部出错时进行同步，并用惰性节点替换出错的声明，
// 保证返回的语句列表形状合法。
func (p *Parser) declaration() ast.Statement {
	p.panicMode = false

	var stmt ast.Statement
	switch {
	case p.match(token.VAR):
		stmt = p.varDeclaration()
	case p.match(token.FUN):
		stmt = p.function("function")
	case p.match(token.CLASS):
		stmt = p.classDeclaration()
	default:
		stmt = p.statement()
	}

	if p.panicMode {
		p.synchronize()
		p.panicMode = false
		// 惰性占位节点：had_error 已置位，解析器和求值器不会真正运行它
		return &ast.ExpressionStmt{Expr: &ast.LiteralExpr{Value: nil}}
	}

	return stmt
}

// varDeclaration 解析变量声明，var 关键字已被消费
func (p *Parser) varDeclaration() ast.Statement {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")
	if p.panicMode {
		return nil
	}

	var initializer ast.Expression
	if p.match(token.EQ) {
		initializer = p.parseExpression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Name: name, Initializer: initializer}
}

// function 解析函数声明（fun 关键字已被消费）或类体中的方法声明
//
// kind 是 "function" 或 "method"，仅用于错误信息。
func (p *Parser) function(kind string) *ast.FunctionStmt {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")
	if p.panicMode {
		return nil
	}

	p.consume(token.LPAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RPAREN) {
		for {
			if len(params) == maxArguments {
				// 只报告，不进入 panic-mode，继续解析以便发现后续错误
				p.report(p.peek(), i18n.T(i18n.ErrTooManyParams))
			}
			param := p.consume(token.IDENTIFIER, "Expect parameter name.")
			if p.panicMode {
				return nil
			}
			params = append(params, param)

			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before "+kind+" body.")
	if p.panicMode {
		return nil
	}

	body := p.blockStatements()
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}
}

// classDeclaration 解析类声明，class 关键字已被消费
func (p *Parser) classDeclaration() ast.Statement {
	name := p.consume(token.IDENTIFIER, "Expect class name.")
	if p.panicMode {
		return nil
	}

	var superclass *ast.VariableExpr
	if p.match(token.LT) {
		superName := p.consume(token.IDENTIFIER, "Expect superclass name.")
		if p.panicMode {
			return nil
		}
		superclass = &ast.VariableExpr{Name: superName}
	}

	p.consume(token.LBRACE, "Expect '{' before class body.")

	var methods []*ast.FunctionStmt
	for !p.check(token.RBRACE) && !p.isAtEnd() && !p.panicMode {
		method := p.function("method")
		if method != nil {
			methods = append(methods, method)
		}
	}

	p.consume(token.RBRACE, "Expect '}' after class body.")
	return &ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

// ============================================================================
// 语句解析
// ============================================================================

// statement 解析一个非声明语句
func (p *Parser) statement() ast.Statement {
	switch {
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.LBRACE):
		lbrace := p.previous()
		return &ast.BlockStmt{LBrace: lbrace, Statements: p.blockStatements()}
	default:
		return p.expressionStatement()
	}
}

// blockStatements 解析块内语句，左大括号已被消费
func (p *Parser) blockStatements() []ast.Statement {
	var statements []ast.Statement

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		statements = append(statements, p.declaration())
	}

	p.consume(token.RBRACE, "Expect '}' after block.")
	return statements
}

// ifStatement 解析条件语句，if 关键字已被消费
func (p *Parser) ifStatement() ast.Statement {
	keyword := p.previous()

	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	condition := p.parseExpression()
	p.consume(token.RPAREN, "Expect ')' after if condition.")
	if p.panicMode {
		return nil
	}

	then := p.statement()

	var elseBranch ast.Statement
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.IfStmt{Keyword: keyword, Condition: condition, Then: then, Else: elseBranch}
}

// whileStatement 解析循环语句，while 关键字已被消费
func (p *Parser) whileStatement() ast.Statement {
	keyword := p.previous()

	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	condition := p.parseExpression()
	p.consume(token.RPAREN, "Expect ')' after condition.")
	if p.panicMode {
		return nil
	}

	body := p.statement()
	return &ast.WhileStmt{Keyword: keyword, Condition: condition, Body: body}
}

// forStatement 解析 for 循环，for 关键字已被消费
//
// for 循环在这里降级为等价的 while 形式：
//
//	for (init; cond; inc) body
//	=> { init; while (cond) { body; inc; } }
//
// 省略的条件视为 true。
func (p *Parser) forStatement() ast.Statement {
	keyword := p.previous()

	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	// 初始化子句
	var initializer ast.Statement
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer = p.varDeclaration()
	default:
		initializer = p.expressionStatement()
	}
	if p.panicMode {
		return nil
	}

	// 条件子句
	var condition ast.Expression
	if !p.check(token.SEMICOLON) {
		condition = p.parseExpression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	// 增量子句
	var increment ast.Expression
	if !p.check(token.RPAREN) {
		increment = p.parseExpression()
	}
	p.consume(token.RPAREN, "Expect ')' after for clauses.")
	if p.panicMode {
		return nil
	}

	body := p.statement()

	// 降级：增量并入循环体尾部
	if increment != nil {
		body = &ast.BlockStmt{
			LBrace:     keyword,
			Statements: []ast.Statement{body, &ast.ExpressionStmt{Expr: increment}},
		}
	}

	if condition == nil {
		condition = &ast.LiteralExpr{Token: keyword, Value: true}
	}

	var loop ast.Statement = &ast.WhileStmt{Keyword: keyword, Condition: condition, Body: body}

	// 降级：初始化子句包进外层块
	if initializer != nil {
		loop = &ast.BlockStmt{
			LBrace:     keyword,
			Statements: []ast.Statement{initializer, loop},
		}
	}

	return loop
}

// returnStatement 解析返回语句，return 关键字已被消费
func (p *Parser) returnStatement() ast.Statement {
	keyword := p.previous()

	var value ast.Expression
	if !p.check(token.SEMICOLON) {
		value = p.parseExpression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

// expressionStatement 解析表达式语句
func (p *Parser) expressionStatement() ast.Statement {
	expr := p.parseExpression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStmt{Expr: expr}
}

// ============================================================================
// 运算符优先级
// ============================================================================

// 优先级常量，数值越大结合越紧
const (
	PREC_NONE       = iota
	PREC_ASSIGNMENT // = += -= *= /= %=
	PREC_OR         // or
	PREC_AND        // and
	PREC_EQUALITY   // == !=
	PREC_COMPARISON // < <= > >=
	PREC_TERM       // + -
	PREC_FACTOR     // * / %
	PREC_UNARY      // ! -
	PREC_CALL       // () .
	PREC_PRIMARY
)

// getPrecedence 获取中缀 token 的优先级
func (p *Parser) getPrecedence(t token.TokenType) int {
	switch t {
	case token.EQ, token.PLUS_EQ, token.MINUS_EQ,
		token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ:
		return PREC_ASSIGNMENT
	case token.OR:
		return PREC_OR
	case token.AND:
		return PREC_AND
	case token.EQ_EQ, token.BANG_EQ:
		return PREC_EQUALITY
	case token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		return PREC_COMPARISON
	case token.PLUS, token.MINUS:
		return PREC_TERM
	case token.STAR, token.SLASH, token.PERCENT:
		return PREC_FACTOR
	case token.LPAREN, token.DOT:
		return PREC_CALL
	default:
		return PREC_NONE
	}
}

// ============================================================================
// 表达式解析
// ============================================================================

// parseExpression 解析一个表达式
func (p *Parser) parseExpression() ast.Expression {
	// 检查递归深度，防止栈溢出
	p.exprDepth++
	if p.exprDepth > maxExprDepth {
		p.error("expression too deeply nested")
		p.panicMode = true
		p.exprDepth--
		return nil
	}
	defer func() { p.exprDepth-- }()

	return p.parsePrecedence(PREC_ASSIGNMENT)
}

// parsePrecedence 解析优先级不低于 precedence 的表达式
func (p *Parser) parsePrecedence(precedence int) ast.Expression {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for precedence <= p.getPrecedence(p.peek().Type) && !p.panicMode {
		left = p.parseInfixExpr(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// parsePrefixExpr 解析前缀表达式（字面量、变量、分组、一元）
func (p *Parser) parsePrefixExpr() ast.Expression {
	switch p.peek().Type {
	case token.NUMBER:
		tok := p.advance()
		return &ast.LiteralExpr{Token: tok, Value: tok.Value.(float64)}
	case token.STRING:
		tok := p.advance()
		return &ast.LiteralExpr{Token: tok, Value: tok.Value.(string)}
	case token.TRUE:
		tok := p.advance()
		return &ast.LiteralExpr{Token: tok, Value: true}
	case token.FALSE:
		tok := p.advance()
		return &ast.LiteralExpr{Token: tok, Value: false}
	case token.NIL:
		tok := p.advance()
		return &ast.LiteralExpr{Token: tok, Value: nil}
	case token.IDENTIFIER:
		tok := p.advance()
		return &ast.VariableExpr{Name: tok}
	case token.THIS:
		tok := p.advance()
		return &ast.ThisExpr{Keyword: tok}
	case token.SUPER:
		return p.parseSuperExpr()
	case token.LPAREN:
		return p.parseGroupExpr()
	case token.BANG, token.MINUS:
		return p.parseUnaryExpr()
	default:
		p.error(i18n.T(i18n.ErrExpectedExpression))
		p.panicMode = true
		return nil
	}
}

// parseInfixExpr 解析中缀表达式
func (p *Parser) parseInfixExpr(left ast.Expression) ast.Expression {
	switch p.peek().Type {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ_EQ, token.BANG_EQ,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		return p.parseBinaryExpr(left)
	case token.AND, token.OR:
		return p.parseLogicalExpr(left)
	case token.EQ, token.PLUS_EQ, token.MINUS_EQ,
		token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ:
		return p.parseAssignExpr(left)
	case token.LPAREN:
		return p.parseCallExpr(left)
	case token.DOT:
		return p.parseDotAccess(left)
	default:
		return left
	}
}

// parseBinaryExpr 解析二元表达式，左结合
func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	op := p.advance()
	prec := p.getPrecedence(op.Type)
	right := p.parsePrecedence(prec + 1)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{Left: left, Operator: op, Right: right}
}

// parseLogicalExpr 解析短路逻辑表达式 (and / or)，左结合
func (p *Parser) parseLogicalExpr(left ast.Expression) ast.Expression {
	op := p.advance()
	prec := p.getPrecedence(op.Type)
	right := p.parsePrecedence(prec + 1)
	if right == nil {
		return nil
	}
	return &ast.LogicalExpr{Left: left, Operator: op, Right: right}
}

// parseAssignExpr 解析赋值表达式，右结合
//
// 左侧只允许变量或属性访问。复合赋值在这里降级：
// a += b 变为带 "+" 运算符标记的 Assign 节点，
// o.f += b 变为带 "+" 运算符标记的 Set 节点。
func (p *Parser) parseAssignExpr(left ast.Expression) ast.Expression {
	op := p.advance()

	// 与 PREC_ASSIGNMENT 同级递归，得到右结合
	value := p.parsePrecedence(PREC_ASSIGNMENT)
	if value == nil {
		return nil
	}

	arith := compoundOperator(op)

	switch target := left.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{Name: target.Name, Op: arith, Value: value}
	case *ast.GetExpr:
		return &ast.SetExpr{Object: target.Object, Name: target.Name, Op: arith, Value: value}
	default:
		p.report(op, i18n.T(i18n.ErrInvalidAssignTarget))
		return value
	}
}

// compoundOperator 把复合赋值 token 映射为对应的算术运算符 token
//
// 普通赋值返回 nil。
func compoundOperator(op token.Token) *token.Token {
	var mapped token.TokenType
	switch op.Type {
	case token.PLUS_EQ:
		mapped = token.PLUS
	case token.MINUS_EQ:
		mapped = token.MINUS
	case token.STAR_EQ:
		mapped = token.STAR
	case token.SLASH_EQ:
		mapped = token.SLASH
	case token.PERCENT_EQ:
		mapped = token.PERCENT
	default:
		return nil
	}

	tok := token.New(mapped, op.Literal[:1], op.Pos)
	return &tok
}

// parseCallExpr 解析调用表达式
func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	p.advance() // 消费 (

	var args []ast.Expression
	if !p.check(token.RPAREN) {
		for {
			if len(args) == maxArguments {
				// 只报告，不进入 panic-mode，继续解析以便发现后续错误
				p.report(p.peek(), i18n.T(i18n.ErrTooManyArgs))
			}
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			args = append(args, arg)

			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren := p.consume(token.RPAREN, "Expect ')' after arguments.")
	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}
}

// parseDotAccess 解析属性访问 (object.name)
func (p *Parser) parseDotAccess(object ast.Expression) ast.Expression {
	p.advance() // 消费 .

	name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
	if p.panicMode {
		return nil
	}
	return &ast.GetExpr{Object: object, Name: name}
}

// parseGroupExpr 解析分组表达式
func (p *Parser) parseGroupExpr() ast.Expression {
	lparen := p.advance() // 消费 (

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}

	p.consume(token.RPAREN, "Expect ')' after expression.")
	return &ast.GroupingExpr{LParen: lparen, Expr: expr}
}

// parseUnaryExpr 解析一元表达式 (-x, !x)
func (p *Parser) parseUnaryExpr() ast.Expression {
	op := p.advance()
	right := p.parsePrecedence(PREC_UNARY)
	if right == nil {
		return nil
	}
	return &ast.UnaryExpr{Operator: op, Right: right}
}

// parseSuperExpr 解析 super 方法引用 (super.method)
func (p *Parser) parseSuperExpr() ast.Expression {
	keyword := p.advance() // 消费 super

	p.consume(token.DOT, "Expect '.' after 'super'.")
	method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
	if p.panicMode {
		return nil
	}
	return &ast.SuperExpr{Keyword: keyword, Method: method}
}

// ============================================================================
// 辅助方法
// ============================================================================

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.TokenType, message string) token.Token {
	// panic-mode 下不再消费任何 token，把同步点留给 synchronize
	if p.panicMode {
		return token.Token{}
	}
	if p.check(t) {
		return p.advance()
	}
	p.error(message)
	p.panicMode = true
	return token.Token{} // 返回零值，调用方应检查 panicMode
}

// ============================================================================
// 错误处理
// ============================================================================

// error 在当前 token 处记录一个语法错误
//
// panicMode 下跳过后续错误，避免级联报错。
func (p *Parser) error(message string) {
	if p.panicMode {
		return
	}
	p.report(p.peek(), message)
}

// report 记录一个语法错误，不受 panicMode 影响
//
// 用于不触发 panic-mode 的诊断（如参数数量超限）。与上一条错误位置相同时
// 不再记录；错误数达到上限后记录一条 "too many errors" 并进入 panic-mode。
func (p *Parser) report(tok token.Token, message string) {
	// 避免在同一位置重复报错
	if len(p.errors) > 0 {
		last := p.errors[len(p.errors)-1]
		if last.Tok.Pos.Line == tok.Pos.Line && last.Tok.Pos.Column == tok.Pos.Column {
			return
		}
	}

	// 检查是否超过最大错误数量
	if len(p.errors) >= maxParseErrors {
		p.errors = append(p.errors, Error{
			Tok:     tok,
			Message: "too many errors, aborting",
		})
		p.panicMode = true
		return
	}

	p.errors = append(p.errors, Error{
		Tok:     tok,
		Message: message,
	})
}

// synchronize 错误恢复：丢弃 token 直到一个可能的语句边界
//
// 越过分号，或停在下一个声明/语句关键字之前。
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		// 分号后是安全点
		if p.previous().Type == token.SEMICOLON {
			return
		}

		// 新声明/语句的开始是安全的同步点
		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR,
			token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}

		p.advance()
	}
}
