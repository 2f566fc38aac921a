package ast

import (
	"strings"

	"github.com/tangzhangming/lox/internal/token"
)

// Node 是所有 AST 节点的基接口
type Node interface {
	Pos() token.Position // 返回节点在源代码中的位置
	String() string      // 返回节点的字符串表示（用于调试）
}

// Expression 表示一个表达式节点
//
// 表达式节点一律以指针形式出现。Variable、This、Super、Assign
// 节点的指针同时充当解析器副表（hop 表）中的键（Set 的属性名在运行期
// 查找，不进副表），因此同一棵 AST
// 必须原样从解析器传递到求值器，不能复制或重建节点。
type Expression interface {
	Node
	exprNode()
}

// Statement 表示一个语句节点
type Statement interface {
	Node
	stmtNode()
}

// ============================================================================
// 表达式节点
// ============================================================================

// BinaryExpr 二元表达式 (a + b, a < b, ...)
type BinaryExpr struct {
	Left     Expression  // 左操作数
	Operator token.Token // 运算符
	Right    Expression  // 右操作数
}

func (e *BinaryExpr) Pos() token.Position { return e.Operator.Pos }
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator.Literal + " " + e.Right.String() + ")"
}
func (e *BinaryExpr) exprNode() {}

// GroupingExpr 括号分组表达式 ( (expr) )
type GroupingExpr struct {
	LParen token.Token // ( token
	Expr   Expression  // 内部表达式
}

func (e *GroupingExpr) Pos() token.Position { return e.LParen.Pos }
func (e *GroupingExpr) String() string      { return "(group " + e.Expr.String() + ")" }
func (e *GroupingExpr) exprNode()           {}

// LiteralExpr 字面量表达式 (数字、字符串、true、false、nil)
type LiteralExpr struct {
	Token token.Token // 字面量 token
	Value interface{} // 字面量的值：float64 / string / bool / nil
}

func (e *LiteralExpr) Pos() token.Position { return e.Token.Pos }
func (e *LiteralExpr) String() string {
	if e.Value == nil {
		return "nil"
	}
	if s, ok := e.Value.(string); ok {
		return "\"" + s + "\""
	}
	return e.Token.Literal
}
func (e *LiteralExpr) exprNode() {}

// LogicalExpr 逻辑表达式 (and / or)，短路求值
type LogicalExpr struct {
	Left     Expression  // 左操作数
	Operator token.Token // and 或 or
	Right    Expression  // 右操作数
}

func (e *LogicalExpr) Pos() token.Position { return e.Operator.Pos }
func (e *LogicalExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator.Literal + " " + e.Right.String() + ")"
}
func (e *LogicalExpr) exprNode() {}

// UnaryExpr 一元表达式 (-x, !x)
type UnaryExpr struct {
	Operator token.Token // 运算符
	Right    Expression  // 操作数
}

func (e *UnaryExpr) Pos() token.Position { return e.Operator.Pos }
func (e *UnaryExpr) String() string {
	return "(" + e.Operator.Literal + e.Right.String() + ")"
}
func (e *UnaryExpr) exprNode() {}

// VariableExpr 变量引用
type VariableExpr struct {
	Name token.Token // 变量名
}

func (e *VariableExpr) Pos() token.Position { return e.Name.Pos }
func (e *VariableExpr) String() string      { return e.Name.Literal }
func (e *VariableExpr) exprNode()           {}

// AssignExpr 变量赋值 (a = v, a += v, ...)
//
// Op 为 nil 表示普通赋值；复合赋值（a += v 等）在解析期降级，
// Op 记录对应的算术运算符，求值时按「读取-运算-写回」处理。
type AssignExpr struct {
	Name  token.Token  // 赋值目标变量名
	Op    *token.Token // 复合赋值的算术运算符，普通赋值为 nil
	Value Expression   // 右值
}

func (e *AssignExpr) Pos() token.Position { return e.Name.Pos }
func (e *AssignExpr) String() string {
	op := "="
	if e.Op != nil {
		op = e.Op.Literal + "="
	}
	return "(" + e.Name.Literal + " " + op + " " + e.Value.String() + ")"
}
func (e *AssignExpr) exprNode() {}

// CallExpr 调用表达式 (callee(args...))
type CallExpr struct {
	Callee Expression   // 被调用者
	Paren  token.Token  // 右括号，用于错误定位
	Args   []Expression // 实参列表
}

func (e *CallExpr) Pos() token.Position { return e.Paren.Pos }
func (e *CallExpr) String() string {
	var args []string
	for _, a := range e.Args {
		args = append(args, a.String())
	}
	return e.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}
func (e *CallExpr) exprNode() {}

// GetExpr 属性读取 (object.name)
type GetExpr struct {
	Object Expression  // 对象表达式
	Name   token.Token // 属性名
}

func (e *GetExpr) Pos() token.Position { return e.Name.Pos }
func (e *GetExpr) String() string      { return e.Object.String() + "." + e.Name.Literal }
func (e *GetExpr) exprNode()           {}

// SetExpr 属性写入 (object.name = v, object.name += v, ...)
//
// Op 的含义与 AssignExpr 相同。
type SetExpr struct {
	Object Expression   // 对象表达式
	Name   token.Token  // 属性名
	Op     *token.Token // 复合赋值的算术运算符，普通赋值为 nil
	Value  Expression   // 右值
}

func (e *SetExpr) Pos() token.Position { return e.Name.Pos }
func (e *SetExpr) String() string {
	op := "="
	if e.Op != nil {
		op = e.Op.Literal + "="
	}
	return "(" + e.Object.String() + "." + e.Name.Literal + " " + op + " " + e.Value.String() + ")"
}
func (e *SetExpr) exprNode() {}

// ThisExpr this 引用
type ThisExpr struct {
	Keyword token.Token // this token
}

func (e *ThisExpr) Pos() token.Position { return e.Keyword.Pos }
func (e *ThisExpr) String() string      { return "this" }
func (e *ThisExpr) exprNode()           {}

// SuperExpr super 方法引用 (super.method)
type SuperExpr struct {
	Keyword token.Token // super token
	Method  token.Token // 方法名
}

func (e *SuperExpr) Pos() token.Position { return e.Keyword.Pos }
func (e *SuperExpr) String() string      { return "super." + e.Method.Literal }
func (e *SuperExpr) exprNode()           {}

// ============================================================================
// 语句节点
// ============================================================================

// ExpressionStmt 表达式语句
type ExpressionStmt struct {
	Expr Expression // 表达式
}

func (s *ExpressionStmt) Pos() token.Position { return s.Expr.Pos() }
func (s *ExpressionStmt) String() string      { return s.Expr.String() + ";" }
func (s *ExpressionStmt) stmtNode()           {}

// VarStmt 变量声明 (var name = init;)
type VarStmt struct {
	Name        token.Token // 变量名
	Initializer Expression  // 初始化表达式，可为 nil
}

func (s *VarStmt) Pos() token.Position { return s.Name.Pos }
func (s *VarStmt) String() string {
	if s.Initializer != nil {
		return "var " + s.Name.Literal + " = " + s.Initializer.String() + ";"
	}
	return "var " + s.Name.Literal + ";"
}
func (s *VarStmt) stmtNode() {}

// BlockStmt 块语句 ({ ... })
type BlockStmt struct {
	LBrace     token.Token // { token
	Statements []Statement // 块内语句
}

func (s *BlockStmt) Pos() token.Position { return s.LBrace.Pos }
func (s *BlockStmt) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, stmt := range s.Statements {
		sb.WriteString(stmt.String())
		sb.WriteString(" ")
	}
	sb.WriteString("}")
	return sb.String()
}
func (s *BlockStmt) stmtNode() {}

// IfStmt 条件语句
type IfStmt struct {
	Keyword   token.Token // if token
	Condition Expression  // 条件
	Then      Statement   // then 分支
	Else      Statement   // else 分支，可为 nil
}

func (s *IfStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *IfStmt) String() string {
	out := "if (" + s.Condition.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}
func (s *IfStmt) stmtNode() {}

// WhileStmt 循环语句
//
// for 循环在解析期降级为 while，运行期只有这一种循环。
type WhileStmt struct {
	Keyword   token.Token // while 或 for token
	Condition Expression  // 条件
	Body      Statement   // 循环体
}

func (s *WhileStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *WhileStmt) String() string {
	return "while (" + s.Condition.String() + ") " + s.Body.String()
}
func (s *WhileStmt) stmtNode() {}

// FunctionStmt 函数声明（也用作类中的方法声明）
type FunctionStmt struct {
	Name   token.Token   // 函数名
	Params []token.Token // 形参列表
	Body   []Statement   // 函数体
}

func (s *FunctionStmt) Pos() token.Position { return s.Name.Pos }
func (s *FunctionStmt) String() string {
	var params []string
	for _, p := range s.Params {
		params = append(params, p.Literal)
	}
	return "fun " + s.Name.Literal + "(" + strings.Join(params, ", ") + ")"
}
func (s *FunctionStmt) stmtNode() {}

// ReturnStmt 返回语句
type ReturnStmt struct {
	Keyword token.Token // return token，用于错误定位
	Value   Expression  // 返回值表达式，可为 nil
}

func (s *ReturnStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *ReturnStmt) String() string {
	if s.Value != nil {
		return "return " + s.Value.String() + ";"
	}
	return "return;"
}
func (s *ReturnStmt) stmtNode() {}

// ClassStmt 类声明
type ClassStmt struct {
	Name       token.Token     // 类名
	Superclass *VariableExpr   // 父类引用，可为 nil
	Methods    []*FunctionStmt // 方法列表
}

func (s *ClassStmt) Pos() token.Position { return s.Name.Pos }
func (s *ClassStmt) String() string {
	out := "class " + s.Name.Literal
	if s.Superclass != nil {
		out += " < " + s.Superclass.Name.Literal
	}
	return out
}
func (s *ClassStmt) stmtNode() {}
