package resolver

import (
	"fmt"

	"github.com/tangzhangming/lox/internal/ast"
	"github.com/tangzhangming/lox/internal/i18n"
	"github.com/tangzhangming/lox/internal/token"
)

// ============================================================================
// Resolver - 静态作用域分析
// ============================================================================
//
// 在求值之前对 AST 做一遍词法作用域分析，为每个变量引用节点
// （Variable / Assign / This / Super）计算 hop 数：从求值时的当前环境
// 沿外层链向上走多少步能到达绑定该名字的环境。结果记录在以节点指针
// 为键的副表（Locals）中；表中不存在的节点视为全局变量，运行期动态查找。
//
// 作用域栈中每个条目是 名字 → 是否已完成定义 的映射。declare 先以
// false 插入，初始化表达式分析完后 define 置为 true，借此发现
// 「在自身初始化表达式中读取局部变量」这类错误。
//
// 分析过程只报告错误，不会中断遍历。对同一棵 AST 重复分析，
// 副表内容保持一致。
//
// ============================================================================

// FunctionKind 当前所在函数的种类
type FunctionKind int

const (
	FuncNone        FunctionKind = iota // 不在函数中
	FuncFunction                        // 普通函数
	FuncMethod                          // 方法
	FuncInitializer                     // init 初始化方法
)

// ClassKind 当前所在类的种类
type ClassKind int

const (
	ClassNone     ClassKind = iota // 不在类中
	ClassClass                     // 无父类的类
	ClassSubclass                  // 有父类的类
)

// Error 作用域分析错误
type Error struct {
	Tok     token.Token // 出错处的 token
	Message string      // 错误信息
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Tok.Pos, e.Message)
}

// Resolver 作用域分析器
type Resolver struct {
	scopes          []map[string]bool      // 作用域栈，栈底是最外层
	currentFunction FunctionKind           // 当前函数种类
	currentClass    ClassKind              // 当前类种类
	locals          map[ast.Expression]int // 节点 → hop 数副表
	errors          []Error                // 分析错误列表
}

// New 创建一个新的作用域分析器
//
// 初始时已存在一个最外层作用域，顶层声明落在其中。
func New() *Resolver {
	return &Resolver{
		scopes:          []map[string]bool{make(map[string]bool)},
		currentFunction: FuncNone,
		currentClass:    ClassNone,
		locals:          make(map[ast.Expression]int),
	}
}

// ============================================================================
// 公共方法
// ============================================================================

// Resolve 分析一组顶层语句
func (r *Resolver) Resolve(statements []ast.Statement) {
	for _, stmt := range statements {
		r.resolveStmt(stmt)
	}
}

// Locals 返回节点 → hop 数副表
//
// 副表以表达式节点的指针为键，求值器必须使用解析器产出的同一棵 AST。
func (r *Resolver) Locals() map[ast.Expression]int {
	return r.locals
}

// Errors 返回所有分析错误
func (r *Resolver) Errors() []Error {
	return r.errors
}

// HasErrors 检查是否有错误
func (r *Resolver) HasErrors() bool {
	return len(r.errors) > 0
}

// ============================================================================
// 语句分析
// ============================================================================

func (r *Resolver) resolveStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expr)

	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)

	case *ast.BlockStmt:
		r.beginScope()
		r.Resolve(s.Statements)
		r.endScope()

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.FunctionStmt:
		// 函数名先声明再定义，允许函数体内递归引用自身
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, FuncFunction)

	case *ast.ReturnStmt:
		if r.currentFunction == FuncNone {
			r.error(s.Keyword, i18n.T(i18n.ErrReturnTopLevel))
		}
		if s.Value != nil {
			if r.currentFunction == FuncInitializer {
				r.error(s.Keyword, i18n.T(i18n.ErrReturnFromInit))
			}
			r.resolveExpr(s.Value)
		}

	case *ast.ClassStmt:
		r.resolveClass(s)
	}
}

// resolveFunction 分析函数体
//
// 为形参和函数体开一个新作用域，并记录函数种类以检查 return 语句。
func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind FunctionKind) {
	enclosing := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.Resolve(fn.Body)
	r.endScope()

	r.currentFunction = enclosing
}

// resolveClass 分析类声明
//
// 有父类时额外压入一个绑定 super 的作用域；方法体外层总有一个
// 绑定 this 的作用域。名为 init 的方法按初始化方法分析。
func (r *Resolver) resolveClass(s *ast.ClassStmt) {
	enclosing := r.currentClass
	r.currentClass = ClassClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Literal == s.Name.Literal {
			r.error(s.Superclass.Name, i18n.T(i18n.ErrInheritSelf))
		}

		r.currentClass = ClassSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := FuncMethod
		if method.Name.Literal == "init" {
			kind = FuncInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosing
}

// ============================================================================
// 表达式分析
// ============================================================================

func (r *Resolver) resolveExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Expr)

	case *ast.LiteralExpr:
		// 字面量没有名字，无需分析

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)

	case *ast.VariableExpr:
		// 声明了但尚未完成定义：在自身初始化表达式中读取
		if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Literal]; ok && !defined {
			r.error(e.Name, i18n.T(i18n.ErrReadInInitializer))
		}
		r.resolveLocal(e, e.Name.Literal)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Literal)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		// 属性名在运行期动态查找，只分析对象表达式
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.ThisExpr:
		if r.currentClass == ClassNone {
			r.error(e.Keyword, i18n.T(i18n.ErrThisOutsideClass))
			return
		}
		r.resolveLocal(e, "this")

	case *ast.SuperExpr:
		switch r.currentClass {
		case ClassNone:
			r.error(e.Keyword, i18n.T(i18n.ErrSuperOutsideClass))
		case ClassClass:
			r.error(e.Keyword, i18n.T(i18n.ErrSuperNoSuperclass))
		default:
			r.resolveLocal(e, "super")
		}
	}
}

// resolveLocal 从最内层作用域向外查找名字，记录 hop 数
//
// 最内层为 0。任何作用域都找不到时视为全局变量，不记录。
func (r *Resolver) resolveLocal(expr ast.Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

// ============================================================================
// 作用域操作
// ============================================================================

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare 在最内层作用域中声明名字，定义标记为 false
//
// 同一作用域重复声明是错误。
func (r *Resolver) declare(name token.Token) {
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Literal]; exists {
		r.error(name, i18n.T(i18n.ErrAlreadyDeclared))
	}
	scope[name.Literal] = false
}

// define 将最内层作用域中的名字标记为已完成定义
func (r *Resolver) define(name token.Token) {
	r.scopes[len(r.scopes)-1][name.Literal] = true
}

// ============================================================================
// 错误处理
// ============================================================================

// error 记录一个分析错误，遍历继续
func (r *Resolver) error(tok token.Token, message string) {
	r.errors = append(r.errors, Error{Tok: tok, Message: message})
}
