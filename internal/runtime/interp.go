package runtime

import (
	"fmt"
	"math"

	"github.com/tangzhangming/lox/internal/ast"
	"github.com/tangzhangming/lox/internal/i18n"
	"github.com/tangzhangming/lox/internal/token"
)

// ============================================================================
// Interpreter - 树遍历求值器
// ============================================================================
//
// 求值器拿到 AST 和作用域分析产出的 hop 表后直接遍历求值。
// 环境以参数形式沿调用链传递：块创建子环境，函数调用以被调函数的
// 闭包（而非调用方环境）为父创建新环境，这保证了 hop 数不变量
// 在所有控制流路径上成立。
//
// return 语句通过带内信号 returnSignal 沿错误通道向上传递，
// 在函数调用处被拦截，对更外层的调用方不可见，也不会触发诊断。
// 真正的运行时错误是 *RuntimeError，带着出错处的 token 一路上抛，
// 终止当前顶层语句列表的执行。
//
// ============================================================================

// RuntimeError 运行时错误
type RuntimeError struct {
	Tok     token.Token // 出错处的 token，用于定位
	Message string      // 错误信息
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tok.Pos, e.Message)
}

// returnSignal return 语句的带内控制流信号，不是错误
type returnSignal struct {
	value Value
}

func (r *returnSignal) Error() string {
	return "return"
}

// Interpreter 求值器
type Interpreter struct {
	globals *Environment           // 全局环境，内置函数注册在这里
	locals  map[ast.Expression]int // 作用域分析产出的 hop 表
	host    *Host                  // 宿主 I/O（print/input/clock 所用）
}

// NewInterpreter 创建求值器并注册内置函数
func NewInterpreter(host *Host) *Interpreter {
	i := &Interpreter{
		globals: NewEnvironment(),
		locals:  make(map[ast.Expression]int),
		host:    host,
	}
	i.registerBuiltins()
	return i
}

// Globals 返回全局环境
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Interpret 执行一组顶层语句
//
// locals 是本次分析产出的 hop 表，并入求值器持有的总表
// （REPL 下同一个求值器会执行多段各自分析过的程序）。
// 遇到运行时错误时返回它并停止执行剩余语句。
func (i *Interpreter) Interpret(statements []ast.Statement, locals map[ast.Expression]int) *RuntimeError {
	for expr, depth := range locals {
		i.locals[expr] = depth
	}

	for _, stmt := range statements {
		if err := i.execStmt(stmt, i.globals); err != nil {
			// 顶层不存在函数调用帧，到达这里的只可能是运行时错误
			if rerr, ok := err.(*RuntimeError); ok {
				return rerr
			}
			return &RuntimeError{Message: err.Error()}
		}
	}
	return nil
}

// ============================================================================
// 语句执行
// ============================================================================

func (i *Interpreter) execStmt(stmt ast.Statement, env *Environment) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := i.evalExpr(s.Expr, env)
		return err

	case *ast.VarStmt:
		value := NilValue
		if s.Initializer != nil {
			v, err := i.evalExpr(s.Initializer, env)
			if err != nil {
				return err
			}
			value = v
		}
		env.Define(s.Name.Literal, value)
		return nil

	case *ast.BlockStmt:
		return i.execBlock(s.Statements, NewEnclosed(env))

	case *ast.IfStmt:
		cond, err := i.evalExpr(s.Condition, env)
		if err != nil {
			return err
		}
		if cond.IsTruthy() {
			return i.execStmt(s.Then, env)
		}
		if s.Else != nil {
			return i.execStmt(s.Else, env)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := i.evalExpr(s.Condition, env)
			if err != nil {
				return err
			}
			if !cond.IsTruthy() {
				return nil
			}
			if err := i.execStmt(s.Body, env); err != nil {
				return err
			}
		}

	case *ast.FunctionStmt:
		// 捕获当前环境作为闭包
		fn := &Function{Declaration: s, Closure: env}
		env.Define(s.Name.Literal, NewFunction(fn))
		return nil

	case *ast.ReturnStmt:
		value := NilValue
		if s.Value != nil {
			v, err := i.evalExpr(s.Value, env)
			if err != nil {
				return err
			}
			value = v
		}
		return &returnSignal{value: value}

	case *ast.ClassStmt:
		return i.execClass(s, env)

	default:
		return nil
	}
}

// execBlock 在给定环境中执行语句列表
func (i *Interpreter) execBlock(statements []ast.Statement, env *Environment) error {
	for _, stmt := range statements {
		if err := i.execStmt(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

// execClass 执行类声明
//
// 先把类名定义为 nil 再构造类值，方法体内因此可以引用类自身。
// 有父类时方法的闭包外再包一层绑定 super 的环境。
func (i *Interpreter) execClass(s *ast.ClassStmt, env *Environment) error {
	var superclass *Class
	if s.Superclass != nil {
		sv, err := i.evalExpr(s.Superclass, env)
		if err != nil {
			return err
		}
		if sv.Type != ValClass {
			return &RuntimeError{Tok: s.Superclass.Name, Message: i18n.T(i18n.ErrSuperclassNotClass)}
		}
		superclass = sv.AsClass()
	}

	env.Define(s.Name.Literal, NilValue)

	methodEnv := env
	if superclass != nil {
		methodEnv = NewEnclosed(env)
		methodEnv.Define("super", NewClass(superclass))
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Literal] = &Function{
			Declaration:   m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Literal == "init",
		}
	}

	class := &Class{Name: s.Name.Literal, Superclass: superclass, Methods: methods}
	env.Assign(s.Name.Literal, NewClass(class))
	return nil
}

// ============================================================================
// 表达式求值
// ============================================================================

func (i *Interpreter) evalExpr(expr ast.Expression, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e), nil

	case *ast.GroupingExpr:
		return i.evalExpr(e.Expr, env)

	case *ast.UnaryExpr:
		return i.evalUnary(e, env)

	case *ast.BinaryExpr:
		left, err := i.evalExpr(e.Left, env)
		if err != nil {
			return NilValue, err
		}
		right, err := i.evalExpr(e.Right, env)
		if err != nil {
			return NilValue, err
		}
		return i.applyBinary(e.Operator, left, right)

	case *ast.LogicalExpr:
		left, err := i.evalExpr(e.Left, env)
		if err != nil {
			return NilValue, err
		}
		// 短路：返回操作数本身，不折算成布尔
		if e.Operator.Type == token.OR {
			if left.IsTruthy() {
				return left, nil
			}
		} else {
			if !left.IsTruthy() {
				return left, nil
			}
		}
		return i.evalExpr(e.Right, env)

	case *ast.VariableExpr:
		return i.lookUpVariable(e.Name, e, env)

	case *ast.ThisExpr:
		return i.lookUpVariable(e.Keyword, e, env)

	case *ast.AssignExpr:
		return i.evalAssign(e, env)

	case *ast.CallExpr:
		return i.evalCall(e, env)

	case *ast.GetExpr:
		return i.evalGet(e, env)

	case *ast.SetExpr:
		return i.evalSet(e, env)

	case *ast.SuperExpr:
		return i.evalSuper(e, env)

	default:
		return NilValue, nil
	}
}

// literalValue 把字面量节点转换为运行时值
func literalValue(e *ast.LiteralExpr) Value {
	switch v := e.Value.(type) {
	case nil:
		return NilValue
	case bool:
		return NewBool(v)
	case float64:
		return NewNumber(v)
	case string:
		return NewString(v)
	default:
		return NilValue
	}
}

// evalUnary 一元表达式求值
func (i *Interpreter) evalUnary(e *ast.UnaryExpr, env *Environment) (Value, error) {
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return NilValue, err
	}

	switch e.Operator.Type {
	case token.MINUS:
		if right.Type == ValNil {
			return NilValue, &RuntimeError{Tok: e.Operator, Message: i18n.T(i18n.ErrUnaryMinusNil)}
		}
		if right.Type != ValNumber {
			return NilValue, &RuntimeError{Tok: e.Operator, Message: i18n.T(i18n.ErrOperandNumber)}
		}
		return NewNumber(-right.AsNumber()), nil

	case token.BANG:
		// 任何值先折算真值再取反，结果总是布尔
		return NewBool(!right.IsTruthy()), nil
	}

	return NilValue, nil
}

// applyBinary 二元运算
//
// + 接受两个数字、两个字符串，或一侧为字符串时把另一侧转为显示形式
// 后拼接；- * / % 和比较运算符要求两侧都是数字。除零遵循宿主浮点
// 语义（±Inf / NaN）。复合赋值的「读取-运算-写回」也走这里。
func (i *Interpreter) applyBinary(op token.Token, left, right Value) (Value, error) {
	switch op.Type {
	case token.PLUS:
		if left.Type == ValNumber && right.Type == ValNumber {
			return NewNumber(left.AsNumber() + right.AsNumber()), nil
		}
		if left.Type == ValString || right.Type == ValString {
			return NewString(left.String() + right.String()), nil
		}
		return NilValue, &RuntimeError{Tok: op, Message: i18n.T(i18n.ErrPlusOperands)}

	case token.MINUS:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewNumber(l - r), nil

	case token.STAR:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewNumber(l * r), nil

	case token.SLASH:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewNumber(l / r), nil

	case token.PERCENT:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewNumber(math.Mod(l, r)), nil

	case token.GT:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewBool(l > r), nil

	case token.GT_EQ:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewBool(l >= r), nil

	case token.LT:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewBool(l < r), nil

	case token.LT_EQ:
		l, r, err := i.numberOperands(op, left, right)
		if err != nil {
			return NilValue, err
		}
		return NewBool(l <= r), nil

	case token.EQ_EQ:
		return NewBool(left.Equals(right)), nil

	case token.BANG_EQ:
		return NewBool(!left.Equals(right)), nil
	}

	return NilValue, nil
}

// numberOperands 检查两侧都是数字并取出
func (i *Interpreter) numberOperands(op token.Token, left, right Value) (float64, float64, error) {
	if left.Type != ValNumber || right.Type != ValNumber {
		return 0, 0, &RuntimeError{Tok: op, Message: i18n.T(i18n.ErrOperandsNumbers)}
	}
	return left.AsNumber(), right.AsNumber(), nil
}

// lookUpVariable 按 hop 表访问变量
//
// hop 表中有记录的节点直接访问第 d 层祖先环境；
// 没有记录的按全局变量动态查找。
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expression, env *Environment) (Value, error) {
	if depth, ok := i.locals[expr]; ok {
		return env.GetAt(depth, name.Literal), nil
	}

	if v, ok := i.globals.values[name.Literal]; ok {
		return v, nil
	}
	return NilValue, &RuntimeError{Tok: name, Message: i18n.T(i18n.ErrUndefinedVariable, name.Literal)}
}

// evalAssign 变量赋值
//
// 复合赋值先按同样的路径读取当前值，应用算术运算后写回。
func (i *Interpreter) evalAssign(e *ast.AssignExpr, env *Environment) (Value, error) {
	value, err := i.evalExpr(e.Value, env)
	if err != nil {
		return NilValue, err
	}

	depth, resolved := i.locals[e]

	if e.Op != nil {
		var current Value
		if resolved {
			current = env.GetAt(depth, e.Name.Literal)
		} else {
			v, ok := i.globals.values[e.Name.Literal]
			if !ok {
				return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrUndefinedVariable, e.Name.Literal)}
			}
			current = v
		}

		value, err = i.applyBinary(*e.Op, current, value)
		if err != nil {
			return NilValue, err
		}
	}

	if resolved {
		env.AssignAt(depth, e.Name.Literal, value)
		return value, nil
	}

	if !i.globals.Assign(e.Name.Literal, value) {
		return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrUndefinedVariable, e.Name.Literal)}
	}
	return value, nil
}

// evalCall 调用表达式求值
//
// 被调用者必须是函数、原生函数或类；实参从左到右求值；
// 实参数量必须与形参数量一致。
func (i *Interpreter) evalCall(e *ast.CallExpr, env *Environment) (Value, error) {
	callee, err := i.evalExpr(e.Callee, env)
	if err != nil {
		return NilValue, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := i.evalExpr(argExpr, env)
		if err != nil {
			return NilValue, err
		}
		args = append(args, arg)
	}

	switch callee.Type {
	case ValFunction:
		fn := callee.AsFunction()
		if err := i.checkArity(e.Paren, fn.Arity(), len(args)); err != nil {
			return NilValue, err
		}
		return i.callFunction(fn, args)

	case ValNative:
		native := callee.AsNative()
		if err := i.checkArity(e.Paren, native.Arity, len(args)); err != nil {
			return NilValue, err
		}
		return native.Fn(i, args)

	case ValClass:
		class := callee.AsClass()
		if err := i.checkArity(e.Paren, class.Arity(), len(args)); err != nil {
			return NilValue, err
		}
		return i.construct(class, args)

	default:
		return NilValue, &RuntimeError{Tok: e.Paren, Message: i18n.T(i18n.ErrNotCallable)}
	}
}

// checkArity 检查实参数量
func (i *Interpreter) checkArity(paren token.Token, want, got int) error {
	if want != got {
		return &RuntimeError{Tok: paren, Message: i18n.T(i18n.ErrArityMismatch, want, got)}
	}
	return nil
}

// callFunction 函数调用
//
// 新环境以函数闭包（而非调用方环境）为父；绑定形参后执行函数体。
// return 信号在这里被拦截。init 初始化方法无论如何完成都返回 this。
func (i *Interpreter) callFunction(fn *Function, args []Value) (Value, error) {
	env := NewEnclosed(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		env.Define(param.Literal, args[idx])
	}

	if err := i.execBlock(fn.Declaration.Body, env); err != nil {
		ret, ok := err.(*returnSignal)
		if !ok {
			return NilValue, err
		}
		if fn.IsInitializer {
			return fn.Closure.GetAt(0, "this"), nil
		}
		return ret.value, nil
	}

	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this"), nil
	}
	return NilValue, nil
}

// construct 类调用（构造实例）
//
// 创建实例后，如果继承链上有 init，就把它绑定到实例并调用。
// 调用总是返回实例本身。
func (i *Interpreter) construct(class *Class, args []Value) (Value, error) {
	inst := NewInstanceOf(class)

	if init := class.FindMethod("init"); init != nil {
		if _, err := i.callFunction(init.Bind(inst), args); err != nil {
			return NilValue, err
		}
	}

	return NewInstance(inst), nil
}

// evalGet 属性读取
//
// 字段优先；没有字段时沿类链查找方法并返回新构造的绑定方法。
func (i *Interpreter) evalGet(e *ast.GetExpr, env *Environment) (Value, error) {
	object, err := i.evalExpr(e.Object, env)
	if err != nil {
		return NilValue, err
	}

	if object.Type != ValInstance {
		return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrOnlyInstances)}
	}

	inst := object.AsInstance()
	if v, ok := inst.Fields[e.Name.Literal]; ok {
		return v, nil
	}

	if method := inst.Class.FindMethod(e.Name.Literal); method != nil {
		return NewFunction(method.Bind(inst)), nil
	}

	return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrUndefinedProperty, e.Name.Literal)}
}

// evalSet 属性写入
//
// 复合赋值用字段的当前值做「读取-运算-写回」；字段不存在时报
// 未定义属性。普通赋值直接创建或覆盖字段。返回写入的新值。
func (i *Interpreter) evalSet(e *ast.SetExpr, env *Environment) (Value, error) {
	object, err := i.evalExpr(e.Object, env)
	if err != nil {
		return NilValue, err
	}

	if object.Type != ValInstance {
		return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrOnlyInstances)}
	}
	inst := object.AsInstance()

	value, err := i.evalExpr(e.Value, env)
	if err != nil {
		return NilValue, err
	}

	if e.Op != nil {
		current, ok := inst.Fields[e.Name.Literal]
		if !ok {
			return NilValue, &RuntimeError{Tok: e.Name, Message: i18n.T(i18n.ErrUndefinedProperty, e.Name.Literal)}
		}
		value, err = i.applyBinary(*e.Op, current, value)
		if err != nil {
			return NilValue, err
		}
	}

	inst.Fields[e.Name.Literal] = value
	return value, nil
}

// evalSuper super 方法引用
//
// super 绑定在 hop 表记录的第 d 层，this 总在其内侧一层（d-1）。
// 在父类上查找方法并绑定到当前实例。
func (i *Interpreter) evalSuper(e *ast.SuperExpr, env *Environment) (Value, error) {
	depth := i.locals[e]

	superclass := env.GetAt(depth, "super").AsClass()
	this := env.GetAt(depth-1, "this").AsInstance()

	method := superclass.FindMethod(e.Method.Literal)
	if method == nil {
		return NilValue, &RuntimeError{Tok: e.Method, Message: i18n.T(i18n.ErrUndefinedProperty, e.Method.Literal)}
	}

	return NewFunction(method.Bind(this)), nil
}
