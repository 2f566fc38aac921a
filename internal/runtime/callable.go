package runtime

import (
	"github.com/tangzhangming/lox/internal/ast"
)

// ============================================================================
// 可调用对象：函数、原生函数、类、实例
// ============================================================================

// Function 用户定义的函数值
//
// 持有声明节点和声明处的环境（闭包）。IsInitializer 标记 init 方法：
// 初始化方法的调用总是返回 this，绑定时该标记随之继承。
type Function struct {
	Declaration   *ast.FunctionStmt // 函数声明
	Closure       *Environment      // 声明处的环境
	IsInitializer bool              // 是否为 init 初始化方法
}

// Name 函数名
func (f *Function) Name() string {
	return f.Declaration.Name.Literal
}

// Arity 形参数量
func (f *Function) Arity() int {
	return len(f.Declaration.Params)
}

// Bind 生成绑定方法
//
// 新函数值共享同一个声明，闭包在原闭包外再包一层，
// 其中 this 绑定到给定实例。
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnclosed(f.Closure)
	env.Define("this", NewInstance(inst))
	return &Function{
		Declaration:   f.Declaration,
		Closure:       env,
		IsInitializer: f.IsInitializer,
	}
}

// Native 宿主注入的原生函数
type Native struct {
	Name  string                                            // 名字（用于全局注册）
	Arity int                                               // 形参数量
	Fn    func(i *Interpreter, args []Value) (Value, error) // 宿主实现
}

// Class 类值
type Class struct {
	Name       string               // 类名
	Superclass *Class               // 父类，可为 nil
	Methods    map[string]*Function // 方法名 → 函数（绑定到类的定义环境）
}

// FindMethod 沿继承链查找方法
func (c *Class) FindMethod(name string) *Function {
	for class := c; class != nil; class = class.Superclass {
		if m, ok := class.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity 构造调用的形参数量：有 init 时等于 init 的，否则为 0
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Instance 实例值
type Instance struct {
	Class  *Class           // 所属类
	Fields map[string]Value // 字段表，写入时创建条目
}

// NewInstanceOf 创建指定类的空实例
func NewInstanceOf(class *Class) *Instance {
	return &Instance{
		Class:  class,
		Fields: make(map[string]Value),
	}
}
