package runtime

import (
	"math"
	"strconv"
)

// ============================================================================
// 运行时值
// ============================================================================
//
// Value 是带标签的联合：nil、布尔、64 位浮点数、字符串为值类型；
// 函数、原生函数、类、实例为引用类型。== 对值类型比较值，
// 对引用类型比较身份。
//
// ============================================================================

// ValueType 值类型
type ValueType byte

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValString
	ValFunction // 用户定义的函数（含绑定方法）
	ValNative   // 宿主注入的原生函数
	ValClass
	ValInstance
)

// Value 运行时值
type Value struct {
	Type ValueType
	Data interface{}
}

// 预定义常量值
var (
	NilValue   = Value{Type: ValNil}
	TrueValue  = Value{Type: ValBool, Data: true}
	FalseValue = Value{Type: ValBool, Data: false}
)

// NewBool 创建布尔值
func NewBool(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

// NewNumber 创建数字值
func NewNumber(f float64) Value {
	return Value{Type: ValNumber, Data: f}
}

// NewString 创建字符串值
func NewString(s string) Value {
	return Value{Type: ValString, Data: s}
}

// NewFunction 创建函数值
func NewFunction(f *Function) Value {
	return Value{Type: ValFunction, Data: f}
}

// NewNative 创建原生函数值
func NewNative(n *Native) Value {
	return Value{Type: ValNative, Data: n}
}

// NewClass 创建类值
func NewClass(c *Class) Value {
	return Value{Type: ValClass, Data: c}
}

// NewInstance 创建实例值
func NewInstance(inst *Instance) Value {
	return Value{Type: ValInstance, Data: inst}
}

// ============================================================================
// 取值辅助
// ============================================================================

// AsNumber 取出数字，调用方需先检查类型
func (v Value) AsNumber() float64 {
	return v.Data.(float64)
}

// AsString 取出字符串，调用方需先检查类型
func (v Value) AsString() string {
	return v.Data.(string)
}

// AsFunction 取出函数，调用方需先检查类型
func (v Value) AsFunction() *Function {
	return v.Data.(*Function)
}

// AsNative 取出原生函数，调用方需先检查类型
func (v Value) AsNative() *Native {
	return v.Data.(*Native)
}

// AsClass 取出类，调用方需先检查类型
func (v Value) AsClass() *Class {
	return v.Data.(*Class)
}

// AsInstance 取出实例，调用方需先检查类型
func (v Value) AsInstance() *Instance {
	return v.Data.(*Instance)
}

// ============================================================================
// 语义操作
// ============================================================================

// IsTruthy 真值规则：nil 和 false 为假，其余一切为真
func (v Value) IsTruthy() bool {
	switch v.Type {
	case ValNil:
		return false
	case ValBool:
		return v.Data.(bool)
	default:
		return true
	}
}

// Equals 相等比较
//
// 值类型按值比较（NaN 遵循浮点语义，不等于自身）；
// 函数、类、实例按引用身份比较。接口相等恰好同时覆盖两种情况：
// Data 中的指针比较身份，基础类型比较值。
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	return v.Data == other.Data
}

// String 返回值的显示形式
//
// nil → "nil"；布尔 → "true"/"false"；整数值的数字不带小数点尾巴，
// 其余数字用宿主默认格式；字符串原样；函数 → "<fun NAME>"；
// 原生函数 → "<native fn>"；类 → "<class NAME>"；实例 → "<NAME instance>"。
func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.Data.(float64))
	case ValString:
		return v.Data.(string)
	case ValFunction:
		return "<fun " + v.AsFunction().Name() + ">"
	case ValNative:
		return "<native fn>"
	case ValClass:
		return "<class " + v.AsClass().Name + ">"
	case ValInstance:
		return "<" + v.AsInstance().Class.Name + " instance>"
	default:
		return "nil"
	}
}

// formatNumber 数字显示格式
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
