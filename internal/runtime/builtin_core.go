package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ============================================================================
// 核心内置函数
// ============================================================================
//
// 内置函数是求值器构造时注入的一个小而固定的注册表：
//
//	print(v)  把 v 的显示形式写到标准输出并换行，返回 nil
//	input(p)  把 p 作为提示写出，阻塞读取一行输入，作为字符串返回
//	clock()   返回自 epoch 起的墙钟毫秒数
//	Object    一个没有父类、没有方法的内置空类
//
// I/O 通过 Host 注入，测试时可以替换为内存缓冲。
//
// ============================================================================

// Host 宿主 I/O
type Host struct {
	Stdout io.Writer     // print/input 提示的输出目标
	Stdin  *bufio.Reader // input 的输入来源
}

// NewHost 创建默认宿主（标准输入输出）
func NewHost() *Host {
	return &Host{
		Stdout: os.Stdout,
		Stdin:  bufio.NewReader(os.Stdin),
	}
}

// registerBuiltins 把内置函数注册到全局环境
func (i *Interpreter) registerBuiltins() {
	i.defineNative("print", 1, builtinPrint)
	i.defineNative("input", 1, builtinInput)
	i.defineNative("clock", 0, builtinClock)

	// 内置空类 Object
	i.globals.Define("Object", NewClass(&Class{
		Name:    "Object",
		Methods: make(map[string]*Function),
	}))
}

// defineNative 注册一个原生函数
func (i *Interpreter) defineNative(name string, arity int, fn func(*Interpreter, []Value) (Value, error)) {
	i.globals.Define(name, NewNative(&Native{
		Name:  name,
		Arity: arity,
		Fn:    fn,
	}))
}

func builtinPrint(i *Interpreter, args []Value) (Value, error) {
	fmt.Fprintln(i.host.Stdout, args[0].String())
	return NilValue, nil
}

func builtinInput(i *Interpreter, args []Value) (Value, error) {
	fmt.Fprint(i.host.Stdout, args[0].String())

	line, err := i.host.Stdin.ReadString('\n')
	if err != nil && line == "" {
		// 输入流已结束，返回空串
		return NewString(""), nil
	}

	line = strings.TrimRight(line, "\r\n")
	return NewString(line), nil
}

func builtinClock(i *Interpreter, args []Value) (Value, error) {
	return NewNumber(float64(time.Now().UnixMilli())), nil
}
