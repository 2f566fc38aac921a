package runtime

import (
	"bufio"
	"io"

	"github.com/tangzhangming/lox/internal/ast"
	"github.com/tangzhangming/lox/internal/errors"
	"github.com/tangzhangming/lox/internal/parser"
	"github.com/tangzhangming/lox/internal/resolver"
)

// ============================================================================
// Runtime - 解释器流水线
// ============================================================================
//
// 串起词法、语法、作用域分析和求值四个阶段：
//
//	词法分析   → 有错即停
//	语法分析   → 有错或没有语句即停
//	作用域分析 → 有错即停
//	求值       → 运行时错误终止当前语句列表
//
// 每个阶段都把诊断写到共享的 Reporter；HadError / HadRuntimeError
// 两个粘滞标志决定 CLI 的退出码，REPL 在每行前清零。
//
// ============================================================================

// Runtime Lox 运行时
type Runtime struct {
	reporter *errors.Reporter
	interp   *Interpreter
}

// Options 运行时配置
type Options struct {
	Stdout   io.Writer        // 程序输出目标，nil 表示标准输出
	Stdin    io.Reader        // input 内置函数的输入来源，nil 表示标准输入
	Reporter *errors.Reporter // 诊断汇集器，nil 表示新建（写到标准错误）
}

// New 创建运行时
func New() *Runtime {
	return NewWithOptions(Options{})
}

// NewWithOptions 按配置创建运行时
func NewWithOptions(opts Options) *Runtime {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = errors.NewReporter()
	}

	host := NewHost()
	if opts.Stdout != nil {
		host.Stdout = opts.Stdout
	}
	if opts.Stdin != nil {
		host.Stdin = bufio.NewReader(opts.Stdin)
	}

	return &Runtime{
		reporter: reporter,
		interp:   NewInterpreter(host),
	}
}

// Run 运行源代码
//
// 走完整条流水线。结果通过 Reporter 的标志查询；
// 同一个 Runtime 可以连续 Run 多段程序（REPL），全局状态保留。
func (r *Runtime) Run(source, filename string) {
	r.reporter.SetSource(filename, source)

	// 词法 + 语法分析
	p := parser.New(source, filename)

	for _, e := range p.LexErrors() {
		r.reporter.LexError(e.Pos, e.Message)
	}
	if r.reporter.HadError() {
		return
	}

	statements := p.Parse()

	for _, e := range p.Errors() {
		r.reporter.CompileError(e.Tok, e.Message)
	}
	if r.reporter.HadError() || statements == nil {
		return
	}

	// 作用域分析
	res := resolver.New()
	res.Resolve(statements)

	for _, e := range res.Errors() {
		r.reporter.CompileError(e.Tok, e.Message)
	}
	if r.reporter.HadError() {
		return
	}

	// 求值
	if rerr := r.interp.Interpret(statements, res.Locals()); rerr != nil {
		r.reporter.RuntimeError(rerr.Tok.Pos, rerr.Message)
	}
}

// ParseOnly 只做词法和语法分析，返回 AST（用于 -ast 调试输出）
func (r *Runtime) ParseOnly(source, filename string) []ast.Statement {
	r.reporter.SetSource(filename, source)

	p := parser.New(source, filename)
	for _, e := range p.LexErrors() {
		r.reporter.LexError(e.Pos, e.Message)
	}
	if r.reporter.HadError() {
		return nil
	}

	statements := p.Parse()
	for _, e := range p.Errors() {
		r.reporter.CompileError(e.Tok, e.Message)
	}
	return statements
}

// Reporter 返回诊断汇集器
func (r *Runtime) Reporter() *errors.Reporter {
	return r.reporter
}

// HadError 是否有编译期错误
func (r *Runtime) HadError() bool {
	return r.reporter.HadError()
}

// HadRuntimeError 是否有运行时错误
func (r *Runtime) HadRuntimeError() bool {
	return r.reporter.HadRuntimeError()
}

// ResetErrors 清零错误标志（REPL 每行前调用）
func (r *Runtime) ResetErrors() {
	r.reporter.Reset()
}
