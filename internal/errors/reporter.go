// Package errors 实现各阶段共享的诊断汇集器
//
// 词法器、语法分析器、作用域分析器和求值器都把诊断写到同一个 Reporter。
// 前三者置位 HadError，求值器置位 HadRuntimeError；两个标志是粘滞的，
// REPL 在每行求值前用 Reset 清零。
//
// Reporter 以构造注入的方式在各阶段间传递，不使用进程级单例。
package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tangzhangming/lox/internal/token"
)

// Reporter 诊断汇集器
type Reporter struct {
	formatter       *Formatter
	sourceCache     map[string][]string // 文件名 → 源代码行缓存
	out             io.Writer           // 诊断输出目标
	hadError        bool                // 编译期错误标志
	hadRuntimeError bool                // 运行时错误标志
	count           int                 // 已报告的诊断数量
}

// NewReporter 创建诊断汇集器，诊断写到标准错误
func NewReporter() *Reporter {
	return NewReporterTo(os.Stderr)
}

// NewReporterTo 创建诊断汇集器并指定输出目标（用于测试）
func NewReporterTo(out io.Writer) *Reporter {
	return &Reporter{
		formatter:   NewFormatter(),
		sourceCache: make(map[string][]string),
		out:         out,
	}
}

// SetFormatter 设置格式化器
func (r *Reporter) SetFormatter(f *Formatter) {
	r.formatter = f
}

// SetSource 登记源代码，供诊断输出出错行
func (r *Reporter) SetSource(filename, content string) {
	r.sourceCache[filename] = strings.Split(content, "\n")
}

// sourceLine 取出指定文件的某一行，越界时返回空串
func (r *Reporter) sourceLine(filename string, line int) string {
	if lines, ok := r.sourceCache[filename]; ok {
		if line > 0 && line <= len(lines) {
			return lines[line-1]
		}
	}
	return ""
}

// ============================================================================
// 各阶段的报告入口
// ============================================================================

// LexError 报告词法错误（无 Where 部分）
func (r *Reporter) LexError(pos token.Position, message string) {
	r.hadError = true
	r.emit(Diagnostic{Kind: KindCompile, Message: message, Pos: pos})
}

// CompileError 报告带 token 的编译期错误（语法/作用域分析）
//
// EOF 处 Where 是 " at end"，其余是 " at 'LEXEME'"。
func (r *Reporter) CompileError(tok token.Token, message string) {
	r.hadError = true

	where := fmt.Sprintf(" at '%s'", tok.Literal)
	if tok.Type == token.EOF {
		where = " at end"
	}

	r.emit(Diagnostic{Kind: KindCompile, Where: where, Message: message, Pos: tok.Pos})
}

// RuntimeError 报告运行时错误（无 Where 部分）
func (r *Reporter) RuntimeError(pos token.Position, message string) {
	r.hadRuntimeError = true
	r.emit(Diagnostic{Kind: KindRuntime, Message: message, Pos: pos})
}

// emit 格式化并写出一条诊断
func (r *Reporter) emit(d Diagnostic) {
	r.count++
	line := r.sourceLine(d.Pos.Filename, d.Pos.Line)
	fmt.Fprint(r.out, r.formatter.Format(d, line))
}

// ============================================================================
// 状态查询
// ============================================================================

// HadError 是否有编译期错误
func (r *Reporter) HadError() bool {
	return r.hadError
}

// HadRuntimeError 是否有运行时错误
func (r *Reporter) HadRuntimeError() bool {
	return r.hadRuntimeError
}

// Count 已报告的诊断数量
func (r *Reporter) Count() int {
	return r.count
}

// Reset 清零错误标志（REPL 每行求值前调用）
func (r *Reporter) Reset() {
	r.hadError = false
	r.hadRuntimeError = false
}
