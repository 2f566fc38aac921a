package errors

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/lox/internal/token"
)

// ============================================================================
// 诊断格式化
// ============================================================================
//
// 每条诊断按固定格式输出：
//
//	<Kind><Where>: <Message>
//	  At file <FILE>, line <L>, column <C>
//	<出错行源代码，制表符展开为四个空格>
//	<列对齐的> ^ HERE
//
// Kind 是 "Error"（词法/语法/作用域分析错误）或 "RuntimeError"（求值错误）。
// Where 在 EOF 处是 " at end"，在具体 token 处是 " at 'LEXEME'"，
// 词法和运行时错误为空。
//
// ============================================================================

// Kind 诊断种类
type Kind int

const (
	KindCompile Kind = iota // 编译期错误（词法/语法/作用域分析）
	KindRuntime             // 运行时错误
)

func (k Kind) String() string {
	if k == KindRuntime {
		return "RuntimeError"
	}
	return "Error"
}

// Diagnostic 一条诊断
type Diagnostic struct {
	Kind    Kind           // 种类
	Where   string         // ""、" at end" 或 " at 'LEXEME'"
	Message string         // 错误信息
	Pos     token.Position // 出错位置
}

// Formatter 诊断格式化器
type Formatter struct {
	Colors   bool // 是否着色
	TabWidth int  // 制表符展开宽度
}

// NewFormatter 创建诊断格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:   ColorsEnabled(),
		TabWidth: 4,
	}
}

// Format 格式化一条诊断
//
// sourceLine 是出错行的源代码，为空时省略源码行和标注。
// 词法器的列号已经按制表符宽度 4 计数，展开后的行无需再做列折算。
func (f *Formatter) Format(d Diagnostic, sourceLine string) string {
	var sb strings.Builder

	kind := d.Kind.String()
	if f.Colors {
		kind = Colorize(kind, ColorBoldRed)
	}
	sb.WriteString(fmt.Sprintf("%s%s: %s\n", kind, d.Where, d.Message))

	location := fmt.Sprintf("  At file %s, line %d, column %d", d.Pos.Filename, d.Pos.Line, d.Pos.Column)
	if f.Colors {
		location = Colorize(location, ColorCyan)
	}
	sb.WriteString(location)
	sb.WriteString("\n")

	if sourceLine != "" {
		sb.WriteString(f.expandTabs(sourceLine))
		sb.WriteString("\n")

		col := d.Pos.Column
		if col < 0 {
			col = 0
		}
		caret := "^ HERE"
		if f.Colors {
			caret = Colorize(caret, ColorRed)
		}
		sb.WriteString(strings.Repeat(" ", col))
		sb.WriteString(caret)
		sb.WriteString("\n")
	}

	return sb.String()
}

// expandTabs 展开制表符为空格，保证标注列对齐
func (f *Formatter) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", f.TabWidth))
}
