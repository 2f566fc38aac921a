// Package repl 实现交互式解释器 (Read-Eval-Print Loop)
//
// 提供交互式命令行界面，支持：
// - 多行输入（检测未闭合的括号和字符串）
// - 行编辑与历史记录（peterh/liner）
// - 特殊命令（:help, :quit, :reset, :load）
// - 错误不终止会话，错误标志每行清零
package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/tangzhangming/lox/internal/config"
	"github.com/tangzhangming/lox/internal/runtime"
)

// replFilename 交互输入在诊断中显示的文件名
const replFilename = "repl"

// REPL 交互式解释器
type REPL struct {
	runtime   *runtime.Runtime
	cfg       config.REPLConfig
	buffer    strings.Builder
	multiline bool
}

// New 创建 REPL
func New(cfg *config.Config) *REPL {
	return &REPL{
		runtime: runtime.New(),
		cfg:     cfg.REPL,
	}
}

// Run 运行 REPL，返回进程退出码
func (r *REPL) Run() int {
	r.printWelcome()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := r.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		prompt := r.cfg.Prompt
		if r.multiline {
			prompt = r.cfg.ContinuePrompt
		}

		line, err := ln.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C 丢弃当前输入
				r.buffer.Reset()
				r.multiline = false
				continue
			}
			// Ctrl+D / 输入流结束
			fmt.Println()
			return 0
		}

		// 处理特殊命令
		if !r.multiline {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" {
				return 0
			}
			if strings.HasPrefix(trimmed, ":") {
				if code, quit := r.handleCommand(trimmed); quit {
					return code
				}
				ln.AppendHistory(line)
				continue
			}
		}

		// 添加到缓冲区
		if r.multiline {
			r.buffer.WriteString("\n")
		}
		r.buffer.WriteString(line)

		// 检查是否需要继续输入
		if needsMoreInput(r.buffer.String()) {
			r.multiline = true
			continue
		}

		input := r.buffer.String()
		r.buffer.Reset()
		r.multiline = false

		if strings.TrimSpace(input) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		r.execute(input)
	}
}

// execute 求值一段输入
//
// 错误标志在每次求值前清零，上一行的错误不影响下一行。
func (r *REPL) execute(input string) {
	r.runtime.ResetErrors()
	r.runtime.Run(input, replFilename)
}

// printWelcome 打印欢迎信息
func (r *REPL) printWelcome() {
	fmt.Println("Lox REPL")
	fmt.Println("Type :help for help, exit to quit")
	fmt.Println()
}

// handleCommand 处理特殊命令，返回 (退出码, 是否退出)
func (r *REPL) handleCommand(line string) (int, bool) {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case ":help", ":h", ":?":
		r.printHelp()

	case ":quit", ":q", ":exit":
		return 0, true

	case ":reset", ":clear":
		r.runtime = runtime.New()
		fmt.Println("Environment reset.")

	case ":load", ":l":
		if len(args) < 1 {
			fmt.Println("Usage: :load <filename>")
			return 0, false
		}
		r.loadFile(args[0])

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type :help for available commands.")
	}

	return 0, false
}

// printHelp 打印帮助信息
func (r *REPL) printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  :help, :h, :?     Show this help message")
	fmt.Println("  :quit, :q, exit   Exit the REPL")
	fmt.Println("  :reset, :clear    Reset the environment")
	fmt.Println("  :load <file>      Load and execute a file")
	fmt.Println()
	fmt.Println("Multi-line input:")
	fmt.Println("  Unfinished blocks (open brackets or strings)")
	fmt.Println("  will continue on the next line.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  >>> var x = 10;")
	fmt.Println("  >>> print(x * 2);")
	fmt.Println("  >>> fun add(a, b) {")
	fmt.Println("  ...   return a + b;")
	fmt.Println("  ... }")
}

// loadFile 加载并执行文件
func (r *REPL) loadFile(filename string) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error loading file: %v\n", err)
		return
	}

	r.runtime.ResetErrors()
	r.runtime.Run(string(source), filename)
	if !r.runtime.HadError() && !r.runtime.HadRuntimeError() {
		fmt.Printf("Loaded: %s\n", filename)
	}
}

// historyPath 历史记录文件的完整路径
func (r *REPL) historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, r.cfg.HistoryFile)
}

// needsMoreInput 检查输入是否还未完整
//
// 统计未闭合的括号、大括号和字符串。Lox 字符串允许跨行，
// 未闭合的字符串也触发续行。
func needsMoreInput(input string) bool {
	parenDepth := 0
	braceDepth := 0
	inString := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '/':
			// 行注释：跳到行尾
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		}
	}

	return inString || parenDepth > 0 || braceDepth > 0
}
