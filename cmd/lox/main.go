package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tangzhangming/lox/internal/config"
	"github.com/tangzhangming/lox/internal/errors"
	"github.com/tangzhangming/lox/internal/i18n"
	"github.com/tangzhangming/lox/internal/parser"
	"github.com/tangzhangming/lox/internal/repl"
	"github.com/tangzhangming/lox/internal/runtime"
)

const Version = "0.1.0"

// 退出码约定
//
//	64  用法错误
//	65  编译期错误（词法/语法/作用域分析）
//	70  运行时错误
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

// 全局语言参数
var globalLang string

func main() {
	// 预扫描全局参数 --lang 或 -lang
	args := preprocessArgs(os.Args[1:])

	// 初始化诊断语言
	i18n.SetLanguageFromString(globalLang)

	fs := flag.NewFlagSet("lox", flag.ExitOnError)
	showTokens := fs.Bool("tokens", false, "dump the token stream and exit")
	showAST := fs.Bool("ast", false, "print the parsed program and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Lox interpreter v%s\n\n", Version)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  lox [options] [script]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "With no script, an interactive session is started.")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(exitUsage)
	}

	switch fs.NArg() {
	case 0:
		os.Exit(runREPL())
	case 1:
		os.Exit(runFile(fs.Arg(0), *showTokens, *showAST))
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [script]")
		os.Exit(exitUsage)
	}
}

// preprocessArgs 预处理参数，提取全局 --lang 参数
func preprocessArgs(args []string) []string {
	var result []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--lang" || arg == "-lang" {
			if i+1 < len(args) {
				globalLang = args[i+1]
				i++ // 跳过下一个参数
				continue
			}
		} else if strings.HasPrefix(arg, "--lang=") {
			globalLang = strings.TrimPrefix(arg, "--lang=")
			continue
		} else if strings.HasPrefix(arg, "-lang=") {
			globalLang = strings.TrimPrefix(arg, "-lang=")
			continue
		}
		result = append(result, arg)
	}
	return result
}

// applyConfig 把 lox.toml 的配置落到诊断输出上
func applyConfig(cfg *config.Config) {
	switch cfg.Diagnostics.Color {
	case "always":
		errors.EnableColors()
	case "never":
		errors.DisableColors()
	}
	// "auto" 保持启动时的终端探测结果
}

// runFile 运行脚本文件
func runFile(filename string, showTokens, showAST bool) int {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lox: cannot read %s: %v\n", filename, err)
		return exitUsage
	}

	applyConfig(config.Load(filename))

	// 调试输出：token 流
	if showTokens {
		p := parser.New(string(source), filename)
		for _, tok := range p.Tokens() {
			fmt.Println(tok)
		}
		return exitOK
	}

	rt := runtime.New()

	// 调试输出：AST
	if showAST {
		for _, stmt := range rt.ParseOnly(string(source), filename) {
			fmt.Println(stmt)
		}
		if rt.HadError() {
			return exitCompile
		}
		return exitOK
	}

	rt.Run(string(source), filename)

	if rt.HadError() {
		return exitCompile
	}
	if rt.HadRuntimeError() {
		return exitRuntime
	}
	return exitOK
}

// runREPL 启动交互式会话
func runREPL() int {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg := config.Load(cwd)
	applyConfig(cfg)

	return repl.New(cfg).Run()
}
